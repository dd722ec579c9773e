package market

import (
	"context"
	"time"

	"github.com/seenimoa/stonks/internal/catalog"
	"github.com/seenimoa/stonks/pkg/models"
)

// ScanHistory loads a deep-scan lookback ("1y" through "20y", or "max").
// Yahoo has no 20y range, so that lookback fetches "max" and is trimmed
// to ScanDays. Macro series are returned whole.
func (s *Service) ScanHistory(ctx context.Context, class catalog.AssetClass, id, period string) (*models.History, error) {
	switch class {
	case catalog.ClassCrypto:
		return s.cryptoHistory(ctx, id, ScanCryptoDays(period))
	case catalog.ClassMacro:
		return s.AnalysisHistory(ctx, class, id, period)
	}

	fetch := period
	if period == "20y" {
		fetch = "max"
	}
	h, err := s.history(ctx, class, id, fetch, "1d")
	if err != nil {
		return nil, err
	}
	return trimBefore(h, s.now().AddDate(0, 0, -ScanDays(period))), nil
}

// trimBefore drops bars dated before cutoff. h is returned unchanged when
// nothing is dropped; provider results are cached and shared.
func trimBefore(h *models.History, cutoff time.Time) *models.History {
	from := cutoff.Format(time.DateOnly)
	i := 0
	for i < len(h.Data) && h.Data[i].Date < from {
		i++
	}
	if i == 0 {
		return h
	}
	return models.NewHistory(h.Ticker, h.Source, h.Data[i:])
}
