package market

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/stonks/internal/catalog"
	"github.com/seenimoa/stonks/internal/provider"
	"github.com/seenimoa/stonks/pkg/models"
)

// Loaded is the outcome of one asset fetch in a batch.
type Loaded struct {
	Ref     AssetRef
	Class   catalog.AssetClass
	History *models.History
	Err     error
}

// HistoryFunc loads one asset; FetchAll uses AnalysisHistory unless a
// caller supplies its own.
type HistoryFunc func(ctx context.Context, class catalog.AssetClass, id string) (*models.History, error)

// FetchAll loads every ref concurrently, at most s.concurrency at a
// time. Individual failures are reported in Loaded.Err; the returned
// error is only the context error. Results keep the order of refs.
func (s *Service) FetchAll(ctx context.Context, refs []AssetRef, period string) ([]Loaded, error) {
	return s.FetchAllWith(ctx, refs, func(ctx context.Context, class catalog.AssetClass, id string) (*models.History, error) {
		return s.AnalysisHistory(ctx, class, id, period)
	})
}

// FetchAllWith is FetchAll with a custom loader. Transport failures are
// retried once after a short pause; empty upstream answers are not.
func (s *Service) FetchAllWith(ctx context.Context, refs []AssetRef, load HistoryFunc) ([]Loaded, error) {
	out := make([]Loaded, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, ref := range refs {
		out[i].Ref = ref
		class, err := ref.Class()
		if err != nil {
			out[i].Err = err
			continue
		}
		out[i].Class = class

		g.Go(func() error {
			h, err := loadWithRetry(gctx, class, ref.ID, load)
			out[i].History, out[i].Err = h, err
			if err != nil {
				s.log.Warn().Err(err).Str("asset", ref.String()).Msg("fetch failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	return out, ctx.Err()
}

const retryDelay = 500 * time.Millisecond

func loadWithRetry(ctx context.Context, class catalog.AssetClass, id string, load HistoryFunc) (*models.History, error) {
	h, err := load(ctx, class, id)
	var noData *provider.ErrNoData
	if err == nil || ctx.Err() != nil || errors.As(err, &noData) {
		return h, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(retryDelay):
	}
	return load(ctx, class, id)
}
