package backtest

import (
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/stonks/internal/market"
)

// ════════════════════════════════════════════════════════════════════
// Purchase Schedule
// ════════════════════════════════════════════════════════════════════

// Frequency is how often the recurring amount is invested.
type Frequency string

const (
	Once    Frequency = "once"
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// ErrInvalidFrequency is returned for an unknown frequency name.
var ErrInvalidFrequency = fmt.Errorf("%w: frequency", market.ErrInvalidInput)

// ParseFrequency accepts the frequency names case-insensitively. An empty
// string means Once.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Once, nil
	case Once, Daily, Weekly, Monthly:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (want once, daily, weekly or monthly)", ErrInvalidFrequency, s)
}

// periodKey groups a date into the bucket a recurring purchase is made
// once per. Daily buckets are the date itself. Weekly buckets pair the
// calendar year with the ISO week number, so the days of ISO week 1 that
// fall in late December form their own bucket.
func (f Frequency) periodKey(date string) string {
	switch f {
	case Weekly:
		t, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return date
		}
		_, w := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", t.Year(), w)
	case Monthly:
		return monthKey(date)
	}
	return date
}

func monthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// purchaseDays marks the indices of dates that receive a recurring
// purchase: day 1 and then the first date of every later period. Day 0
// belongs to the initial amount and never opens a period.
func (f Frequency) purchaseDays(dates []string) map[int]bool {
	days := make(map[int]bool)
	if f == Once || f == "" {
		return days
	}
	var current string
	for i := 1; i < len(dates); i++ {
		if key := f.periodKey(dates[i]); key != current {
			days[i] = true
			current = key
		}
	}
	return days
}
