package marketdata

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"emaswitch-go/internal/signal"
)

const defaultConcurrency = 5

// DayFetcher loads the bars of one archive period.
type DayFetcher interface {
	Fetch(ctx context.Context, symbol, interval string, day time.Time) ([]signal.Bar, error)
}

// DayBars groups the bars loaded for one day.
type DayBars struct {
	Day  time.Time
	Bars []signal.Bar
}

// Fetcher loads many days in parallel with a bounded number of in-flight downloads.
type Fetcher struct {
	src         DayFetcher
	symbol      string
	interval    string
	concurrency int
	log         zerolog.Logger
}

// NewFetcher builds a fetcher. concurrency <= 0 means 5.
func NewFetcher(src DayFetcher, symbol, interval string, concurrency int, log zerolog.Logger) *Fetcher {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Fetcher{
		src:         src,
		symbol:      strings.ToUpper(symbol),
		interval:    interval,
		concurrency: concurrency,
		log:         log,
	}
}

// LastDays returns the n calendar days ending at end (inclusive), oldest first, truncated to UTC midnight.
func LastDays(end time.Time, n int) []time.Time {
	end = end.UTC().Truncate(24 * time.Hour)
	days := make([]time.Time, 0, max(n, 0))
	for i := n - 1; i >= 0; i-- {
		days = append(days, end.AddDate(0, 0, -i))
	}
	return days
}

// LastMonths returns the first day of the n months ending with end's month, oldest first.
func LastMonths(end time.Time, n int) []time.Time {
	end = end.UTC()
	first := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	months := make([]time.Time, 0, max(n, 0))
	for i := n - 1; i >= 0; i-- {
		months = append(months, first.AddDate(0, -i, 0))
	}
	return months
}

// Periods returns LastMonths for monthly archives and LastDays otherwise.
func Periods(period string, end time.Time, n int) []time.Time {
	if period == PeriodMonthly {
		return LastMonths(end, n)
	}
	return LastDays(end, n)
}

// FetchDays loads each day and returns the successful ones in day order. Days that fail are
// logged and skipped; only cancellation of ctx aborts the whole fetch.
func (f *Fetcher) FetchDays(ctx context.Context, days []time.Time) ([]DayBars, error) {
	results := make([][]signal.Bar, len(days))
	ok := make([]bool, len(days))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, day := range days {
		g.Go(func() error {
			bars, err := f.src.Fetch(gctx, f.symbol, f.interval, day)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				evt := f.log.Warn()
				if errors.Is(err, ErrNotFound) {
					evt = f.log.Info()
				}
				evt.Err(err).Str("day", day.Format(time.DateOnly)).Msg("skipping day")
				return nil
			}
			results[i] = bars
			ok[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]DayBars, 0, len(days))
	for i, day := range days {
		if ok[i] {
			out = append(out, DayBars{Day: day, Bars: results[i]})
		}
	}
	f.log.Info().Str("sym", f.symbol).Int("requested", len(days)).Int("loaded", len(out)).Msg("fetch complete")
	return out, nil
}

// ArchiveSource adapts a Fetcher to Source by merging a trailing window of archive periods.
type ArchiveSource struct {
	Fetcher *Fetcher
	Period  string
	End     time.Time
	Days    int
}

// Bars implements Source.
func (s ArchiveSource) Bars(ctx context.Context) ([]signal.Bar, error) {
	batches, err := s.Fetcher.FetchDays(ctx, Periods(s.Period, s.End, s.Days))
	if err != nil {
		return nil, err
	}
	parts := make([][]signal.Bar, len(batches))
	for i, b := range batches {
		parts[i] = b.Bars
	}
	return Merge(parts...), nil
}
