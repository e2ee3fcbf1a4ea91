package backtest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"emaswitch-go/internal/marketdata"
)

// DayResult is the outcome of one independent single-day run.
type DayResult struct {
	Day    time.Time `json:"day"`
	RunID  uuid.UUID `json:"run_id"`
	NetPnL float64   `json:"net_pnl"`
	Trades int       `json:"trades"`
	Fills  int       `json:"fills"`
}

// DailySummary aggregates per-day runs. Days with zero P&L count as neither winning nor losing.
type DailySummary struct {
	Days        []DayResult `json:"days"`
	WinningDays int         `json:"winning_days"`
	LosingDays  int         `json:"losing_days"`
	TotalPnL    float64     `json:"total_pnl"`
	TotalTrades int         `json:"total_trades"`
}

// Processed returns the number of days that produced a run.
func (d DailySummary) Processed() int { return len(d.Days) }

// DailyRunner backtests each day separately with a fresh strategy and account and an end-of-day square-off.
type DailyRunner struct {
	fetcher *marketdata.Fetcher
	runner  *Runner
	symbol  string
	log     zerolog.Logger
}

// NewDailyRunner pairs a fetcher with a runner.
func NewDailyRunner(fetcher *marketdata.Fetcher, runner *Runner, symbol string, log zerolog.Logger) *DailyRunner {
	return &DailyRunner{fetcher: fetcher, runner: runner, symbol: symbol, log: log}
}

// Run fetches days concurrently, then runs them in day order.
func (d *DailyRunner) Run(ctx context.Context, days []time.Time) (*DailySummary, error) {
	batches, err := d.fetcher.FetchDays(ctx, days)
	if err != nil {
		return nil, err
	}
	return d.RunBatches(batches)
}

// RunBatches runs already loaded days. Empty days are skipped.
func (d *DailyRunner) RunBatches(batches []marketdata.DayBars) (*DailySummary, error) {
	results := make([]DayResult, 0, len(batches))
	for _, batch := range batches {
		if len(batch.Bars) == 0 {
			continue
		}
		run, err := d.runner.Run(d.symbol, marketdata.Merge(batch.Bars))
		if err != nil {
			return nil, err
		}
		sum := run.Result.Summary
		d.log.Info().
			Str("day", batch.Day.Format(time.DateOnly)).
			Float64("pnl", sum.NetPnL).
			Int("trades", sum.Trades).
			Msg("day complete")
		results = append(results, DayResult{
			Day:    batch.Day,
			RunID:  run.ID,
			NetPnL: sum.NetPnL,
			Trades: sum.Trades,
			Fills:  sum.Fills,
		})
	}
	summary := Aggregate(results)
	return &summary, nil
}

// Aggregate totals day results.
func Aggregate(days []DayResult) DailySummary {
	s := DailySummary{Days: days}
	for _, d := range days {
		s.TotalPnL += d.NetPnL
		s.TotalTrades += d.Trades
		switch {
		case d.NetPnL > 0:
			s.WinningDays++
		case d.NetPnL < 0:
			s.LosingDays++
		}
	}
	return s
}
