// Package report renders backtest results as plain text.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"emaswitch-go/internal/backtest"
	"emaswitch-go/internal/execution"
	"emaswitch-go/internal/paper"
)

const rule = "----------------------------"

func money(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) }

func fixed(v float64, places int32) string { return decimal.NewFromFloat(v).StringFixed(places) }

// WriteSummary prints the run header and its account summary. The ratio line is omitted when there were no losses.
func WriteSummary(w io.Writer, run *backtest.Run) error {
	s := run.Result.Summary
	ew := &errWriter{w: w}
	ew.printf("%s\n", rule)
	ew.printf("Run:            %s\n", run.ID)
	ew.printf("Strategy:       %s on %s (%d bars)\n", run.Strategy, run.Symbol, run.Bars)
	writeSummaryLines(ew, s)
	ew.printf("%s\n", rule)
	return ew.err
}

func writeSummaryLines(ew *errWriter, s paper.Summary) {
	ew.printf("Starting Cash:  %s\n", money(s.StartingCash))
	ew.printf("Final Cash:     %s\n", money(s.EndingCash))
	ew.printf("Net PnL:        %s\n", money(s.NetPnL))
	ew.printf("Realized PnL:   %s\n", money(s.RealizedPnL))
	ew.printf("Fees:           %s\n", money(s.Fees))
	ew.printf("Max Drawdown:   %s\n", money(s.MaxDrawdown))
	ew.printf("Total Trades:   %d\n", s.Trades)
	ew.printf("Fills:          %d (skipped %d)\n", s.Fills, s.Skipped)
	ew.printf("Winning Trades: %d\n", s.Wins)
	ew.printf("Losing Trades:  %d\n", s.Losses)
	if s.WinLossRatio != nil {
		ew.printf("Win/Loss Ratio: %s\n", money(*s.WinLossRatio))
	}
}

// WriteFills prints one aligned row per fill.
func WriteFills(w io.Writer, fills []execution.Fill) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	ew := &errWriter{w: tw}
	ew.printf("SEQ\tTIME\tKIND\tSIDE\tQTY\tPRICE\tFEE\tPNL\tCASH\n")
	for _, f := range fills {
		pnl := "-"
		if f.Closing() {
			pnl = money(f.RealizedPnL)
		}
		ew.printf("%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.Seq, f.Ts.UTC().Format(time.RFC3339), f.Kind, f.Side,
			fixed(f.Qty, 4), money(f.Price), money(f.Fee), pnl, money(f.CashAfter))
	}
	if ew.err != nil {
		return ew.err
	}
	return tw.Flush()
}

// WriteDaily prints the aggregate of a per-day backtest.
func WriteDaily(w io.Writer, d *backtest.DailySummary) error {
	ew := &errWriter{w: w}
	ew.printf("=== Backtest Summary (aggregated) ===\n")
	ew.printf("Days processed: %d\n", d.Processed())
	ew.printf("Winning days: %d\n", d.WinningDays)
	ew.printf("Losing days: %d\n", d.LosingDays)
	ew.printf("Total PnL: %s\n", fixed(d.TotalPnL, 4))
	ew.printf("Total trades: %d\n", d.TotalTrades)
	return ew.err
}

// WriteDays prints one line per processed day.
func WriteDays(w io.Writer, d *backtest.DailySummary) error {
	ew := &errWriter{w: w}
	for _, day := range d.Days {
		ew.printf("Date: %s, PnL: %s, Trades: %d\n", day.Day.Format(time.DateOnly), money(day.NetPnL), day.Trades)
	}
	return ew.err
}

// errWriter keeps the first write error so callers check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
