package integration

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"emaswitch-go/internal/backtest"
	"emaswitch-go/internal/config"
	"emaswitch-go/internal/execution"
	"emaswitch-go/internal/marketdata"
	"emaswitch-go/internal/paper"
	"emaswitch-go/internal/report"
)

// klineCSV renders closes as hourly Binance rows starting at day.
func klineCSV(day time.Time, closes []float64) string {
	var b strings.Builder
	for i, c := range closes {
		ts := day.Add(time.Duration(i) * time.Hour).UnixMilli()
		fmt.Fprintf(&b, "%d,%g,%g,%g,%g,100,%d,0,0,0,0,0\n", ts, c, c+1, c-1, c, ts+3599999)
	}
	return b.String()
}

func TestBacktestFlowFromArchives(t *testing.T) {
	day1 := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	archives := map[string]string{
		"BTCUSDT-1h-2025-11-01.zip": klineCSV(day1, []float64{100, 102, 104, 106, 108, 110, 112, 114, 116, 118, 120, 122}),
		"BTCUSDT-1h-2025-11-02.zip": klineCSV(day2, []float64{120, 116, 112, 108, 104, 100, 96, 92, 88, 84, 80, 76}),
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := archives[filepath.Base(r.URL.Path)]
		if !ok {
			http.NotFound(w, r)
			return
		}
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		f, _ := zw.Create(strings.TrimSuffix(filepath.Base(r.URL.Path), ".zip") + ".csv")
		_, _ = f.Write([]byte(body))
		_ = zw.Close()
		_, _ = w.Write(buf.Bytes())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Strategy.ShortPeriod = 3
	cfg.Strategy.LongPeriod = 6
	cfg.Paper.StartingCash = 10_000
	cfg.Paper.Sizing = execution.SizingFullCash
	cfg.Paper.CashBuffer = 0.1
	cfg.Data.BaseURL = server.URL
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config invalid: %v", err)
	}

	params, acct, err := backtest.Settings(cfg)
	if err != nil {
		t.Fatalf("Settings error: %v", err)
	}
	fillsPath := filepath.Join(t.TempDir(), "fills.jsonl")
	recorder, err := paper.NewJSONLRecorder(fillsPath, zerolog.Nop())
	if err != nil {
		t.Fatalf("recorder error: %v", err)
	}
	runner, err := backtest.NewRunner(params, acct, zerolog.Nop(), backtest.WithRecorder(recorder))
	if err != nil {
		t.Fatalf("NewRunner error: %v", err)
	}

	client := marketdata.NewArchiveClient(zerolog.Nop(), marketdata.WithBaseURL(cfg.Data.BaseURL))
	fetcher := marketdata.NewFetcher(client, cfg.Data.Symbol, "1h", cfg.Data.Concurrency, zerolog.Nop())
	source := marketdata.ArchiveSource{Fetcher: fetcher, End: day2.AddDate(0, 0, 1), Days: 3}

	bars, err := source.Bars(context.Background())
	if err != nil {
		t.Fatalf("load bars: %v", err)
	}
	if len(bars) != 24 {
		t.Fatalf("expected 24 merged bars, got %d", len(bars))
	}

	run, err := runner.Run(cfg.Data.Symbol, bars)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("close recorder: %v", err)
	}

	sum := run.Result.Summary
	if sum.OpenQty != 0 {
		t.Fatalf("expected flat after square-off, got %.4f", sum.OpenQty)
	}
	if sum.Wins != 2 || sum.Losses != 0 {
		t.Fatalf("expected the long and the short to both win, got wins=%d losses=%d", sum.Wins, sum.Losses)
	}
	if diff := sum.RealizedPnL - sum.Fees - sum.NetPnL; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("cash does not reconcile: realized %.6f fees %.6f net %.6f", sum.RealizedPnL, sum.Fees, sum.NetPnL)
	}
	for _, f := range run.Result.Fills {
		if f.Qty != float64(int(f.Qty)) || f.Qty <= 0 {
			t.Fatalf("full cash sizing must use whole units, got %.4f", f.Qty)
		}
		if f.Kind == execution.KindOpen && f.Side == "BUY" && f.CashAfter < 0 {
			t.Fatalf("long open overdrew cash: %+v", f)
		}
	}

	file, err := os.Open(fillsPath)
	if err != nil {
		t.Fatalf("open fills: %v", err)
	}
	defer file.Close()
	lines := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var f execution.Fill
		if err := json.Unmarshal(scanner.Bytes(), &f); err != nil {
			t.Fatalf("decode fill: %v", err)
		}
		lines++
		if f.Seq != lines {
			t.Fatalf("expected seq %d, got %d", lines, f.Seq)
		}
	}
	if lines != len(run.Result.Fills) {
		t.Fatalf("recorded %d fills, run has %d", lines, len(run.Result.Fills))
	}

	var out bytes.Buffer
	if err := report.WriteSummary(&out, run); err != nil {
		t.Fatalf("WriteSummary error: %v", err)
	}
	if !strings.Contains(out.String(), "Winning Trades: 2") || strings.Contains(out.String(), "Win/Loss Ratio") {
		t.Fatalf("unexpected report:\n%s", out.String())
	}
}
