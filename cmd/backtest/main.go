package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"emaswitch-go/internal/backtest"
	"emaswitch-go/internal/config"
	"emaswitch-go/internal/marketdata"
	"emaswitch-go/internal/metrics"
	"emaswitch-go/internal/paper"
	"emaswitch-go/internal/report"
	"emaswitch-go/internal/signal"
	"emaswitch-go/internal/util"
)

func main() {
	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	cancel()
	if err != nil {
		errLog := util.NewLoggerTo(os.Stderr, "info", "json")
		errLog.Error().Err(err).Msg("backtest failed")
		os.Exit(1)
	}
}

// run executes one backtest. The fills recorder is closed on every return path so buffered fills
// reach disk even when a later step fails.
func run(ctx context.Context, args []string, stdout io.Writer) (err error) {
	fs := flag.NewFlagSet("backtest", flag.ContinueOnError)
	configPath := fs.String("config", "configs/backtest.yaml", "path to YAML config")
	showFills := fs.Bool("fills", false, "print every fill after the summary")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", *configPath, err)
	}
	log := util.NewLoggerTo(os.Stderr, cfg.App.LogLevel, cfg.App.LogFormat)

	if cfg.App.MetricsAddr != "" {
		_ = metrics.Serve(cfg.App.MetricsAddr)
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	params, acct, err := backtest.Settings(cfg)
	if err != nil {
		return fmt.Errorf("account settings: %w", err)
	}

	var opts []backtest.RunnerOption
	if cfg.Paper.FillsPath != "" {
		recorder, err := paper.NewJSONLRecorder(cfg.Paper.FillsPath, log)
		if err != nil {
			return fmt.Errorf("open fills recorder %s: %w", cfg.Paper.FillsPath, err)
		}
		defer func() {
			if cerr := recorder.Close(); cerr != nil {
				log.Error().Err(cerr).Str("path", cfg.Paper.FillsPath).Msg("close fills recorder")
				if err == nil {
					err = cerr
				}
			}
		}()
		opts = append(opts, backtest.WithRecorder(recorder))
	}
	runner, err := backtest.NewRunner(params, acct, log, opts...)
	if err != nil {
		return fmt.Errorf("build runner: %w", err)
	}

	if cfg.Data.Mode == "daily" {
		return runDaily(ctx, cfg, runner, stdout, log)
	}

	bars, err := loadBars(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("load bars from %s: %w", cfg.Data.Source, err)
	}
	log.Info().Str("source", cfg.Data.Source).Int("bars", len(bars)).Msg("bars loaded")

	result, err := runner.Run(cfg.Data.Symbol, bars)
	if err != nil {
		return err
	}
	if err := report.WriteSummary(stdout, result); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if *showFills {
		if err := report.WriteFills(stdout, result.Result.Fills); err != nil {
			return fmt.Errorf("write fills: %w", err)
		}
	}
	return nil
}

func runDaily(ctx context.Context, cfg *config.Config, runner *backtest.Runner, stdout io.Writer, log zerolog.Logger) error {
	if cfg.Data.Source != "binance" {
		return fmt.Errorf("daily mode needs the binance archive source, got %q", cfg.Data.Source)
	}
	fetcher := marketdata.NewFetcher(archiveClient(cfg, log), cfg.Data.Symbol, cfg.Data.Interval, cfg.Data.Concurrency, log)
	daily := backtest.NewDailyRunner(fetcher, runner, cfg.Data.Symbol, log)

	summary, err := daily.Run(ctx, marketdata.Periods(cfg.Data.Archive, endDay(cfg), cfg.Data.Days))
	if err != nil {
		return err
	}
	if err := report.WriteDays(stdout, summary); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(stdout); err != nil {
		return err
	}
	return report.WriteDaily(stdout, summary)
}

func loadBars(ctx context.Context, cfg *config.Config, log zerolog.Logger) ([]signal.Bar, error) {
	var src marketdata.Source
	switch cfg.Data.Source {
	case "csv":
		src = marketdata.CSVLoader{Path: cfg.Data.CSVPath, Symbol: strings.ToUpper(cfg.Data.Symbol)}
	case "simulate":
		src = marketdata.Simulator{
			Symbol:     strings.ToUpper(cfg.Data.Symbol),
			Count:      cfg.Data.Bars,
			StartPrice: cfg.Data.StartPrice,
			Seed:       cfg.Data.Seed,
		}
	case "clickhouse":
		conn, err := marketdata.OpenClickHouse(ctx, cfg.Data.ClickHouse.DSN, cfg.Data.ClickHouse.DialTimeout)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		end := endDay(cfg).AddDate(0, 0, 1)
		ch, err := marketdata.NewClickHouseSource(conn, cfg.Data.ClickHouse.Database, cfg.Data.ClickHouse.Table,
			cfg.Data.Symbol, cfg.Data.Interval, end.AddDate(0, 0, -cfg.Data.Days), end)
		if err != nil {
			return nil, err
		}
		src = ch
	default:
		fetcher := marketdata.NewFetcher(archiveClient(cfg, log), cfg.Data.Symbol, cfg.Data.Interval, cfg.Data.Concurrency, log)
		src = marketdata.ArchiveSource{Fetcher: fetcher, Period: cfg.Data.Archive, End: endDay(cfg), Days: cfg.Data.Days}
	}
	bars, err := src.Bars(ctx)
	if err != nil {
		return nil, err
	}
	return marketdata.Merge(bars), nil
}

func archiveClient(cfg *config.Config, log zerolog.Logger) *marketdata.ArchiveClient {
	opts := []marketdata.ArchiveOption{
		marketdata.WithBaseURL(cfg.Data.BaseURL),
		marketdata.WithPeriod(cfg.Data.Archive),
	}
	if cfg.Data.KeepFiles {
		opts = append(opts, marketdata.WithKeepFiles(cfg.Data.DataDir))
	}
	return marketdata.NewArchiveClient(log, opts...)
}

// endDay is the configured last day, or yesterday so the archive is already published.
func endDay(cfg *config.Config) time.Time {
	if cfg.Data.End != "" {
		if day, err := time.Parse(time.DateOnly, cfg.Data.End); err == nil {
			return day
		}
	}
	return time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour)
}
