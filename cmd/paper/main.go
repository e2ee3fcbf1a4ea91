package main

import (
	"context"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"

	"emaswitch-go/internal/backtest"
	"emaswitch-go/internal/config"
	"emaswitch-go/internal/marketdata"
	"emaswitch-go/internal/metrics"
	"emaswitch-go/internal/paper"
	"emaswitch-go/internal/report"
	sig "emaswitch-go/internal/signal"
	"emaswitch-go/internal/util"
)

func main() {
	configPath := flag.String("config", "configs/backtest.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fatalLog := util.NewLogger("info")
		fatalLog.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLoggerTo(os.Stderr, cfg.App.LogLevel, cfg.App.LogFormat)

	if cfg.App.MetricsAddr != "" {
		_ = metrics.Serve(cfg.App.MetricsAddr)
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	params, acct, err := backtest.Settings(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("account settings")
	}
	var opts []backtest.RunnerOption
	var recorder *paper.JSONLRecorder
	if cfg.Paper.FillsPath != "" {
		recorder, err = paper.NewJSONLRecorder(cfg.Paper.FillsPath, log)
		if err != nil {
			log.Fatal().Err(err).Msg("open fills recorder")
		}
		defer recorder.Close()
		opts = append(opts, backtest.WithRecorder(recorder))
	}
	runner, err := backtest.NewRunner(params, acct, log, opts...)
	if err != nil {
		if recorder != nil {
			_ = recorder.Close()
		}
		log.Fatal().Err(err).Msg("build runner")
	}

	symbols := cfg.Feed.Symbols
	if len(symbols) == 0 {
		symbols = []string{cfg.Data.Symbol}
	}
	feed := marketdata.NewFeed(cfg.Feed.Provider, symbols, log,
		marketdata.WithInterval(cfg.Feed.Interval),
		marketdata.WithStubTick(cfg.Feed.StubTick),
		marketdata.WithStreamURL(cfg.Feed.WSURL),
		marketdata.WithSeed(cfg.Data.Seed),
	)
	bars := make(chan sig.Bar, 1024)

	go func() {
		if err := feed.Run(ctx, bars); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("feed stopped")
			cancel()
		}
	}()

	sessions := make(map[string]*backtest.Session)
	log.Info().Strs("symbols", feed.Symbols()).Str("provider", cfg.Feed.Provider).Msg("paper engine started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			for _, session := range sessions {
				if err := report.WriteSummary(os.Stdout, session.Finish()); err != nil {
					log.Error().Err(err).Msg("write summary")
				}
			}
			return
		case bar := <-bars:
			session, ok := sessions[bar.Symbol]
			if !ok {
				session, err = runner.NewSession(bar.Symbol)
				if err != nil {
					log.Error().Err(err).Str("sym", bar.Symbol).Msg("start session")
					continue
				}
				sessions[bar.Symbol] = session
			}
			if err := session.Step(bar); err != nil {
				log.Warn().Err(err).Str("sym", bar.Symbol).Msg("bar rejected")
			}
		}
	}
}
