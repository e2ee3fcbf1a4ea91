// Package backtest drives bar sequences through a strategy and a paper account.
package backtest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"emaswitch-go/internal/execution"
	"emaswitch-go/internal/metrics"
	"emaswitch-go/internal/paper"
	"emaswitch-go/internal/signal"
	"emaswitch-go/internal/strategy"
)

// ErrUnordered is returned when a bar is older than the one before it.
var ErrUnordered = errors.New("bars out of order")

// Run is the outcome of one backtest or paper session.
type Run struct {
	ID       uuid.UUID    `json:"id"`
	Strategy string       `json:"strategy"`
	Symbol   string       `json:"symbol"`
	Bars     int          `json:"bars"`
	Started  time.Time    `json:"started"`
	Result   paper.Result `json:"result"`
}

// Runner builds a fresh strategy and account for every run.
type Runner struct {
	params   strategy.Params
	account  paper.Config
	exec     *execution.Executor
	recorder paper.FillRecorder
	log      zerolog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRecorder sends every fill to rec in addition to the log.
func WithRecorder(rec paper.FillRecorder) RunnerOption {
	return func(r *Runner) { r.recorder = rec }
}

// NewRunner validates params and account once so misconfiguration surfaces before any data is loaded.
func NewRunner(params strategy.Params, account paper.Config, log zerolog.Logger, opts ...RunnerOption) (*Runner, error) {
	if _, err := strategy.Build(params); err != nil {
		return nil, err
	}
	if _, err := paper.NewAccount(account); err != nil {
		return nil, err
	}
	r := &Runner{
		params:  params,
		account: account,
		exec:    execution.NewExecutor(log),
		log:     log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run replays bars for symbol, squares off on the last bar and returns the summary.
func (r *Runner) Run(symbol string, bars []signal.Bar) (*Run, error) {
	session, err := r.NewSession(symbol)
	if err != nil {
		return nil, err
	}
	for _, bar := range bars {
		if err := session.Step(bar); err != nil {
			return nil, err
		}
	}
	return session.Finish(), nil
}

// Session processes bars one at a time; the live paper loop and Run both use it.
type Session struct {
	run    *Run
	strat  strategy.Strategy
	acct   *paper.Account
	runner *Runner
	last   signal.Bar
	log    zerolog.Logger
	done   bool
}

// NewSession starts an independent session for symbol.
func (r *Runner) NewSession(symbol string) (*Session, error) {
	symbol = strings.ToUpper(symbol)
	strat, err := strategy.Build(r.params)
	if err != nil {
		return nil, err
	}
	cfg := r.account
	cfg.Symbol = symbol
	acct, err := paper.NewAccount(cfg)
	if err != nil {
		return nil, err
	}
	run := &Run{ID: uuid.New(), Strategy: strat.Name(), Symbol: symbol, Started: time.Now().UTC()}
	return &Session{
		run:    run,
		strat:  strat,
		acct:   acct,
		runner: r,
		log:    r.log.With().Str("run_id", run.ID.String()).Str("sym", symbol).Logger(),
	}, nil
}

// ID returns the session's run id.
func (s *Session) ID() uuid.UUID { return s.run.ID }

// Step feeds one bar: strategy intents are applied in order, then the account is marked at the close.
func (s *Session) Step(bar signal.Bar) error {
	if s.done {
		return fmt.Errorf("session %s already finished", s.run.ID)
	}
	if s.run.Bars > 0 && bar.Ts.Before(s.last.Ts) {
		return fmt.Errorf("%w: %s after %s", ErrUnordered, bar.Ts.Format(time.RFC3339), s.last.Ts.Format(time.RFC3339))
	}
	if bar.Symbol == "" {
		bar.Symbol = s.run.Symbol
	}
	metrics.BarsTotal.WithLabelValues(s.run.Symbol).Inc()

	for _, intent := range s.strat.Observe(bar) {
		s.log.Debug().Str("side", string(intent.Side)).Str("reason", string(intent.Reason)).Float64("px", intent.Price).Msg("intent")
		for _, fill := range s.acct.Apply(intent, bar) {
			s.record(fill)
		}
	}
	s.acct.Mark(bar)
	metrics.Equity.WithLabelValues(s.run.Symbol).Set(s.acct.Equity(bar.Close))

	s.last = bar
	s.run.Bars++
	return nil
}

// Finish squares off any open lot at the last bar's close and returns the run. Later calls return the same run.
func (s *Session) Finish() *Run {
	if s.done {
		return s.run
	}
	s.done = true
	if s.run.Bars > 0 {
		if fill, ok := s.acct.SquareOff(s.last); ok {
			s.record(fill)
		}
	}
	s.run.Result = s.acct.Result()

	sum := s.run.Result.Summary
	s.log.Info().
		Str("strategy", s.run.Strategy).
		Int("bars", s.run.Bars).
		Int("trades", sum.Trades).
		Int("fills", sum.Fills).
		Float64("net_pnl", sum.NetPnL).
		Msg("run complete")
	return s.run
}

func (s *Session) record(fill execution.Fill) {
	s.runner.exec.Record(fill)
	if s.runner.recorder != nil {
		s.runner.recorder.Record(fill)
	}
	metrics.RealizedPnL.WithLabelValues(s.run.Symbol).Add(fill.RealizedPnL)
}
