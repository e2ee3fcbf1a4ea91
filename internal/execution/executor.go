package execution

import (
	"github.com/rs/zerolog"

	"emaswitch-go/internal/metrics"
)

// Executor reports fills to logs and metrics. It sits outside the account so the accounting core stays silent.
type Executor struct{ log zerolog.Logger }

// NewExecutor wraps a zerolog logger for fill reporting.
func NewExecutor(log zerolog.Logger) *Executor { return &Executor{log: log} }

// Record logs one fill and bumps the fill counters.
func (executor *Executor) Record(fill Fill) {
	metrics.FillsTotal.WithLabelValues(fill.Symbol, string(fill.Side), string(fill.Kind)).Inc()
	evt := executor.log.Info().
		Int("seq", fill.Seq).
		Str("sym", fill.Symbol).
		Str("side", string(fill.Side)).
		Str("kind", string(fill.Kind)).
		Float64("qty", fill.Qty).
		Float64("px", fill.Price).
		Float64("fee", fill.Fee).
		Time("ts", fill.Ts)
	if fill.Closing() {
		evt = evt.Float64("pnl", fill.RealizedPnL)
	}
	evt.Msg("fill")
}
