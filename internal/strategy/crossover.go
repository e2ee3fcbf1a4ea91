package strategy

import (
	"errors"
	"fmt"

	"emaswitch-go/internal/signal"
)

// ErrInvalidPeriod is returned when an EMA period is not a positive integer.
var ErrInvalidPeriod = errors.New("ema period must be positive")

// EMACrossover flips between long and short whenever the fast EMA crosses the slow one.
// It tracks only the prevailing trend; position sizing belongs to the account.
type EMACrossover struct {
	shortPeriod int
	longPeriod  int
	mode        EMAMode
	short       emaTracker
	long        emaTracker
	trend       signal.Side // empty until the first decision
}

// NewEMACrossover builds the crossover state machine. short >= long is accepted; the "short" EMA
// simply reacts slower.
func NewEMACrossover(short, long int, mode EMAMode) (*EMACrossover, error) {
	if short <= 0 || long <= 0 {
		return nil, fmt.Errorf("%w: short=%d long=%d", ErrInvalidPeriod, short, long)
	}
	switch mode {
	case "":
		mode = EMARunning
	case EMARunning, EMAWindow:
	default:
		return nil, fmt.Errorf("%w: ema mode %q", ErrUnknownMode, mode)
	}
	return &EMACrossover{
		shortPeriod: short,
		longPeriod:  long,
		mode:        mode,
		short:       newTracker(mode, short),
		long:        newTracker(mode, long),
	}, nil
}

// Name returns the identifier for logging.
func (s *EMACrossover) Name() string {
	return fmt.Sprintf("EMACrossover(%d,%d,%s)", s.shortPeriod, s.longPeriod, s.mode)
}

// Observe feeds one bar and returns the intents triggered by a trend flip, if any.
func (s *EMACrossover) Observe(bar signal.Bar) []signal.Intent {
	s.short.Update(bar.Close)
	s.long.Update(bar.Close)

	if !s.long.Ready() {
		return nil
	}

	shortEMA, longEMA := s.short.Value(), s.long.Value()
	next := s.trend
	switch {
	case shortEMA > longEMA:
		next = signal.Buy
	case shortEMA < longEMA:
		next = signal.Sell
	}
	if next == s.trend {
		return nil
	}

	var intents []signal.Intent
	if s.trend != "" {
		intents = append(intents, signal.Intent{Side: next, Reason: signal.Close, Price: bar.Close, Ts: bar.Ts})
	}
	intents = append(intents, signal.Intent{Side: next, Reason: signal.Open, Price: bar.Close, Quantity: 1, Ts: bar.Ts})
	s.trend = next
	return intents
}

// Trend reports the current trend and whether one has been established.
func (s *EMACrossover) Trend() (signal.Side, bool) {
	return s.trend, s.trend != ""
}

// Values returns the current short and long EMA and whether the long one has enough history.
func (s *EMACrossover) Values() (short, long float64, ready bool) {
	return s.short.Value(), s.long.Value(), s.long.Ready()
}

// Observed returns how many closes have been fed so far.
func (s *EMACrossover) Observed() int {
	return s.long.Count()
}

var _ Strategy = (*EMACrossover)(nil)
