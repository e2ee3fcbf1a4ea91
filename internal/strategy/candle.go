package strategy

import "emaswitch-go/internal/signal"

const defaultMinVolume = 1000

// CandleBias opens in one direction on every bar whose body points that way with enough volume.
type CandleBias struct {
	side      signal.Side
	minVolume float64
}

// NewBullishBar buys on green bars (close > open) with volume above minVolume.
func NewBullishBar(minVolume float64) *CandleBias {
	return newCandleBias(signal.Buy, minVolume)
}

// NewBearishBar sells on red bars (close < open) with volume above minVolume.
func NewBearishBar(minVolume float64) *CandleBias {
	return newCandleBias(signal.Sell, minVolume)
}

func newCandleBias(side signal.Side, minVolume float64) *CandleBias {
	if minVolume < 0 {
		minVolume = defaultMinVolume
	}
	return &CandleBias{side: side, minVolume: minVolume}
}

// Name returns the identifier for logging.
func (c *CandleBias) Name() string {
	if c.side == signal.Buy {
		return "BullishBar"
	}
	return "BearishBar"
}

// Observe emits one open intent when the bar body and volume agree with the configured side.
func (c *CandleBias) Observe(bar signal.Bar) []signal.Intent {
	if bar.Volume <= c.minVolume {
		return nil
	}
	body := bar.Close - bar.Open
	if body == 0 || (body > 0) != (c.side == signal.Buy) {
		return nil
	}
	return []signal.Intent{{Side: c.side, Reason: signal.Open, Price: bar.Close, Quantity: 1, Ts: bar.Ts}}
}

var _ Strategy = (*CandleBias)(nil)
