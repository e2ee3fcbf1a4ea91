package marketdata

import (
	"context"
	"math"
	"math/rand"
	"time"

	"emaswitch-go/internal/signal"
)

// Simulator generates a seeded random-walk bar series: closes move up to 2% per bar,
// highs and lows extend up to 1% beyond the body, volume is 5000..20000.
type Simulator struct {
	Symbol     string
	Count      int
	StartPrice float64
	Start      time.Time
	Step       time.Duration
	Seed       int64
}

// Bars implements Source.
func (s Simulator) Bars(_ context.Context) ([]signal.Bar, error) {
	return s.Generate(), nil
}

// Generate returns Count bars. The same seed always yields the same series.
func (s Simulator) Generate() []signal.Bar {
	step := s.Step
	if step <= 0 {
		step = time.Hour
	}
	start := s.Start
	if start.IsZero() {
		start = time.Date(2025, 10, 24, 0, 0, 0, 0, time.UTC)
	}
	walk := newWalk(s.Seed, s.StartPrice)
	bars := make([]signal.Bar, 0, max(s.Count, 0))
	for i := 0; i < s.Count; i++ {
		bar := walk.next(start.Add(time.Duration(i) * step))
		bar.Symbol = s.Symbol
		bars = append(bars, bar)
	}
	return bars
}

type walk struct {
	rng   *rand.Rand
	price float64
}

func newWalk(seed int64, start float64) *walk {
	if start <= 0 {
		start = 100
	}
	return &walk{rng: rand.New(rand.NewSource(seed)), price: start}
}

func (w *walk) next(ts time.Time) signal.Bar {
	open := w.price
	closePx := open * (1 + (w.rng.Float64()*0.04 - 0.02))
	high := math.Max(open, closePx) * (1 + w.rng.Float64()*0.01)
	low := math.Min(open, closePx) * (1 - w.rng.Float64()*0.01)
	volume := float64(5000 + w.rng.Intn(15000))
	w.price = closePx
	return signal.Bar{Ts: ts, Open: open, High: high, Low: low, Close: closePx, Volume: volume}
}
