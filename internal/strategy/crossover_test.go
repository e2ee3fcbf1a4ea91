package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emaswitch-go/internal/signal"
)

func makeBars(closes []float64) []signal.Bar {
	start := time.Date(2025, 10, 24, 0, 0, 0, 0, time.UTC)
	bars := make([]signal.Bar, len(closes))
	for i, c := range closes {
		bars[i] = signal.Bar{Symbol: "BTCUSDT", Ts: start.Add(time.Duration(i) * time.Hour), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return bars
}

func ramp(from, to float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + (to-from)*float64(i)/float64(n-1)
	}
	return out
}

func TestNewEMACrossoverRejectsBadPeriods(t *testing.T) {
	for _, tc := range []struct{ short, long int }{{0, 5}, {3, 0}, {-1, 4}} {
		_, err := NewEMACrossover(tc.short, tc.long, EMARunning)
		require.ErrorIs(t, err, ErrInvalidPeriod)
	}
	_, err := NewEMACrossover(3, 5, EMAMode("median"))
	require.ErrorIs(t, err, ErrUnknownMode)
}

func TestEMACrossoverInsufficientHistory(t *testing.T) {
	for _, mode := range []EMAMode{EMARunning, EMAWindow} {
		s, err := NewEMACrossover(3, 8, mode)
		require.NoError(t, err)
		bars := makeBars(ramp(100, 50, 7))
		for i, bar := range bars {
			assert.Empty(t, s.Observe(bar), "bar %d must not emit", i)
			assert.Equal(t, i+1, s.Observed())
		}
		_, established := s.Trend()
		assert.False(t, established)
	}
}

func TestEMACrossoverConstantPricesNeverTrade(t *testing.T) {
	for _, mode := range []EMAMode{EMARunning, EMAWindow} {
		s, err := NewEMACrossover(3, 5, mode)
		require.NoError(t, err)
		closes := make([]float64, 30)
		for i := range closes {
			closes[i] = 100
		}
		for _, bar := range makeBars(closes) {
			require.Empty(t, s.Observe(bar))
		}
		short, long, ready := s.Values()
		assert.True(t, ready)
		assert.Equal(t, 100.0, short)
		assert.Equal(t, 100.0, long)
	}
}

func TestEMACrossoverRisingSeriesBuysOnce(t *testing.T) {
	for _, mode := range []EMAMode{EMARunning, EMAWindow} {
		const long = 5
		s, err := NewEMACrossover(3, long, mode)
		require.NoError(t, err)

		var intents []signal.Intent
		for _, bar := range makeBars(ramp(100, 200, 2*long)) {
			intents = append(intents, s.Observe(bar)...)
		}
		require.Len(t, intents, 1, "mode %s", mode)
		assert.Equal(t, signal.Buy, intents[0].Side)
		assert.Equal(t, signal.Open, intents[0].Reason)
		assert.Equal(t, 1.0, intents[0].Quantity)
	}
}

func TestEMACrossoverFlipEmitsCloseThenOpen(t *testing.T) {
	s, err := NewEMACrossover(2, 4, EMARunning)
	require.NoError(t, err)

	closes := append(ramp(100, 150, 10), ramp(145, 60, 10)...)
	var emissions [][]signal.Intent
	for _, bar := range makeBars(closes) {
		if out := s.Observe(bar); len(out) > 0 {
			emissions = append(emissions, out)
		}
	}

	require.Len(t, emissions, 2)
	require.Len(t, emissions[0], 1)
	assert.Equal(t, signal.Intent{Side: signal.Buy, Reason: signal.Open, Price: emissions[0][0].Price, Quantity: 1, Ts: emissions[0][0].Ts}, emissions[0][0])

	flip := emissions[1]
	require.Len(t, flip, 2)
	assert.Equal(t, signal.Sell, flip[0].Side)
	assert.Equal(t, signal.Close, flip[0].Reason)
	assert.Zero(t, flip[0].Quantity)
	assert.Equal(t, signal.Sell, flip[1].Side)
	assert.Equal(t, signal.Open, flip[1].Reason)
	assert.Equal(t, 1.0, flip[1].Quantity)
	assert.Equal(t, flip[0].Ts, flip[1].Ts)

	trend, ok := s.Trend()
	assert.True(t, ok)
	assert.Equal(t, signal.Sell, trend)
}

func TestEMACrossoverEqualPeriodsNeverDecide(t *testing.T) {
	s, err := NewEMACrossover(4, 4, EMARunning)
	require.NoError(t, err)
	closes := append(ramp(100, 180, 12), ramp(170, 90, 12)...)
	for _, bar := range makeBars(closes) {
		require.Empty(t, s.Observe(bar))
	}
}
