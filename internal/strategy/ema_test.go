package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowEMAMatchesRecursiveFormula(t *testing.T) {
	window := []float64{10, 11, 13, 12, 15}
	period := len(window)
	alpha := 2.0 / float64(period+1)

	want := window[0]
	for _, p := range window[1:] {
		want = alpha*p + (1-alpha)*want
	}

	assert.InDelta(t, want, WindowEMA(window, period), 1e-12)
	assert.Equal(t, 0.0, WindowEMA(nil, 3))
}

func TestWindowEMAFlatSeriesIsExact(t *testing.T) {
	window := []float64{100, 100, 100, 100, 100, 100, 100}
	assert.Equal(t, 100.0, WindowEMA(window, 7))
}

func TestRunningEMASeedsWithSimpleAverage(t *testing.T) {
	e := newTracker(EMARunning, 3)
	for _, v := range []float64{1, 2} {
		e.Update(v)
		assert.False(t, e.Ready())
	}
	e.Update(3)
	require.True(t, e.Ready())
	assert.InDelta(t, 2.0, e.Value(), 1e-12)

	e.Update(4)
	assert.InDelta(t, 3.0, e.Value(), 1e-12)
	assert.Equal(t, 4, e.Count())
}

func TestWindowTrackerMatchesTrailingWindow(t *testing.T) {
	const period = 4
	e := newTracker(EMAWindow, period)
	var closes []float64
	for i := 1; i <= 11; i++ {
		v := float64(i*i) / 3
		closes = append(closes, v)
		e.Update(v)
	}
	require.True(t, e.Ready())
	assert.InDelta(t, WindowEMA(closes[len(closes)-period:], period), e.Value(), 1e-9)

	w := e.(*windowEMA)
	assert.Len(t, w.buf, period, "window must stay bounded")
}
