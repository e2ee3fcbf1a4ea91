package strategy

// EMAMode selects how an exponential moving average keeps its state.
type EMAMode string

const (
	// EMARunning keeps one scalar per period, seeded with the simple average of the first period closes.
	EMARunning EMAMode = "running"
	// EMAWindow keeps exactly the trailing period closes and recomputes from the oldest one each bar.
	EMAWindow EMAMode = "window"
)

// Alpha returns the smoothing factor 2/(period+1).
func Alpha(period int) float64 {
	return 2 / (float64(period) + 1)
}

// WindowEMA computes an EMA over window seeded with its first value.
// It is written as ema += alpha*(p-ema) so a flat window stays exactly flat.
func WindowEMA(window []float64, period int) float64 {
	if len(window) == 0 {
		return 0
	}
	alpha := Alpha(period)
	ema := window[0]
	for _, p := range window[1:] {
		ema += alpha * (p - ema)
	}
	return ema
}

type emaTracker interface {
	Update(v float64)
	Value() float64
	Ready() bool
	Count() int
}

func newTracker(mode EMAMode, period int) emaTracker {
	if mode == EMAWindow {
		return &windowEMA{period: period, buf: make([]float64, 0, period)}
	}
	return &runningEMA{period: period, alpha: Alpha(period)}
}

type runningEMA struct {
	period  int
	alpha   float64
	value   float64
	seedSum float64
	count   int
}

func (e *runningEMA) Update(v float64) {
	e.count++
	if e.count <= e.period {
		e.seedSum += v
		e.value = e.seedSum / float64(e.count)
		return
	}
	e.value += e.alpha * (v - e.value)
}

func (e *runningEMA) Value() float64 { return e.value }
func (e *runningEMA) Ready() bool    { return e.count >= e.period }
func (e *runningEMA) Count() int     { return e.count }

// windowEMA is a fixed ring of the last period closes.
type windowEMA struct {
	period int
	buf    []float64
	next   int
	count  int
}

func (e *windowEMA) Update(v float64) {
	if len(e.buf) < e.period {
		e.buf = append(e.buf, v)
	} else {
		e.buf[e.next] = v
	}
	e.next = (e.next + 1) % e.period
	e.count++
}

func (e *windowEMA) Value() float64 {
	n := len(e.buf)
	if n == 0 {
		return 0
	}
	start := 0
	if n == e.period {
		start = e.next
	}
	alpha := Alpha(e.period)
	ema := e.buf[start]
	for i := 1; i < n; i++ {
		ema += alpha * (e.buf[(start+i)%n] - ema)
	}
	return ema
}

func (e *windowEMA) Ready() bool { return e.count >= e.period }
func (e *windowEMA) Count() int  { return e.count }
