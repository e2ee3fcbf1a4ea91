package paper

import (
	"sync"

	"emaswitch-go/internal/execution"
)

// FillRecorder captures paper fills for later inspection.
type FillRecorder interface {
	Record(execution.Fill)
}

// Ledger stores fills in memory in append order and numbers them.
type Ledger struct {
	mu    sync.Mutex
	fills []execution.Fill
}

// NewLedger creates an empty ledger optionally pre-sizing storage.
func NewLedger(capacity int) *Ledger {
	if capacity < 0 {
		capacity = 0
	}
	return &Ledger{fills: make([]execution.Fill, 0, capacity)}
}

// Append numbers fill with the next sequence (starting at 1), stores it and returns the stored copy.
func (l *Ledger) Append(fill execution.Fill) execution.Fill {
	l.mu.Lock()
	defer l.mu.Unlock()
	fill.Seq = len(l.fills) + 1
	l.fills = append(l.fills, fill)
	return fill
}

// Record appends a fill to the ledger.
func (l *Ledger) Record(fill execution.Fill) {
	l.Append(fill)
}

// Len returns the number of stored fills.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fills)
}

// Snapshot returns a copy of the recorded fills.
func (l *Ledger) Snapshot() []execution.Fill {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]execution.Fill, len(l.fills))
	copy(out, l.fills)
	return out
}

// MultiRecorder fans each fill out to several recorders in order.
type MultiRecorder []FillRecorder

// Record implements FillRecorder.
func (m MultiRecorder) Record(fill execution.Fill) {
	for _, r := range m {
		if r != nil {
			r.Record(fill)
		}
	}
}
