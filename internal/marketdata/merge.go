package marketdata

import (
	"sort"

	"emaswitch-go/internal/signal"
)

// Merge concatenates batches into one chronologically sorted sequence. When two bars share a
// timestamp the first one seen wins.
func Merge(batches ...[]signal.Bar) []signal.Bar {
	total := 0
	for _, b := range batches {
		total += len(b)
	}
	merged := make([]signal.Bar, 0, total)
	for _, b := range batches {
		merged = append(merged, b...)
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Ts.Before(merged[j].Ts) })

	out := merged[:0]
	for i, bar := range merged {
		if i > 0 && bar.Ts.Equal(out[len(out)-1].Ts) {
			continue
		}
		out = append(out, bar)
	}
	return out
}
