package marketdata

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"emaswitch-go/internal/signal"
)

const (
	// ProviderStub emits seeded random-walk bars (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderBinance streams closed klines from Binance public websockets.
	ProviderBinance = "binance"
)

const (
	defaultStubTick  = time.Second
	defaultInterval  = "1m"
	defaultStreamURL = "wss://stream.binance.com:9443"
)

// Feed represents a pluggable live bar stream.
type Feed struct {
	provider  string
	symbols   []string
	interval  string
	stubTick  time.Duration
	streamURL string
	seed      int64
	log       zerolog.Logger
	mu        sync.RWMutex
}

// Option configures Feed construction parameters.
type Option func(*Feed)

// WithInterval sets the kline interval, e.g. 1m or 1h.
func WithInterval(interval string) Option {
	return func(f *Feed) {
		if interval != "" {
			f.interval = interval
		}
	}
}

// WithStubTick overrides how often the stub provider emits a bar.
func WithStubTick(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.stubTick = d
		}
	}
}

// WithStreamURL overrides the websocket base URL (without the /stream path).
func WithStreamURL(u string) Option {
	return func(f *Feed) {
		if u != "" {
			f.streamURL = strings.TrimSuffix(strings.TrimSuffix(u, "/"), "/ws")
		}
	}
}

// WithSeed fixes the stub random walk.
func WithSeed(seed int64) Option {
	return func(f *Feed) { f.seed = seed }
}

// NewFeed constructs a feed backed by the requested provider.
func NewFeed(provider string, symbols []string, log zerolog.Logger, opts ...Option) *Feed {
	if provider == "" {
		provider = ProviderStub
	}
	f := &Feed{
		provider:  strings.ToLower(provider),
		interval:  defaultInterval,
		stubTick:  defaultStubTick,
		streamURL: defaultStreamURL,
		seed:      1,
		log:       log,
	}
	f.SetSymbols(symbols)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetSymbols replaces the tracked symbol list (upper-cased, deduplicated, sorted for determinism).
func (f *Feed) SetSymbols(symbols []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	unique := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		unique[sym] = struct{}{}
	}
	f.symbols = f.symbols[:0]
	for sym := range unique {
		f.symbols = append(f.symbols, sym)
	}
	sort.Strings(f.symbols)
}

// Symbols returns a copy of the tracked symbols.
func (f *Feed) Symbols() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.symbols))
	copy(out, f.symbols)
	return out
}

// Run pushes bars onto out until the context is canceled.
func (f *Feed) Run(ctx context.Context, out chan<- signal.Bar) error {
	switch f.provider {
	case ProviderBinance:
		return f.runBinance(ctx, out)
	default:
		return f.runStub(ctx, out)
	}
}

func (f *Feed) runStub(ctx context.Context, out chan<- signal.Bar) error {
	ticker := time.NewTicker(f.stubTick)
	defer ticker.Stop()

	walks := make(map[string]*walk)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ts := <-ticker.C:
			for _, sym := range f.Symbols() {
				w, ok := walks[sym]
				if !ok {
					w = newWalk(f.seed+int64(len(walks)), 100)
					walks[sym] = w
				}
				bar := w.next(ts.UTC())
				bar.Symbol = sym
				select {
				case out <- bar:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}
