package paper

import (
	"errors"
	"fmt"
	"math"
	"time"

	"emaswitch-go/internal/execution"
	"emaswitch-go/internal/risk"
	"emaswitch-go/internal/signal"
)

// ErrInvalidConfig is returned when an account is constructed with unusable settings.
var ErrInvalidConfig = errors.New("invalid account config")

const epsilon = 1e-9

// Config captures everything an account needs at construction. There are no implicit defaults.
type Config struct {
	Symbol       string
	StartingCash float64
	Costs        execution.Costs
	Sizer        execution.Sizer
	MinCash      *float64 // optional floor checked before opening longs
}

// Position is the single open lot: positive quantity is long, negative short, zero flat.
type Position struct {
	Qty   float64
	Entry float64
}

// Flat reports whether no lot is open.
func (p Position) Flat() bool { return p.Qty == 0 }

// Account turns intents into fills and keeps cash, the open lot and trade statistics.
// It performs no I/O and is not safe for concurrent use.
type Account struct {
	symbol       string
	costs        execution.Costs
	sizer        execution.Sizer
	limits       risk.Limits
	startingCash float64
	cash         float64
	pos          Position
	realizedPnL  float64
	fees         float64
	trades       int
	wins         int
	losses       int
	skipped      int
	ledger       *Ledger
	peakEquity   float64
	maxDrawdown  float64
}

// NewAccount validates cfg and returns a flat account holding the starting cash.
func NewAccount(cfg Config) (*Account, error) {
	if !(cfg.StartingCash > 0) {
		return nil, fmt.Errorf("%w: starting cash %.2f must be positive", ErrInvalidConfig, cfg.StartingCash)
	}
	if err := cfg.Costs.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.Sizer == nil {
		return nil, fmt.Errorf("%w: sizing policy is required", ErrInvalidConfig)
	}
	return &Account{
		symbol:       cfg.Symbol,
		costs:        cfg.Costs,
		sizer:        cfg.Sizer,
		limits:       risk.Limits{MinCash: cfg.MinCash},
		startingCash: cfg.StartingCash,
		cash:         cfg.StartingCash,
		ledger:       NewLedger(64),
		peakEquity:   cfg.StartingCash,
	}, nil
}

// Apply executes one intent against the current bar and returns the fills it produced (zero, one or two).
// An opposing lot is always closed first; a Close intent stops there. Opening while a lot in the same
// direction is already open is skipped, so the entry price of an open lot never changes.
func (a *Account) Apply(intent signal.Intent, bar signal.Bar) []execution.Fill {
	a.trades++
	ts := intent.Ts
	if ts.IsZero() {
		ts = bar.Ts
	}

	var fills []execution.Fill
	if a.opposes(intent.Side) {
		fills = append(fills, a.close(intent.Side, intent.Price, ts, execution.KindClose))
	}
	if intent.Reason != signal.Open {
		if len(fills) == 0 {
			a.skipped++
		}
		return fills
	}
	if !a.pos.Flat() {
		a.skipped++
		return fills
	}
	fill, ok := a.open(intent, ts)
	if !ok {
		a.skipped++
		return fills
	}
	return append(fills, fill)
}

// Mark records bar as the latest price and updates the equity high-water mark and drawdown.
func (a *Account) Mark(bar signal.Bar) {
	a.observeEquity(a.Equity(bar.Close))
}

// SquareOff closes any open lot at bar's close. It returns false and does nothing when already flat.
func (a *Account) SquareOff(bar signal.Bar) (execution.Fill, bool) {
	if a.pos.Flat() {
		return execution.Fill{}, false
	}
	side := signal.Sell
	if a.pos.Qty < 0 {
		side = signal.Buy
	}
	fill := a.close(side, bar.Close, bar.Ts, execution.KindSquareOff)
	a.observeEquity(a.cash)
	return fill, true
}

// Equity returns cash plus the open lot marked at price.
func (a *Account) Equity(price float64) float64 {
	return a.cash + a.pos.Qty*price
}

// Cash returns the current cash balance.
func (a *Account) Cash() float64 { return a.cash }

// Position returns the open lot.
func (a *Account) Position() Position { return a.pos }

// Fills returns a copy of every fill so far, in emission order.
func (a *Account) Fills() []execution.Fill { return a.ledger.Snapshot() }

// Result summarizes the run. Call it after SquareOff so nothing is left unrealized.
func (a *Account) Result() Result {
	fills := a.ledger.Snapshot()
	s := Summary{
		StartingCash: a.startingCash,
		EndingCash:   a.cash,
		NetPnL:       a.cash - a.startingCash,
		RealizedPnL:  a.realizedPnL,
		Fees:         a.fees,
		Trades:       a.trades,
		Fills:        len(fills),
		Skipped:      a.skipped,
		Wins:         a.wins,
		Losses:       a.losses,
		MaxDrawdown:  a.maxDrawdown,
		OpenQty:      a.pos.Qty,
	}
	if a.losses > 0 {
		ratio := float64(a.wins) / float64(a.losses)
		s.WinLossRatio = &ratio
	}
	return Result{Symbol: a.symbol, Fills: fills, Summary: s}
}

func (a *Account) opposes(side signal.Side) bool {
	return (side == signal.Buy && a.pos.Qty < 0) || (side == signal.Sell && a.pos.Qty > 0)
}

func (a *Account) close(side signal.Side, ref float64, ts time.Time, kind execution.Kind) execution.Fill {
	qty := math.Abs(a.pos.Qty)
	price := a.costs.FillPrice(side, ref)
	pnl := (price - a.pos.Entry) * qty
	if a.pos.Qty < 0 {
		pnl = (a.pos.Entry - price) * qty
	}
	fee := a.costs.Fee(price * qty)
	a.settle(side, price*qty, fee)
	a.realizedPnL += pnl
	if pnl > 0 {
		a.wins++
	} else {
		a.losses++
	}
	a.pos = Position{}
	return a.ledger.Append(execution.Fill{
		Symbol:      a.symbol,
		Side:        side,
		Kind:        kind,
		Price:       price,
		Qty:         qty,
		Fee:         fee,
		RealizedPnL: pnl,
		CashAfter:   a.cash,
		Ts:          ts,
	})
}

func (a *Account) open(intent signal.Intent, ts time.Time) (execution.Fill, bool) {
	price := a.costs.FillPrice(intent.Side, intent.Price)
	qty := a.sizer.Size(intent, price, a.cash, a.costs.Commission)
	if !(qty > epsilon) {
		return execution.Fill{}, false
	}
	notional := price * qty
	fee := a.costs.Fee(notional)
	if intent.Side == signal.Buy && !a.limits.AllowLong(a.cash-notional-fee) {
		return execution.Fill{}, false
	}
	a.settle(intent.Side, notional, fee)
	a.pos = Position{Qty: intent.Side.Sign() * qty, Entry: price}
	return a.ledger.Append(execution.Fill{
		Symbol:    a.symbol,
		Side:      intent.Side,
		Kind:      execution.KindOpen,
		Price:     price,
		Qty:       qty,
		Fee:       fee,
		CashAfter: a.cash,
		Ts:        ts,
	}), true
}

// settle moves cash for one fill: buys pay notional plus fee, sells receive notional minus fee.
func (a *Account) settle(side signal.Side, notional, fee float64) {
	if side == signal.Buy {
		a.cash -= notional + fee
	} else {
		a.cash += notional - fee
	}
	a.fees += fee
}

func (a *Account) observeEquity(equity float64) {
	if equity > a.peakEquity {
		a.peakEquity = equity
	}
	if dd := a.peakEquity - equity; dd > a.maxDrawdown {
		a.maxDrawdown = dd
	}
}
