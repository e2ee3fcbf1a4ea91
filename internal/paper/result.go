package paper

import "emaswitch-go/internal/execution"

// Summary aggregates a finished run. WinLossRatio is nil when there were no losing trades.
type Summary struct {
	StartingCash float64  `json:"starting_cash"`
	EndingCash   float64  `json:"ending_cash"`
	NetPnL       float64  `json:"net_pnl"`
	RealizedPnL  float64  `json:"realized_pnl"`
	Fees         float64  `json:"fees"`
	Trades       int      `json:"trades"`
	Fills        int      `json:"fills"`
	Skipped      int      `json:"skipped"`
	Wins         int      `json:"wins"`
	Losses       int      `json:"losses"`
	WinLossRatio *float64 `json:"win_loss_ratio,omitempty"`
	MaxDrawdown  float64  `json:"max_drawdown"`
	OpenQty      float64  `json:"open_qty"`
}

// Result is the structured output of one account: its fill log and summary.
type Result struct {
	Symbol  string           `json:"symbol"`
	Fills   []execution.Fill `json:"fills"`
	Summary Summary          `json:"summary"`
}
