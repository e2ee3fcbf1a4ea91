package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emaswitch-go/internal/config"
	"emaswitch-go/internal/execution"
	"emaswitch-go/internal/strategy"
)

func TestSettingsFromDefaults(t *testing.T) {
	cfg := config.Default()

	params, account, err := Settings(cfg)
	require.NoError(t, err)

	assert.Equal(t, "ema_crossover", params.Mode)
	assert.Equal(t, 9, params.ShortPeriod)
	assert.Equal(t, 21, params.LongPeriod)
	assert.Equal(t, strategy.EMAMode("running"), params.EMAMode)

	assert.Equal(t, "BTCUSDT", account.Symbol)
	assert.Equal(t, 1_000_000.0, account.StartingCash)
	assert.Equal(t, execution.Costs{Commission: 0.001, Slippage: 0.0005}, account.Costs)
	assert.Equal(t, execution.FixedQuantity{N: 1}, account.Sizer)
	assert.Nil(t, account.MinCash)
}

func TestSettingsFullCash(t *testing.T) {
	cfg := config.Default()
	cfg.Paper.Sizing = "full_cash"
	cfg.Paper.CashBuffer = 0.02
	floor := 500.0
	cfg.Paper.MinCash = &floor

	_, account, err := Settings(cfg)
	require.NoError(t, err)
	assert.Equal(t, execution.FullCashDeploy{Buffer: 0.02}, account.Sizer)
	require.NotNil(t, account.MinCash)
	assert.Equal(t, 500.0, *account.MinCash)
}

func TestSettingsRejectsUnknownSizing(t *testing.T) {
	cfg := config.Default()
	cfg.Paper.Sizing = "martingale"

	_, _, err := Settings(cfg)
	require.ErrorIs(t, err, execution.ErrInvalidSizing)
}
