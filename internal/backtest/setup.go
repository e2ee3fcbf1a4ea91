package backtest

import (
	"emaswitch-go/internal/config"
	"emaswitch-go/internal/execution"
	"emaswitch-go/internal/paper"
	"emaswitch-go/internal/strategy"
)

// Settings translates loaded configuration into strategy parameters and an account template.
func Settings(cfg *config.Config) (strategy.Params, paper.Config, error) {
	params := strategy.Params{
		Mode:        cfg.Strategy.Mode,
		ShortPeriod: cfg.Strategy.ShortPeriod,
		LongPeriod:  cfg.Strategy.LongPeriod,
		EMAMode:     strategy.EMAMode(cfg.Strategy.EMAMode),
		MinVolume:   cfg.Strategy.MinVolume,
	}
	sizer, err := execution.NewSizer(cfg.Paper.Sizing, cfg.Paper.FixedQuantity, cfg.Paper.CashBuffer)
	if err != nil {
		return strategy.Params{}, paper.Config{}, err
	}
	account := paper.Config{
		Symbol:       cfg.Data.Symbol,
		StartingCash: cfg.Paper.StartingCash,
		Costs: execution.Costs{
			Commission: cfg.Paper.CommissionRate,
			Slippage:   cfg.Paper.SlippageRate,
		},
		Sizer:   sizer,
		MinCash: cfg.Paper.MinCash,
	}
	return params, account, nil
}
