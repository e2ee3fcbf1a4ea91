// Package config exposes strongly typed backtest configuration structs loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure returned by Load.
var ErrInvalid = errors.New("invalid config")

var validate = validator.New()

// App captures process-wide runtime settings such as name, metrics, and logging.
type App struct {
	Name        string `yaml:"name" default:"emaswitch"`
	Env         string `yaml:"env" default:"dev"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level" default:"info" validate:"oneof=trace debug info warn error"`
	LogFormat   string `yaml:"log_format" default:"json" validate:"oneof=json console"`
}

// ClickHouse locates a kline table for the clickhouse data source.
type ClickHouse struct {
	DSN         string        `yaml:"dsn"`
	Database    string        `yaml:"database" default:"market"`
	Table       string        `yaml:"table" default:"klines"`
	DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
}

// Data selects where bars come from and how the history is split.
type Data struct {
	Source      string     `yaml:"source" default:"binance" validate:"oneof=csv binance clickhouse simulate"`
	Mode        string     `yaml:"mode" default:"continuous" validate:"oneof=continuous daily"`
	Symbol      string     `yaml:"symbol" default:"BTCUSDT" validate:"required"`
	Interval    string     `yaml:"interval" default:"1h" validate:"required"`
	Archive     string     `yaml:"archive" default:"daily" validate:"oneof=daily monthly"`
	BaseURL     string     `yaml:"base_url" default:"https://data.binance.vision" validate:"url"`
	End         string     `yaml:"end"` // last day to fetch, YYYY-MM-DD; empty means yesterday
	Days        int        `yaml:"days" default:"30" validate:"gte=1"`
	Concurrency int        `yaml:"concurrency" default:"5" validate:"gte=1,lte=64"`
	DataDir     string     `yaml:"data_dir" default:"data/market_data"`
	KeepFiles   bool       `yaml:"keep_files"`
	CSVPath     string     `yaml:"csv_path" validate:"required_if=Source csv"`
	Bars        int        `yaml:"bars" default:"500" validate:"gte=1"`
	StartPrice  float64    `yaml:"start_price" default:"100" validate:"gt=0"`
	Seed        int64      `yaml:"seed" default:"1"`
	ClickHouse  ClickHouse `yaml:"clickhouse"`
}

// Strategy specifies which signal generator is active along with its parameters.
type Strategy struct {
	Mode        string  `yaml:"mode" default:"ema_crossover"`
	ShortPeriod int     `yaml:"short_period" default:"9" validate:"gte=1"`
	LongPeriod  int     `yaml:"long_period" default:"21" validate:"gte=1"`
	EMAMode     string  `yaml:"ema_mode" default:"running" validate:"oneof=running window"`
	MinVolume   float64 `yaml:"min_volume" default:"1000" validate:"gte=0"`
}

// Paper captures account settings: starting cash, transaction costs, sizing, and fill recording.
type Paper struct {
	StartingCash   float64  `yaml:"starting_cash" default:"1000000" validate:"gt=0"`
	CommissionRate float64  `yaml:"commission_rate" default:"0.001" validate:"gte=0,lt=1"`
	SlippageRate   float64  `yaml:"slippage_rate" default:"0.0005" validate:"gte=0,lt=1"`
	MinCash        *float64 `yaml:"min_cash,omitempty"`
	Sizing         string   `yaml:"sizing" default:"fixed" validate:"oneof=fixed full_cash"`
	FixedQuantity  float64  `yaml:"fixed_quantity" default:"1" validate:"gte=0"`
	CashBuffer     float64  `yaml:"cash_buffer" default:"0.01" validate:"gte=0,lt=1"`
	FillsPath      string   `yaml:"fills_path"`
}

// Feed configures the live bar stream used by paper trading.
type Feed struct {
	Provider string        `yaml:"provider" default:"stub" validate:"oneof=stub binance"`
	Symbols  []string      `yaml:"symbols"`
	Interval string        `yaml:"interval" default:"1m"`
	StubTick time.Duration `yaml:"stub_tick" default:"1s"`
	WSURL    string        `yaml:"ws_url" default:"wss://stream.binance.com:9443"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Data     Data     `yaml:"data"`
	Strategy Strategy `yaml:"strategy"`
	Paper    Paper    `yaml:"paper"`
	Feed     Feed     `yaml:"feed"`
}

// Default returns a Config populated only from struct defaults.
func Default() *Config {
	var cfg Config
	_ = defaults.Set(&cfg)
	return &cfg
}

// Load reads a YAML file from disk, fills unset fields with defaults and validates the result.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := defaults.Set(&config); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadWithEnv loads .env (if present) and the YAML file, then lets environment variables override it.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load() // optional

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if v := os.Getenv("BACKTEST_SYMBOL"); v != "" {
		cfg.Data.Symbol = strings.ToUpper(v)
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		cfg.Data.ClickHouse.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("FEED_SYMBOLS"); v != "" {
		cfg.Feed.Symbols = strings.Split(v, ",")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field tags plus the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %s=%s", ErrInvalid, fe.Namespace(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Data.Source == "clickhouse" && c.Data.ClickHouse.DSN == "" {
		return fmt.Errorf("%w: data.clickhouse.dsn is required for the clickhouse source", ErrInvalid)
	}
	if c.Data.End != "" {
		if _, err := time.Parse(time.DateOnly, c.Data.End); err != nil {
			return fmt.Errorf("%w: data.end %q: %v", ErrInvalid, c.Data.End, err)
		}
	}
	return nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
