package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"emaswitch-go/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/backtest.yaml", "path to YAML config")
	flag.Parse()
	reader := bufio.NewReader(os.Stdin)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	for {
		fmt.Println("\n=== EMA Switch Control ===")
		fmt.Println("1) Show configuration summary")
		fmt.Println("2) Edit strategy")
		fmt.Println("3) Edit account and costs")
		fmt.Println("4) Edit data window")
		fmt.Println("5) Save config")
		fmt.Println("6) Run backtest")
		fmt.Println("7) Reload config from disk")
		fmt.Println("0) Exit")
		fmt.Print("Select option: ")

		input, _ := reader.ReadString('\n')
		switch strings.TrimSpace(input) {
		case "1":
			printSummary(cfg)
		case "2":
			editStrategy(reader, cfg)
		case "3":
			editAccount(reader, cfg)
		case "4":
			editData(reader, cfg)
		case "5":
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(os.Stderr, "not saved: %v\n", err)
			} else if err := config.Save(*configPath, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			} else {
				fmt.Println("config saved")
			}
		case "6":
			launchBacktest(*configPath)
		case "7":
			reloaded, err := config.Load(*configPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			} else {
				cfg = reloaded
				fmt.Println("config reloaded")
			}
		case "0":
			return
		default:
			fmt.Println("unknown option")
		}
	}
}

func printSummary(cfg *config.Config) {
	fmt.Println("\n--- Configuration Summary ---")
	fmt.Printf("Strategy: %s (short %d, long %d, %s EMA)\n", cfg.Strategy.Mode, cfg.Strategy.ShortPeriod, cfg.Strategy.LongPeriod, cfg.Strategy.EMAMode)
	fmt.Printf("Data: %s %s %s, %d %s period(s), mode %s\n", cfg.Data.Source, cfg.Data.Symbol, cfg.Data.Interval, cfg.Data.Days, cfg.Data.Archive, cfg.Data.Mode)
	fmt.Printf("Starting cash: $%.2f\n", cfg.Paper.StartingCash)
	fmt.Printf("Commission: %.4f%% | Slippage: %.4f%%\n", cfg.Paper.CommissionRate*100, cfg.Paper.SlippageRate*100)
	fmt.Printf("Sizing: %s (fixed qty %.4f, cash buffer %.2f%%)\n", cfg.Paper.Sizing, cfg.Paper.FixedQuantity, cfg.Paper.CashBuffer*100)
	if cfg.Paper.MinCash != nil {
		fmt.Printf("Min cash after longs: $%.2f\n", *cfg.Paper.MinCash)
	} else {
		fmt.Println("Min cash after longs: off")
	}
}

func editStrategy(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Strategy ---")
	cfg.Strategy.Mode = promptString(reader, "Mode (ema_crossover|bullish_bar|bearish_bar, comma separated to combine)", cfg.Strategy.Mode)
	cfg.Strategy.ShortPeriod = int(promptFloat(reader, "Short EMA period", float64(cfg.Strategy.ShortPeriod)))
	cfg.Strategy.LongPeriod = int(promptFloat(reader, "Long EMA period", float64(cfg.Strategy.LongPeriod)))
	cfg.Strategy.EMAMode = promptString(reader, "EMA mode (running|window)", cfg.Strategy.EMAMode)
}

func editAccount(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Account / Costs ---")
	cfg.Paper.StartingCash = promptFloat(reader, "Starting cash", cfg.Paper.StartingCash)
	cfg.Paper.CommissionRate = promptPercent(reader, "Commission (%)", cfg.Paper.CommissionRate)
	cfg.Paper.SlippageRate = promptPercent(reader, "Slippage (%)", cfg.Paper.SlippageRate)
	cfg.Paper.Sizing = promptString(reader, "Sizing (fixed|full_cash)", cfg.Paper.Sizing)
	if cfg.Paper.Sizing == "full_cash" {
		cfg.Paper.CashBuffer = promptPercent(reader, "Cash buffer (%)", cfg.Paper.CashBuffer)
	} else {
		cfg.Paper.FixedQuantity = promptFloat(reader, "Fixed quantity", cfg.Paper.FixedQuantity)
	}
	fmt.Print("Min cash after longs (blank keeps, 'off' disables): ")
	line, _ := reader.ReadString('\n')
	switch line = strings.TrimSpace(line); {
	case line == "":
	case strings.EqualFold(line, "off"):
		cfg.Paper.MinCash = nil
	default:
		if v, err := strconv.ParseFloat(line, 64); err == nil {
			cfg.Paper.MinCash = &v
		} else {
			fmt.Println("invalid number, keeping current floor")
		}
	}
}

func editData(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Data Window ---")
	cfg.Data.Source = promptString(reader, "Source (binance|csv|clickhouse|simulate)", cfg.Data.Source)
	cfg.Data.Symbol = strings.ToUpper(promptString(reader, "Symbol", cfg.Data.Symbol))
	cfg.Data.Interval = promptString(reader, "Interval", cfg.Data.Interval)
	cfg.Data.Mode = promptString(reader, "Mode (continuous|daily)", cfg.Data.Mode)
	cfg.Data.Days = int(promptFloat(reader, "Periods to load", float64(cfg.Data.Days)))
	cfg.Data.Concurrency = int(promptFloat(reader, "Parallel downloads", float64(cfg.Data.Concurrency)))
}

func launchBacktest(configPath string) {
	fmt.Println("Running backtest (Ctrl+C to abort)...")
	cmd := exec.CommandContext(context.Background(), "go", "run", "./cmd/backtest", "-config", configPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "backtest failed: %v\n", err)
	}
}

func promptString(reader *bufio.Reader, label, current string) string {
	fmt.Printf("%s [%s]: ", label, current)
	line, _ := reader.ReadString('\n')
	if line = strings.TrimSpace(line); line == "" {
		return current
	}
	return line
}

func promptFloat(reader *bufio.Reader, label string, current float64) float64 {
	fmt.Printf("%s [%.4g]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		fmt.Printf("invalid number, keeping %.4g\n", current)
		return current
	}
	return val
}

func promptPercent(reader *bufio.Reader, label string, current float64) float64 {
	pct := promptFloat(reader, label, current*100)
	return pct / 100
}
