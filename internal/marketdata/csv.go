package marketdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"emaswitch-go/internal/signal"
)

// CSVLoader reads Binance kline CSV files: open_time, open, high, low, close, volume, then ignored columns.
type CSVLoader struct {
	Path   string
	Symbol string
}

// Bars implements Source.
func (l CSVLoader) Bars(_ context.Context) ([]signal.Bar, error) {
	file, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()
	return ParseCSV(file, l.Symbol)
}

// ParseCSV decodes kline rows from r. A UTF-8 or UTF-16 byte order mark is honoured and a
// leading header row is skipped. Rows keep file order; use Merge to sort.
func ParseCSV(r io.Reader, symbol string) ([]signal.Bar, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	reader.TrimLeadingSpace = true

	var bars []signal.Bar
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return bars, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		if line == 1 && isHeader(record) {
			continue
		}
		bar, err := parseRow(record, symbol)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		bars = append(bars, bar)
	}
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	_, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	return err != nil
}

func parseRow(record []string, symbol string) (signal.Bar, error) {
	if len(record) < 6 {
		return signal.Bar{}, fmt.Errorf("want at least 6 columns, got %d", len(record))
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return signal.Bar{}, fmt.Errorf("open time %q", record[0])
	}
	var vals [5]float64
	for i := range vals {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
		if err != nil {
			return signal.Bar{}, fmt.Errorf("column %d: %q", i+2, record[i+1])
		}
		vals[i] = v
	}
	return signal.Bar{
		Symbol: symbol,
		Ts:     openTime(ts),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
