package marketdata

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"emaswitch-go/internal/metrics"
	"emaswitch-go/internal/signal"
)

const (
	// PeriodDaily selects one archive per calendar day.
	PeriodDaily = "daily"
	// PeriodMonthly selects one archive per calendar month.
	PeriodMonthly = "monthly"

	defaultArchiveBaseURL = "https://data.binance.vision"
)

// ErrTooLarge is returned when a downloaded archive exceeds maxArchiveBytes.
var ErrTooLarge = errors.New("archive too large")

// maxArchiveBytes caps the compressed download held in memory.
var maxArchiveBytes int64 = 256 << 20

// ArchiveClient downloads spot kline archives from data.binance.vision.
type ArchiveClient struct {
	baseURL   string
	period    string
	dataDir   string
	keepFiles bool
	client    *http.Client
	log       zerolog.Logger
}

// ArchiveOption configures an ArchiveClient.
type ArchiveOption func(*ArchiveClient)

// WithBaseURL points the client at another archive host.
func WithBaseURL(u string) ArchiveOption {
	return func(c *ArchiveClient) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithPeriod selects daily or monthly archives.
func WithPeriod(period string) ArchiveOption {
	return func(c *ArchiveClient) {
		if period == PeriodMonthly {
			c.period = PeriodMonthly
		}
	}
}

// WithKeepFiles stores each downloaded zip and its extracted CSV under dir.
func WithKeepFiles(dir string) ArchiveOption {
	return func(c *ArchiveClient) {
		c.dataDir = dir
		c.keepFiles = dir != ""
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) ArchiveOption {
	return func(c *ArchiveClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewArchiveClient constructs a client with daily archives and a 60s timeout.
func NewArchiveClient(log zerolog.Logger, opts ...ArchiveOption) *ArchiveClient {
	c := &ArchiveClient{
		baseURL: defaultArchiveBaseURL,
		period:  PeriodDaily,
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the archive file stem, e.g. BTCUSDT-1h-2025-11-04.
func (c *ArchiveClient) Name(symbol, interval string, day time.Time) string {
	layout := time.DateOnly
	if c.period == PeriodMonthly {
		layout = "2006-01"
	}
	return fmt.Sprintf("%s-%s-%s", symbol, interval, day.UTC().Format(layout))
}

// URL returns the download location of the archive covering day.
func (c *ArchiveClient) URL(symbol, interval string, day time.Time) string {
	return fmt.Sprintf("%s/data/spot/%s/klines/%s/%s/%s.zip",
		c.baseURL, c.period, symbol, interval, c.Name(symbol, interval, day))
}

// Fetch downloads and decodes the archive covering day. A missing archive yields ErrNotFound.
func (c *ArchiveClient) Fetch(ctx context.Context, symbol, interval string, day time.Time) ([]signal.Bar, error) {
	symbol = strings.ToUpper(symbol)
	url := c.URL(symbol, interval, day)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.DownloadsTotal.WithLabelValues("missing").Inc()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.DownloadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}
	body, err := readCapped(resp.Body, maxArchiveBytes)
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	metrics.DownloadsTotal.WithLabelValues("ok").Inc()

	name := c.Name(symbol, interval, day)
	var keep io.Writer
	if c.keepFiles {
		if err := c.store(name+".zip", body); err != nil {
			c.log.Warn().Err(err).Str("archive", name).Msg("keep zip")
		}
		file, err := c.create(name + ".csv")
		if err != nil {
			c.log.Warn().Err(err).Str("archive", name).Msg("keep csv")
		} else {
			defer file.Close()
			keep = file
		}
	}
	bars, err := extractBars(body, symbol, keep)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	c.log.Debug().Str("archive", name).Int("bars", len(bars)).Msg("archive loaded")
	return bars, nil
}

func (c *ArchiveClient) store(name string, data []byte) error {
	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dataDir, name), data, 0o644)
}

func (c *ArchiveClient) create(name string) (*os.File, error) {
	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return nil, err
	}
	return os.Create(filepath.Join(c.dataDir, name))
}

// readCapped reads r fully, failing with ErrTooLarge instead of truncating past limit bytes.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}

// extractBars decodes the first CSV entry of a zip archive, streaming it to keep when non-nil.
func extractBars(archive []byte, symbol string, keep io.Writer) ([]signal.Bar, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(path.Ext(f.Name), ".csv") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		defer rc.Close()
		var src io.Reader = rc
		if keep != nil {
			src = io.TeeReader(rc, keep)
		}
		return ParseCSV(src, symbol)
	}
	return nil, fmt.Errorf("no csv entry in archive")
}
