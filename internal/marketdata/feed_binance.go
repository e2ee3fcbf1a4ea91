package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"emaswitch-go/internal/signal"
)

type binanceEnvelope struct {
	Stream string       `json:"stream"`
	Data   binanceEvent `json:"data"`
}

type binanceEvent struct {
	Symbol string       `json:"s"`
	Kline  binanceKline `json:"k"`
}

type binanceKline struct {
	OpenTime int64  `json:"t"`
	Interval string `json:"i"`
	Open     string `json:"o"`
	High     string `json:"h"`
	Low      string `json:"l"`
	Close    string `json:"c"`
	Volume   string `json:"v"`
	Closed   bool   `json:"x"`
}

func (f *Feed) streamEndpoint() (string, error) {
	symbols := f.Symbols()
	if len(symbols) == 0 {
		return "", fmt.Errorf("binance feed requires at least one symbol")
	}
	streams := make([]string, len(symbols))
	for i, sym := range symbols {
		streams[i] = strings.ToLower(sym) + "@kline_" + f.interval
	}
	return fmt.Sprintf("%s/stream?streams=%s", f.streamURL, strings.Join(streams, "/")), nil
}

func (f *Feed) runBinance(ctx context.Context, out chan<- signal.Bar) error {
	url, err := f.streamEndpoint()
	if err != nil {
		return err
	}
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := f.consumeBinanceStream(ctx, url, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Warn().Err(err).Dur("backoff", backoff).Msg("binance feed disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (f *Feed) consumeBinanceStream(ctx context.Context, url string, out chan<- signal.Bar) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	f.log.Info().Str("provider", ProviderBinance).Strs("symbols", f.Symbols()).Str("interval", f.interval).Msg("connected market data feed")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					f.log.Warn().Err(err).Msg("binance ping failed")
					return
				}
			case <-pingCtx.Done():
				conn.Close()
				return
			}
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(90 * time.Second))

		bar, closed, err := decodeKline(message)
		if err != nil {
			f.log.Warn().Err(err).Msg("failed to decode binance kline")
			continue
		}
		if !closed {
			continue
		}
		select {
		case out <- bar:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// decodeKline parses a combined-stream kline message. closed is false while the interval is still forming.
func decodeKline(message []byte) (bar signal.Bar, closed bool, err error) {
	var env binanceEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		return signal.Bar{}, false, err
	}
	k := env.Data.Kline
	symbol := env.Data.Symbol
	if symbol == "" {
		symbol = parseBinanceSymbol(env.Stream)
	}
	fields := [5]string{k.Open, k.High, k.Low, k.Close, k.Volume}
	var vals [5]float64
	for i, raw := range fields {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return signal.Bar{}, false, fmt.Errorf("kline %s field %d: %w", symbol, i, err)
		}
		vals[i] = v
	}
	return signal.Bar{
		Symbol: strings.ToUpper(symbol),
		Ts:     time.UnixMilli(k.OpenTime).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, k.Closed, nil
}

func parseBinanceSymbol(stream string) string {
	parts := strings.Split(stream, "@")
	if len(parts) == 0 || parts[0] == "" {
		return strings.ToUpper(stream)
	}
	return strings.ToUpper(parts[0])
}
