package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"emaswitch-go/internal/signal"
)

func TestFeedRunEmitsStubBars(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := NewFeed(ProviderStub, []string{"btcusdt", "BTCUSDT", " "}, zerolog.Nop(), WithStubTick(10*time.Millisecond))
	if got := feed.Symbols(); len(got) != 1 || got[0] != "BTCUSDT" {
		t.Fatalf("unexpected symbols %v", got)
	}
	bars := make(chan signal.Bar, 1)

	go func() {
		_ = feed.Run(ctx, bars)
	}()

	select {
	case bar := <-bars:
		if bar.Symbol != "BTCUSDT" {
			t.Fatalf("unexpected symbol %s", bar.Symbol)
		}
		if bar.Close <= 0 || bar.High < bar.Low {
			t.Fatalf("implausible bar %+v", bar)
		}
		cancel()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bar")
	}
}

func TestParseBinanceSymbol(t *testing.T) {
	cases := map[string]string{
		"btcusdt@kline_1m": "BTCUSDT",
		"ethusdt@trade":    "ETHUSDT",
		"dogeusdt":         "DOGEUSDT",
		"":                 "",
	}
	for stream, expected := range cases {
		if got := parseBinanceSymbol(stream); got != expected {
			t.Fatalf("expected %s got %s", expected, got)
		}
	}
}

const closedKline = `{"stream":"btcusdt@kline_1m","data":{"e":"kline","s":"BTCUSDT","k":{"t":1761955200000,"i":"1m","o":"100.5","h":"101","l":"99.5","c":"100.75","v":"12.5","x":true}}}`

func TestDecodeKline(t *testing.T) {
	bar, closed, err := decodeKline([]byte(closedKline))
	if err != nil {
		t.Fatalf("decodeKline error: %v", err)
	}
	if !closed {
		t.Fatalf("expected closed kline")
	}
	want := signal.Bar{Symbol: "BTCUSDT", Ts: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), Open: 100.5, High: 101, Low: 99.5, Close: 100.75, Volume: 12.5}
	if bar != want {
		t.Fatalf("unexpected bar %+v", bar)
	}

	open := strings.Replace(closedKline, `"x":true`, `"x":false`, 1)
	if _, closed, _ := decodeKline([]byte(open)); closed {
		t.Fatalf("expected forming kline")
	}
	if _, _, err := decodeKline([]byte(strings.Replace(closedKline, `"100.75"`, `"n/a"`, 1))); err == nil {
		t.Fatalf("expected error for bad close")
	}
}

func TestRunBinanceEmitsClosedKlines(t *testing.T) {
	upgrader := websocket.Upgrader{}
	gotQuery := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery <- r.URL.Path + "?" + r.URL.RawQuery
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		forming := strings.Replace(closedKline, `"x":true`, `"x":false`, 1)
		for _, msg := range []string{forming, "not json", closedKline} {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		_, _, _ = conn.ReadMessage()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	feed := NewFeed(ProviderBinance, []string{"BTCUSDT"}, zerolog.Nop(), WithStreamURL(wsURL+"/ws"), WithInterval("1m"))

	bars := make(chan signal.Bar, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- feed.Run(ctx, bars)
	}()

	select {
	case q := <-gotQuery:
		if q != "/stream?streams=btcusdt@kline_1m" {
			t.Fatalf("unexpected stream request %s", q)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("feed never connected")
	}

	select {
	case bar := <-bars:
		if bar.Symbol != "BTCUSDT" || bar.Close != 100.75 {
			t.Fatalf("unexpected bar %+v", bar)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for kline")
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context cancellation, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop after cancel")
	}
}

func TestRunBinanceRequiresSymbols(t *testing.T) {
	feed := NewFeed(ProviderBinance, nil, zerolog.Nop())
	if err := feed.Run(context.Background(), make(chan signal.Bar)); err == nil {
		t.Fatal("expected error without symbols")
	}
}
