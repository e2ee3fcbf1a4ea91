package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BarsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bars_total", Help: "Count of bars fed to strategies"},
		[]string{"symbol"},
	)
	FillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fills_total", Help: "Fills produced by the paper account"},
		[]string{"symbol", "side", "kind"},
	)
	RealizedPnL = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "realized_pnl", Help: "Cumulative realized profit and loss"},
		[]string{"symbol"},
	)
	Equity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "equity", Help: "Cash plus marked position value"},
		[]string{"symbol"},
	)
	DownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "archive_downloads_total", Help: "Historical archive fetch attempts"},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(BarsTotal, FillsTotal, RealizedPnL, Equity, DownloadsTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
