package metrics

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Analyses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "correlator_analyses_total",
			Help: "Total number of correlation analyses",
		},
		[]string{"source", "status"}, // status: success|retrieval|no_overlap|invalid_input|internal
	)

	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "correlator_analysis_duration_seconds",
			Help:    "Analysis duration in seconds, both fetches included",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"source"},
	)

	LastCorrelation = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "correlator_last_correlation",
			Help: "Most recent defined correlation coefficient per watched pair",
		},
		[]string{"pair"},
	)

	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "correlator_notifications_total",
			Help: "Telegram deliveries",
		},
		[]string{"status"}, // success|error
	)
)

func init() {
	prometheus.MustRegister(Analyses, AnalysisDuration, LastCorrelation, Notifications)
}

// ObserveAnalysis records one analysis outcome. status is "success" or the
// lower-cased failure kind.
func ObserveAnalysis(source, status string, took time.Duration) {
	Analyses.WithLabelValues(source, strings.ToLower(status)).Inc()
	AnalysisDuration.WithLabelValues(source).Observe(took.Seconds())
}

// ObserveNotification records a Telegram delivery.
func ObserveNotification(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	Notifications.WithLabelValues(status).Inc()
}

// Serve exposes /metrics on addr until the returned server is shut down.
func Serve(addr string, onError func(error)) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) && onError != nil {
			onError(err)
		}
	}()
	return srv
}
