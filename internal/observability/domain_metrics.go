package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	upstreamFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chefroulette_upstream_fetches_total",
			Help: "Total number of upstream table fetches by source and outcome.",
		},
		[]string{"source", "outcome"},
	)
	upstreamFetchDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chefroulette_upstream_fetch_duration_seconds",
			Help:    "Upstream table fetch latency by source.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"source"},
	)
	restaurantRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chefroulette_restaurant_rows_total",
			Help: "Total number of upstream rows by mapping result (emitted or dropped).",
		},
		[]string{"source", "result"},
	)
	lastEmittedRestaurants = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chefroulette_last_emitted_restaurants",
			Help: "Restaurants emitted by the most recent successful mapping.",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(
		upstreamFetchesTotal,
		upstreamFetchDurationSeconds,
		restaurantRowsTotal,
		lastEmittedRestaurants,
	)
}

func ObserveUpstreamFetch(source, outcome string, elapsed time.Duration) {
	upstreamFetchesTotal.WithLabelValues(source, outcome).Inc()
	upstreamFetchDurationSeconds.WithLabelValues(source).Observe(elapsed.Seconds())
}

func ObserveRows(source string, emitted, dropped int) {
	if emitted > 0 {
		restaurantRowsTotal.WithLabelValues(source, "emitted").Add(float64(emitted))
	}
	if dropped > 0 {
		restaurantRowsTotal.WithLabelValues(source, "dropped").Add(float64(dropped))
	}
	lastEmittedRestaurants.WithLabelValues(source).Set(float64(emitted))
}
