package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SourceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gdpdash_source_fetch_total",
			Help: "Total dataset source fetches",
		},
		[]string{"scheme", "status"},
	)

	SourceFetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gdpdash_source_fetch_latency_seconds",
			Help:    "Dataset source fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scheme"},
	)

	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gdpdash_dataset_rows",
			Help: "Rows seen while loading the dataset, by outcome",
		},
		[]string{"outcome"},
	)

	CallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gdpdash_callbacks_total",
			Help: "Total chart callback invocations",
		},
		[]string{"output", "status"},
	)

	SeriesPoints = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gdpdash_series_points",
			Help:    "Points in resolved chart series",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"view"},
	)

	UnknownSelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gdpdash_unknown_selections_total",
			Help: "Chart requests naming a value the dataset doesn't have",
		},
		[]string{"view", "field"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gdpdash_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "code"},
	)

	HTTPRequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gdpdash_http_request_latency_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)
