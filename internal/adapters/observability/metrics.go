package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"park_reviews/internal/domain"
)

var (
	ReviewsLoaded = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "parkreviews", Name: "reviews_loaded_total", Help: "Reviews loaded at startup."},
		[]string{"source"}, // source: csv|mysql
	)
	RowsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "parkreviews", Name: "rows_skipped_total", Help: "Source rows dropped while loading."},
		[]string{"reason"},
	)
	MenuQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "parkreviews", Name: "menu_queries_total", Help: "Menu options dispatched."},
		[]string{"option"},
	)
	MenuLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "parkreviews", Name: "menu_query_duration_seconds",
			Help:    "Time spent answering a menu option.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"option"},
	)
	Charts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "parkreviews", Name: "charts_total", Help: "Charts rendered."},
		[]string{"kind", "status"}, // kind: bar|line ; status: ok|error
	)
	ImportBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "parkreviews", Name: "import_batches_total", Help: "Importer batches written."},
		[]string{"status"},
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(ReviewsLoaded, RowsSkipped, MenuQueries, MenuLatency, Charts, ImportBatches)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// PushMetrics sends every collector in reg to a Prometheus Pushgateway under
// job. Short-lived commands use it instead of a scrape endpoint.
func PushMetrics(gatewayURL, job string, reg *prometheus.Registry) error {
	return push.New(gatewayURL, job).Gatherer(reg).Push()
}

func ObserveLoad(source string, rep domain.LoadReport) {
	ReviewsLoaded.WithLabelValues(source).Add(float64(len(rep.Reviews)))
	for reason, n := range rep.Skipped {
		RowsSkipped.WithLabelValues(string(reason)).Add(float64(n))
	}
}

func ObserveMenu(option string, dur time.Duration) {
	MenuQueries.WithLabelValues(option).Inc()
	MenuLatency.WithLabelValues(option).Observe(dur.Seconds())
}

func ObserveChart(kind string, err error) {
	Charts.WithLabelValues(kind, status(err)).Inc()
}

func ObserveImportBatch(err error) {
	ImportBatches.WithLabelValues(status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
