// Package observability registers the service's prometheus metrics:
// HTTP request counters and latency, plus business gauges refreshed at
// scrape time from the deal store.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gartstein/crm/internal/crm/models"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "route", "status_code"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: []float64{0.1, 0.3, 0.5, 0.7, 1, 3, 5, 7, 10},
	}, []string{"method", "route"})

	dealsTotal = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crm_deals_total",
		Help: "Total number of deals in the system.",
	}, []string{"stage"})

	pipelineValue = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crm_pipeline_value_dollars",
		Help: "Total value of deals in pipeline.",
	})

	conversionRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crm_conversion_rate_percent",
		Help: "Lead to customer conversion rate.",
	})
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		dealsTotal,
		pipelineValue,
		conversionRate,
	)
}

// RecordBusinessMetrics refreshes the business gauges. Called before
// every scrape so the exported values track the store without the store
// pushing on each mutation.
func RecordBusinessMetrics(metrics models.Metrics, countsByStage map[models.DealStage]int) {
	for _, stage := range models.Stages {
		dealsTotal.WithLabelValues(string(stage)).Set(float64(countsByStage[stage]))
	}
	pipelineValue.Set(metrics.PipelineValue.InexactFloat64())
	conversionRate.Set(metrics.ConversionRate)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// InstrumentHandler wraps next with request counting and latency
// observation under the given route label.
func InstrumentHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(recorder.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
