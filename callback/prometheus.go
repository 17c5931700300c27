package callback

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCallback exports request metrics to Prometheus.
type PrometheusCallback struct {
	latency        *prometheus.HistogramVec
	requestCounter *prometheus.CounterVec
	bytesCounter   *prometheus.CounterVec
}

var (
	prometheusOnce     sync.Once
	prometheusCallback *PrometheusCallback
)

// NewPrometheusCallback creates a Prometheus callback with standard metrics.
// Metrics are registered on the default registry exactly once; subsequent
// calls return the same instance.
func NewPrometheusCallback() *PrometheusCallback {
	prometheusOnce.Do(func() {
		prometheusCallback = &PrometheusCallback{
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "batchrouter_request_latency_seconds",
				Help:    "API request latency",
				Buckets: prometheus.DefBuckets,
			}, []string{"method"}),

			requestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "batchrouter_requests_total",
				Help: "Total number of API requests",
			}, []string{"method", "status"}),

			bytesCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "batchrouter_response_bytes_total",
				Help: "Total response bytes received",
			}, []string{"method"}),
		}

		prometheus.MustRegister(
			prometheusCallback.latency,
			prometheusCallback.requestCounter,
			prometheusCallback.bytesCounter,
		)
	})

	return prometheusCallback
}

func (p *PrometheusCallback) LogSuccess(data LogData) {
	p.latency.With(prometheus.Labels{"method": data.Method}).Observe(data.Latency.Seconds())

	p.requestCounter.With(prometheus.Labels{
		"method": data.Method, "status": strconv.Itoa(data.StatusCode),
	}).Inc()

	p.bytesCounter.With(prometheus.Labels{"method": data.Method}).Add(float64(data.BytesIn))
}

func (p *PrometheusCallback) LogFailure(data LogData) {
	p.latency.With(prometheus.Labels{"method": data.Method}).Observe(data.Latency.Seconds())

	status := "error"
	if data.StatusCode != 0 {
		status = strconv.Itoa(data.StatusCode)
	}
	p.requestCounter.With(prometheus.Labels{"method": data.Method, "status": status}).Inc()
}

// Handler returns an HTTP handler exposing the collected metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
