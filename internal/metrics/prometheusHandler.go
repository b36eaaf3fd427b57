package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls and pipeline stages.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
}, []string{"service"})

var documentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "documents_processed_total",
	Help: "Uploaded documents labelled by format and extraction status",
}, []string{"format", "status"})

var indexedChunks = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "indexed_chunks",
	Help: "Number of chunks in the current index",
})

var questionsAnswered = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "questions_answered_total",
	Help: "Questions answered labelled by outcome",
}, []string{"status"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CountDocument(format, status string) {
	if format == "" {
		format = "UNKNOWN"
	}
	documentsProcessed.WithLabelValues(format, status).Inc()
}

func SetIndexedChunks(n int) {
	indexedChunks.Set(float64(n))
}

func CountQuestion(status string) {
	questionsAnswered.WithLabelValues(status).Inc()
}

// Handler serves the default registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
