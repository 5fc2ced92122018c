// Package metrics holds the Prometheus collectors shared by both services.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docqa_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"service", "route", "method", "status"})

	RequestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docqa_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "route"})

	IndexBuilds = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docqa_index_builds_total",
		Help: "Documents split, embedded and stored in the vector index",
	})

	IndexCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docqa_index_cache_hits_total",
		Help: "Queries answered from an already indexed document",
	})

	ProviderErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docqa_provider_errors_total",
		Help: "Failed calls to model providers",
	}, []string{"provider"})

	Uploads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docqa_uploads_total",
		Help: "Files stored through /upload",
	})
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestLatency,
			IndexBuilds,
			IndexCacheHits,
			ProviderErrors,
			Uploads,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
