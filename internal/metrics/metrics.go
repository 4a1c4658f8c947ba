// Package metrics defines Prometheus metrics for the searchcraft connector.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/searchcraftinc/searchcraft-connect/client"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "searchcraft_connect_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchcraft_connect_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchcraft_connect_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "searchcraft_api_request_duration_seconds",
			Help:    "Outbound Searchcraft API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	APIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchcraft_api_errors_total",
			Help: "Outbound Searchcraft API errors by kind",
		},
		[]string{"kind"},
	)

	SyncQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchcraft_connect_sync_queue_depth",
			Help: "Current content sync queue depth",
		},
	)

	SyncEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchcraft_connect_sync_events_total",
			Help: "Content sync events by action and result",
		},
		[]string{"action", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		APIRequestDuration, APIErrorsTotal,
		SyncQueueDepth, SyncEventsTotal,
	)
}

// ObserveAPIRequest records one outbound Searchcraft API call. It is meant to
// be passed to client.WithRequestObserver.
func ObserveAPIRequest(info client.RequestInfo) {
	status := "none"
	if info.Status > 0 {
		status = strconv.Itoa(info.Status)
	}
	APIRequestDuration.WithLabelValues(info.Method.String(), status).Observe(info.Duration.Seconds())

	if e, ok := client.AsError(info.Err); ok {
		APIErrorsTotal.WithLabelValues(e.Kind.String()).Inc()
	}
}
