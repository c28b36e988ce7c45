// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filepower_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "filepower_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	UploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filepower_upload_bytes_total",
		Help: "Bytes stored by uploads.",
	})

	DownloadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filepower_download_bytes_total",
		Help: "Bytes served by downloads.",
	})

	LoginFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filepower_login_failures_total",
		Help: "Rejected sign-ins by reason.",
	}, []string{"reason"})
)

func ObserveRequest(method, route string, status int, d time.Duration) {
	requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
