// Package metrics регистрирует prometheus-метрики сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP метрики
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)

	// Биллинговые метрики
	BillingEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_events_total",
			Help: "Total number of processed billing webhook events",
		},
		[]string{"event_type", "result"},
	)
	CheckoutSessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_sessions_total",
			Help: "Total number of created checkout sessions",
		},
		[]string{"mode", "result"},
	)

	// Метрики скачиваний
	DownloadTokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "download_tokens_issued_total",
			Help: "Total number of issued download tokens",
		},
		[]string{"result"},
	)
	DownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downloads_total",
			Help: "Total number of download token redemptions",
		},
		[]string{"result"},
	)
)

// MustRegister регистрирует все метрики в реестре prometheus по умолчанию.
// Вызывается один раз при старте сервиса.
func MustRegister() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		BillingEventsTotal,
		CheckoutSessionsTotal,
		DownloadTokensIssuedTotal,
		DownloadsTotal,
	)
}
