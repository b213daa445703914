package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medihub_api_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medihub_api_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "medihub_api_active_requests",
			Help: "Number of in-flight HTTP requests",
		},
	)

	// NotificationsTotal counts delivery outcomes: sent, failed, dropped.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medihub_notifications_total",
			Help: "Notification delivery outcomes",
		},
		[]string{"outcome"},
	)

	PaymentIntentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medihub_payment_intents_total",
			Help: "Payment intents requested from the processor",
		},
		[]string{"outcome"},
	)
)

// RecordAPIRequest records one finished HTTP request.
func RecordAPIRequest(method, route, status string, d time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
}

func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

func RecordNotification(outcome string) {
	NotificationsTotal.WithLabelValues(outcome).Inc()
}

func RecordPaymentIntent(outcome string) {
	PaymentIntentsTotal.WithLabelValues(outcome).Inc()
}
