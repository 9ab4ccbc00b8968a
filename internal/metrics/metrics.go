package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service. Each instance owns
// its registry so tests can create as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	NotificationsReceived *prometheus.CounterVec
	MarketplaceRequests   *prometheus.CounterVec
	InventoryDispatch     *prometheus.CounterVec
	ReconciledOrders      *prometheus.CounterVec
	PublishFailures       *prometheus.CounterVec
	JobDuration           *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		NotificationsReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_received_total",
				Help: "Total number of webhook notifications received",
			},
			[]string{"topic", "result"},
		),
		MarketplaceRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketplace_requests_total",
				Help: "Total number of marketplace API calls by outcome",
			},
			[]string{"outcome"},
		),
		InventoryDispatch: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_dispatch_total",
				Help: "Total number of stock-location forwards by result",
			},
			[]string{"result"},
		),
		ReconciledOrders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reconciled_orders_total",
				Help: "Total number of orders handled by the reconciler",
			},
			[]string{"outcome"},
		),
		PublishFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_publish_failures_total",
				Help: "Total number of Kafka publish failures",
			},
			[]string{"topic"},
		),
		JobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "job_duration_seconds",
				Help:    "Duration of batch correction jobs",
				Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
			},
			[]string{"job"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.NotificationsReceived,
		m.MarketplaceRequests,
		m.InventoryDispatch,
		m.ReconciledOrders,
		m.PublishFailures,
		m.JobDuration,
	)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
