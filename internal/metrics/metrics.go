package metrics

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	StoreActionsTotal     *prometheus.CounterVec
	StoreQueueLength      prometheus.Gauge
	OperationsTotal       *prometheus.CounterVec
	OperationsInFlight    *prometheus.GaugeVec
	BackendRequestsTotal  *prometheus.CounterVec
	BackendRequestSeconds *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		StoreActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "store_actions_total",
			Help: "total number of actions reduced by the store",
		}, []string{"type", "applied"}),
		StoreQueueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "store_queue_length",
			Help: "number of actions waiting to be reduced",
		}),
		OperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "operations_total",
			Help: "total number of completed operations",
		}, []string{"key", "status"}),
		OperationsInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "operations_in_flight",
			Help: "number of in flight operations",
		}, []string{"key"}),
		BackendRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "total number of backend http requests",
		}, []string{"backend", "method", "status"}),
		BackendRequestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "backend http request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend", "method"}),
	}

	metrics.Enable(reg)
	return metrics
}

func (m *Metrics) Enable(reg prometheus.Registerer) {
	reg.MustRegister(m.StoreActionsTotal)
	reg.MustRegister(m.StoreQueueLength)
	reg.MustRegister(m.OperationsTotal)
	reg.MustRegister(m.OperationsInFlight)
	reg.MustRegister(m.BackendRequestsTotal)
	reg.MustRegister(m.BackendRequestSeconds)
}

func (m *Metrics) Disable(reg prometheus.Registerer) {
	reg.Unregister(m.StoreActionsTotal)
	reg.Unregister(m.StoreQueueLength)
	reg.Unregister(m.OperationsTotal)
	reg.Unregister(m.OperationsInFlight)
	reg.Unregister(m.BackendRequestsTotal)
	reg.Unregister(m.BackendRequestSeconds)
}
