package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the storefront collectors.
type Metrics struct {
	StepVisits       *prometheus.CounterVec
	ValidationFails  *prometheus.CounterVec
	OrdersCreated    prometheus.Counter
	OrderTransitions *prometheus.CounterVec
	Deliveries       *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		StepVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_step_visits_total",
				Help: "Total number of workflow steps entered",
			},
			[]string{"workflow", "step"},
		),
		ValidationFails: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_validation_failures_total",
				Help: "Total number of inputs rejected by a workflow step",
			},
			[]string{"workflow", "step"},
		),
		OrdersCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "storefront_orders_created_total",
				Help: "Total number of orders created",
			},
		),
		OrderTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_order_transitions_total",
				Help: "Total number of order status changes",
			},
			[]string{"status"},
		),
		Deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_deliveries_total",
				Help: "Total number of outbound delivery attempts",
			},
			[]string{"channel", "failed"},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.StepVisits, m.ValidationFails, m.OrdersCreated, m.OrderTransitions, m.Deliveries)
	return m
}

// Hooks returns hooks that record into the collectors.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			m.StepVisits.WithLabelValues(string(e.Workflow), string(e.Step)).Inc()
		},
		OnValidationFail: func(_ context.Context, e *domain.StepEvent) {
			m.ValidationFails.WithLabelValues(string(e.Workflow), string(e.Step)).Inc()
		},
		OnOrderCreated: func(context.Context, *domain.OrderChangeEvent) {
			m.OrdersCreated.Inc()
		},
		OnOrderStatus: func(_ context.Context, e *domain.OrderChangeEvent) {
			m.OrderTransitions.WithLabelValues(string(e.Status)).Inc()
		},
		OnDelivery: func(_ context.Context, e *domain.DeliveryEvent) {
			m.Deliveries.WithLabelValues(e.Channel, strconv.FormatBool(e.Failed)).Inc()
		},
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
