// Package metrics は注文・返金・出金の業務メトリクスをPrometheusに出す。
package metrics

import (
	"crabbox/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crabbox"

// usecase.Metrics の実装
type Business struct {
	ordersPlaced     prometheus.Counter
	purchasedAmount  prometheus.Counter
	purchaseRejected *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	withdrawnAmount  prometheus.Counter
}

func NewBusiness(reg prometheus.Registerer) *Business {
	f := promauto.With(reg)
	return &Business{
		ordersPlaced: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Total number of orders placed",
		}),
		purchasedAmount: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "purchased_amount_units_total",
			Help:      "Total token amount (smallest unit) collected by purchases",
		}),
		purchaseRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "purchase_rejected_total",
			Help:      "Rejected purchases by reason",
		}, []string{"reason"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "transitions_total",
			Help:      "Order status transitions by target status",
		}, []string{"status"}),
		withdrawnAmount: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "withdrawn_amount_units_total",
			Help:      "Total token amount (smallest unit) withdrawn by the owner",
		}),
	}
}

func (b *Business) OrderPlaced(amount int64) {
	b.ordersPlaced.Inc()
	b.purchasedAmount.Add(float64(amount))
}

func (b *Business) PurchaseRejected(reason string) {
	b.purchaseRejected.WithLabelValues(reason).Inc()
}

func (b *Business) OrderTransitioned(to model.OrderStatus) {
	b.transitions.WithLabelValues(to.String()).Inc()
}

func (b *Business) Withdrawn(amount int64) {
	b.withdrawnAmount.Add(float64(amount))
}
