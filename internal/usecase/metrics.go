package usecase

import "crabbox/internal/domain/model"

// 業務メトリクスの記録先（prometheus実装はinfra/metrics）
type Metrics interface {
	OrderPlaced(amount int64)
	PurchaseRejected(reason string)
	OrderTransitioned(to model.OrderStatus)
	Withdrawn(amount int64)
}

type nopMetrics struct{}

func (nopMetrics) OrderPlaced(int64)                   {}
func (nopMetrics) PurchaseRejected(string)             {}
func (nopMetrics) OrderTransitioned(model.OrderStatus) {}
func (nopMetrics) Withdrawn(int64)                     {}

func orNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
