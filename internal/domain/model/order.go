package model

import "time"

// 注文ステータス（数値はクライアント互換のため固定）
type OrderStatus uint8

const (
	OrderStatusPending         OrderStatus = 0
	OrderStatusFulfilled       OrderStatus = 1
	OrderStatusRefundRequested OrderStatus = 2
	OrderStatusRefunded        OrderStatus = 3
	OrderStatusRefundRejected  OrderStatus = 4
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "PENDING"
	case OrderStatusFulfilled:
		return "FULFILLED"
	case OrderStatusRefundRequested:
		return "REFUND_REQUESTED"
	case OrderStatusRefunded:
		return "REFUNDED"
	case OrderStatusRefundRejected:
		return "REFUND_REJECTED"
	default:
		return "UNKNOWN"
	}
}

// ParseOrderStatus は "PENDING" などの名前からステータスを返す
func ParseOrderStatus(name string) (OrderStatus, bool) {
	for s := OrderStatusPending; s <= OrderStatusRefundRejected; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}

// 終端ステータスか（購入者からはもう動かせない）
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFulfilled || s == OrderStatusRefunded || s == OrderStatusRefundRejected
}

// 注文
// 単価と合計は購入時点のスナップショット。
type Order struct {
	ID             int64       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Buyer          string      `gorm:"type:varchar(42);not null;index;uniqueIndex:idx_orders_buyer_idem,priority:1" json:"buyer"`
	GiftBoxID      int64       `gorm:"not null;index" json:"gift_box_id"`
	Quantity       int64       `gorm:"not null;check:chk_orders_quantity,quantity > 0" json:"quantity"`
	UnitPrice      int64       `gorm:"not null" json:"unit_price"`
	TotalAmount    int64       `gorm:"not null" json:"total_amount"`
	ShippingInfo   string      `gorm:"type:text;not null" json:"shipping_info"`
	Fulfilled      bool        `gorm:"not null;default:false" json:"fulfilled"`
	TrackingNumber string      `gorm:"type:varchar(255);not null;default:''" json:"tracking_number"`
	Status         OrderStatus `gorm:"type:smallint;not null;index" json:"status"`
	RefundAmount   *int64      `json:"refund_amount"`
	IdempotencyKey *string     `gorm:"type:varchar(255);uniqueIndex:idx_orders_buyer_idem,priority:2" json:"-"`
	CreatedAt      time.Time   `gorm:"not null;index" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
