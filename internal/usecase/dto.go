package usecase

import (
	"encoding/json"
	"time"

	"crabbox/internal/domain/model"
	"crabbox/internal/domain/money"
)

type GiftBoxOutput struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        int64     `json:"price"`
	PriceDisplay string    `json:"price_display"`
	Stock        int64     `json:"stock"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type OrderOutput struct {
	ID             int64  `json:"id"`
	Buyer          string `json:"buyer"`
	GiftBoxID      int64  `json:"gift_box_id"`
	Quantity       int64  `json:"quantity"`
	UnitPrice      int64  `json:"unit_price"`
	TotalAmount    int64  `json:"total_amount"`
	TotalDisplay   string `json:"total_display"`
	ShippingInfo   string `json:"shipping_info"`
	Fulfilled      bool   `json:"fulfilled"`
	TrackingNumber string `json:"tracking_number"`
	// 0..4 の数値と名前の両方を返す
	Status       uint8  `json:"status"`
	StatusName   string `json:"status_name"`
	RefundAmount *int64 `json:"refund_amount"`
	// 作成時刻（unix秒）
	Timestamp int64     `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

type LedgerEntryOutput struct {
	ID           int64     `json:"id"`
	Type         string    `json:"type"`
	OrderID      *int64    `json:"order_id"`
	Counterparty string    `json:"counterparty"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

type LedgerSummaryOutput struct {
	Balance        int64               `json:"balance"`
	BalanceDisplay string              `json:"balance_display"`
	Entries        []LedgerEntryOutput `json:"entries"`
}

type ListOutput[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func toGiftBoxOutput(g model.GiftBox) GiftBoxOutput {
	return GiftBoxOutput{
		ID:           g.ID,
		Name:         g.Name,
		Description:  g.Description,
		Price:        g.Price,
		PriceDisplay: money.FormatAmount(g.Price),
		Stock:        g.Stock,
		Active:       g.Active,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

func toOrderOutput(o model.Order) OrderOutput {
	return OrderOutput{
		ID:             o.ID,
		Buyer:          o.Buyer,
		GiftBoxID:      o.GiftBoxID,
		Quantity:       o.Quantity,
		UnitPrice:      o.UnitPrice,
		TotalAmount:    o.TotalAmount,
		TotalDisplay:   money.FormatAmount(o.TotalAmount),
		ShippingInfo:   o.ShippingInfo,
		Fulfilled:      o.Fulfilled,
		TrackingNumber: o.TrackingNumber,
		Status:         uint8(o.Status),
		StatusName:     o.Status.String(),
		RefundAmount:   o.RefundAmount,
		Timestamp:      o.CreatedAt.Unix(),
		CreatedAt:      o.CreatedAt,
	}
}

func toOrderOutputs(orders []model.Order) []OrderOutput {
	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o))
	}
	return outs
}

func toLedgerEntryOutput(e model.LedgerEntry) LedgerEntryOutput {
	return LedgerEntryOutput{
		ID:           e.ID,
		Type:         string(e.Type),
		OrderID:      e.OrderID,
		Counterparty: e.Counterparty,
		Amount:       e.Amount,
		BalanceAfter: e.BalanceAfter,
		CreatedAt:    e.CreatedAt,
	}
}

// 監査ログ用。失敗しても空文字にする
func toJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
