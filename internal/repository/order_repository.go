package repository

import (
	"context"
	"time"

	"crabbox/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status *model.OrderStatus
	Buyer  string
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// 行ロック付きで取得
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	// ID昇順で全件（購入者で絞る。空文字なら全員分）
	ListByBuyer(ctx context.Context, buyer string) ([]model.Order, error)
	Create(ctx context.Context, order model.Order) error
	// ステータス系のカラムだけ更新する
	UpdateLifecycle(ctx context.Context, order model.Order) error

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, buyer string, key string) (model.Order, bool, error)
	//オーナー用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
