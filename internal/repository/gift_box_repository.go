package repository

import (
	"context"

	"crabbox/internal/domain/model"
)

// 公開一覧の検索条件
type GiftBoxListQuery struct {
	Page     int
	Limit    int
	Q        string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
}

// 商品（ギフトボックス）の永続化
type GiftBoxRepository interface {
	ListActive(ctx context.Context, q GiftBoxListQuery) ([]model.GiftBox, int64, error)
	FindByID(ctx context.Context, id int64) (model.GiftBox, error)
	// 行ロック付きで取得（トランザクション内で使う）
	FindByIDForUpdate(ctx context.Context, id int64) (model.GiftBox, error)
	Create(ctx context.Context, g model.GiftBox) error
	Update(ctx context.Context, g model.GiftBox) error
	// 最大ID（空なら0）
	MaxID(ctx context.Context) (int64, error)
}
