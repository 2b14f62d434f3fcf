package repository

import (
	"context"
	"time"

	"crabbox/internal/domain/model"
)

// オーナー操作ログの絞り込み。アドレスは大小文字を問わない。
type AuditLogFilter struct {
	// 操作したアドレス
	ActorAddress string
	// 操作者か、前後のスナップショットにこのアドレスが出てくる行（購入者・発行先など）
	Involving string
	// 空なら全種類
	Actions []model.AuditAction
	// トークンが動いた操作（返金承認・出金・発行）だけ
	MoneyMovementsOnly bool
	ResourceType       *model.AuditResourceType
	ResourceID         *int64
	CreatedFrom        *time.Time
	CreatedTo          *time.Time
	Limit              int
	Offset             int
}

type AuditLogRepository interface {
	// ActorAddressはチェックサム形式にして保存する
	Create(ctx context.Context, log model.AuditLog) error
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
