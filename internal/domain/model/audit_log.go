package model

import "time"

// オーナー操作の種類
type AuditAction string

const (
	//商品の登録・更新
	AuditActionUpsertGiftBox AuditAction = "UPSERT_GIFT_BOX"
	//発送
	AuditActionFulfillOrder AuditAction = "FULFILL_ORDER"
	//返金承認
	AuditActionApproveRefund AuditAction = "APPROVE_REFUND"
	//返金拒否
	AuditActionRejectRefund AuditAction = "REJECT_REFUND"
	//出金
	AuditActionWithdraw AuditAction = "WITHDRAW"
	//テスト用トークン発行
	AuditActionMintToken AuditAction = "MINT_TOKEN"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceGiftBox AuditResourceType = "gift_box"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceLedger  AuditResourceType = "ledger"
	AuditResourceToken   AuditResourceType = "token"
)

// 監査ログ（オーナー操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したアドレス
	ActorAddress string `gorm:"type:varchar(42);not null;index" json:"actor_address"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//対象のID（出金など対象が1つしかないものは LedgerRowID）
	ResourceID int64 `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
