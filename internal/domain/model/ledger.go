package model

import "time"

// 預かり残高は1行だけ持つ
const LedgerRowID int64 = 1

// 預かり残高（購入代金の合計 − 返金 − 出金）
type Ledger struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Balance   int64     `gorm:"not null;default:0;check:chk_ledgers_balance,balance >= 0" json:"balance"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type LedgerEntryType string

const (
	LedgerEntryPurchase LedgerEntryType = "PURCHASE"
	LedgerEntryRefund   LedgerEntryType = "REFUND"
	LedgerEntryWithdraw LedgerEntryType = "WITHDRAW"
)

// 残高の増減履歴。追記のみ。
// Amountは入金ならプラス、出金ならマイナス。
type LedgerEntry struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Type         LedgerEntryType `gorm:"type:varchar(20);not null;index" json:"type"`
	OrderID      *int64          `gorm:"index" json:"order_id"`
	Counterparty string          `gorm:"type:varchar(42);not null" json:"counterparty"`
	Amount       int64           `gorm:"not null" json:"amount"`
	BalanceAfter int64           `gorm:"not null" json:"balance_after"`
	CreatedAt    time.Time       `gorm:"not null;index" json:"created_at"`
}
