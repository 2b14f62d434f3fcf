package model

import "time"

// 決済トークン（6桁小数のステーブルコイン）の残高
type TokenAccount struct {
	Address   string    `gorm:"type:varchar(42);primaryKey" json:"address"`
	Balance   int64     `gorm:"not null;default:0;check:chk_token_accounts_balance,balance >= 0" json:"balance"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// Owner が Spender に許可した引き落とし上限
type TokenAllowance struct {
	Owner     string    `gorm:"type:varchar(42);primaryKey" json:"owner"`
	Spender   string    `gorm:"type:varchar(42);primaryKey" json:"spender"`
	Amount    int64     `gorm:"not null;default:0;check:chk_token_allowances_amount,amount >= 0" json:"amount"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
