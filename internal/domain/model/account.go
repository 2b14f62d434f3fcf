package model

import "time"

type Role string

const (
	RoleBuyer Role = "BUYER"
	RoleOwner Role = "OWNER"
)

// ウォレットでログインしたアカウント
// ロールは保存せず、ログイン時にオーナーアドレスと比較して決める。
type Account struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Address      string     `gorm:"type:varchar(42);uniqueIndex;not null" json:"address"`
	TokenVersion int        `gorm:"not null;default:0" json:"token_version"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 署名ログイン用のワンタイムnonce（Redisが無いときのDB保存先）
type LoginNonce struct {
	Address   string    `gorm:"type:varchar(42);primaryKey"`
	Nonce     string    `gorm:"type:varchar(64);not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}
