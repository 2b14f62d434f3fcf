package model

// 連番（注文IDを欠番なしで払い出す）
type Sequence struct {
	Name      string `gorm:"type:varchar(50);primaryKey"`
	NextValue int64  `gorm:"not null"`
}

const SequenceOrders = "orders"
