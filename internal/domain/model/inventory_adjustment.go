package model

import "time"

//在庫調整の履歴（商品の登録・更新で在庫が変わったとき）

type InventoryAdjustment struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	GiftBoxID    int64     `gorm:"not null;index" json:"gift_box_id"`
	ActorAddress string    `gorm:"type:varchar(42);not null;index" json:"actor_address"`
	Delta        int64     `gorm:"not null" json:"delta"`
	Reason       string    `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
