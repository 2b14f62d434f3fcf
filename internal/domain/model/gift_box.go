package model

import "time"

// 商品（ギフトボックス）
// IDは呼び出し側が指定する。削除はせず Active=false で非公開にする。
type GiftBox struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       int64     `gorm:"not null;check:chk_gift_boxes_price,price >= 0" json:"price"`
	Stock       int64     `gorm:"not null;check:chk_gift_boxes_stock,stock >= 0" json:"stock"`
	Active      bool      `gorm:"not null;default:false;index" json:"active"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
