package repository

import (
	"context"
	"time"

	"crabbox/internal/domain/model"
	repo "crabbox/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Redisを使わないときのnonce置き場
type NonceGormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewNonceGormStore(db *gorm.DB) *NonceGormStore {
	return &NonceGormStore{db: db, now: time.Now}
}

func (s *NonceGormStore) Put(ctx context.Context, address string, nonce string, ttl time.Duration) error {
	n := model.LoginNonce{
		Address:   address,
		Nonce:     nonce,
		ExpiresAt: s.now().Add(ttl),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"nonce", "expires_at"}),
	}).Create(&n).Error
}

// 1回使ったら消す
func (s *NonceGormStore) Consume(ctx context.Context, address string) (string, error) {
	var nonce string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n model.LoginNonce
		if err := tx.Where("address = ?", address).First(&n).Error; err != nil {
			if isNotFound(err) {
				return repo.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&model.LoginNonce{}, "address = ?", address).Error; err != nil {
			return err
		}
		if !s.now().Before(n.ExpiresAt) {
			return repo.ErrNotFound
		}
		nonce = n.Nonce
		return nil
	})
	if err != nil {
		return "", err
	}
	return nonce, nil
}
