package repository

import (
	"context"

	"crabbox/internal/domain/model"
	domainrepo "crabbox/internal/repository"

	"gorm.io/gorm"
)

type accountGormRepository struct {
	db *gorm.DB
}

// DI
func NewAccountGormRepository(db *gorm.DB) domainrepo.AccountRepository {
	return &accountGormRepository{db: db}
}

func (r *accountGormRepository) Create(ctx context.Context, account *model.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return err
	}
	return nil
}

// アドレスで1件取得
func (r *accountGormRepository) FindByAddress(ctx context.Context, address string) (*model.Account, error) {
	var a model.Account

	err := r.db.WithContext(ctx).
		Where("address = ?", address).
		First(&a).Error

	if err != nil {
		if isNotFound(err) {
			return nil, domainrepo.ErrNotFound
		}
		return nil, err
	}

	return &a, nil
}

func (r *accountGormRepository) Update(ctx context.Context, account *model.Account) error {
	if err := r.db.WithContext(ctx).Save(account).Error; err != nil {
		return err
	}
	return nil
}

// token_versionを+1
func (r *accountGormRepository) IncrementTokenVersion(ctx context.Context, address string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("address = ?", address).
		UpdateColumn("token_version", gorm.Expr("token_version + ?", 1))

	if res.Error != nil {
		return res.Error
	}

	// 0件更新は「対象がない」
	if res.RowsAffected == 0 {
		return domainrepo.ErrNotFound
	}
	return nil
}
