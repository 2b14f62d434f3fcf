package repository

import (
	"context"

	"crabbox/internal/domain/model"
	repo "crabbox/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerGormRepository struct {
	db *gorm.DB
}

func NewLedgerGormRepository(db *gorm.DB) *LedgerGormRepository {
	return &LedgerGormRepository{db: db}
}

// 残高行をロックする。お金が動く処理は必ず最初にこれを呼ぶ。
func (r *LedgerGormRepository) GetForUpdate(ctx context.Context) (model.Ledger, error) {
	var l model.Ledger
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", model.LedgerRowID).
		First(&l).Error
	if isNotFound(err) {
		return model.Ledger{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Ledger{}, err
	}
	return l, nil
}

func (r *LedgerGormRepository) Get(ctx context.Context) (model.Ledger, error) {
	var l model.Ledger
	err := r.db.WithContext(ctx).Where("id = ?", model.LedgerRowID).First(&l).Error
	if isNotFound(err) {
		return model.Ledger{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Ledger{}, err
	}
	return l, nil
}

func (r *LedgerGormRepository) Credit(ctx context.Context, amount int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Ledger{}).
		Where("id = ?", model.LedgerRowID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, repo.ErrNotFound
	}
	return r.balance(ctx)
}

// 残高が足りるときだけ減らす（マイナスにはしない）
func (r *LedgerGormRepository) Debit(ctx context.Context, amount int64) (bool, int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Ledger{}).
		Where("id = ? AND balance >= ?", model.LedgerRowID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, 0, res.Error
	}
	if res.RowsAffected == 0 {
		return false, 0, nil
	}
	b, err := r.balance(ctx)
	if err != nil {
		return false, 0, err
	}
	return true, b, nil
}

func (r *LedgerGormRepository) AppendEntry(ctx context.Context, entry model.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *LedgerGormRepository) ListEntries(ctx context.Context, limit int) ([]model.LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var items []model.LedgerEntry
	if err := r.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&items).Error; err != nil {
		return []model.LedgerEntry{}, err
	}
	return items, nil
}

func (r *LedgerGormRepository) balance(ctx context.Context) (int64, error) {
	var b int64
	err := r.db.WithContext(ctx).Model(&model.Ledger{}).
		Select("balance").
		Where("id = ?", model.LedgerRowID).
		Scan(&b).Error
	return b, err
}
