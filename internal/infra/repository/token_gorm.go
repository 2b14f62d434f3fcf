package repository

import (
	"context"
	"time"

	"crabbox/internal/domain/model"
	repo "crabbox/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DB上の決済トークン。呼び出し側のトランザクションに乗るので購入・返金と一緒にrollbackされる。
type TokenGormRepository struct {
	db *gorm.DB
}

func NewTokenGormRepository(db *gorm.DB) *TokenGormRepository {
	return &TokenGormRepository{db: db}
}

// 口座が無ければ0
func (r *TokenGormRepository) BalanceOf(ctx context.Context, address string) (int64, error) {
	var acc model.TokenAccount
	err := r.db.WithContext(ctx).Where("address = ?", address).First(&acc).Error
	if isNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

func (r *TokenGormRepository) Allowance(ctx context.Context, owner string, spender string) (int64, error) {
	var a model.TokenAllowance
	err := r.db.WithContext(ctx).Where("owner = ? AND spender = ?", owner, spender).First(&a).Error
	if isNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return a.Amount, nil
}

// 許可額は加算ではなく上書き
func (r *TokenGormRepository) Approve(ctx context.Context, owner string, spender string, amount int64) error {
	a := model.TokenAllowance{Owner: owner, Spender: spender, Amount: amount}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "spender"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&a).Error
}

func (r *TokenGormRepository) Transfer(ctx context.Context, from string, to string, amount int64) error {
	if err := r.debit(ctx, from, amount); err != nil {
		return err
	}
	return r.credit(ctx, to, amount)
}

func (r *TokenGormRepository) TransferFrom(ctx context.Context, spender string, from string, to string, amount int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.TokenAllowance{}).
		Where("owner = ? AND spender = ? AND amount >= ?", from, spender, amount).
		Update("amount", gorm.Expr("amount - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrInsufficientAllowance
	}
	return r.Transfer(ctx, from, to, amount)
}

func (r *TokenGormRepository) Mint(ctx context.Context, to string, amount int64) error {
	return r.credit(ctx, to, amount)
}

func (r *TokenGormRepository) debit(ctx context.Context, address string, amount int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.TokenAccount{}).
		Where("address = ? AND balance >= ?", address, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrInsufficientBalance
	}
	return nil
}

// 口座が無ければ作る（upsert）
func (r *TokenGormRepository) credit(ctx context.Context, address string, amount int64) error {
	acc := model.TokenAccount{Address: address, Balance: amount}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance":    gorm.Expr("token_accounts.balance + ?", amount),
			"updated_at": time.Now(),
		}),
	}).Create(&acc).Error
}
