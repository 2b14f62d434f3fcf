package repository

import (
	"context"

	repo "crabbox/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	giftBoxes repo.GiftBoxRepository
	inventory repo.InventoryRepository
	orders    repo.OrderRepository
	ledger    repo.LedgerRepository
	tokens    repo.TokenRepository
	sequences repo.SequenceRepository
	auditLogs repo.AuditLogRepository
}

func (r *txReposGorm) GiftBoxes() repo.GiftBoxRepository   { return r.giftBoxes }
func (r *txReposGorm) Inventory() repo.InventoryRepository { return r.inventory }
func (r *txReposGorm) Orders() repo.OrderRepository        { return r.orders }
func (r *txReposGorm) Ledger() repo.LedgerRepository       { return r.ledger }
func (r *txReposGorm) Tokens() repo.TokenRepository        { return r.tokens }
func (r *txReposGorm) Sequences() repo.SequenceRepository  { return r.sequences }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository  { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func newTxRepos(tx *gorm.DB) *txReposGorm {
	//repoはtxを持ったDBで作り直す
	return &txReposGorm{
		giftBoxes: NewGiftBoxGormRepository(tx),
		inventory: NewInventoryGormRepository(tx),
		orders:    NewOrderGormRepository(tx),
		ledger:    NewLedgerGormRepository(tx),
		tokens:    NewTokenGormRepository(tx),
		sequences: NewSequenceGormRepository(tx),
		auditLogs: NewAuditLogGormRepository(tx),
	}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxRepos(tx))
	})
}

// 複数テーブルを同じスナップショットで読む
func (tm *TxManagerGorm) ReadOnly(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SET TRANSACTION ISOLATION LEVEL REPEATABLE READ READ ONLY").Error; err != nil {
				return err
			}
		}
		return fn(newTxRepos(tx))
	})
}
