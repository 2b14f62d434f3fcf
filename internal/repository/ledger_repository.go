package repository

import (
	"context"

	"crabbox/internal/domain/model"
)

type LedgerRepository interface {
	// 行ロック付きで残高行を取得
	GetForUpdate(ctx context.Context) (model.Ledger, error)
	Get(ctx context.Context) (model.Ledger, error)
	// 加算して新しい残高を返す
	Credit(ctx context.Context, amount int64) (int64, error)
	// 残高が足りるときだけ減算。足りなければ false。
	Debit(ctx context.Context, amount int64) (bool, int64, error)
	AppendEntry(ctx context.Context, entry model.LedgerEntry) error
	// 新しい順
	ListEntries(ctx context.Context, limit int) ([]model.LedgerEntry, error)
}
