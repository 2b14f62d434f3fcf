package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	GiftBoxes() GiftBoxRepository
	Inventory() InventoryRepository
	Orders() OrderRepository
	Ledger() LedgerRepository
	Tokens() TokenRepository
	Sequences() SequenceRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
	// 読み取り専用（同じスナップショットで読む）
	ReadOnly(ctx context.Context, fn func(r TxRepos) error) error
}
