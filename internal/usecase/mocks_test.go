package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"crabbox/internal/domain/model"
	repo "crabbox/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

func (m *TxManagerMock) ReadOnly(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	giftBoxes *GiftBoxRepoMock
	inventory *InventoryRepoMock
	orders    *OrderRepoMock
	ledger    *LedgerRepoMock
	tokens    *TokenRepoMock
	sequences *SequenceRepoMock
	auditLogs *AuditRepoMock
}

func newTxReposMock() *TxReposMock {
	return &TxReposMock{
		giftBoxes: new(GiftBoxRepoMock),
		inventory: new(InventoryRepoMock),
		orders:    new(OrderRepoMock),
		ledger:    new(LedgerRepoMock),
		tokens:    new(TokenRepoMock),
		sequences: new(SequenceRepoMock),
		auditLogs: new(AuditRepoMock),
	}
}

func (r *TxReposMock) GiftBoxes() repo.GiftBoxRepository   { return r.giftBoxes }
func (r *TxReposMock) Inventory() repo.InventoryRepository { return r.inventory }
func (r *TxReposMock) Orders() repo.OrderRepository        { return r.orders }
func (r *TxReposMock) Ledger() repo.LedgerRepository       { return r.ledger }
func (r *TxReposMock) Tokens() repo.TokenRepository        { return r.tokens }
func (r *TxReposMock) Sequences() repo.SequenceRepository  { return r.sequences }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository  { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type GiftBoxRepoMock struct{ mock.Mock }

func (m *GiftBoxRepoMock) ListActive(ctx context.Context, q repo.GiftBoxListQuery) ([]model.GiftBox, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.GiftBox)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *GiftBoxRepoMock) FindByID(ctx context.Context, id int64) (model.GiftBox, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(model.GiftBox)
	return g, args.Error(1)
}

func (m *GiftBoxRepoMock) FindByIDForUpdate(ctx context.Context, id int64) (model.GiftBox, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(model.GiftBox)
	return g, args.Error(1)
}

func (m *GiftBoxRepoMock) Create(ctx context.Context, g model.GiftBox) error {
	return m.Called(ctx, g).Error(0)
}

func (m *GiftBoxRepoMock) Update(ctx context.Context, g model.GiftBox) error {
	return m.Called(ctx, g).Error(0)
}

func (m *GiftBoxRepoMock) MaxID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, giftBoxID int64, qty int64) (bool, error) {
	args := m.Called(ctx, giftBoxID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	return m.Called(ctx, adjustment).Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByBuyer(ctx context.Context, buyer string) ([]model.Order, error) {
	args := m.Called(ctx, buyer)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *OrderRepoMock) UpdateLifecycle(ctx context.Context, order model.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, buyer string, key string) (model.Order, bool, error) {
	args := m.Called(ctx, buyer, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

type LedgerRepoMock struct{ mock.Mock }

func (m *LedgerRepoMock) GetForUpdate(ctx context.Context) (model.Ledger, error) {
	args := m.Called(ctx)
	l, _ := args.Get(0).(model.Ledger)
	return l, args.Error(1)
}

func (m *LedgerRepoMock) Get(ctx context.Context) (model.Ledger, error) {
	args := m.Called(ctx)
	l, _ := args.Get(0).(model.Ledger)
	return l, args.Error(1)
}

func (m *LedgerRepoMock) Credit(ctx context.Context, amount int64) (int64, error) {
	args := m.Called(ctx, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LedgerRepoMock) Debit(ctx context.Context, amount int64) (bool, int64, error) {
	args := m.Called(ctx, amount)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

func (m *LedgerRepoMock) AppendEntry(ctx context.Context, entry model.LedgerEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *LedgerRepoMock) ListEntries(ctx context.Context, limit int) ([]model.LedgerEntry, error) {
	args := m.Called(ctx, limit)
	items, _ := args.Get(0).([]model.LedgerEntry)
	return items, args.Error(1)
}

type TokenRepoMock struct{ mock.Mock }

func (m *TokenRepoMock) BalanceOf(ctx context.Context, address string) (int64, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TokenRepoMock) Allowance(ctx context.Context, owner string, spender string) (int64, error) {
	args := m.Called(ctx, owner, spender)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TokenRepoMock) Approve(ctx context.Context, owner string, spender string, amount int64) error {
	return m.Called(ctx, owner, spender, amount).Error(0)
}

func (m *TokenRepoMock) Transfer(ctx context.Context, from string, to string, amount int64) error {
	return m.Called(ctx, from, to, amount).Error(0)
}

func (m *TokenRepoMock) TransferFrom(ctx context.Context, spender string, from string, to string, amount int64) error {
	return m.Called(ctx, spender, from, to, amount).Error(0)
}

func (m *TokenRepoMock) Mint(ctx context.Context, to string, amount int64) error {
	return m.Called(ctx, to, amount).Error(0)
}

type SequenceRepoMock struct{ mock.Mock }

func (m *SequenceRepoMock) Next(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SequenceRepoMock) Peek(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type AccountRepoMock struct{ mock.Mock }

func (m *AccountRepoMock) Create(ctx context.Context, account *model.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *AccountRepoMock) FindByAddress(ctx context.Context, address string) (*model.Account, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(*model.Account)
	return a, args.Error(1)
}

func (m *AccountRepoMock) Update(ctx context.Context, account *model.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *AccountRepoMock) IncrementTokenVersion(ctx context.Context, address string) error {
	return m.Called(ctx, address).Error(0)
}

type NonceStoreMock struct{ mock.Mock }

func (m *NonceStoreMock) Put(ctx context.Context, address string, nonce string, ttl time.Duration) error {
	return m.Called(ctx, address, nonce, ttl).Error(0)
}

func (m *NonceStoreMock) Consume(ctx context.Context, address string) (string, error) {
	args := m.Called(ctx, address)
	return args.String(0), args.Error(1)
}

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
