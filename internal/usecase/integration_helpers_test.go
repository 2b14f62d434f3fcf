package usecase_test

import (
	"context"
	"testing"

	infradb "crabbox/internal/infra/db"
	infrarepo "crabbox/internal/infra/repository"
	"crabbox/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	ownerAddr   = "0x6A98050e97CE3224a8E8df91973f6Abf3C977FAb"
	serviceAddr = "0x9999999999999999999999999999999999999999"
	aliceAddr   = "0x1111111111111111111111111111111111111111"
	bobAddr     = "0x2222222222222222222222222222222222222222"
)

var (
	owner = usecase.Caller{Address: ownerAddr}
	alice = usecase.Caller{Address: aliceAddr}
	bob   = usecase.Caller{Address: bobAddr}
)

// SQLiteのインメモリDBに全usecaseを組み立てる
type testEnv struct {
	db      *gorm.DB
	catalog *usecase.CatalogUsecase
	orders  *usecase.OrderUsecase
	seller  *usecase.SellerUsecase
	tokens  *usecase.TokenUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := infradb.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, infradb.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	tx := infrarepo.NewTxManagerGorm(db)
	access := usecase.NewAccessControl(ownerAddr)

	return &testEnv{
		db:      db,
		catalog: usecase.NewCatalogUsecase(tx, infrarepo.NewGiftBoxGormRepository(db), access, nil),
		orders:  usecase.NewOrderUsecase(tx, access, serviceAddr, nil, nil),
		seller:  usecase.NewSellerUsecase(tx, access, serviceAddr, nil, nil),
		tokens:  usecase.NewTokenUsecase(tx, access, true, nil),
	}
}

// 購入者にトークンを配って預かりアドレスへの許可も出す
func (e *testEnv) fund(t *testing.T, buyer usecase.Caller, amount int64) {
	t.Helper()
	ctx := context.Background()
	_, err := e.tokens.Mint(ctx, owner, buyer.Address, amount)
	require.NoError(t, err)
	_, err = e.tokens.Approve(ctx, buyer, serviceAddr, amount)
	require.NoError(t, err)
}

func (e *testEnv) upsert(t *testing.T, id int64, price int64, stock int64, active bool) {
	t.Helper()
	_, err := e.catalog.UpsertGiftBox(context.Background(), owner, usecase.UpsertGiftBoxInput{
		ID: id, Name: "Crab box", Price: price, Stock: stock, Active: active,
	})
	require.NoError(t, err)
}

func (e *testEnv) ledgerBalance(t *testing.T) int64 {
	t.Helper()
	s, err := e.seller.LedgerSummary(context.Background(), owner, 10)
	require.NoError(t, err)
	return s.Balance
}

func (e *testEnv) stock(t *testing.T, id int64) int64 {
	t.Helper()
	g, err := e.catalog.GetGiftBox(context.Background(), id)
	require.NoError(t, err)
	return g.Stock
}

func (e *testEnv) balanceOf(t *testing.T, addr string) int64 {
	t.Helper()
	b, err := e.tokens.BalanceOf(context.Background(), addr)
	require.NoError(t, err)
	return b.Balance
}

func buy(e *testEnv, buyer usecase.Caller, giftBoxID int64, qty int64) (usecase.OrderOutput, error) {
	return e.orders.BuyGiftBox(context.Background(), buyer, usecase.BuyGiftBoxInput{
		GiftBoxID:    giftBoxID,
		Quantity:     qty,
		ShippingInfo: "1-2-3 Tokyo",
	})
}
