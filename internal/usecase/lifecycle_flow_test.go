package usecase_test

import (
	"context"
	"testing"

	"crabbox/internal/domain/model"
	repo "crabbox/internal/repository"
	"crabbox/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1商品・1注文（Pending）の状態を作る
func pendingOrder(t *testing.T) (*testEnv, usecase.OrderOutput) {
	t.Helper()
	e := newTestEnv(t)
	e.upsert(t, 1, 5_000_000, 10, true)
	e.fund(t, alice, 50_000_000)
	o, err := buy(e, alice, 1, 2)
	require.NoError(t, err)
	return e, o
}

func TestFulfillOrder_Scenario(t *testing.T) {
	e, o := pendingOrder(t)
	ctx := context.Background()

	_, err := e.seller.FulfillOrder(ctx, owner, o.ID, "SF123456")
	require.NoError(t, err)

	got, err := e.orders.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, uint8(model.OrderStatusFulfilled), got.Status)
	assert.Equal(t, "SF123456", got.TrackingNumber)
	assert.True(t, got.Fulfilled)

	//発送後は返金申請できない
	_, err = e.orders.RequestRefund(ctx, alice, o.ID)
	assert.ErrorIs(t, err, usecase.ErrInvalidState)

	//二重発送もできない
	_, err = e.seller.FulfillOrder(ctx, owner, o.ID, "SF2")
	assert.ErrorIs(t, err, usecase.ErrInvalidState)
}

func TestFulfillOrder_Errors(t *testing.T) {
	e, o := pendingOrder(t)
	ctx := context.Background()

	_, err := e.seller.FulfillOrder(ctx, alice, o.ID, "SF1")
	assert.ErrorIs(t, err, usecase.ErrPermissionDenied)

	_, err = e.seller.FulfillOrder(ctx, owner, 999, "SF1")
	assert.ErrorIs(t, err, usecase.ErrNotFound)

	_, err = e.seller.FulfillOrder(ctx, owner, o.ID, "  ")
	assert.ErrorIs(t, err, usecase.ErrValidation)
}

func TestRequestRefund_Errors(t *testing.T) {
	e, o := pendingOrder(t)
	ctx := context.Background()

	_, err := e.orders.RequestRefund(ctx, alice, 999)
	assert.ErrorIs(t, err, usecase.ErrNotFound)

	_, err = e.orders.RequestRefund(ctx, bob, o.ID)
	assert.ErrorIs(t, err, usecase.ErrPermissionDenied)

	got, err := e.orders.RequestRefund(ctx, alice, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "REFUND_REQUESTED", got.StatusName)

	_, err = e.orders.RequestRefund(ctx, alice, o.ID)
	assert.ErrorIs(t, err, usecase.ErrInvalidState)
}

func TestApproveRefund_DecreasesLedgerByAmount(t *testing.T) {
	e, o := pendingOrder(t)
	ctx := context.Background()

	//申請前は承認できない
	_, err := e.seller.ApproveRefund(ctx, owner, o.ID, 1)
	assert.ErrorIs(t, err, usecase.ErrInvalidState)

	_, err = e.orders.RequestRefund(ctx, alice, o.ID)
	require.NoError(t, err)

	before := e.ledgerBalance(t)
	aliceBefore := e.balanceOf(t, aliceAddr)

	got, err := e.seller.ApproveRefund(ctx, owner, o.ID, 4_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint8(model.OrderStatusRefunded), got.Status)
	require.NotNil(t, got.RefundAmount)
	assert.Equal(t, int64(4_000_000), *got.RefundAmount)

	assert.Equal(t, before-4_000_000, e.ledgerBalance(t))
	assert.Equal(t, aliceBefore+4_000_000, e.balanceOf(t, aliceAddr))

	//終端
	_, err = e.seller.ApproveRefund(ctx, owner, o.ID, 1)
	assert.ErrorIs(t, err, usecase.ErrInvalidState)
	_, err = e.seller.RejectRefund(ctx, owner, o.ID)
	assert.ErrorIs(t, err, usecase.ErrInvalidState)
}

func TestApproveRefund_AmountCap(t *testing.T) {
	e, o := pendingOrder(t)
	ctx := context.Background()
	_, err := e.orders.RequestRefund(ctx, alice, o.ID)
	require.NoError(t, err)

	_, err = e.seller.ApproveRefund(ctx, owner, o.ID, o.TotalAmount+1)
	assert.ErrorIs(t, err, usecase.ErrValidation)
	_, err = e.seller.ApproveRefund(ctx, owner, o.ID, 0)
	assert.ErrorIs(t, err, usecase.ErrValidation)
	_, err = e.seller.ApproveRefund(ctx, alice, o.ID, 1)
	assert.ErrorIs(t, err, usecase.ErrPermissionDenied)

	//満額はOK
	_, err = e.seller.ApproveRefund(ctx, owner, o.ID, o.TotalAmount)
	require.NoError(t, err)
	assert.Equal(t, int64(0), e.ledgerBalance(t))
}

func TestRejectRefund_IsTerminal(t *testing.T) {
	e, o := pendingOrder(t)
	ctx := context.Background()
	_, err := e.orders.RequestRefund(ctx, alice, o.ID)
	require.NoError(t, err)
	before := e.ledgerBalance(t)

	got, err := e.seller.RejectRefund(ctx, owner, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "REFUND_REJECTED", got.StatusName)
	assert.Equal(t, before, e.ledgerBalance(t))

	_, err = e.orders.RequestRefund(ctx, alice, o.ID)
	assert.ErrorIs(t, err, usecase.ErrInvalidState)
	_, err = e.seller.FulfillOrder(ctx, owner, o.ID, "SF1")
	assert.ErrorIs(t, err, usecase.ErrInvalidState)
}

func TestWithdraw(t *testing.T) {
	e, _ := pendingOrder(t)
	ctx := context.Background()

	//オーナー以外
	_, err := e.seller.Withdraw(ctx, alice)
	assert.ErrorIs(t, err, usecase.ErrPermissionDenied)
	assert.Equal(t, int64(10_000_000), e.ledgerBalance(t))

	out, err := e.seller.Withdraw(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000_000), out.Amount)
	assert.Equal(t, ownerAddr, out.To)
	assert.Equal(t, int64(0), e.ledgerBalance(t))
	assert.Equal(t, int64(10_000_000), e.balanceOf(t, ownerAddr))

	_, err = e.seller.Withdraw(ctx, owner)
	assert.ErrorIs(t, err, usecase.ErrNothingToWithdraw)

	summary, err := e.seller.LedgerSummary(ctx, owner, 10)
	require.NoError(t, err)
	require.Len(t, summary.Entries, 2)
	assert.Equal(t, string(model.LedgerEntryWithdraw), summary.Entries[0].Type)
	assert.Equal(t, int64(-10_000_000), summary.Entries[0].Amount)
}

func TestRefundAfterWithdraw_FailsAndRollsBack(t *testing.T) {
	e, o := pendingOrder(t)
	ctx := context.Background()
	_, err := e.orders.RequestRefund(ctx, alice, o.ID)
	require.NoError(t, err)

	_, err = e.seller.Withdraw(ctx, owner)
	require.NoError(t, err)

	_, err = e.seller.ApproveRefund(ctx, owner, o.ID, 1_000_000)
	assert.ErrorIs(t, err, usecase.ErrPaymentTransferFailed)

	got, err := e.orders.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, uint8(model.OrderStatusRefundRequested), got.Status)
	assert.Nil(t, got.RefundAmount)
}

func TestListMyOrders(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.upsert(t, 1, 1_000, 10, true)
	e.fund(t, alice, 1_000_000)
	e.fund(t, bob, 1_000_000)

	for _, c := range []usecase.Caller{alice, bob, alice} {
		_, err := buy(e, c, 1, 1)
		require.NoError(t, err)
	}

	mine, err := e.orders.ListMyOrders(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, int64(1), mine[0].ID)
	assert.Equal(t, int64(3), mine[1].ID)

	//オーナーは全件
	all, err := e.orders.ListMyOrders(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	list, err := e.seller.ListOrders(ctx, owner, repo.AdminOrderListFilter{Page: 1, Limit: 10, Buyer: bobAddr})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, int64(2), list.Items[0].ID)
}

func TestAuditLogsRecorded(t *testing.T) {
	e, o := pendingOrder(t)
	ctx := context.Background()
	_, err := e.seller.FulfillOrder(ctx, owner, o.ID, "SF1")
	require.NoError(t, err)

	logs, err := e.seller.ListAuditLogs(ctx, owner, repo.AuditLogFilter{})
	require.NoError(t, err)
	//mint x1, upsert x1, fulfill x1
	require.Len(t, logs, 3)
	assert.Equal(t, model.AuditActionFulfillOrder, logs[0].Action)
	assert.Contains(t, logs[0].AfterJSON, "SF1")

	//注文のスナップショットにaliceが出てくる行だけ（発行とfulfill）
	logs, err = e.seller.ListAuditLogs(ctx, owner, repo.AuditLogFilter{Involving: aliceAddr})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, model.AuditActionFulfillOrder, logs[0].Action)
	assert.Equal(t, model.AuditActionMintToken, logs[1].Action)

	logs, err = e.seller.ListAuditLogs(ctx, owner, repo.AuditLogFilter{MoneyMovementsOnly: true})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditActionMintToken, logs[0].Action)

	_, err = e.seller.ListAuditLogs(ctx, alice, repo.AuditLogFilter{})
	assert.ErrorIs(t, err, usecase.ErrPermissionDenied)
}

func TestTokenUsecase_MintDisabled(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.tokens.Mint(ctx, alice, aliceAddr, 1)
	assert.ErrorIs(t, err, usecase.ErrPermissionDenied)

	tokens := usecase.NewTokenUsecase(nil, usecase.NewAccessControl(ownerAddr), false, nil)
	_, err = tokens.Mint(ctx, owner, aliceAddr, 1)
	assert.ErrorIs(t, err, usecase.ErrPermissionDenied)
}

func TestTokenUsecase_Transfer(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	_, err := e.tokens.Mint(ctx, owner, aliceAddr, 100)
	require.NoError(t, err)

	out, err := e.tokens.Transfer(ctx, alice, bobAddr, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(40), out.Balance)
	assert.Equal(t, int64(60), e.balanceOf(t, bobAddr))

	_, err = e.tokens.Transfer(ctx, alice, bobAddr, 41)
	assert.ErrorIs(t, err, usecase.ErrPaymentTransferFailed)

	_, err = e.tokens.Transfer(ctx, alice, "bad", 1)
	assert.ErrorIs(t, err, usecase.ErrValidation)

	al, err := e.tokens.Allowance(ctx, aliceAddr, serviceAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(0), al.Amount)
}
