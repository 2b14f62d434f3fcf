package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"crabbox/internal/domain/model"
	"crabbox/internal/domain/money"
	repo "crabbox/internal/repository"

	"go.uber.org/zap"
)

// オーナー（出品者）側の操作
type SellerUsecase struct {
	tx      repo.TransactionManager
	access  AccessControl
	service string
	log     *zap.Logger
	metrics Metrics
}

func NewSellerUsecase(
	tx repo.TransactionManager,
	access AccessControl,
	serviceAddress string,
	log *zap.Logger,
	metrics Metrics,
) *SellerUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	service := mustServiceAddress(serviceAddress)
	return &SellerUsecase{
		tx:      tx,
		access:  access,
		service: service,
		log:     log,
		metrics: orNop(metrics),
	}
}

// 発送済みにする（Pendingのときだけ）
func (u *SellerUsecase) FulfillOrder(ctx context.Context, caller Caller, orderID int64, trackingNumber string) (OrderOutput, error) {
	if err := u.access.RequireOwner(caller); err != nil {
		return OrderOutput{}, err
	}
	if orderID <= 0 {
		return OrderOutput{}, newError(ErrValidation, "invalid order id")
	}
	tracking := strings.TrimSpace(trackingNumber)
	if tracking == "" {
		return OrderOutput{}, newError(ErrValidation, "tracking number required")
	}
	if len(tracking) > 255 {
		return OrderOutput{}, newError(ErrValidation, "tracking number too long")
	}

	actor, _ := callerAddress(caller)
	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "order not found")
		}
		if err != nil {
			return dbError()
		}
		if o.Status != model.OrderStatusPending {
			return newError(ErrInvalidState, "only a pending order can be fulfilled")
		}

		before := toOrderOutput(o)
		o.Fulfilled = true
		o.TrackingNumber = tracking
		o.Status = model.OrderStatusFulfilled
		if err := r.Orders().UpdateLifecycle(ctx, o); err != nil {
			return dbError()
		}

		out = toOrderOutput(o)
		return u.audit(ctx, r, actor, model.AuditActionFulfillOrder, model.AuditResourceOrder, orderID, before, out)
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.metrics.OrderTransitioned(model.OrderStatusFulfilled)
	u.log.Info("order fulfilled", zap.Int64("order_id", orderID), zap.String("tracking_number", tracking))
	return out, nil
}

// 返金を承認して購入者へトークンを戻す。金額は 0 < amount <= 注文金額。
func (u *SellerUsecase) ApproveRefund(ctx context.Context, caller Caller, orderID int64, amount int64) (OrderOutput, error) {
	if err := u.access.RequireOwner(caller); err != nil {
		return OrderOutput{}, err
	}
	if orderID <= 0 {
		return OrderOutput{}, newError(ErrValidation, "invalid order id")
	}

	actor, _ := callerAddress(caller)
	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "order not found")
		}
		if err != nil {
			return dbError()
		}
		if o.Status != model.OrderStatusRefundRequested {
			return newError(ErrInvalidState, "refund has not been requested")
		}
		if amount <= 0 || amount > o.TotalAmount {
			return newError(ErrValidation, "refund amount must be > 0 and <= total amount")
		}

		if _, err := r.Ledger().GetForUpdate(ctx); err != nil {
			return dbError()
		}
		ok, balance, err := r.Ledger().Debit(ctx, amount)
		if err != nil {
			return dbError()
		}
		if !ok {
			//出金済みなどで預かりが足りない
			return newError(ErrPaymentTransferFailed, "insufficient escrow balance")
		}
		if err := r.Tokens().Transfer(ctx, u.service, o.Buyer, amount); err != nil {
			return transferError(err)
		}

		now := time.Now()
		if err := r.Ledger().AppendEntry(ctx, model.LedgerEntry{
			Type:         model.LedgerEntryRefund,
			OrderID:      &o.ID,
			Counterparty: o.Buyer,
			Amount:       -amount,
			BalanceAfter: balance,
			CreatedAt:    now,
		}); err != nil {
			return dbError()
		}

		before := toOrderOutput(o)
		refund := amount
		o.RefundAmount = &refund
		o.Status = model.OrderStatusRefunded
		if err := r.Orders().UpdateLifecycle(ctx, o); err != nil {
			return dbError()
		}

		out = toOrderOutput(o)
		return u.audit(ctx, r, actor, model.AuditActionApproveRefund, model.AuditResourceOrder, orderID, before, out)
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.metrics.OrderTransitioned(model.OrderStatusRefunded)
	u.log.Info("refund approved",
		zap.Int64("order_id", orderID),
		zap.String("buyer", out.Buyer),
		zap.String("amount", money.FormatAmount(amount)),
	)
	return out, nil
}

// 返金を拒否する。お金は動かない。拒否後は終端。
func (u *SellerUsecase) RejectRefund(ctx context.Context, caller Caller, orderID int64) (OrderOutput, error) {
	if err := u.access.RequireOwner(caller); err != nil {
		return OrderOutput{}, err
	}
	if orderID <= 0 {
		return OrderOutput{}, newError(ErrValidation, "invalid order id")
	}

	actor, _ := callerAddress(caller)
	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "order not found")
		}
		if err != nil {
			return dbError()
		}
		if o.Status != model.OrderStatusRefundRequested {
			return newError(ErrInvalidState, "refund has not been requested")
		}

		before := toOrderOutput(o)
		o.Status = model.OrderStatusRefundRejected
		if err := r.Orders().UpdateLifecycle(ctx, o); err != nil {
			return dbError()
		}

		out = toOrderOutput(o)
		return u.audit(ctx, r, actor, model.AuditActionRejectRefund, model.AuditResourceOrder, orderID, before, out)
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.metrics.OrderTransitioned(model.OrderStatusRefundRejected)
	u.log.Info("refund rejected", zap.Int64("order_id", orderID))
	return out, nil
}

type WithdrawOutput struct {
	Amount        int64  `json:"amount"`
	AmountDisplay string `json:"amount_display"`
	To            string `json:"to"`
}

// 預かり残高を全額オーナーへ送る
func (u *SellerUsecase) Withdraw(ctx context.Context, caller Caller) (WithdrawOutput, error) {
	if err := u.access.RequireOwner(caller); err != nil {
		return WithdrawOutput{}, err
	}
	owner := u.access.Owner()
	var amount int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		l, err := r.Ledger().GetForUpdate(ctx)
		if err != nil {
			return dbError()
		}
		if l.Balance <= 0 {
			return newError(ErrNothingToWithdraw, "nothing to withdraw")
		}
		amount = l.Balance

		ok, balance, err := r.Ledger().Debit(ctx, amount)
		if err != nil {
			return dbError()
		}
		if !ok {
			return newError(ErrNothingToWithdraw, "nothing to withdraw")
		}
		if err := r.Tokens().Transfer(ctx, u.service, owner, amount); err != nil {
			return transferError(err)
		}

		now := time.Now()
		if err := r.Ledger().AppendEntry(ctx, model.LedgerEntry{
			Type:         model.LedgerEntryWithdraw,
			Counterparty: owner,
			Amount:       -amount,
			BalanceAfter: balance,
			CreatedAt:    now,
		}); err != nil {
			return dbError()
		}

		return u.audit(ctx, r, owner, model.AuditActionWithdraw, model.AuditResourceLedger, model.LedgerRowID,
			map[string]int64{"balance": l.Balance},
			map[string]int64{"balance": balance},
		)
	})
	if err != nil {
		return WithdrawOutput{}, err
	}

	u.metrics.Withdrawn(amount)
	u.log.Info("withdrawn", zap.String("to", owner), zap.String("amount", money.FormatAmount(amount)))
	return WithdrawOutput{
		Amount:        amount,
		AmountDisplay: money.FormatAmount(amount),
		To:            owner,
	}, nil
}

// オーナー用の注文一覧
func (u *SellerUsecase) ListOrders(ctx context.Context, caller Caller, f repo.AdminOrderListFilter) (ListOutput[OrderOutput], error) {
	if err := u.access.RequireOwner(caller); err != nil {
		return ListOutput[OrderOutput]{}, err
	}
	// page/limitの最低限チェック
	if f.Page < 1 {
		return ListOutput[OrderOutput]{}, newError(ErrValidation, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return ListOutput[OrderOutput]{}, newError(ErrValidation, "invalid limit")
	}
	if f.Buyer != "" {
		b, ok := model.NormalizeAddress(f.Buyer)
		if !ok {
			return ListOutput[OrderOutput]{}, newError(ErrValidation, "invalid buyer")
		}
		f.Buyer = b
	}

	var out ListOutput[OrderOutput]
	err := u.tx.ReadOnly(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return dbError()
		}
		out = ListOutput[OrderOutput]{Items: toOrderOutputs(orders), Total: total, Page: f.Page, Limit: f.Limit}
		return nil
	})
	if err != nil {
		return ListOutput[OrderOutput]{}, err
	}
	return out, nil
}

// 預かり残高と最近の入出金
func (u *SellerUsecase) LedgerSummary(ctx context.Context, caller Caller, limit int) (LedgerSummaryOutput, error) {
	if err := u.access.RequireOwner(caller); err != nil {
		return LedgerSummaryOutput{}, err
	}

	var out LedgerSummaryOutput
	err := u.tx.ReadOnly(ctx, func(r repo.TxRepos) error {
		l, err := r.Ledger().Get(ctx)
		if err != nil {
			return dbError()
		}
		entries, err := r.Ledger().ListEntries(ctx, limit)
		if err != nil {
			return dbError()
		}
		items := make([]LedgerEntryOutput, 0, len(entries))
		for _, e := range entries {
			items = append(items, toLedgerEntryOutput(e))
		}
		out = LedgerSummaryOutput{
			Balance:        l.Balance,
			BalanceDisplay: money.FormatAmount(l.Balance),
			Entries:        items,
		}
		return nil
	})
	if err != nil {
		return LedgerSummaryOutput{}, err
	}
	return out, nil
}

func (u *SellerUsecase) ListAuditLogs(ctx context.Context, caller Caller, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if err := u.access.RequireOwner(caller); err != nil {
		return []model.AuditLog{}, err
	}

	var logs []model.AuditLog
	err := u.tx.ReadOnly(ctx, func(r repo.TxRepos) error {
		items, err := r.AuditLogs().List(ctx, f)
		if err != nil {
			return dbError()
		}
		logs = items
		return nil
	})
	if err != nil {
		return []model.AuditLog{}, err
	}
	return logs, nil
}

// ★監査ログ（同じトランザクションで書く）
func (u *SellerUsecase) audit(
	ctx context.Context,
	r repo.TxRepos,
	actor string,
	action model.AuditAction,
	resource model.AuditResourceType,
	resourceID int64,
	before interface{},
	after interface{},
) error {
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorAddress: actor,
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		BeforeJSON:   toJSON(before),
		AfterJSON:    toJSON(after),
		CreatedAt:    time.Now(),
	}); err != nil {
		return dbError()
	}
	return nil
}
