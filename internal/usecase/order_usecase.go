package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"crabbox/internal/domain/model"
	"crabbox/internal/domain/money"
	repo "crabbox/internal/repository"

	"go.uber.org/zap"
)

const (
	maxShippingInfoLen   = 2000
	maxIdempotencyKeyLen = 255
)

// 購入者側の注文操作
type OrderUsecase struct {
	tx      repo.TransactionManager
	access  AccessControl
	service string // 代金を預かるアドレス（トークンのspenderも兼ねる）
	log     *zap.Logger
	metrics Metrics
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	access AccessControl,
	serviceAddress string,
	log *zap.Logger,
	metrics Metrics,
) *OrderUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	service := mustServiceAddress(serviceAddress)
	return &OrderUsecase{
		tx:      tx,
		access:  access,
		service: service,
		log:     log,
		metrics: orNop(metrics),
	}
}

type BuyGiftBoxInput struct {
	GiftBoxID    int64
	Quantity     int64
	ShippingInfo string
	// 任意。同じ購入者が同じキーで再送したら最初の注文を返す
	IdempotencyKey string
}

// 在庫減算・代金の引き落とし・注文作成・預かり残高の加算を1トランザクションで行う
func (u *OrderUsecase) BuyGiftBox(ctx context.Context, caller Caller, in BuyGiftBoxInput) (OrderOutput, error) {
	buyer, err := callerAddress(caller)
	if err != nil {
		return OrderOutput{}, err
	}
	if in.GiftBoxID <= 0 {
		return OrderOutput{}, newError(ErrValidation, "invalid gift box id")
	}
	if in.Quantity <= 0 {
		return OrderOutput{}, newError(ErrValidation, "quantity must be > 0")
	}
	shipping := strings.TrimSpace(in.ShippingInfo)
	if shipping == "" {
		return OrderOutput{}, newError(ErrValidation, "shipping info required")
	}
	if utf8.RuneCountInString(shipping) > maxShippingInfoLen {
		return OrderOutput{}, newError(ErrValidation, "shipping info too long")
	}
	var keyPtr *string
	if key := strings.TrimSpace(in.IdempotencyKey); key != "" {
		if len(key) > maxIdempotencyKeyLen {
			return OrderOutput{}, newError(ErrValidation, "invalid idempotency key")
		}
		keyPtr = &key
	}

	var out OrderOutput
	replayed := false

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		if keyPtr != nil {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, buyer, *keyPtr)
			if err != nil {
				return dbError()
			}
			if found {
				out = toOrderOutput(existing)
				replayed = true
				return nil
			}
		}

		//商品を行ロックして確認（存在→公開→在庫の順）
		box, err := r.GiftBoxes().FindByIDForUpdate(ctx, in.GiftBoxID)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "gift box not found")
		}
		if err != nil {
			return dbError()
		}
		if !box.Active {
			return newError(ErrInactiveProduct, "gift box is not active")
		}
		if box.Stock < in.Quantity {
			return newError(ErrInsufficientStock, "insufficient stock")
		}

		total, ok := money.MulQuantity(box.Price, in.Quantity)
		if !ok {
			return newError(ErrValidation, "total amount overflow")
		}

		ok, err = r.Inventory().DecreaseStockIfEnough(ctx, box.ID, in.Quantity)
		if err != nil {
			return dbError()
		}
		if !ok {
			return newError(ErrInsufficientStock, "insufficient stock")
		}

		orderID, err := r.Sequences().Next(ctx, model.SequenceOrders)
		if err != nil {
			return dbError()
		}

		if _, err := r.Ledger().GetForUpdate(ctx); err != nil {
			return dbError()
		}

		//購入者の許可額から預かりアドレスへ
		if total > 0 {
			if err := r.Tokens().TransferFrom(ctx, u.service, buyer, u.service, total); err != nil {
				return transferError(err)
			}
		}

		now := time.Now()
		order := model.Order{
			ID:             orderID,
			Buyer:          buyer,
			GiftBoxID:      box.ID,
			Quantity:       in.Quantity,
			UnitPrice:      box.Price,
			TotalAmount:    total,
			ShippingInfo:   shipping,
			Status:         model.OrderStatusPending,
			IdempotencyKey: keyPtr,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := r.Orders().Create(ctx, order); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return newError(ErrConflict, "idempotency conflict")
			}
			return dbError()
		}

		balance, err := r.Ledger().Credit(ctx, total)
		if err != nil {
			return dbError()
		}
		if err := r.Ledger().AppendEntry(ctx, model.LedgerEntry{
			Type:         model.LedgerEntryPurchase,
			OrderID:      &order.ID,
			Counterparty: buyer,
			Amount:       total,
			BalanceAfter: balance,
			CreatedAt:    now,
		}); err != nil {
			return dbError()
		}

		out = toOrderOutput(order)
		return nil
	})
	if err != nil {
		u.metrics.PurchaseRejected(rejectReason(err))
		u.log.Info("purchase rejected",
			zap.String("buyer", buyer),
			zap.Int64("gift_box_id", in.GiftBoxID),
			zap.Int64("quantity", in.Quantity),
			zap.Error(err),
		)
		return OrderOutput{}, err
	}
	if replayed {
		return out, nil
	}

	u.metrics.OrderPlaced(out.TotalAmount)
	u.log.Info("order placed",
		zap.Int64("order_id", out.ID),
		zap.String("buyer", buyer),
		zap.Int64("gift_box_id", out.GiftBoxID),
		zap.Int64("quantity", out.Quantity),
		zap.String("total", out.TotalDisplay),
	)
	return out, nil
}

// 自分の注文をID順に（オーナーは全員分）。毎回DBから読み直す。
func (u *OrderUsecase) ListMyOrders(ctx context.Context, caller Caller) ([]OrderOutput, error) {
	addr, err := callerAddress(caller)
	if err != nil {
		return []OrderOutput{}, err
	}
	buyer := addr
	if u.access.IsOwner(addr) {
		buyer = ""
	}

	var outs []OrderOutput
	err = u.tx.ReadOnly(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByBuyer(ctx, buyer)
		if err != nil {
			return dbError()
		}
		outs = toOrderOutputs(orders)
		return nil
	})
	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// 注文は誰でも参照できる
func (u *OrderUsecase) GetOrder(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, newError(ErrValidation, "invalid order id")
	}

	var out OrderOutput
	err := u.tx.ReadOnly(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "order not found")
		}
		if err != nil {
			return dbError()
		}
		out = toOrderOutput(o)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 次の注文ID（払い出しはしない）
func (u *OrderUsecase) NextOrderID(ctx context.Context) (int64, error) {
	var next int64
	err := u.tx.ReadOnly(ctx, func(r repo.TxRepos) error {
		v, err := r.Sequences().Peek(ctx, model.SequenceOrders)
		if err != nil {
			return dbError()
		}
		next = v
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// Pendingの注文だけ返金申請できる。お金はまだ動かない。
func (u *OrderUsecase) RequestRefund(ctx context.Context, caller Caller, orderID int64) (OrderOutput, error) {
	addr, err := callerAddress(caller)
	if err != nil {
		return OrderOutput{}, err
	}
	if orderID <= 0 {
		return OrderOutput{}, newError(ErrValidation, "invalid order id")
	}

	var out OrderOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "order not found")
		}
		if err != nil {
			return dbError()
		}
		if o.Buyer != addr {
			return newError(ErrPermissionDenied, "not the buyer of this order")
		}
		if o.Status != model.OrderStatusPending {
			return newError(ErrInvalidState, "refund can only be requested for a pending order")
		}

		o.Status = model.OrderStatusRefundRequested
		if err := r.Orders().UpdateLifecycle(ctx, o); err != nil {
			return dbError()
		}
		out = toOrderOutput(o)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.metrics.OrderTransitioned(model.OrderStatusRefundRequested)
	u.log.Info("refund requested", zap.Int64("order_id", orderID), zap.String("buyer", addr))
	return out, nil
}

// トークン側の失敗は全部 PaymentTransferFailed
func transferError(err error) error {
	if errors.Is(err, repo.ErrInsufficientAllowance) {
		return newError(ErrPaymentTransferFailed, "insufficient token allowance")
	}
	if errors.Is(err, repo.ErrInsufficientBalance) {
		return newError(ErrPaymentTransferFailed, "insufficient token balance")
	}
	return newError(ErrPaymentTransferFailed, "token transfer failed")
}

func rejectReason(err error) string {
	he, ok := AsHTTPError(err)
	if !ok {
		return "internal"
	}
	return strings.ToLower(he.Code())
}
