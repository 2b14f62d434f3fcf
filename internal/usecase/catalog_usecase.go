package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"crabbox/internal/domain/model"
	repo "crabbox/internal/repository"

	"go.uber.org/zap"
)

type CatalogUsecase struct {
	tx        repo.TransactionManager
	giftBoxes repo.GiftBoxRepository
	access    AccessControl
	log       *zap.Logger
}

// DI
func NewCatalogUsecase(
	tx repo.TransactionManager,
	giftBoxes repo.GiftBoxRepository,
	access AccessControl,
	log *zap.Logger,
) *CatalogUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogUsecase{
		tx:        tx,
		giftBoxes: giftBoxes,
		access:    access,
		log:       log,
	}
}

// GET /giftboxes の入力
type ListGiftBoxesInput struct {
	Page     int
	Limit    int
	Q        string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
}

// 公開中の商品一覧（価格・在庫は最新の値）
func (u *CatalogUsecase) ListActive(ctx context.Context, in ListGiftBoxesInput) (ListOutput[GiftBoxOutput], error) {
	if in.Page < 1 {
		return ListOutput[GiftBoxOutput]{}, newError(ErrValidation, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ListOutput[GiftBoxOutput]{}, newError(ErrValidation, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ListOutput[GiftBoxOutput]{}, newError(ErrValidation, "q too long")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return ListOutput[GiftBoxOutput]{}, newError(ErrValidation, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return ListOutput[GiftBoxOutput]{}, newError(ErrValidation, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return ListOutput[GiftBoxOutput]{}, newError(ErrValidation, "min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "id", "new", "price_asc", "price_desc":
	default:
		return ListOutput[GiftBoxOutput]{}, newError(ErrValidation, "invalid sort")
	}

	boxes, total, err := u.giftBoxes.ListActive(ctx, repo.GiftBoxListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	})
	if err != nil {
		return ListOutput[GiftBoxOutput]{}, dbError()
	}

	items := make([]GiftBoxOutput, 0, len(boxes))
	for _, g := range boxes {
		items = append(items, toGiftBoxOutput(g))
	}
	return ListOutput[GiftBoxOutput]{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

// 非公開の商品もそのまま返す
func (u *CatalogUsecase) GetGiftBox(ctx context.Context, id int64) (GiftBoxOutput, error) {
	if id <= 0 {
		return GiftBoxOutput{}, newError(ErrValidation, "invalid gift box id")
	}
	g, err := u.giftBoxes.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return GiftBoxOutput{}, newError(ErrNotFound, "gift box not found")
	}
	if err != nil {
		return GiftBoxOutput{}, dbError()
	}
	return toGiftBoxOutput(g), nil
}

// 次に使うと良いID（最大ID+1、空なら1）
func (u *CatalogUsecase) NextGiftBoxID(ctx context.Context) (int64, error) {
	max, err := u.giftBoxes.MaxID(ctx)
	if err != nil {
		return 0, dbError()
	}
	return max + 1, nil
}

type UpsertGiftBoxInput struct {
	ID          int64
	Name        string
	Description string
	Price       int64
	Stock       int64
	Active      bool
}

// 無ければ作成、あれば全項目を上書き。作成済みの注文の金額には影響しない。
func (u *CatalogUsecase) UpsertGiftBox(ctx context.Context, caller Caller, in UpsertGiftBoxInput) (GiftBoxOutput, error) {
	if err := u.access.RequireOwner(caller); err != nil {
		return GiftBoxOutput{}, err
	}

	name := strings.TrimSpace(in.Name)
	if in.ID <= 0 {
		return GiftBoxOutput{}, newError(ErrValidation, "invalid gift box id")
	}
	if name == "" {
		return GiftBoxOutput{}, newError(ErrValidation, "name required")
	}
	if utf8.RuneCountInString(name) > 255 {
		return GiftBoxOutput{}, newError(ErrValidation, "name too long")
	}
	if in.Price < 0 {
		return GiftBoxOutput{}, newError(ErrValidation, "price must be >= 0")
	}
	if in.Stock < 0 {
		return GiftBoxOutput{}, newError(ErrValidation, "stock must be >= 0")
	}

	actor, _ := callerAddress(caller)
	var out GiftBoxOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := time.Now()
		next := model.GiftBox{
			ID:          in.ID,
			Name:        name,
			Description: in.Description,
			Price:       in.Price,
			Stock:       in.Stock,
			Active:      in.Active,
			UpdatedAt:   now,
		}

		before, err := r.GiftBoxes().FindByIDForUpdate(ctx, in.ID)
		created := errors.Is(err, repo.ErrNotFound)
		switch {
		case created:
			next.CreatedAt = now
			if err := r.GiftBoxes().Create(ctx, next); err != nil {
				return dbError()
			}
		case err != nil:
			return dbError()
		default:
			next.CreatedAt = before.CreatedAt
			if err := r.GiftBoxes().Update(ctx, next); err != nil {
				return dbError()
			}
		}

		//在庫が変わったら調整履歴
		delta := next.Stock - before.Stock
		if delta != 0 {
			reason := "upsert"
			if created {
				reason = "initial stock"
			}
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				GiftBoxID:    in.ID,
				ActorAddress: actor,
				Delta:        delta,
				Reason:       reason,
				CreatedAt:    now,
			}); err != nil {
				return dbError()
			}
		}

		beforeJSON := ""
		if !created {
			beforeJSON = toJSON(toGiftBoxOutput(before))
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorAddress: actor,
			Action:       model.AuditActionUpsertGiftBox,
			ResourceType: model.AuditResourceGiftBox,
			ResourceID:   in.ID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    toJSON(toGiftBoxOutput(next)),
			CreatedAt:    now,
		}); err != nil {
			return dbError()
		}

		out = toGiftBoxOutput(next)
		return nil
	})
	if err != nil {
		return GiftBoxOutput{}, err
	}

	u.log.Info("gift box upserted",
		zap.Int64("gift_box_id", in.ID),
		zap.Int64("price", in.Price),
		zap.Int64("stock", in.Stock),
		zap.Bool("active", in.Active),
	)
	return out, nil
}
