package repository

import (
	"context"
	"fmt"
	"time"

	"crabbox/internal/domain/model"
	repo "crabbox/internal/repository"

	"gorm.io/gorm"
)

// トークンが動くオーナー操作
var moneyActions = []model.AuditAction{
	model.AuditActionApproveRefund,
	model.AuditActionWithdraw,
	model.AuditActionMintToken,
}

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	actor, ok := model.NormalizeAddress(log.ActorAddress)
	if !ok {
		return fmt.Errorf("audit log: invalid actor address %q", log.ActorAddress)
	}
	log.ActorAddress = actor
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *auditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := r.db.WithContext(ctx).
		Model(&model.AuditLog{}).
		Scopes(
			byActor(f.ActorAddress),
			involving(f.Involving),
			byActions(f.Actions, f.MoneyMovementsOnly),
			byResource(f.ResourceType, f.ResourceID),
			createdBetween(f.CreatedFrom, f.CreatedTo),
			page(f.Limit, f.Offset),
		).
		Order("created_at DESC").
		Order("id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// 保存時にチェックサム形式にそろえているので、検索側も同じ形にして比較する
func byActor(address string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if address == "" {
			return db
		}
		if addr, ok := model.NormalizeAddress(address); ok {
			return db.Where("actor_address = ?", addr)
		}
		//アドレスとして不正なら一致する行は無い
		return db.Where("1 = 0")
	}
}

// スナップショットのJSONはチェックサム形式のアドレスを含む
func involving(address string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if address == "" {
			return db
		}
		addr, ok := model.NormalizeAddress(address)
		if !ok {
			return db.Where("1 = 0")
		}
		pattern := "%" + addr + "%"
		return db.Where("(actor_address = ? OR before_json LIKE ? OR after_json LIKE ?)", addr, pattern, pattern)
	}
}

func byActions(actions []model.AuditAction, moneyOnly bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(actions) > 0 {
			db = db.Where("action IN ?", actions)
		}
		if moneyOnly {
			db = db.Where("action IN ?", moneyActions)
		}
		return db
	}
}

func byResource(rt *model.AuditResourceType, id *int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if rt != nil {
			db = db.Where("resource_type = ?", *rt)
		}
		if id != nil {
			db = db.Where("resource_id = ?", *id)
		}
		return db
	}
}

func createdBetween(from, to *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where("created_at >= ?", *from)
		}
		if to != nil {
			db = db.Where("created_at <= ?", *to)
		}
		return db
	}
}

// limitは1..200（それ以外は50）
func page(limit, offset int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 || limit > 200 {
			limit = 50
		}
		if offset < 0 {
			offset = 0
		}
		return db.Limit(limit).Offset(offset)
	}
}
