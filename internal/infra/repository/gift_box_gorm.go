package repository

import (
	"context"
	"errors"
	"strings"

	"crabbox/internal/domain/model"
	repo "crabbox/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GiftBoxGormRepository struct {
	db *gorm.DB
}

// DI
func NewGiftBoxGormRepository(db *gorm.DB) *GiftBoxGormRepository {
	return &GiftBoxGormRepository{db: db}
}

// 公開中の商品だけを、検索/価格帯/ソート/ページング付きで返す。
func (r *GiftBoxGormRepository) ListActive(ctx context.Context, q repo.GiftBoxListQuery) ([]model.GiftBox, int64, error) {
	var boxes []model.GiftBox
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.GiftBox{}).Where("active = ?", true)

	// q nameを対象（postgres/sqlite両方で動くようにLOWER+LIKE）
	if s := strings.TrimSpace(q.Q); s != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	//価格帯
	if q.MinPrice != nil {
		tx = tx.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("price <= ?", *q.MaxPrice)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.GiftBox{}, 0, err
	}

	switch q.Sort {
	case "price_asc":
		tx = tx.Order("price asc").Order("id asc")
	case "price_desc":
		tx = tx.Order("price desc").Order("id desc")
	case "new":
		tx = tx.Order("created_at desc").Order("id desc")
	default:
		tx = tx.Order("id asc")
	}

	if q.Limit > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		tx = tx.Offset((page - 1) * q.Limit).Limit(q.Limit)
	}
	if err := tx.Find(&boxes).Error; err != nil {
		return []model.GiftBox{}, 0, err
	}

	return boxes, total, nil
}

func (r *GiftBoxGormRepository) FindByID(ctx context.Context, id int64) (model.GiftBox, error) {
	var g model.GiftBox
	err := r.db.WithContext(ctx).First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.GiftBox{}, repo.ErrNotFound
	}
	if err != nil {
		return model.GiftBox{}, err
	}
	return g, nil
}

func (r *GiftBoxGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.GiftBox, error) {
	var g model.GiftBox
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.GiftBox{}, repo.ErrNotFound
	}
	if err != nil {
		return model.GiftBox{}, err
	}
	return g, nil
}

func (r *GiftBoxGormRepository) Create(ctx context.Context, g model.GiftBox) error {
	return r.db.WithContext(ctx).Create(&g).Error
}

// 全カラム上書き（falseや0もそのまま入れるのでmapで渡す）
func (r *GiftBoxGormRepository) Update(ctx context.Context, g model.GiftBox) error {
	res := r.db.WithContext(ctx).Model(&model.GiftBox{}).Where("id = ?", g.ID).Updates(map[string]interface{}{
		"name":        g.Name,
		"description": g.Description,
		"price":       g.Price,
		"stock":       g.Stock,
		"active":      g.Active,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *GiftBoxGormRepository) MaxID(ctx context.Context) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).Model(&model.GiftBox{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}
