package repository

import (
	"context"

	"crabbox/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SequenceGormRepository struct {
	db *gorm.DB
}

func NewSequenceGormRepository(db *gorm.DB) *SequenceGormRepository {
	return &SequenceGormRepository{db: db}
}

// 行ロックして払い出す。rollbackされたら値も戻るので欠番にならない。
func (r *SequenceGormRepository) Next(ctx context.Context, name string) (int64, error) {
	var s model.Sequence
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		First(&s).Error

	if isNotFound(err) {
		//migrate前でも動くように1から始める
		if err := r.db.WithContext(ctx).Create(&model.Sequence{Name: name, NextValue: 2}).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	if err := r.db.WithContext(ctx).
		Model(&model.Sequence{}).
		Where("name = ?", name).
		Update("next_value", gorm.Expr("next_value + ?", 1)).Error; err != nil {
		return 0, err
	}
	return s.NextValue, nil
}

func (r *SequenceGormRepository) Peek(ctx context.Context, name string) (int64, error) {
	var s model.Sequence
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&s).Error
	if isNotFound(err) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return s.NextValue, nil
}
