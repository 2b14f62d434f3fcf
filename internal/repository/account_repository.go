package repository

import (
	"context"

	"crabbox/internal/domain/model"
)

// アカウントの保存・取得
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	// 見つからなければ ErrNotFound
	FindByAddress(ctx context.Context, address string) (*model.Account, error)
	Update(ctx context.Context, account *model.Account) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, address string) error
}
