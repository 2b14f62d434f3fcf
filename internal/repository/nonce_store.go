package repository

import (
	"context"
	"time"
)

// 署名ログイン用のnonce置き場
type NonceStore interface {
	// 同じアドレスの古いnonceは上書き
	Put(ctx context.Context, address string, nonce string, ttl time.Duration) error
	// 取り出して消す。無い・期限切れなら ErrNotFound
	Consume(ctx context.Context, address string) (string, error)
}
