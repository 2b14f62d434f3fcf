package nonce

import (
	"context"
	"errors"
	"fmt"
	"time"

	repo "crabbox/internal/repository"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "crabbox:login-nonce:"

// go-redisのうち使う操作だけ（テストで差し替える）
type redisCmd interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

// ログインnonceをRedisに置く。期限切れはRedisのTTLで消える。
type RedisStore struct {
	client redisCmd
}

func NewRedisStore(client redisCmd) *RedisStore {
	return &RedisStore{client: client}
}

// 接続確認までして返す
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (s *RedisStore) Put(ctx context.Context, address string, nonce string, ttl time.Duration) error {
	return s.client.Set(ctx, keyPrefix+address, nonce, ttl).Err()
}

// GETDELで取り出すので同じnonceは2回使えない
func (s *RedisStore) Consume(ctx context.Context, address string) (string, error) {
	v, err := s.client.GetDel(ctx, keyPrefix+address).Result()
	if errors.Is(err, redis.Nil) {
		return "", repo.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}
