package nonce

import (
	"context"
	"testing"
	"time"

	repo "crabbox/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// メモリ上の偽Redis
type fakeRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.values[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) GetDel(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	delete(f.values, key)
	return redis.NewStringResult(v, nil)
}

func TestRedisStore_PutConsume(t *testing.T) {
	fake := newFakeRedis()
	s := NewRedisStore(fake)
	ctx := context.Background()
	addr := "0x1111111111111111111111111111111111111111"

	require.NoError(t, s.Put(ctx, addr, "abc", 5*time.Minute))
	assert.Equal(t, 5*time.Minute, fake.ttls[keyPrefix+addr])

	got, err := s.Consume(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	_, err = s.Consume(ctx, addr)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
