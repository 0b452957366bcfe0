package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	key := client.CartSessionKey("sess-1")
	require.NoError(t, client.Set(ctx, key, `{"items":[]}`, time.Hour))

	raw, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, raw)

	require.NoError(t, client.Del(ctx, key))
	_, err = client.Get(ctx, key)
	assert.Equal(t, redis.Nil, err)
}

func TestSetNXOnlyFirstWins(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	key := client.IdempotencyKey("stripe", "evt_1")
	first, err := client.SetNX(ctx, key, "1", time.Minute)
	require.NoError(t, err)
	second, err := client.SetNX(ctx, key, "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, second)
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "kumiko:cart:abc", client.CartSessionKey("abc"))
	assert.Equal(t, "kumiko:idempotency:stripe:evt_1", client.IdempotencyKey("stripe", "evt_1"))
	assert.Equal(t, "kumiko:cache:subscription:rest-1", client.CacheKey("subscription", "rest-1"))
	assert.Equal(t, "kumiko:cache:subscription", client.CacheKey("subscription", ""), "empty parts are skipped")
}

type mockCmdable struct {
	data map[string]string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
