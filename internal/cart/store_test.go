package cart

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	t.Parallel()

	kv := &fakeKeyValue{values: map[string]string{}}
	store, err := NewRedisStore(kv, time.Hour)
	require.NoError(t, err)

	session := &Session{SessionID: "abc", Customer: CustomerDraft{Name: "Mori"}}
	require.NoError(t, store.Save(context.Background(), session))
	assert.Equal(t, time.Hour, kv.lastTTL)

	loaded, err := store.Load(context.Background(), "abc")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Mori", loaded.Customer.Name)
}

func TestRedisStoreMissingAndCorrupted(t *testing.T) {
	t.Parallel()

	kv := &fakeKeyValue{values: map[string]string{}}
	store, err := NewRedisStore(kv, time.Hour)
	require.NoError(t, err)

	loaded, err := store.Load(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	kv.values[kv.CartSessionKey("broken")] = "{not json"
	loaded, err = store.Load(context.Background(), "broken")
	require.NoError(t, err, "corrupted payload should read as absent")
	assert.Nil(t, loaded)
}

type fakeKeyValue struct {
	values  map[string]string
	lastTTL time.Duration
}

func (f *fakeKeyValue) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.lastTTL = ttl
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	return nil
}

func (f *fakeKeyValue) Get(_ context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (f *fakeKeyValue) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeKeyValue) CartSessionKey(sessionID string) string {
	return "kumiko:cart:" + sessionID
}
