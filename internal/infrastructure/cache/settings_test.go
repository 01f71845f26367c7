package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	values map[string]string
	err    error
	calls  int
}

func (s *countingStore) Get(_ context.Context, key string) (string, error) {
	s.calls++
	return s.values[key], s.err
}

// unreachableClient points at a closed port so every command fails fast.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:         "127.0.0.1:1",
		DialTimeout:  100 * time.Millisecond,
		ReadTimeout:  100 * time.Millisecond,
		WriteTimeout: 100 * time.Millisecond,
		MaxRetries:   -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSettingsCacheFallsThroughWhenRedisIsDown(t *testing.T) {
	t.Parallel()

	store := &countingStore{values: map[string]string{"llm_api_key": "sk-db"}}
	c := NewSettingsCache(unreachableClient(t), store, time.Minute, nil)

	v, err := c.Get(context.Background(), "llm_api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-db", v)
	assert.Equal(t, 1, store.calls)
}

func TestSettingsCachePropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	store := &countingStore{err: errors.New("db down")}
	c := NewSettingsCache(unreachableClient(t), store, 0, nil)

	_, err := c.Get(context.Background(), "llm_api_key")
	assert.EqualError(t, err, "db down")
	assert.Equal(t, defaultSettingsTTL, c.ttl)
}

func TestSettingsKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "news_pipeline:settings:llm_api_key", settingsKey("llm_api_key"))
}
