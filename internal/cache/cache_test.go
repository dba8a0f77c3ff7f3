package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_NilIsACacheMiss(t *testing.T) {
	var c *Client
	ctx := context.Background()

	data, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.Error(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestClient_UnreachableRedisFailsSafe(t *testing.T) {
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	data, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, c.Delete(ctx, "k", "other"))
	assert.Error(t, c.Ping(ctx))
}

type mapCache map[string][]byte

func (m mapCache) Get(_ context.Context, key string) ([]byte, error) { return m[key], nil }
func (m mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m[key] = value
	return nil
}
func (m mapCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m, k)
	}
	return nil
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := mapCache{}

	type payload struct {
		Names []string `json:"names"`
	}
	require.NoError(t, SetJSON(ctx, c, "p", payload{Names: []string{"a", "b"}}, time.Minute))

	var got payload
	assert.True(t, GetJSON(ctx, c, "p", &got))
	assert.Equal(t, []string{"a", "b"}, got.Names)

	c["broken"] = []byte("{")
	assert.False(t, GetJSON(ctx, c, "broken", &got))
	assert.False(t, GetJSON(ctx, c, "missing", &got))
	assert.False(t, GetJSON(ctx, nil, "p", &got))
}
