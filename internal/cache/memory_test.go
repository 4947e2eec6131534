package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("uc", time.Minute)

	_, err := m.Get(ctx, "missing")
	assert.True(t, IsNotFound(err))

	buf := []byte("hello")
	require.NoError(t, m.Set(ctx, "k", buf, 0))
	buf[0] = 'j'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	require.NoError(t, m.Delete(ctx, "k", "never-set"))
	_, err = m.Get(ctx, "k")
	assert.True(t, IsNotFound(err))
}

func TestMemory_TTLExpires(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("", time.Minute)

	require.NoError(t, m.Set(ctx, "short", []byte("x"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := m.Get(ctx, "short")
	assert.True(t, IsNotFound(err))
}

func TestMemory_CloseFlushes(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("p", 0)
	require.NoError(t, m.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), 0))
	assert.Equal(t, 2, m.Len())

	require.NoError(t, m.Ping(ctx))
	require.NoError(t, m.Close())
	assert.Equal(t, 0, m.Len())
}

func TestNew_UnknownKindIsMemory(t *testing.T) {
	c, err := New(context.Background(), Config{Kind: "", Prefix: "x", TTL: time.Second})
	require.NoError(t, err)
	_, ok := c.(*Memory)
	assert.True(t, ok)
}
