package kvstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	buf := []byte(`{"a":1}`)
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'X'

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(got))
}

func TestMemoryStore_FailWith(t *testing.T) {
	s := NewMemoryStore()
	s.FailWith = errors.New("disk on fire")

	_, _, err := s.Get(context.Background(), "k")
	assert.EqualError(t, err, "disk on fire")
	assert.Error(t, s.Set(context.Background(), "k", nil))
}

func TestWithPrefix(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()

	assert.Same(t, mem, WithPrefix(mem, ""))

	s := WithPrefix(mem, "staging:")
	require.NoError(t, s.Set(ctx, "travel:mylocation:v1", []byte(`{}`)))
	assert.Equal(t, []string{"staging:travel:mylocation:v1"}, mem.Keys())

	_, ok, err := s.Get(ctx, "travel:mylocation:v1")
	require.NoError(t, err)
	assert.True(t, ok)
}
