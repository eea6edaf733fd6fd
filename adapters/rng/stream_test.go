package rng

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draw(t *testing.T, a *StreamAdapter, metric, key string, seed uint64) []uint64 {
	t.Helper()
	r, err := a.Stream(context.Background(), metric, key, seed)
	require.NoError(t, err)
	out := make([]uint64, 8)
	for i := range out {
		out[i] = r.Uint64()
	}
	return out
}

func TestStream_Deterministic(t *testing.T) {
	a := NewStreamAdapter()
	assert.Equal(t, draw(t, a, "checkout", "A|B", 42), draw(t, a, "checkout", "A|B", 42))
}

func TestStream_IndependentKeys(t *testing.T) {
	a := NewStreamAdapter()
	base := draw(t, a, "checkout", "A|B", 42)

	assert.NotEqual(t, base, draw(t, a, "checkout", "A|C", 42))
	assert.NotEqual(t, base, draw(t, a, "signup", "A|B", 42))
	assert.NotEqual(t, base, draw(t, a, "checkout", "A|B", 43))
	assert.NotEqual(t, draw(t, a, "ab", "c", 1), draw(t, a, "a", "bc", 1))
}

func TestStream_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStreamAdapter().Stream(ctx, "m", "k", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewBaseSeedNonZero(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.NotZero(t, NewBaseSeed())
	}
}
