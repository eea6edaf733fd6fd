package analysis

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"abtest/adapters/rng"
	"abtest/domain/experiment"
)

// MockRNG records requested streams.
type MockRNG struct {
	mock.Mock
	mu sync.Mutex
}

func (m *MockRNG) Stream(ctx context.Context, metric, comparisonKey string, baseSeed uint64) (*rand.Rand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := m.Called(ctx, metric, comparisonKey, baseSeed)
	if r, ok := args.Get(0).(*rand.Rand); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func fourVariants() []experiment.Variant {
	return []experiment.Variant{
		variant("Control", 1000, 100),
		variant("A", 1000, 120),
		variant("B", 1000, 90),
		variant("C", 1000, 140),
	}
}

func TestPairs(t *testing.T) {
	assert.Equal(t, []Pair{{0, 1}, {0, 2}, {0, 3}}, ControlPairs(4))
	assert.Equal(t, []Pair{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, AllPairs(4))
	assert.Empty(t, ControlPairs(1))
	assert.Empty(t, AllPairs(1))
}

func TestPairs_Counts(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 40).Draw(t, "n")
		all := AllPairs(n)
		require.Len(t, all, n*(n-1)/2)
		require.Len(t, ControlPairs(n), n-1)

		seen := make(map[Pair]bool, len(all))
		for k, p := range all {
			require.Less(t, p.I, p.J)
			require.False(t, seen[p])
			seen[p] = true
			if k > 0 {
				prev := all[k-1]
				require.True(t, prev.I < p.I || (prev.I == p.I && prev.J < p.J))
			}
		}
	})
}

func TestEnumerator_AllComparisons(t *testing.T) {
	e := NewEnumerator(NewPairwiseCalculator(), rng.NewStreamAdapter(), 4)
	variants := fourVariants()

	all, err := e.AllComparisons(context.Background(), "m", variants, 42)
	require.NoError(t, err)
	require.Len(t, all, 6)

	for k, p := range AllPairs(len(variants)) {
		assert.Equal(t, variants[p.I].Name, all[k].A)
		assert.Equal(t, variants[p.J].Name, all[k].B)
		assert.Equal(t, p.I == 0, all[k].IsControlComparison)
	}

	control := ControlSubset(all)
	require.Len(t, control, 3)
	for k, c := range control {
		assert.Equal(t, "Control", c.A)
		assert.Equal(t, variants[k+1].Name, c.B)
	}
}

func TestEnumerator_ControlComparisonsMatchSubset(t *testing.T) {
	e := NewEnumerator(NewPairwiseCalculator(), rng.NewStreamAdapter(), 3)
	variants := fourVariants()

	control, err := e.ControlComparisons(context.Background(), "m", variants, 7)
	require.NoError(t, err)
	all, err := e.AllComparisons(context.Background(), "m", variants, 7)
	require.NoError(t, err)

	assert.Equal(t, ControlSubset(all), control)
}

func TestEnumerator_WorkerCountDoesNotChangeResults(t *testing.T) {
	variants := fourVariants()
	sequential, err := NewEnumerator(NewPairwiseCalculator(), rng.NewStreamAdapter(), 1).
		AllComparisons(context.Background(), "m", variants, 11)
	require.NoError(t, err)
	parallel, err := NewEnumerator(NewPairwiseCalculator(), rng.NewStreamAdapter(), 8).
		AllComparisons(context.Background(), "m", variants, 11)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestEnumerator_StreamPerPair(t *testing.T) {
	m := new(MockRNG)
	variants := fourVariants()[:3]
	for _, p := range AllPairs(3) {
		key := PairKey(variants[p.I], variants[p.J])
		m.On("Stream", mock.Anything, "m", key, uint64(5)).Return(rand.New(rand.NewPCG(1, 2)), nil).Once()
	}

	_, err := NewEnumerator(NewPairwiseCalculator(), m, 2).AllComparisons(context.Background(), "m", variants, 5)
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestEnumerator_StreamError(t *testing.T) {
	m := new(MockRNG)
	m.On("Stream", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, fmt.Errorf("boom"))

	_, err := NewEnumerator(NewPairwiseCalculator(), m, 2).AllComparisons(context.Background(), "m", fourVariants(), 5)
	assert.ErrorContains(t, err, "boom")
}

func TestPairKey_Distinct(t *testing.T) {
	assert.Equal(t, "7:ControlA", PairKey(variant("Control", 1, 0), variant("A", 1, 0)))
	assert.NotEqual(t,
		PairKey(variant("x|y", 1, 0), variant("z", 1, 0)),
		PairKey(variant("x", 1, 0), variant("y|z", 1, 0)))
	assert.NotEqual(t,
		PairKey(variant("ab", 1, 0), variant("c", 1, 0)),
		PairKey(variant("a", 1, 0), variant("bc", 1, 0)))

	rapid.Check(t, func(t *rapid.T) {
		a1 := rapid.String().Draw(t, "a1")
		b1 := rapid.String().Draw(t, "b1")
		a2 := rapid.String().Draw(t, "a2")
		b2 := rapid.String().Draw(t, "b2")
		if a1 == a2 && b1 == b2 {
			t.Skip("same pair")
		}
		k1 := PairKey(experiment.Variant{Name: a1}, experiment.Variant{Name: b1})
		k2 := PairKey(experiment.Variant{Name: a2}, experiment.Variant{Name: b2})
		require.NotEqual(t, k1, k2)
	})
}

func TestEnumerator_NilStream(t *testing.T) {
	m := new(MockRNG)
	m.On("Stream", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return((*rand.Rand)(nil), nil)

	_, err := NewEnumerator(NewPairwiseCalculator(), m, 2).AllComparisons(context.Background(), "m", fourVariants(), 5)
	assert.ErrorIs(t, err, ErrNilStream)
}

func TestEnumerator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEnumerator(NewPairwiseCalculator(), rng.NewStreamAdapter(), 2).AllComparisons(ctx, "m", fourVariants(), 5)
	assert.ErrorIs(t, err, context.Canceled)
}
