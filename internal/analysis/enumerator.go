package analysis

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"golang.org/x/sync/errgroup"

	"abtest/domain/experiment"
	"abtest/ports"
)

// Pair indexes two variants of a metric; I < J and I is the reference.
type Pair struct {
	I int
	J int
}

// ControlPairs returns (0, j) for j = 1..n-1.
func ControlPairs(n int) []Pair {
	if n < 2 {
		return nil
	}
	pairs := make([]Pair, 0, n-1)
	for j := 1; j < n; j++ {
		pairs = append(pairs, Pair{I: 0, J: j})
	}
	return pairs
}

// AllPairs returns every (i, j) with i < j in ascending lexicographic order.
func AllPairs(n int) []Pair {
	if n < 2 {
		return nil
	}
	pairs := make([]Pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, Pair{I: i, J: j})
		}
	}
	return pairs
}

// ControlSubset filters comparisons to those against the control, keeping order.
func ControlSubset(all []experiment.Comparison) []experiment.Comparison {
	out := make([]experiment.Comparison, 0, len(all))
	for _, c := range all {
		if c.IsControlComparison {
			out = append(out, c)
		}
	}
	return out
}

// ErrNilStream is returned when an RNGPort yields no generator.
var ErrNilStream = errors.New("rng port returned a nil stream")

// PairKey names the RNG stream of one comparison. The length prefix keeps
// the key unique whatever characters the names contain.
func PairKey(a, b experiment.Variant) string {
	return strconv.Itoa(len(a.Name)) + ":" + a.Name + b.Name
}

func pairStream(ctx context.Context, r ports.RNGPort, metric string, a, b experiment.Variant, seed uint64) (*rand.Rand, error) {
	stream, err := r.Stream(ctx, metric, PairKey(a, b), seed)
	if err == nil && stream == nil {
		err = ErrNilStream
	}
	if err != nil {
		return nil, fmt.Errorf("rng stream for %s %s vs %s: %w", metric, b.Name, a.Name, err)
	}
	return stream, nil
}

// Enumerator evaluates sets of pairwise comparisons concurrently.
type Enumerator struct {
	calc    *PairwiseCalculator
	rng     ports.RNGPort
	workers int
}

// NewEnumerator creates an enumerator; workers below 1 run sequentially.
func NewEnumerator(calc *PairwiseCalculator, rng ports.RNGPort, workers int) *Enumerator {
	if workers < 1 {
		workers = 1
	}
	return &Enumerator{calc: calc, rng: rng, workers: workers}
}

// ControlComparisons compares every treatment against the control.
func (e *Enumerator) ControlComparisons(ctx context.Context, metric string, variants []experiment.Variant, seed uint64) ([]experiment.Comparison, error) {
	return e.run(ctx, metric, variants, ControlPairs(len(variants)), seed)
}

// AllComparisons compares every unordered pair of variants.
func (e *Enumerator) AllComparisons(ctx context.Context, metric string, variants []experiment.Variant, seed uint64) ([]experiment.Comparison, error) {
	return e.run(ctx, metric, variants, AllPairs(len(variants)), seed)
}

func (e *Enumerator) run(ctx context.Context, metric string, variants []experiment.Variant, pairs []Pair, seed uint64) ([]experiment.Comparison, error) {
	results := make([]experiment.Comparison, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for idx, pair := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, b := variants[pair.I], variants[pair.J]
			stream, err := pairStream(gctx, e.rng, metric, a, b, seed)
			if err != nil {
				return err
			}
			cmp := e.calc.Compare(a, b, stream)
			cmp.IsControlComparison = pair.I == 0
			results[idx] = cmp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
