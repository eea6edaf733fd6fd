package ports

import (
	"context"
	"math/rand/v2"
)

// RNGPort provides seeded random number generation for Monte Carlo estimates
type RNGPort interface {
	// Stream returns an independent generator for one comparison. The same
	// (metric, comparisonKey, baseSeed) triple always yields the same sequence,
	// and distinct keys yield uncorrelated sequences, so parallel workers never
	// share generator state. Implementations must return a non-nil
	// generator whenever the error is nil.
	Stream(ctx context.Context, metric, comparisonKey string, baseSeed uint64) (*rand.Rand, error)
}
