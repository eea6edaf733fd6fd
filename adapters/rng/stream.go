package rng

import (
	"context"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// StreamAdapter implements ports.RNGPort with PCG generators whose seeds are
// derived from the comparison identity.
type StreamAdapter struct{}

// NewStreamAdapter creates a new stream adapter
func NewStreamAdapter() *StreamAdapter {
	return &StreamAdapter{}
}

// Stream creates a deterministic RNG stream for one metric comparison
func (a *StreamAdapter) Stream(ctx context.Context, metric, comparisonKey string, baseSeed uint64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hi, lo := DeriveSeeds(metric, comparisonKey, baseSeed)
	return rand.New(rand.NewPCG(hi, lo)), nil
}

// DeriveSeeds mixes the base seed with a hash of the stream identity. The
// zero byte separator keeps ("ab", "c") and ("a", "bc") apart.
func DeriveSeeds(metric, comparisonKey string, baseSeed uint64) (uint64, uint64) {
	d := xxhash.New()
	_, _ = d.WriteString(metric)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(comparisonKey)
	key := d.Sum64()

	return splitmix(baseSeed ^ key), splitmix(key + 0x9e3779b97f4a7c15*baseSeed)
}

// NewBaseSeed draws a fresh non-zero seed from the runtime's entropy source.
func NewBaseSeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}

func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
