package analysis

import (
	"math"
	"math/rand/v2"

	"github.com/montanaflynn/stats"

	"abtest/domain/experiment"
)

// MonteCarloDraws is the number of joint posterior samples per comparison.
const MonteCarloDraws = 10000

// PairwiseCalculator compares two binomial variants.
type PairwiseCalculator struct {
	draws int
}

// NewPairwiseCalculator creates a calculator using MonteCarloDraws samples
func NewPairwiseCalculator() *PairwiseCalculator {
	return &PairwiseCalculator{draws: MonteCarloDraws}
}

// Compare computes the statistics of b measured against reference a.
// src drives the Monte Carlo estimate; nil means fresh entropy.
func (c *PairwiseCalculator) Compare(a, b experiment.Variant, src rand.Source) experiment.Comparison {
	pa, pb := a.Rate(), b.Rate()

	z := ZScore(a, b)
	pValue := 1.0
	if z != 0 {
		pValue = TwoTailedNormalPValue(z)
	}

	lift := 0.0
	if pa != 0 {
		lift = (pb - pa) / pa * 100
	}

	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	p2bb, interval := c.simulate(a, b, src)

	return experiment.Comparison{
		A:                 a.Name,
		B:                 b.Name,
		RateA:             pa,
		RateB:             pb,
		Difference:        pb - pa,
		Lift:              lift,
		ZScore:            z,
		PValue:            pValue,
		ProbabilityToBeat: p2bb,
		LiftInterval:      interval,
		Significant:       pValue < experiment.SignificanceLevel,
	}
}

// ZScore is the unpooled two-proportion z statistic, 0 when the standard
// error vanishes.
func ZScore(a, b experiment.Variant) float64 {
	if a.Trials <= 0 || b.Trials <= 0 {
		return 0
	}
	pa, pb := a.Rate(), b.Rate()
	se := math.Sqrt(pa*(1-pa)/float64(a.Trials) + pb*(1-pb)/float64(b.Trials))
	if se == 0 || math.IsNaN(se) {
		return 0
	}
	return (pb - pa) / se
}

// simulate draws paired samples from both posteriors. It returns the share
// of draws where b beats a and the 95% interval of relative lift.
func (c *PairwiseCalculator) simulate(a, b experiment.Variant, src rand.Source) (float64, experiment.Interval) {
	postA := Posterior(a.Trials, a.Successes, src)
	postB := Posterior(b.Trials, b.Successes, src)

	wins := 0
	lifts := make([]float64, 0, c.draws)
	for i := 0; i < c.draws; i++ {
		sa := postA.Rand()
		sb := postB.Rand()
		if sb > sa {
			wins++
		}
		if sa > 0 {
			lifts = append(lifts, (sb-sa)/sa*100)
		}
	}

	return float64(wins) / float64(c.draws), liftInterval(lifts)
}

func liftInterval(lifts []float64) experiment.Interval {
	if len(lifts) == 0 {
		return experiment.Interval{}
	}
	lower, err := stats.Percentile(lifts, 2.5)
	if err != nil {
		return experiment.Interval{}
	}
	upper, err := stats.Percentile(lifts, 97.5)
	if err != nil {
		return experiment.Interval{}
	}
	return experiment.Interval{Lower: lower, Upper: upper}
}
