package analysis

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// TwoTailedNormalPValue returns 2·P(Z > |z|) for a standard normal Z.
// Survival keeps precision in the far tail where 1-CDF would round to zero.
func TwoTailedNormalPValue(z float64) float64 {
	if math.IsNaN(z) {
		return 1.0
	}
	p := 2 * distuv.UnitNormal.Survival(math.Abs(z))
	if p > 1 {
		return 1.0
	}
	return p
}

// ChiSquarePValue computes the upper tail probability of a chi-square statistic
func ChiSquarePValue(chiSquare float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 || chiSquare <= 0 || math.IsNaN(chiSquare) {
		return 1.0
	}

	chiDist := distuv.ChiSquared{K: float64(degreesOfFreedom)}
	return chiDist.Survival(chiSquare)
}

// Posterior returns the Beta(x+1, n-x+1) posterior of a conversion rate under
// a uniform prior, drawing from src.
func Posterior(trials, successes int64, src rand.Source) distuv.Beta {
	return distuv.Beta{
		Alpha: float64(successes) + 1,
		Beta:  float64(trials-successes) + 1,
		Src:   src,
	}
}
