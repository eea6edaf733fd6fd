package analysis

import (
	"fmt"
	"math"

	"abtest/domain/experiment"
)

// ContingencyTest runs Pearson's chi-square test of independence on the 2xN
// table of successes and failures.
type ContingencyTest struct{}

// NewContingencyTest creates a new contingency test
func NewContingencyTest() *ContingencyTest {
	return &ContingencyTest{}
}

// Run tests whether conversion rates differ across the given variants
func (t *ContingencyTest) Run(variants []experiment.Variant) (experiment.ContingencyResult, error) {
	if len(variants) < 2 {
		return experiment.ContingencyResult{}, fmt.Errorf("contingency test needs at least 2 variants, got %d", len(variants))
	}

	table := buildTable(variants)
	chi, total := pearsonStatistic(table)
	df := len(variants) - 1
	pValue := ChiSquarePValue(chi, df)

	// Cramér's V for a 2xN table: min(r-1, c-1) is 1
	cramersV := 0.0
	if total > 0 && chi > 0 {
		cramersV = math.Sqrt(chi / total)
	}

	return experiment.ContingencyResult{
		ChiSquare:        chi,
		PValue:           pValue,
		DegreesOfFreedom: df,
		CramersV:         cramersV,
		Significant:      pValue < experiment.SignificanceLevel,
	}, nil
}

// buildTable lays out successes in row 0 and failures in row 1
func buildTable(variants []experiment.Variant) [2][]float64 {
	var table [2][]float64
	table[0] = make([]float64, len(variants))
	table[1] = make([]float64, len(variants))
	for j, v := range variants {
		table[0][j] = float64(v.Successes)
		table[1][j] = float64(v.Failures())
	}
	return table
}

// pearsonStatistic returns sum((O-E)^2/E) and the grand total. Cells whose
// expected count is zero contribute nothing.
func pearsonStatistic(table [2][]float64) (float64, float64) {
	rowTotals := [2]float64{}
	colTotals := make([]float64, len(table[0]))
	total := 0.0
	for i := range table {
		for j, v := range table[i] {
			rowTotals[i] += v
			colTotals[j] += v
			total += v
		}
	}
	if total == 0 {
		return 0, 0
	}

	chi := 0.0
	for i := range table {
		for j, observed := range table[i] {
			expected := rowTotals[i] * colTotals[j] / total
			if expected == 0 {
				continue
			}
			diff := observed - expected
			chi += diff * diff / expected
		}
	}
	return chi, total
}
