package excel

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"abtest/domain/experiment"
)

func sampleAnalyses() []experiment.MetricAnalysis {
	ab := experiment.Comparison{A: "Control", B: "Variant", RateA: 0.1, RateB: 0.15, Lift: 50, PValue: 0.0007, Significant: true, IsControlComparison: true}
	return []experiment.MetricAnalysis{
		{
			Metric: "Test", Kind: experiment.KindAB, Seed: 3,
			Variants: []experiment.Variant{
				{Name: "Control", Trials: 1000, Successes: 100},
				{Name: "Variant", Trials: 1000, Successes: 150},
			},
			Comparison: &ab,
		},
		{
			Metric: "Three", Kind: experiment.KindABN, Seed: 3,
			Variants: []experiment.Variant{
				{Name: "a", Trials: 10, Successes: 1},
				{Name: "b", Trials: 10, Successes: 2},
				{Name: "c", Trials: 10, Successes: 3},
			},
			Contingency: &experiment.ContingencyResult{ChiSquare: 1.2, PValue: 0.55, DegreesOfFreedom: 2},
			PairwiseComparisons: []experiment.Comparison{
				{A: "a", B: "b", IsControlComparison: true},
				{A: "a", B: "c", IsControlComparison: true},
				{A: "b", B: "c"},
			},
		},
	}
}

func TestResultWriter_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, NewResultWriter().WriteFile(path, sampleAnalyses()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, ComparisonsSheet}, f.GetSheetList())

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 6)
	assert.Equal(t, "Metric", summary[0][0])
	assert.Equal(t, []string{"Test", "Control", "1000", "100"}, summary[1][:4])
	assert.Equal(t, "Three", summary[3][0])
	assert.Equal(t, "2", summary[3][6])

	comparisons, err := f.GetRows(ComparisonsSheet)
	require.NoError(t, err)
	require.Len(t, comparisons, 5)
	assert.Equal(t, []string{"Test", "Control", "Variant"}, comparisons[1][:3])
	assert.Equal(t, []string{"Three", "b", "c"}, comparisons[4][:3])
}

func TestResultWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewResultWriter().Write(&buf, sampleAnalyses()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ComparisonsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}
