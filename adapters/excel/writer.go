package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"abtest/domain/experiment"
)

// Sheet names of an exported workbook
const (
	SummarySheet     = "Summary"
	ComparisonsSheet = "Comparisons"
)

var (
	summaryHeaders = []interface{}{
		"Metric", "Variant", "Trials", "Successes", "Rate",
		"Chi-square", "df", "p-value", "Cramér's V", "Significant", "Seed",
	}
	comparisonHeaders = []interface{}{
		"Metric", "A", "B", "Rate A", "Rate B", "Difference", "Lift %",
		"Lift 2.5%", "Lift 97.5%", "z", "p-value", "P(B beats A)", "Significant", "Against control",
	}
)

// ResultWriter exports analyses to an xlsx workbook.
type ResultWriter struct{}

// NewResultWriter creates a new result writer
func NewResultWriter() *ResultWriter {
	return &ResultWriter{}
}

// WriteFile saves the workbook at path.
func (w *ResultWriter) WriteFile(path string, analyses []experiment.MetricAnalysis) error {
	f, err := w.build(analyses)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Write streams the workbook to out.
func (w *ResultWriter) Write(out io.Writer, analyses []experiment.MetricAnalysis) error {
	f, err := w.build(analyses)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (w *ResultWriter) build(analyses []experiment.MetricAnalysis) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(ComparisonsSheet); err != nil {
		f.Close()
		return nil, err
	}

	summary := [][]interface{}{summaryHeaders}
	comparisons := [][]interface{}{comparisonHeaders}
	for _, a := range analyses {
		for i, v := range a.Variants {
			row := []interface{}{a.Metric, v.Name, v.Trials, v.Successes, v.Rate()}
			if i == 0 && a.Contingency != nil {
				c := a.Contingency
				row = append(row, c.ChiSquare, c.DegreesOfFreedom, c.PValue, c.CramersV, c.Significant, a.Seed)
			} else if i == 0 {
				row = append(row, nil, nil, nil, nil, nil, a.Seed)
			}
			summary = append(summary, row)
		}

		for _, c := range comparisonsOf(a) {
			comparisons = append(comparisons, []interface{}{
				a.Metric, c.A, c.B, c.RateA, c.RateB, c.Difference, c.Lift,
				c.LiftInterval.Lower, c.LiftInterval.Upper, c.ZScore, c.PValue,
				c.ProbabilityToBeat, c.Significant, c.IsControlComparison,
			})
		}
	}

	if err := writeRows(f, SummarySheet, summary); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRows(f, ComparisonsSheet, comparisons); err != nil {
		f.Close()
		return nil, err
	}

	idx, err := f.GetSheetIndex(SummarySheet)
	if err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

// comparisonsOf lists the single A/B comparison or every pairwise one.
func comparisonsOf(a experiment.MetricAnalysis) []experiment.Comparison {
	if a.Comparison != nil {
		return []experiment.Comparison{*a.Comparison}
	}
	return a.PairwiseComparisons
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, r+1, err)
		}
	}
	return nil
}
