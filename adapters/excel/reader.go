package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"abtest/domain/core"
	"abtest/domain/experiment"
	"abtest/internal"
	"abtest/internal/parser"
)

// DataReader reads metrics from Excel and CSV files. It implements
// ports.MetricSource.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, logger *internal.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: logger}
}

// IsSpreadsheet reports whether the path names a file this package reads.
func IsSpreadsheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".csv":
		return true
	}
	return false
}

// ReadMetrics reads the file and builds a validated metric set. Rows are
// grouped by metric in first-seen order; variants keep row order.
func (r *DataReader) ReadMetrics(ctx context.Context) (*experiment.MetricSet, error) {
	data, err := r.ReadData(ctx)
	if err != nil {
		return nil, err
	}
	return BuildMetrics(data)
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData(ctx context.Context) (*SheetData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcelData reads the first sheet of the workbook
func (r *DataReader) readExcelData() (*SheetData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	r.logger.Debug("[DataReader] sheet %s read in %.2fms (%d rows)",
		sheets[0], float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*SheetData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.logger.Debug("[DataReader] CSV file read (%d rows)", len(rows))

	return r.processRows(rows)
}

// processRows maps header cells to canonical columns and collects data rows
func (r *DataReader) processRows(rows [][]string) (*SheetData, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType))
	}

	headers := make([]string, len(rows[0]))
	seen := make(map[string]bool)
	for i, header := range rows[0] {
		col := canonicalColumn(strings.TrimPrefix(header, "\ufeff"))
		headers[i] = col
		if col == "" {
			continue
		}
		if seen[col] {
			return nil, fmt.Errorf("column %q appears more than once", col)
		}
		seen[col] = true
	}
	for _, required := range []string{ColumnMetric, ColumnVariant, ColumnTrials, ColumnSuccesses} {
		if !seen[required] {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	data := &SheetData{Headers: headers}
	for i := 1; i < len(rows); i++ {
		rowData := make(RawRowData)
		empty := true
		for j, cell := range rows[i] {
			if j < len(headers) && headers[j] != "" {
				value := strings.TrimSpace(cell)
				rowData[headers[j]] = value
				if value != "" {
					empty = false
				}
			}
		}
		if empty {
			continue
		}
		data.Rows = append(data.Rows, rowData)
		data.Lines = append(data.Lines, i+1)
	}

	r.logger.Debug("[DataReader] %s file processed (%d rows)", strings.ToUpper(r.fileType), len(data.Rows))
	return data, nil
}

// BuildMetrics groups rows by metric and validates them through the parser's
// Builder.
func BuildMetrics(data *SheetData) (*experiment.MetricSet, error) {
	var order []string
	groups := make(map[string][]int)
	for i, row := range data.Rows {
		name := strings.Join(strings.Fields(row[ColumnMetric]), " ")
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], i)
	}

	b := parser.NewBuilder()
	for _, metric := range order {
		if metric == "" {
			first := groups[metric][0]
			return nil, formatRowError(data, first, "missing metric name")
		}
		if err := b.StartMetric(metric, metric); err != nil {
			return nil, err
		}
		for _, idx := range groups[metric] {
			row := data.Rows[idx]
			line := rowLine(data, idx)

			trials, err := parser.ParseCount(row[ColumnTrials])
			if err != nil {
				return nil, formatRowError(data, idx, "trials and successes must be integers")
			}
			successes, err := parser.ParseCount(row[ColumnSuccesses])
			if err != nil {
				return nil, formatRowError(data, idx, "trials and successes must be integers")
			}
			name := strings.Join(strings.Fields(row[ColumnVariant]), " ")
			if err := b.AddVariant(name, trials, successes, line); err != nil {
				return nil, err
			}
		}
	}
	return b.Finish()
}

func rowLine(data *SheetData, idx int) string {
	row := data.Rows[idx]
	text := strings.Join([]string{row[ColumnMetric], row[ColumnVariant], row[ColumnTrials], row[ColumnSuccesses]}, ",")
	if idx < len(data.Lines) {
		return fmt.Sprintf("row %d: %s", data.Lines[idx], text)
	}
	return text
}

func formatRowError(data *SheetData, idx int, reason string) error {
	return core.NewFormatError(rowLine(data, idx), reason)
}
