package excel

import "strings"

// RawRowData represents a row of raw sheet data keyed by canonical column
type RawRowData map[string]string

// SheetData represents the complete sheet contents
type SheetData struct {
	Headers []string     // Canonical column names, "" for unrecognised columns
	Rows    []RawRowData // Data rows
	Lines   []int        // 1-based source row number of each entry in Rows
}

// Canonical column names
const (
	ColumnMetric    = "metric"
	ColumnVariant   = "variant"
	ColumnTrials    = "trials"
	ColumnSuccesses = "successes"
)

var columnAliases = map[string]string{
	"metric":      ColumnMetric,
	"test":        ColumnMetric,
	"variant":     ColumnVariant,
	"name":        ColumnVariant,
	"trials":      ColumnTrials,
	"n":           ColumnTrials,
	"sessions":    ColumnTrials,
	"visitors":    ColumnTrials,
	"successes":   ColumnSuccesses,
	"x":           ColumnSuccesses,
	"conversions": ColumnSuccesses,
}

// canonicalColumn maps a header cell to its canonical column name.
func canonicalColumn(header string) string {
	return columnAliases[strings.ToLower(strings.TrimSpace(header))]
}
