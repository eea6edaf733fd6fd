package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"abtest/app"
	"abtest/domain/core"
)

const sample = "Test\nControl 1000 100\nVariant 1000 150\n"

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyze_StdinJSON(t *testing.T) {
	out, err := run(t, sample, "analyze", "--seed", "8")
	require.NoError(t, err)

	var result app.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, uint64(8), result.Seed)
	require.Len(t, result.Metrics, 1)
	assert.InDelta(t, 50.0, result.Metrics[0].Comparison.Lift, 1e-9)
}

func TestAnalyze_FileMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	out, err := run(t, "", "analyze", path, "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "## Test")
	assert.Contains(t, out, "improvement of 50.00%")
}

func TestAnalyze_CSVWithWorkbookExport(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "input.csv")
	xlsxPath := filepath.Join(dir, "out.xlsx")
	require.NoError(t, os.WriteFile(csvPath, []byte("metric,variant,trials,successes\nTest,Control,1000,100\nTest,Variant,1000,150\n"), 0o644))

	_, err := run(t, "", "analyze", csvPath, "--xlsx", xlsxPath)
	require.NoError(t, err)

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestAnalyze_Errors(t *testing.T) {
	_, err := run(t, "Test\nBad 100 200\nOk 100 1\n", "analyze")
	var rangeErr *core.RangeError
	require.ErrorAs(t, err, &rangeErr)

	_, err = run(t, sample, "analyze", "--format", "yaml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestShareEncodeDecode(t *testing.T) {
	token, err := run(t, sample, "share", "encode")
	require.NoError(t, err)
	token = strings.TrimSpace(token)
	require.NotEmpty(t, token)

	out, err := run(t, "", "share", "decode", token, "--seed", "2", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "## Test")
	assert.Contains(t, out, "_Seed: 2_")

	_, err = run(t, "", "share", "decode", "garbage")
	assert.True(t, core.IsTokenError(err))
}
