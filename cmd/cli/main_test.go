package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"gosieve/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeProfile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cast.csv")
	require.NoError(t, os.WriteFile(path, []byte(testkit.ProfileCSV), 0o644))
	return path
}

func TestCleanCommand(t *testing.T) {
	path := writeProfile(t)
	out := filepath.Join(t.TempDir(), "out.csv")

	_, err := runCLI(t, "clean", path, "--out", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "depth,temp,salinity\n2,15.2,34.1\n3,15.5,34.0\n", string(data))
}

func TestCleanCommandStdout(t *testing.T) {
	output, err := runCLI(t, "clean", writeProfile(t), "--where", "depth > 2", "-o", "-")
	require.NoError(t, err)
	assert.Equal(t, "depth,temp,salinity\n3,15.5,34.0\n", output)
}

func TestCleanCommandEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n-9999.0\n"), 0o644))

	_, err := runCLI(t, "clean", path, "-o", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all rows were removed")
}

func TestChartCommand(t *testing.T) {
	htmlPath := filepath.Join(t.TempDir(), "report.html")
	xlsxPath := filepath.Join(t.TempDir(), "chart.xlsx")

	output, err := runCLI(t, "chart", writeProfile(t), "--x", "depth", "--y", "temp", "--y", "salinity",
		"--kind", "scatter", "--html", htmlPath, "--xlsx", xlsxPath)
	require.NoError(t, err)

	assert.Contains(t, output, "## Correlation with depth")
	assert.FileExists(t, htmlPath)
	assert.FileExists(t, xlsxPath)
}

func TestChartCommandRequiresY(t *testing.T) {
	_, err := runCLI(t, "chart", writeProfile(t), "--x", "depth")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select at least one Y column")
}

func TestDescribeCommand(t *testing.T) {
	output, err := runCLI(t, "describe", writeProfile(t))
	require.NoError(t, err)
	assert.Contains(t, output, "## Columns")
	assert.Contains(t, output, "| salinity |")
}

func TestBatchCommand(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "cleaned")

	output, err := runCLI(t, "batch", writeProfile(t), "--out-dir", outDir, "--parallel", "2")
	require.NoError(t, err)

	assert.Contains(t, output, "1 cleaned, 0 empty, 0 failed")
	assert.FileExists(t, filepath.Join(outDir, "cast_cleaned.csv"))
}
