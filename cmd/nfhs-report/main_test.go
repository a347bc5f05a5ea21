package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"nfhsdash/internal/shared/testutil"
)

// execute runs nfhs-report against a fixture workbook and returns the exit
// code with both output streams.
func execute(t *testing.T, source string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--no-color", "--source", source}, args...)
	code := run(full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func fixture(t *testing.T) string {
	t.Helper()
	return testutil.WriteSurveyWorkbook(t, testutil.SampleSurveyRows())
}

func TestRootHelp(t *testing.T) {
	var stdout bytes.Buffer
	code := run([]string{"--help"}, &stdout, &stdout)
	require.Equal(t, ExitOK, code)

	out := stdout.String()
	for _, sub := range []string{"rounds", "indicators", "summary", "top", "trend", "export"} {
		assert.Contains(t, out, sub)
	}
}

func TestVersion(t *testing.T) {
	var stdout bytes.Buffer
	code := run([]string{"--version"}, &stdout, &stdout)
	require.Equal(t, ExitOK, code)
	assert.True(t, strings.HasPrefix(stdout.String(), "NFHS Dashboard v"))
	assert.Contains(t, stdout.String(), "commit:")
}

func TestRounds(t *testing.T) {
	code, out, _ := execute(t, fixture(t), "rounds")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "3\n4\n5\n", out)
}

func TestVerboseLogsCarryInvocationID(t *testing.T) {
	code, _, errOut := execute(t, fixture(t), "-v", "rounds")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, errOut, "loading survey extract")
	assert.Contains(t, errOut, `"request_id"`)
}

func TestIndicators(t *testing.T) {
	source := fixture(t)

	code, out, _ := execute(t, source, "indicators", "--round", "4")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "Sex ratio\nLiteracy (%)\n", out)

	code, _, errOut := execute(t, source, "indicators", "--round", "9")
	assert.Equal(t, ExitNoData, code)
	assert.Contains(t, errOut, `no rows for round "9"`)

	t.Run("numeric round matched by value", func(t *testing.T) {
		code, out, _ := execute(t, source, "indicators", "--round", "4.0")
		require.Equal(t, ExitOK, code)
		assert.Equal(t, "Sex ratio\nLiteracy (%)\n", out)

		code, _, _ = execute(t, source, "top", "--round", "5.0", "--indicator", "Sex ratio", "-n", "1")
		assert.Equal(t, ExitOK, code)
	})
}

func TestSummary(t *testing.T) {
	source := fixture(t)

	code, out, _ := execute(t, source, "summary", "--round", "5", "--indicator", "Sex ratio")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "NFHS round 5: Sex ratio")
	assert.Contains(t, out, "1079.33")
	assert.Contains(t, out, "Kerala (1121.00)")
	assert.Contains(t, out, "Goa (1027.00)")
}

func TestTop(t *testing.T) {
	source := fixture(t)

	code, out, _ := execute(t, source, "top", "--round", "5", "--indicator", "Sex ratio", "-n", "2")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Top 2 States")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[2], "1"))
	assert.Contains(t, lines[2], "Kerala")
	assert.Contains(t, lines[3], "Bihar")

	t.Run("missing values last", func(t *testing.T) {
		code, out, _ := execute(t, source, "top", "--round", "5", "--indicator", "Literacy (%)")
		require.Equal(t, ExitOK, code)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		assert.Contains(t, lines[len(lines)-1], "Bihar")
		assert.True(t, strings.HasSuffix(lines[len(lines)-1], "-"))
	})

	t.Run("writes csv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "top.csv")
		code, out, _ := execute(t, source, "top", "--round", "5", "--indicator", "Sex ratio", "--out", path)
		require.Equal(t, ExitOK, code)
		assert.Contains(t, out, "wrote "+path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Rank,STATE,Sex ratio\n")
		assert.Contains(t, string(data), "1,Kerala,1121\n")
	})
}

func TestTrend(t *testing.T) {
	code, out, _ := execute(t, fixture(t), "trend", "--indicator", "Literacy (%)")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Average Literacy (%) by NFHS Round")
	assert.Contains(t, out, "ROUND")
	assert.Contains(t, out, "94.65")
}

func TestExport(t *testing.T) {
	source := fixture(t)

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "round5.csv")
		code, _, _ := execute(t, source, "export", "--round", "5", "--indicator", "Sex ratio", "--out", path)
		require.Equal(t, ExitOK, code)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
		assert.Contains(t, string(data), "STATE,nfhs,Sex ratio\n")
		assert.Contains(t, string(data), "Goa,5,1027\n")
	})

	t.Run("xlsx", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "round5.xlsx")
		code, _, _ := execute(t, source, "export", "--round", "5",
			"--indicator", "Sex ratio", "--indicator", "Literacy (%)", "--out", path)
		require.Equal(t, ExitOK, code)

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, []string{"NFHS 5", "Trend Sex ratio", "Trend Literacy (%)"}, f.GetSheetList())
	})
}

func TestExitCodes(t *testing.T) {
	source := fixture(t)
	missing := filepath.Join(t.TempDir(), "absent.xlsx")

	tests := []struct {
		name   string
		source string
		args   []string
		want   int
	}{
		{"missing required flag", source, []string{"summary", "--round", "5"}, ExitInvalidArgs},
		{"unknown subcommand", source, []string{"plot"}, ExitInvalidArgs},
		{"unknown indicator", source, []string{"summary", "--round", "5", "--indicator", "Height"}, ExitInvalidArgs},
		{"text indicator", source, []string{"summary", "--round", "5", "--indicator", "Notes"}, ExitInvalidArgs},
		{"unsupported output", source, []string{"export", "--round", "5", "--out", "view.pdf"}, ExitInvalidArgs},
		{"source missing", missing, []string{"rounds"}, ExitDataUnavailable},
		{"empty selection", source, []string{"summary", "--round", "9", "--indicator", "Sex ratio"}, ExitNoData},
		{"unknown round for top", source, []string{"top", "--round", "9", "--indicator", "Sex ratio"}, ExitNoData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := execute(t, tt.source, tt.args...)
			assert.Equal(t, tt.want, code)
			assert.NotEmpty(t, errOut)
		})
	}
}

func TestOutputFormat(t *testing.T) {
	format, err := outputFormat("Report.XLSX")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", format)

	_, err = outputFormat("report")
	var ece *exitCodeError
	require.ErrorAs(t, err, &ece)
	assert.Equal(t, ExitInvalidArgs, ece.ExitCode())
}
