package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// resetFlags restores every flag to its default so bound variables do not leak
// between invocations in the same process.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns what it wrote to stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	require.NoError(t, err, "command %v", args)
	return out
}

// sandbox gives the test its own HOME and a sales dataset.
func sandbox(t *testing.T) (home, csvPath string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	csvPath = filepath.Join(home, "sales.csv")
	content := "region,product,sales\n" +
		"North,a,10\n" +
		"South,b,5\n" +
		"North,c,7\n" +
		"East,a,1\n" +
		",b,3\n" +
		"South,c,2\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o644))
	return home, csvPath
}

func TestAnalyzeMarkdownAndJSON(t *testing.T) {
	_, p := sandbox(t)

	md := mustRun(t, "analyze", p)
	for _, want := range []string{"[DATASET SUMMARY]", "File: sales.csv", "Rows: 6", "[DATA QUALITY]", "[SCHEMA]", "[HISTOGRAM]"} {
		assert.Contains(t, md, want)
	}

	js := mustRun(t, "analyze", p, "--json", "--bins", "3")
	assert.Equal(t, int64(6), gjson.Get(js, "summary.total_rows").Int())
	assert.Equal(t, int64(1), gjson.Get(js, "summary.missing_values").Int())
	assert.Equal(t, "sales", gjson.Get(js, "histogram_column").String())
	assert.Len(t, gjson.Get(js, "histogram").Array(), 3)
}

func TestAnalyzeWritesOutputFile(t *testing.T) {
	home, p := sandbox(t)
	target := filepath.Join(home, "report.md")
	out := mustRun(t, "analyze", p, "-o", target, "--max-rows", "2")
	assert.Contains(t, out, "✓ Wrote analysis to")
	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Rows: 2")
	assert.Contains(t, string(b), "row limit reached")
}

func TestAnalyzeRejectsBadDelimiter(t *testing.T) {
	_, p := sandbox(t)
	_, err := runCmd(t, "analyze", p, "--delimiter", "x")
	assert.ErrorContains(t, err, "unsupported --delimiter")
}

func TestAnalyzeBatchTable(t *testing.T) {
	home, p := sandbox(t)
	second := filepath.Join(home, "more.csv")
	require.NoError(t, os.WriteFile(second, []byte("k,v\nx,1\nx,1\n"), 0o644))

	out := mustRun(t, "analyze-batch", filepath.Join(home, "*.csv"), p, "--quiet", "-j", "2")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[2], "| "+second+" | 2 | 2 | 0 | 1 |"), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "| "+p+" | 6 | 3 | 1 | 0 |"), lines[3])
}

func TestAnalyzeBatchReportsFailures(t *testing.T) {
	home, p := sandbox(t)
	bad := filepath.Join(home, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("[1,2]"), 0o644))
	out, err := runCmd(t, "analyze-batch", p, bad, "--quiet")
	assert.ErrorContains(t, err, "1 of 2 files failed")
	assert.Contains(t, out, "| "+bad+" | error:")
}

func TestChartSeries(t *testing.T) {
	_, p := sandbox(t)
	out := mustRun(t, "chart", p, "-g", "region", "-v", "sales")
	assert.Contains(t, out, "[CHART] sum of sales by region")
	assert.Contains(t, out, "| North | 17 | 2 |")
	assert.Contains(t, out, "| Unknown | 3 | 1 |")
	assert.Less(t, strings.Index(out, "| North |"), strings.Index(out, "| South |"))

	js := mustRun(t, "chart", p, "-g", "region", "-v", "sales", "--agg", "average",
		"--sort", "name", "--order", "asc", "-f", "sales>=2", "--json")
	names := gjson.Get(js, "points.#.name").Array()
	require.Len(t, names, 3)
	assert.Equal(t, "North", names[0].String())
	assert.Equal(t, "South", names[1].String())
	assert.Equal(t, "Unknown", names[2].String())
	assert.Equal(t, 8.5, gjson.Get(js, "points.0.value").Float())
	assert.Equal(t, "average", gjson.Get(js, "config.aggregation").String())
}

func TestChartPicksAxesAutomatically(t *testing.T) {
	_, p := sandbox(t)
	js := mustRun(t, "chart", p, "--json")
	assert.Equal(t, "region", gjson.Get(js, "config.group_key_column").String())
	assert.Equal(t, "sales", gjson.Get(js, "config.value_column").String())
}

func TestChartErrors(t *testing.T) {
	_, p := sandbox(t)
	_, err := runCmd(t, "chart", p, "-g", "nope")
	assert.ErrorContains(t, err, `group column "nope" not found`)

	_, err = runCmd(t, "chart", p, "-g", "region", "-v", "salez")
	assert.ErrorContains(t, err, `value column "salez" not found in sales.csv`)

	// count ignores the value column
	out := mustRun(t, "chart", p, "-g", "region", "-v", "salez", "--agg", "count")
	assert.Contains(t, out, "| North | 2 | 2 |")

	_, err = runCmd(t, "chart", p, "-g", "region", "--agg", "median")
	assert.ErrorContains(t, err, "unknown aggregation")

	_, err = runCmd(t, "chart", p, "-g", "region", "-f", "sales")
	assert.ErrorContains(t, err, "cannot parse filter")

	_, err = runCmd(t, "chart")
	assert.ErrorContains(t, err, "a dataset file or --view is required")
}

func TestChartSaveAndReuseView(t *testing.T) {
	_, p := sandbox(t)
	mustRun(t, "chart", p, "-g", "product", "-v", "sales", "--agg", "count", "--save-view", "by-product")

	list := mustRun(t, "views", "list")
	assert.Contains(t, list, "by-product\tcount of sales by product")

	show := mustRun(t, "views", "show", "BY-PRODUCT")
	assert.Contains(t, show, "group_key_column: product")
	assert.Contains(t, show, "aggregation: count")

	// the view supplies dataset and config; flags still edit it
	out := mustRun(t, "chart", "--view", "by-product", "--sort", "name", "--order", "asc")
	assert.Contains(t, out, "[CHART] count of sales by product")
	assert.Less(t, strings.Index(out, "| a |"), strings.Index(out, "| c |"))
	assert.Contains(t, out, "| a | 2 | 2 |")

	mustRun(t, "views", "delete", "by-product")
	assert.Contains(t, mustRun(t, "views", "list"), "No saved views")
	_, err := runCmd(t, "views", "show", "by-product")
	assert.ErrorContains(t, err, "view not found")
}

func TestConfigSetAndShow(t *testing.T) {
	sandbox(t)
	assert.Contains(t, mustRun(t, "config", "set", "histogram_bins", "7"), "Saved config")
	assert.Contains(t, mustRun(t, "config", "show"), "histogram_bins: 7")

	_, err := runCmd(t, "config", "set", "histogram_bins", "0")
	assert.ErrorContains(t, err, "invalid int for histogram_bins")
	_, err = runCmd(t, "config", "set", "locale", "not a locale!")
	assert.Error(t, err)
	_, err = runCmd(t, "config", "set", "api_key", "x")
	assert.ErrorContains(t, err, "unknown key")
}
