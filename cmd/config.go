package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/datalens/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set DataLens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sample_rows: %d\n", c.SampleRows)
		fmt.Fprintf(out, "quick_sample_rows: %d\n", c.QuickSampleRows)
		fmt.Fprintf(out, "numeric_min_matches: %d\n", c.NumericMinMatches)
		fmt.Fprintf(out, "numeric_ratio: %.2f\n", c.NumericRatio)
		fmt.Fprintf(out, "categorical_min_distinct: %d\n", c.CategoricalMinDistinct)
		fmt.Fprintf(out, "categorical_max_distinct: %d\n", c.CategoricalMaxDistinct)
		fmt.Fprintf(out, "histogram_bins: %d\n", c.HistogramBins)
		fmt.Fprintf(out, "top_categories: %d\n", c.TopCategories)
		fmt.Fprintf(out, "max_points: %d\n", c.MaxPoints)
		fmt.Fprintf(out, "locale: %s\n", c.Locale)
		fmt.Fprintf(out, "max_rows: %d\n", c.MaxRows)
		fmt.Fprintf(out, "worker_queue: %d\n", c.WorkerQueue)
		fmt.Fprintf(out, "batch_concurrency: %d\n", c.BatchConcurrency)
		fmt.Fprintf(out, "views_dir: %s\n", c.ViewsDir)
		return nil
	},
}

// intKeys maps integer settings to their field; every value must be >= min.
var intKeys = map[string]struct {
	field func(*cfgpkg.Global) *int
	min   int
}{
	"sample_rows":              {func(c *cfgpkg.Global) *int { return &c.SampleRows }, 1},
	"quick_sample_rows":        {func(c *cfgpkg.Global) *int { return &c.QuickSampleRows }, 1},
	"numeric_min_matches":      {func(c *cfgpkg.Global) *int { return &c.NumericMinMatches }, 1},
	"categorical_min_distinct": {func(c *cfgpkg.Global) *int { return &c.CategoricalMinDistinct }, 1},
	"categorical_max_distinct": {func(c *cfgpkg.Global) *int { return &c.CategoricalMaxDistinct }, 1},
	"histogram_bins":           {func(c *cfgpkg.Global) *int { return &c.HistogramBins }, 1},
	"top_categories":           {func(c *cfgpkg.Global) *int { return &c.TopCategories }, 1},
	"max_points":               {func(c *cfgpkg.Global) *int { return &c.MaxPoints }, 1},
	"max_rows":                 {func(c *cfgpkg.Global) *int { return &c.MaxRows }, 0},
	"worker_queue":             {func(c *cfgpkg.Global) *int { return &c.WorkerQueue }, 0},
	"batch_concurrency":        {func(c *cfgpkg.Global) *int { return &c.BatchConcurrency }, 1},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if k, ok := intKeys[key]; ok {
			i, err := strconv.Atoi(val)
			if err != nil || i < k.min {
				return fmt.Errorf("invalid int for %s: %v (minimum %d)", key, val, k.min)
			}
			*k.field(cfg) = i
		} else {
			switch key {
			case "numeric_ratio":
				f, err := strconv.ParseFloat(val, 64)
				if err != nil || f <= 0 || f > 1 {
					return fmt.Errorf("invalid float for numeric_ratio: %v (use 0 < r <= 1)", val)
				}
				cfg.NumericRatio = f
			case "locale":
				if _, err := language.Parse(val); err != nil {
					return fmt.Errorf("invalid locale %q: %w", val, err)
				}
				cfg.Locale = val
			case "views_dir":
				cfg.ViewsDir = val
			default:
				return fmt.Errorf("unknown key: %s", key)
			}
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
