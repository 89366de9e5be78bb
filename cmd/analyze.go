package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/KaramelBytes/datalens/internal/analysis"
	"github.com/KaramelBytes/datalens/internal/dataset"
	"github.com/KaramelBytes/datalens/internal/ingest"
	"github.com/KaramelBytes/datalens/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaOutputPath string
	anaJSON       bool
	anaSampleRows int
	anaBins       int
	anaTop        int
	anaHistColumn string
	anaCatColumn  string
	anaNoCorr     bool
	anaLoader     loaderFlags
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Profile a CSV/TSV/XLSX/JSON dataset: summary, quality, schema, distributions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := settings()
		lopt, err := anaLoader.options(c.IngestOptions())
		if err != nil {
			return err
		}
		opt := c.AnalysisOptions()
		if anaSampleRows > 0 {
			opt.SampleRows = anaSampleRows
		}
		if anaBins > 0 {
			opt.HistogramBins = anaBins
		}
		if anaTop > 0 {
			opt.TopCategories = anaTop
		}
		opt.HistogramColumn = anaHistColumn
		opt.CategoryColumn = anaCatColumn
		opt.Correlations = !anaNoCorr

		rep, err := profileFile(path, lopt, opt)
		if err != nil {
			return err
		}

		var out []byte
		if anaJSON {
			if out, err = utils.PrettyJSON(rep); err != nil {
				return err
			}
		} else {
			out = []byte(rep.Markdown())
		}

		if anaOutputPath != "" {
			if err := os.WriteFile(anaOutputPath, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// profileFile loads one dataset and profiles it, noting a row cap in the report.
func profileFile(path string, lopt ingest.Options, opt analysis.Options) (*analysis.Report, error) {
	ds, err := loadDataset(path, lopt)
	if err != nil {
		return nil, err
	}
	rep, err := analysis.Profile(ds, opt)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", path, err)
	}
	if ingest.Truncated(ds, lopt) {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("row limit reached: only the first %d rows were read", lopt.MaxRows))
	}
	return rep, nil
}

func loadDataset(path string, lopt ingest.Options) (*dataset.Dataset, error) {
	ds, err := ingest.LoadFile(path, lopt)
	if err != nil {
		return nil, err
	}
	slog.Debug("dataset loaded", "file", path, "rows", len(ds.Rows), "columns", len(ds.Columns))
	return ds, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "emit the report as JSON instead of Markdown")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 0, "rows sampled for type inference (0 = config sample_rows)")
	analyzeCmd.Flags().IntVar(&anaBins, "bins", 0, "histogram bins (0 = config histogram_bins)")
	analyzeCmd.Flags().IntVar(&anaTop, "top", 0, "categories to list (0 = config top_categories)")
	analyzeCmd.Flags().StringVar(&anaHistColumn, "hist-column", "", "column to histogram (default: first numeric column)")
	analyzeCmd.Flags().StringVar(&anaCatColumn, "cat-column", "", "column to count categories of (default: first categorical column)")
	analyzeCmd.Flags().BoolVar(&anaNoCorr, "no-correlations", false, "skip the correlation matrix")
	anaLoader.register(analyzeCmd.Flags())
}
