package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/datalens/internal/analysis"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	abConcurrency int
	abDetails     bool
	abQuiet       bool
	abLoader      loaderFlags
)

type batchResult struct {
	path string
	rep  *analysis.Report
	err  error
}

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Profile many datasets concurrently and print a quality table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}

		c := settings()
		lopt, err := abLoader.options(c.IngestOptions())
		if err != nil {
			return err
		}
		opt := c.AnalysisOptions()
		limit := c.BatchConcurrency
		if abConcurrency > 0 {
			limit = abConcurrency
		}
		if limit <= 0 {
			limit = 1
		}

		results := make([]batchResult, len(files))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(limit)
		total := len(files)
		for i, path := range files {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				if !abQuiet {
					fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
				}
				rep, err := profileFile(path, lopt, opt)
				if err != nil {
					slog.Debug("batch item failed", "file", path, "error", err)
				}
				results[i] = batchResult{path: path, rep: rep, err: err}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		writeBatchTable(out, results)
		failed := 0
		for _, r := range results {
			if r.err != nil {
				failed++
				continue
			}
			if abDetails {
				fmt.Fprintf(out, "\n## %s\n\n%s", r.path, r.rep.Markdown())
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, total)
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, and
// de-duplicates. The result is sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func writeBatchTable(w io.Writer, results []batchResult) {
	fmt.Fprintln(w, "| file | rows | columns | missing | duplicates | memory | quality |")
	fmt.Fprintln(w, "| --- | --- | --- | --- | --- | --- | --- |")
	for _, r := range results {
		name := strings.ReplaceAll(r.path, "|", "/")
		if r.err != nil {
			fmt.Fprintf(w, "| %s | error: %s | | | | | |\n", name, strings.ReplaceAll(r.err.Error(), "\n", " "))
			continue
		}
		s := r.rep.Summary
		fmt.Fprintf(w, "| %s | %d | %d | %d | %d | %s | %d |\n",
			name, s.TotalRows, s.TotalColumns, s.MissingValues, s.Duplicates, s.MemoryUsage, r.rep.Quality)
	}
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().IntVarP(&abConcurrency, "concurrency", "j", 0, "files processed in parallel (0 = config batch_concurrency)")
	analyzeBatchCmd.Flags().BoolVar(&abDetails, "details", false, "print the full report of every file after the table")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress output")
	abLoader.register(analyzeBatchCmd.Flags())
}
