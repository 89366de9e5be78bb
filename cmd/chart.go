package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/datalens/internal/analysis"
	"github.com/KaramelBytes/datalens/internal/chartstate"
	"github.com/KaramelBytes/datalens/internal/dataset"
	"github.com/KaramelBytes/datalens/internal/dispatch"
	"github.com/KaramelBytes/datalens/internal/utils"
	"github.com/KaramelBytes/datalens/internal/views"
	"github.com/spf13/cobra"
)

var (
	chGroup        string
	chValue        string
	chAgg          string
	chSortKey      string
	chSortDir      string
	chFilters      []string
	chResetFilters bool
	chMaxPoints    int
	chLocale       string
	chView         string
	chSaveView     string
	chJSON         bool
	chTimeout      time.Duration
	chLoader       loaderFlags
)

var chartCmd = &cobra.Command{
	Use:   "chart [file]",
	Short: "Group, filter and aggregate a dataset into a chart series",
	Long: `Build an aggregated series: rows are filtered, grouped by --group, folded with
--agg over --value, sorted and truncated to --max-points.

Without --group or --value the first categorical and numeric columns are used.
A saved view (--view) supplies the dataset and configuration; flags edit it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		base := chartstate.Default()
		base.Locale = c.Locale
		base.MaxPoints = c.MaxPoints

		var store *views.Store
		if chView != "" || chSaveView != "" {
			s, err := views.Open(c.ViewsDir)
			if err != nil {
				return err
			}
			store = s
		}

		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		if chView != "" {
			v, err := store.Get(chView)
			if err != nil {
				return err
			}
			base = v.Config
			if path == "" {
				path = v.Dataset
			}
		}
		if path == "" {
			return fmt.Errorf("a dataset file or --view is required")
		}

		lopt, err := chLoader.options(c.IngestOptions())
		if err != nil {
			return err
		}
		ds, err := loadDataset(path, lopt)
		if err != nil {
			return err
		}

		cmds, err := chartCommands(cmd)
		if err != nil {
			return err
		}
		chartCfg, err := chartstate.Apply(base, cmds...)
		if err != nil {
			return err
		}
		chartCfg = fillAxes(chartCfg, ds, c.AnalysisOptions())
		if chartCfg.GroupKeyColumn == "" {
			return fmt.Errorf("no categorical column found; pass --group")
		}
		if _, ok := ds.Column(chartCfg.GroupKeyColumn); !ok {
			return fmt.Errorf("group column %q not found in %s", chartCfg.GroupKeyColumn, filepath.Base(path))
		}
		if chartCfg.Aggregation != analysis.AggCount {
			if _, ok := ds.Column(chartCfg.ValueColumn); !ok {
				return fmt.Errorf("value column %q not found in %s", chartCfg.ValueColumn, filepath.Base(path))
			}
		}

		ctx := cmd.Context()
		if chTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, chTimeout)
			defer cancel()
		}
		points, err := runChart(ctx, ds.Rows, chartCfg, c.WorkerQueue)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if chJSON {
			b, err := utils.PrettyJSON(struct {
				Config analysis.ChartConfig       `json:"config"`
				Points []analysis.AggregatedPoint `json:"points"`
			}{chartCfg, points})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		} else {
			fmt.Fprint(out, analysis.SeriesMarkdown(chartCfg, points))
		}

		if chSaveView != "" {
			abs, err := filepath.Abs(path)
			if err != nil {
				abs = path
			}
			v, err := store.Save(chSaveView, abs, chartCfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Saved view '%s' (%s)\n", v.Name, v.ID)
		}
		return nil
	},
}

// chartCommands turns the flags the user actually set into reducer commands.
func chartCommands(cmd *cobra.Command) ([]chartstate.Command, error) {
	f := cmd.Flags()
	var cmds []chartstate.Command
	if f.Changed("group") || f.Changed("value") {
		cmds = append(cmds, chartstate.SetAxis{GroupKey: chGroup, Value: chValue})
	}
	if f.Changed("agg") {
		cmds = append(cmds, chartstate.SetAggregation{Mode: analysis.AggregationMode(chAgg)})
	}
	if f.Changed("sort") || f.Changed("order") {
		var sc chartstate.SetSort
		if f.Changed("sort") {
			sc.Key = analysis.SortKey(chSortKey)
		}
		if f.Changed("order") {
			sc.Direction = analysis.SortDirection(chSortDir)
		}
		cmds = append(cmds, sc)
	}
	if chResetFilters {
		cmds = append(cmds, chartstate.ResetFilters{})
	}
	for _, expr := range chFilters {
		flt, err := analysis.ParseFilter(expr)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, chartstate.AddFilter{Filter: flt})
	}
	if f.Changed("max-points") || f.Changed("locale") {
		lim := chartstate.SetLimits{}
		if f.Changed("max-points") {
			lim.MaxPoints = chMaxPoints
		}
		if f.Changed("locale") {
			lim.Locale = chLocale
		}
		cmds = append(cmds, lim)
	}
	return cmds, nil
}

// fillAxes picks the quick-chart columns for any axis left empty. Without a
// numeric column the series counts rows instead.
func fillAxes(cfg analysis.ChartConfig, ds *dataset.Dataset, opt analysis.Options) analysis.ChartConfig {
	if cfg.GroupKeyColumn == "" {
		if name, ok := analysis.QuickCategorical(ds, opt); ok {
			cfg = chartstate.Reduce(cfg, chartstate.SetAxis{GroupKey: name})
		}
	}
	if cfg.ValueColumn == "" {
		if name, ok := analysis.QuickNumeric(ds, opt); ok {
			cfg = chartstate.Reduce(cfg, chartstate.SetAxis{Value: name})
		} else {
			cfg = chartstate.Reduce(cfg, chartstate.SetAggregation{Mode: analysis.AggCount})
		}
	}
	return cfg
}

// runChart performs one round trip through a dispatcher scoped to this call.
func runChart(ctx context.Context, rows []dataset.Row, cfg analysis.ChartConfig, queue int) ([]analysis.AggregatedPoint, error) {
	d := dispatch.New(dispatch.Options{QueueSize: queue, Logger: slog.Default()})
	defer d.Dispose()

	seq, err := d.Dispatch(ctx, rows, cfg)
	if err != nil {
		return nil, err
	}
	res, err := d.Await(ctx, seq)
	if err != nil {
		return nil, fmt.Errorf("await chart: %w", err)
	}
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Points, nil
}

func init() {
	rootCmd.AddCommand(chartCmd)
	f := chartCmd.Flags()
	f.StringVarP(&chGroup, "group", "g", "", "column to group by")
	f.StringVarP(&chValue, "value", "v", "", "numeric column to aggregate")
	f.StringVarP(&chAgg, "agg", "a", "sum", "aggregation: sum|average|count|none")
	f.StringVar(&chSortKey, "sort", "value", "sort key: name|value")
	f.StringVar(&chSortDir, "order", "desc", "sort direction: asc|desc")
	f.StringArrayVarP(&chFilters, "filter", "f", nil, "row filter, e.g. 'region=North', 'sales>=100', 'name~corp' (repeatable)")
	f.BoolVar(&chResetFilters, "reset-filters", false, "drop filters carried by --view before applying --filter")
	f.IntVar(&chMaxPoints, "max-points", analysis.DefaultMaxPoints, "maximum points after sorting")
	f.StringVar(&chLocale, "locale", "en", "BCP 47 locale used to order names")
	f.StringVar(&chView, "view", "", "load a saved view")
	f.StringVar(&chSaveView, "save-view", "", "save the resulting configuration under this name")
	f.BoolVar(&chJSON, "json", false, "emit config and points as JSON")
	f.DurationVar(&chTimeout, "timeout", 30*time.Second, "maximum time to wait for the worker")
	chLoader.register(f)
}
