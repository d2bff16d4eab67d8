package commands

import (
	"cmp"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/fleetlens/pkg/analysis"
	"github.com/Sumatoshi-tech/fleetlens/pkg/dataset"
	"github.com/Sumatoshi-tech/fleetlens/pkg/observability"
	"github.com/Sumatoshi-tech/fleetlens/pkg/report/plotpage"
)

// ErrNoSeries is returned when the dataset holds no series to analyze.
var ErrNoSeries = errors.New("dataset has no series")

// ErrInvalidSmoothing is returned for a --smoothing value outside [0, 1].
var ErrInvalidSmoothing = errors.New("smoothing must be within [0, 1]")

type trendOptions struct {
	input     string
	metricIDs []string
	smoothing float64
	format    string
	html      string
	theme     string
}

func newTrendCommand(global *globalOptions) *cobra.Command {
	opts := &trendOptions{}

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Analyze metrics over time",
		Long: `Compute the percent change, average and range of each metric series in
the dataset and phrase them as insights. Without --metrics every series of
the dataset is analyzed in id order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrend(cmd, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "-", "dataset file (YAML or JSON, - for stdin)")
	cmd.Flags().StringSliceVarP(&opts.metricIDs, "metrics", "m", nil, "catalog metric ids, in report order")
	cmd.Flags().Float64Var(&opts.smoothing, "smoothing", -1, "EMA smoothing factor in (0, 1]; 0 disables")
	cmd.Flags().StringVarP(&opts.format, "format", "f", FormatTable, "output format: table or json")
	cmd.Flags().StringVar(&opts.html, "html", "", "also write an HTML chart page to this file")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "HTML theme: dark or light")

	return cmd
}

func runTrend(cmd *cobra.Command, global *globalOptions, opts *trendOptions) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}

	if opts.smoothing > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSmoothing, opts.smoothing)
	}

	rt, err := setup(global, observability.ModeCLI)
	if err != nil {
		return err
	}

	defer func() { _ = rt.close() }()

	theme, err := plotpage.ParseTheme(cmp.Or(opts.theme, rt.cfg.Render.Theme))
	if err != nil {
		return err
	}

	ds, err := dataset.Load(opts.input)
	if err != nil {
		return err
	}

	metricIDs := opts.metricIDs
	if len(metricIDs) == 0 {
		if err = ds.Check(rt.cat); err != nil {
			return err
		}

		metricIDs = seriesIDs(ds)
	}

	if len(metricIDs) == 0 {
		return ErrNoSeries
	}

	smoothing := rt.cfg.Analysis.SmoothingAlpha
	if opts.smoothing >= 0 {
		smoothing = opts.smoothing
	}

	report, err := rt.engine.Trend(cmd.Context(), analysis.TrendQuery{
		MetricIDs:      metricIDs,
		Series:         ds.Series,
		SmoothingAlpha: smoothing,
	})
	if err != nil {
		return err
	}

	if opts.format == FormatJSON {
		err = writeJSON(cmd.OutOrStdout(), report)
	} else {
		err = rt.renderer().RenderTrend(cmd.OutOrStdout(), report)
	}

	if err != nil {
		return err
	}

	if opts.html != "" {
		if err = writeHTML(opts.html, plotpage.TrendPage(report, rt.cat, theme)); err != nil {
			return err
		}

		rt.notice(cmd.ErrOrStderr(), "wrote %s", opts.html)
	}

	return nil
}

// seriesIDs returns the dataset metrics that carry a series, in id order.
func seriesIDs(ds *dataset.Dataset) []string {
	ids := make([]string, 0, len(ds.Series))

	for _, id := range ds.MetricIDs() {
		if _, ok := ds.Series[id]; ok {
			ids = append(ids, id)
		}
	}

	return ids
}
