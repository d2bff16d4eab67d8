package commands

import (
	"cmp"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/Sumatoshi-tech/fleetlens/pkg/analysis"
	"github.com/Sumatoshi-tech/fleetlens/pkg/dataset"
	"github.com/Sumatoshi-tech/fleetlens/pkg/observability"
	"github.com/Sumatoshi-tech/fleetlens/pkg/ranking"
	"github.com/Sumatoshi-tech/fleetlens/pkg/report/plotpage"
)

// ErrNoMetric is returned when --metric is missing.
var ErrNoMetric = errors.New("metric is required (use --metric)")

type compareOptions struct {
	input      string
	metricID   string
	order      string
	limit      int
	locale     string
	chartMode  string
	otherLabel string
	format     string
	html       string
	theme      string
}

func newCompareCommand(global *globalOptions) *cobra.Command {
	opts := &compareOptions{}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Rank entities on one metric",
		Long: `Compare every entity of the dataset on one metric: summary statistics,
ranking, status table and insights. Unset flags fall back to the analysis
section of the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompare(cmd, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "-", "dataset file (YAML or JSON, - for stdin)")
	cmd.Flags().StringVarP(&opts.metricID, "metric", "m", "", "catalog metric id")
	cmd.Flags().StringVar(&opts.order, "order", "", "best, worst or alphabetical")
	cmd.Flags().IntVar(&opts.limit, "limit", -1, "maximum entities shown (0 = all)")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "BCP 47 locale for alphabetical order")
	cmd.Flags().StringVar(&opts.chartMode, "chart-mode", "", "single (bar) or categorical (pie)")
	cmd.Flags().StringVar(&opts.otherLabel, "other-label", "", "label of the remainder slice when limited")
	cmd.Flags().StringVarP(&opts.format, "format", "f", FormatTable, "output format: table or json")
	cmd.Flags().StringVar(&opts.html, "html", "", "also write an HTML chart page to this file")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "HTML theme: dark or light")

	return cmd
}

func runCompare(cmd *cobra.Command, global *globalOptions, opts *compareOptions) (err error) {
	if opts.metricID == "" {
		return ErrNoMetric
	}

	if err = checkFormat(opts.format); err != nil {
		return err
	}

	rt, err := setup(global, observability.ModeCLI)
	if err != nil {
		return err
	}

	defer func() { _ = rt.close() }()

	query, err := rt.compareQuery(opts)
	if err != nil {
		return err
	}

	theme, err := plotpage.ParseTheme(cmp.Or(opts.theme, rt.cfg.Render.Theme))
	if err != nil {
		return err
	}

	ds, err := dataset.Load(opts.input)
	if err != nil {
		return err
	}

	if _, err = rt.cat.Lookup(opts.metricID); err != nil {
		return err
	}

	query.Samples = ds.Samples[opts.metricID]

	report, err := rt.engine.Compare(cmd.Context(), query)
	if err != nil {
		return err
	}

	if opts.format == FormatJSON {
		err = writeJSON(cmd.OutOrStdout(), report)
	} else {
		err = rt.renderer().RenderCompare(cmd.OutOrStdout(), report)
	}

	if err != nil {
		return err
	}

	if opts.html != "" {
		if err = writeHTML(opts.html, plotpage.ComparePage(report, theme)); err != nil {
			return err
		}

		rt.notice(cmd.ErrOrStderr(), "wrote %s", opts.html)
	}

	return nil
}

func (rt *runtime) compareQuery(opts *compareOptions) (analysis.CompareQuery, error) {
	defaults := rt.cfg.Analysis

	order, err := ranking.ParseOrder(cmp.Or(opts.order, defaults.DefaultOrder))
	if err != nil {
		return analysis.CompareQuery{}, err
	}

	mode, err := analysis.ParseCompareMode(cmp.Or(opts.chartMode, defaults.ChartMode))
	if err != nil {
		return analysis.CompareQuery{}, err
	}

	locale := rt.cfg.Locale()
	if opts.locale != "" {
		if locale, err = language.Parse(opts.locale); err != nil {
			return analysis.CompareQuery{}, fmt.Errorf("locale %q: %w", opts.locale, err)
		}
	}

	limit := defaults.DefaultLimit
	if opts.limit >= 0 {
		limit = opts.limit
	}

	return analysis.CompareQuery{
		MetricID:   opts.metricID,
		Order:      order,
		Limit:      limit,
		Locale:     locale,
		ChartMode:  mode,
		OtherLabel: cmp.Or(opts.otherLabel, defaults.OtherLabel),
	}, nil
}
