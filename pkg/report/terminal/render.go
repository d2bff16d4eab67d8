package terminal

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/fleetlens/pkg/analysis"
	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
	"github.com/Sumatoshi-tech/fleetlens/pkg/table"
	"github.com/Sumatoshi-tech/fleetlens/pkg/trend"
)

const (
	barWidth      = 20
	noChangeLabel = "n/a"
)

// Renderer writes reports as boxed headers, tables and insight lists.
type Renderer struct {
	cfg Config
	cat *metric.Catalog

	bold     func(a ...any) string
	faint    func(a ...any) string
	good     func(a ...any) string
	warning  func(a ...any) string
	critical func(a ...any) string
}

// NewRenderer creates a renderer; cat resolves display names and units.
func NewRenderer(cfg Config, cat *metric.Catalog) *Renderer {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}

	return &Renderer{
		cfg:      cfg,
		cat:      cat,
		bold:     cfg.paint(color.Bold),
		faint:    cfg.paint(color.Faint),
		good:     cfg.paint(color.FgGreen),
		warning:  cfg.paint(color.FgYellow),
		critical: cfg.paint(color.FgRed, color.Bold),
	}
}

// RenderCompare writes a comparative report.
func (r *Renderer) RenderCompare(w io.Writer, report *analysis.CompareReport) error {
	def := report.Metric

	var sb strings.Builder

	sb.WriteString(DrawHeader(r.bold("COMPARE · "+def.DisplayName), def.ID, r.cfg.Width) + "\n")

	if report.NoData {
		sb.WriteString(r.faint("No data for "+def.DisplayName+".") + "\n")

		_, err := io.WriteString(w, sb.String())

		return err
	}

	summary := report.Summary
	fmt.Fprintf(&sb, "Entities %s   Mean %s   Median %s   Std dev %s\n",
		humanize.Comma(int64(summary.Count)),
		FormatValue(summary.Mean, def.Unit),
		FormatValue(summary.Median, def.Unit),
		FormatValue(summary.StdDev, def.Unit),
	)
	sb.WriteString(r.statusTally(report.Table) + "\n\n")

	sb.WriteString(r.rankingTable(report) + "\n")
	sb.WriteString(r.insightList(report.Insights))

	_, err := io.WriteString(w, sb.String())

	return err
}

// statusTally counts the shown rows per status, worst last.
func (r *Renderer) statusTally(model table.Model) string {
	counts := model.Counts()
	parts := make([]string, 0, 3)

	for _, status := range []metric.Status{metric.StatusGood, metric.StatusWarning, metric.StatusCritical} {
		parts = append(parts, r.statusPainter(status)(fmt.Sprintf("%s %d", status, counts[status])))
	}

	return "Status   " + strings.Join(parts, "   ")
}

func (r *Renderer) rankingTable(report *analysis.CompareReport) string {
	tw := newTable()

	header := prettytable.Row{}
	configs := make([]prettytable.ColumnConfig, 0, len(report.Table.Columns)+1)

	for i, col := range report.Table.Columns {
		header = append(header, col.Title)
		configs = append(configs, prettytable.ColumnConfig{Number: i + 1, Align: alignOf(col.Align)})
	}

	// The bar is scaled to the largest shown value, not a fleet share.
	header = append(header, "Relative")
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	peak := 0.0
	for _, row := range report.Table.Rows {
		peak = max(peak, math.Abs(row.Value))
	}

	for _, row := range report.Table.Rows {
		cells := prettytable.Row{}

		for _, col := range report.Table.Columns {
			cells = append(cells, r.cell(col.Key, row, report.Metric.Unit))
		}

		relative := 0.0
		if peak > 0 {
			relative = math.Abs(row.Value) / peak
		}

		cells = append(cells, r.statusPainter(row.Status)(DrawBar(relative, barWidth)))
		tw.AppendRow(cells)
	}

	tw.AppendFooter(prettytable.Row{"", fmt.Sprintf("Total: %s items", humanize.Comma(int64(len(report.Table.Rows))))})

	return tw.Render() + "\n"
}

func (r *Renderer) cell(key string, row table.Row, unit string) any {
	switch key {
	case table.KeyRank:
		return row.Rank
	case table.KeyName:
		return Truncate(row.Name, r.cfg.Width/3)
	case table.KeyValue:
		return FormatValue(row.Value, unit)
	case table.KeyStatus:
		return r.statusPainter(row.Status)(string(row.Status))
	default:
		return ""
	}
}

// RenderTrend writes a trend report, one line per metric.
func (r *Renderer) RenderTrend(w io.Writer, report *analysis.TrendReport) error {
	var sb strings.Builder

	sb.WriteString(DrawHeader(r.bold("TREND"), strings.Join(report.MetricIDs, ", "), r.cfg.Width) + "\n")

	if report.NoData {
		sb.WriteString(r.faint("No data for the selected metrics.") + "\n")

		_, err := io.WriteString(w, sb.String())

		return err
	}

	tw := newTable()
	tw.AppendHeader(prettytable.Row{"Metric", "Points", "Average", "Change", "Min", "Max", "Trend"})
	tw.SetColumnConfigs([]prettytable.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	for _, res := range report.Results {
		def := r.definition(res.MetricID)

		if res.NoData() {
			tw.AppendRow(prettytable.Row{def.DisplayName, 0, noChangeLabel, noChangeLabel, noChangeLabel, noChangeLabel, ""})

			continue
		}

		tw.AppendRow(prettytable.Row{
			def.DisplayName,
			humanize.Comma(int64(res.Points)),
			FormatValue(res.Average, def.Unit),
			r.change(res),
			FormatValue(res.Min, def.Unit),
			FormatValue(res.Max, def.Unit),
			Sparkline(seriesValues(report, def.DisplayName)),
		})
	}

	sb.WriteString(tw.Render() + "\n\n")
	sb.WriteString(r.insightList(report.Insights))

	_, err := io.WriteString(w, sb.String())

	return err
}

func (r *Renderer) change(res trend.Result) string {
	if res.PercentChange == nil {
		return noChangeLabel
	}

	label := fmt.Sprintf("%+.1f%%", *res.PercentChange)

	switch res.Outcome {
	case trend.OutcomeImprovement:
		return r.good(label)
	case trend.OutcomeDecline:
		return r.critical(label)
	default:
		return label
	}
}

// RenderCatalog writes the metric catalog.
func (r *Renderer) RenderCatalog(w io.Writer) error {
	defs := r.cat.Definitions()

	tw := newTable()
	tw.AppendHeader(prettytable.Row{"ID", "Name", "Unit", "Better", "Good", "Warning"})
	tw.SetColumnConfigs([]prettytable.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	for _, def := range defs {
		better := "higher"
		if def.LowerIsBetter {
			better = "lower"
		}

		tw.AppendRow(prettytable.Row{
			def.ID,
			def.DisplayName,
			def.Unit,
			better,
			FormatValue(def.Thresholds.Good, def.Unit),
			FormatValue(def.Thresholds.Warning, def.Unit),
		})
	}

	tw.AppendFooter(prettytable.Row{"", fmt.Sprintf("Total: %d metrics", len(defs))})

	out := DrawHeader(r.bold("METRIC CATALOG"), "", r.cfg.Width) + "\n" + tw.Render() + "\n"

	_, err := io.WriteString(w, out)

	return err
}

func (r *Renderer) insightList(insights []trend.Insight) string {
	if len(insights) == 0 {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(r.bold("Insights") + "\n")

	for _, in := range insights {
		sb.WriteString("  • " + in.Text + "\n")
	}

	return sb.String()
}

func (r *Renderer) statusPainter(status metric.Status) func(a ...any) string {
	switch status {
	case metric.StatusGood:
		return r.good
	case metric.StatusWarning:
		return r.warning
	case metric.StatusCritical:
		return r.critical
	default:
		return fmt.Sprint
	}
}

func (r *Renderer) definition(id string) metric.Definition {
	def, err := r.cat.Lookup(id)
	if err != nil {
		return metric.Definition{ID: id, DisplayName: id}
	}

	return def
}

func seriesValues(report *analysis.TrendReport, label string) []float64 {
	for _, ds := range report.Chart.Datasets {
		if ds.Label == label {
			return ds.Present()
		}
	}

	return nil
}

func newTable() prettytable.Writer {
	tw := prettytable.NewWriter()
	tw.SetStyle(prettytable.StyleLight)
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = true
	tw.Style().Format.Header = text.FormatUpper

	return tw
}

func alignOf(a table.Align) text.Align {
	switch a {
	case table.AlignRight:
		return text.AlignRight
	case table.AlignCenter:
		return text.AlignCenter
	default:
		return text.AlignLeft
	}
}
