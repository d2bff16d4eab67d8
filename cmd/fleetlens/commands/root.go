// Package commands implements the fleetlens cobra commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/fleetlens/pkg/analysis"
	"github.com/Sumatoshi-tech/fleetlens/pkg/config"
	"github.com/Sumatoshi-tech/fleetlens/pkg/metric"
	"github.com/Sumatoshi-tech/fleetlens/pkg/observability"
	"github.com/Sumatoshi-tech/fleetlens/pkg/report/terminal"
	"github.com/Sumatoshi-tech/fleetlens/pkg/version"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown output format (use table or json)")

// globalOptions are the persistent root flags.
type globalOptions struct {
	configPath string
	noColor    bool
	verbose    bool
}

// NewRootCommand builds the fleetlens command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "fleetlens",
		Short: "Fleetlens - fleet metric comparison and trend analysis",
		Long: `Fleetlens compares fleet entities on catalog metrics and analyzes how
metrics change over time.

Commands:
  compare   Rank entities on one metric
  trend     Analyze metrics over time
  catalog   List the metric catalog
  mcp       Serve the analyses as MCP tools on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: search fleetlens.yaml)")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		newCompareCommand(opts),
		newTrendCommand(opts),
		newCatalogCommand(opts),
		newMCPCommand(opts),
		newVersionCommand(),
	)

	return root
}

// runtime is the wired application for one command invocation.
type runtime struct {
	cfg       *config.Config
	cat       *metric.Catalog
	engine    *analysis.Engine
	providers observability.Providers
	logger    *slog.Logger
	red       *observability.REDMetrics
}

// setup loads the config, applies overrides and wires telemetry, the catalog
// and the analysis engine.
func setup(opts *globalOptions, mode observability.AppMode, overrides ...func(*config.Config)) (*runtime, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.noColor {
		cfg.Render.NoColor = true
	}

	for _, override := range overrides {
		override(cfg)
	}

	obsCfg := cfg.Observability(version.Version, mode)
	if opts.verbose {
		obsCfg.LogLevel = slog.LevelDebug
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	rt := &runtime{cfg: cfg, providers: providers, logger: providers.Logger}

	rt.cat, err = loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, errors.Join(err, rt.close())
	}

	rt.red, err = observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, rt.close())
	}

	am, err := observability.NewAnalysisMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, rt.close())
	}

	rt.engine = analysis.New(rt.cat, analysis.Deps{
		Logger:   providers.Logger,
		Tracer:   providers.Tracer,
		RED:      rt.red,
		Analysis: am,
	})

	rt.logger.Debug("fleetlens ready",
		"mode", string(mode),
		"metrics", len(rt.cat.IDs()),
		"catalog", cfg.Catalog.Path,
	)

	return rt, nil
}

func (rt *runtime) close() error {
	err := rt.providers.Shutdown(context.Background())
	if err != nil {
		rt.logger.Warn("observability shutdown failed", "error", err)
	}

	return err
}

func (rt *runtime) renderer() *terminal.Renderer {
	return terminal.NewRenderer(terminal.NewConfig(rt.cfg.Render.Width, rt.cfg.Render.NoColor), rt.cat)
}

// notice prints a status line to w, green unless color is off.
func (rt *runtime) notice(w io.Writer, format string, args ...any) {
	c := color.New(color.FgGreen)
	if rt.cfg.Render.NoColor {
		c.DisableColor()
	}

	c.Fprintf(w, format+"\n", args...)
}

func loadCatalog(path string) (*metric.Catalog, error) {
	if path == "" {
		return metric.Default(), nil
	}

	return metric.LoadCatalog(path)
}

func checkFormat(format string) error {
	switch format {
	case FormatTable, FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
