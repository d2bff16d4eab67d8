package commands

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/fleetlens/pkg/config"
	"github.com/Sumatoshi-tech/fleetlens/pkg/mcp"
	"github.com/Sumatoshi-tech/fleetlens/pkg/observability"
)

type mcpOptions struct {
	debug       bool
	metricsAddr string
}

func newMCPCommand(global *globalOptions) *cobra.Command {
	opts := &mcpOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes the fleet analyses as tools that AI agents can
discover and invoke:
  - fleet_compare: Rank entities on one metric
  - fleet_trend: Analyze metrics over time
  - fleet_catalog: List the metric catalog

With --metrics-addr (or telemetry.metrics_addr) a Prometheus endpoint is
served on /metrics alongside /healthz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(cmd.Context(), global, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging and full trace sampling")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "listen address of the Prometheus endpoint (e.g. :9464)")

	return cmd
}

func runMCP(ctx context.Context, global *globalOptions, opts *mcpOptions) error {
	rt, err := setup(global, observability.ModeMCP, func(cfg *config.Config) {
		cfg.Logging.Format = "json"

		if opts.metricsAddr != "" {
			cfg.Telemetry.MetricsAddr = opts.metricsAddr
		}

		if opts.debug {
			cfg.Logging.Level = "debug"
			cfg.Telemetry.DebugTrace = true
		}
	})
	if err != nil {
		return err
	}

	defer func() { _ = rt.close() }()

	if srv := observability.NewMetricsServer(rt.cfg.Telemetry.MetricsAddr, rt.providers); srv != nil {
		go func() {
			rt.logger.Info("metrics endpoint listening", "addr", srv.Addr)

			if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				rt.logger.Error("metrics endpoint failed", "error", serveErr)
			}
		}()

		defer func() { _ = srv.Shutdown(context.Background()) }()
	}

	defaults := rt.cfg.Analysis

	query, err := rt.compareQuery(&compareOptions{limit: -1})
	if err != nil {
		return err
	}

	srv := mcp.NewServer(mcp.ServerDeps{
		Engine: rt.engine,
		Defaults: mcp.QueryDefaults{
			Order:          query.Order,
			Limit:          query.Limit,
			Locale:         query.Locale,
			ChartMode:      query.ChartMode,
			OtherLabel:     query.OtherLabel,
			SmoothingAlpha: defaults.SmoothingAlpha,
		},
		Logger:  rt.logger,
		Metrics: rt.red,
		Tracer:  rt.providers.Tracer,
	})

	return srv.Run(ctx)
}
