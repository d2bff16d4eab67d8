// Package mcp implements a Model Context Protocol server exposing fleet
// analysis as MCP tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/fleetlens/pkg/analysis"
	"github.com/Sumatoshi-tech/fleetlens/pkg/observability"
	"github.com/Sumatoshi-tech/fleetlens/pkg/version"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "fleetlens"

	toolCount = 3
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Engine runs the analyses. Required.
	Engine *analysis.Engine

	// Defaults fill tool arguments the caller leaves empty.
	Defaults QueryDefaults

	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer
}

// Server wraps the MCP SDK server with the fleet tool registrations.
type Server struct {
	inner    *mcpsdk.Server
	engine   *analysis.Engine
	defaults QueryDefaults
	logger   *slog.Logger

	mu    sync.RWMutex
	tools []string

	metrics *observability.REDMetrics
	tracer  trace.Tracer
}

// NewServer creates a new MCP server with all fleet tools registered.
func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		&mcpsdk.ServerOptions{Logger: logger},
	)

	srv := &Server{
		inner:    inner,
		engine:   deps.Engine,
		defaults: deps.Defaults,
		logger:   logger,
		tools:    make([]string, 0, toolCount),
		metrics:  deps.Metrics,
		tracer:   deps.Tracer,
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	s.logger.InfoContext(ctx, "mcp server starting", "tools", s.ListToolNames())

	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	addTool(s, ToolNameCompare, compareToolDescription, s.handleCompare)
	addTool(s, ToolNameTrend, trendToolDescription, s.handleTrend)
	addTool(s, ToolNameCatalog, catalogToolDescription, s.handleCatalog)
}

func addTool[Input any](s *Server, name, description string, handler mcpsdk.ToolHandlerFor[Input, ToolOutput]) {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        name,
		Description: description,
	}, withMetrics(s.metrics, name, withTracing(s.tracer, name, handler)))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

// mcpSpanPrefix is the prefix for MCP tool span names.
const mcpSpanPrefix = "mcp."

// traceIDMetaKey is the metadata key for trace_id in MCP tool responses.
const traceIDMetaKey = "trace_id"

// withTracing wraps an MCP tool handler to create an OTel span per invocation
// and include trace_id in the response content when sampled.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler mcpsdk.ToolHandlerFor[Input, ToolOutput],
) mcpsdk.ToolHandlerFor[Input, ToolOutput] {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		if result != nil && result.IsError {
			span.SetAttributes(attribute.Bool("error", true))
		}

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			traceContent := &mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())}
			result.Content = append(result.Content, traceContent)
		}

		return result, output, err
	}
}

// withMetrics wraps an MCP tool handler to record RED metrics per invocation.
func withMetrics[Input any](
	metrics *observability.REDMetrics,
	toolName string,
	handler mcpsdk.ToolHandlerFor[Input, ToolOutput],
) mcpsdk.ToolHandlerFor[Input, ToolOutput] {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		decInflight := metrics.TrackInflight(ctx, mcpSpanPrefix+toolName)
		defer decInflight()

		result, output, err := handler(ctx, req, input)

		status := observability.StatusOK
		if err != nil || (result != nil && result.IsError) {
			status = observability.StatusError
		}

		metrics.RecordRequest(ctx, mcpSpanPrefix+toolName, status, time.Since(start))

		return result, output, err
	}
}

// Tool description constants.
const (
	compareToolDescription = "Compare fleet entities on one metric. " +
		"Returns summary statistics, a ranking, chart and table models and insights."

	trendToolDescription = "Analyze how one or more fleet metrics change over time. " +
		"Accepts timestamped series per metric and returns trends and insights."

	catalogToolDescription = "List the fleet metrics known to the server, " +
		"with units, polarity and status thresholds."
)
