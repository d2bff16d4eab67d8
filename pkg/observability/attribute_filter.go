package observability

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Span attribute keys must start with one of these prefixes to be exported.
var allowedPrefixes = []string{
	"fleetlens.",
	"analysis.",
	"metric.",
	"query.",
	"chart.",
	"mcp.",
	"http.",
	"url.",
	"error.",
}

// Entity identities (driver and vehicle names, VINs, plates) never leave the
// process, even under an allowed prefix.
var blockedPrefixes = []string{
	"entity.",
	"driver.",
	"user.",
}

var blockedKeys = map[string]bool{
	"email":         true,
	"vehicle.vin":   true,
	"vehicle.plate": true,
	"request.body":  true,
	"response.body": true,
}

// attributeFilter is a SpanProcessor that strips attributes outside the
// allow-list before handing the span to its delegate.
type attributeFilter struct {
	delegate sdktrace.SpanProcessor
	logger   *slog.Logger
}

// NewAttributeFilter wraps delegate with the fleetlens attribute allow-list.
// A non-nil logger receives a warning per stripped key.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{delegate: delegate, logger: logger}
}

func (f *attributeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.delegate.OnStart(parent, s)
}

func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	f.delegate.OnEnd(&filteredSpan{ReadOnlySpan: s, filter: f})
}

func (f *attributeFilter) Shutdown(ctx context.Context) error {
	if err := f.delegate.Shutdown(ctx); err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	if err := f.delegate.ForceFlush(ctx); err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

func hasAnyPrefix(key string, prefixes []string) bool {
	return slices.ContainsFunc(prefixes, func(p string) bool { return strings.HasPrefix(key, p) })
}

func (f *attributeFilter) allowed(key string) bool {
	ok := key == "error" ||
		(!blockedKeys[key] && !hasAnyPrefix(key, blockedPrefixes) && hasAnyPrefix(key, allowedPrefixes))

	if !ok && f.logger != nil {
		f.logger.Warn("span attribute dropped", "key", key)
	}

	return ok
}

// filteredSpan exposes only the allowed attributes of a finished span.
type filteredSpan struct {
	sdktrace.ReadOnlySpan

	filter *attributeFilter
}

func (s *filteredSpan) Attributes() []attribute.KeyValue {
	orig := s.ReadOnlySpan.Attributes()
	out := make([]attribute.KeyValue, 0, len(orig))

	for _, kv := range orig {
		if s.filter.allowed(string(kv.Key)) {
			out = append(out, kv)
		}
	}

	return out
}
