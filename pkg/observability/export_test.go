package observability

import (
	"context"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// BuildResourceForTest exposes buildResource to external tests.
func BuildResourceForTest(cfg Config) (*resource.Resource, error) {
	return buildResource(context.Background(), cfg)
}

// SamplerRecordsForTest reports whether the sampler selected for cfg records a
// root span.
func SamplerRecordsForTest(cfg Config) bool {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(selectSampler(cfg)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("sampler-check").Start(context.Background(), "sampler-check")
	defer span.End()

	return span.SpanContext().IsSampled()
}
