package observability

import (
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// MetricsPath is the Prometheus scrape path.
	MetricsPath = "/metrics"
	// HealthPath answers liveness checks.
	HealthPath = "/healthz"

	readHeaderTimeout = 5 * time.Second
)

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter

	statusCode int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.statusCode == 0 {
		sw.statusCode = code
	}

	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(buf []byte) (int, error) {
	if sw.statusCode == 0 {
		sw.statusCode = http.StatusOK
	}

	n, err := sw.ResponseWriter.Write(buf)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}

	return n, nil
}

// HTTPMiddleware opens a server span named "METHOD /path" per request,
// continuing any W3C trace context found in the headers.
func HTTPMiddleware(tracer trace.Tracer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		parent := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))

		ctx, span := tracer.Start(parent, req.Method+" "+req.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(req.Method),
				semconv.URLPath(req.URL.Path),
			),
		)
		defer span.End()

		sw := &statusWriter{ResponseWriter: rw}
		next.ServeHTTP(sw, req.WithContext(ctx))

		if sw.statusCode == 0 {
			sw.statusCode = http.StatusOK
		}

		span.SetAttributes(semconv.HTTPResponseStatusCode(sw.statusCode))

		if sw.statusCode >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(sw.statusCode))
		}
	})
}

// NewMetricsServer returns an HTTP server exposing MetricsPath and HealthPath
// on addr. It returns nil when p carries no metrics handler.
func NewMetricsServer(addr string, p Providers) *http.Server {
	if p.MetricsHandler == nil {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(MetricsPath, p.MetricsHandler)
	mux.HandleFunc(HealthPath, func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
	})

	return &http.Server{
		Addr:              addr,
		Handler:           HTTPMiddleware(p.Tracer, mux),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
