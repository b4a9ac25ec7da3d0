package middleware

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/blogshell/pkg/router"
)

// Default tracer name.
const defaultTracerName = "blogshell"

// TracingConfig configures the OpenTelemetry middleware.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "blogshell").
	TracerName string

	// Provider is the tracer provider. Defaults to the global provider.
	Provider trace.TracerProvider

	// Filter determines which activations to trace.
	// If nil, all activations are traced.
	Filter func(a *router.Activation) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(a *router.Activation) []attribute.KeyValue
}

// TracingOption configures the OpenTelemetry middleware.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.Provider = tp
	}
}

// WithFilter sets a filter function for activations.
func WithFilter(filter func(a *router.Activation) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(a *router.Activation) []attribute.KeyValue) TracingOption {
	return func(c *TracingConfig) {
		c.AttributeExtractor = extractor
	}
}

// Tracing creates middleware that starts a span for every activation. The
// span context is handed to loaders and view fetches.
func Tracing(opts ...TracingOption) router.Middleware {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	provider := config.Provider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	tracer := provider.Tracer(config.TracerName)

	return router.MiddlewareFunc(func(a *router.Activation, next func() error) error {
		if config.Filter != nil && !config.Filter(a) {
			return next()
		}

		attrs := []attribute.KeyValue{
			attribute.String("blogshell.path", a.Path()),
			attribute.String("blogshell.route", a.Pattern()),
			attribute.String("blogshell.route_id", a.RouteID()),
			attribute.Bool("blogshell.deferred", a.Pending()),
		}
		if token := a.Token(); token > 0 {
			attrs = append(attrs, attribute.Int64("blogshell.nav_token", int64(token)))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(a)...)
		}

		spanCtx, span := tracer.Start(a.Context(), spanName(a),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		defer span.End()
		a.SetContext(spanCtx)

		err := next()

		span.SetAttributes(attribute.Int("blogshell.status", router.StatusOf(err)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	})
}

func spanName(a *router.Activation) string {
	pattern := a.Pattern()
	if pattern == "" {
		pattern = a.Path()
	}
	return fmt.Sprintf("activate %s", pattern)
}
