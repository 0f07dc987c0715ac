// internal/telemetry/tracing.go
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for every pairdp span.
const TracerName = "pairdp"

// Trace exporters.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

var ErrUnknownExporter = errors.New("unknown trace exporter")

// InitTracing installs a global tracer provider for the named exporter.
// "stdout" writes one JSON span per line to w; "none" leaves the no-op
// provider in place. The returned func flushes pending spans and restores
// the previous provider; call it once on exit.
func InitTracing(exporter, service string, w io.Writer) (func(context.Context) error, error) {
	switch exporter {
	case "", ExporterNone:
		return func(context.Context) error { return nil }, nil
	case ExporterStdout:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("create exporter: %w", err)
		}
		return Install(sdktrace.WithBatcher(exp), service), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, exporter)
	}
}

// Install sets a tracer provider built around one span processor as the
// global provider, sampling every span.
func Install(sp sdktrace.TracerProviderOption, service string) func(context.Context) error {
	res := resource.NewWithAttributes("",
		attribute.String("service.name", service),
	)
	tp := sdktrace.NewTracerProvider(sp,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	return func(ctx context.Context) error {
		otel.SetTracerProvider(prev)
		return tp.Shutdown(ctx)
	}
}

// StartSpan starts a span on the global tracer provider. Without a
// configured provider this is a no-op span.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordError marks the span failed. nil errors are ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
