package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// instrumentationName identifies log records emitted through the otel bridge.
const instrumentationName = "github.com/zd20000723-dot/momo"

// Instrument installs the default slog logger writing to stderr; stdout is
// reserved for command output. The returned function flushes buffered
// records and must be called before the process exits.
func Instrument(ctx context.Context, level slog.Level, logFormat string) (func(context.Context) error, error) {
	handler, shutdown, err := newHandler(ctx, os.Stderr, level, logFormat)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(newRequestContextHandler(handler)))

	return shutdown, nil
}

func noopShutdown(context.Context) error { return nil }

// newHandler creates the handler for logFormat: text and json for humans and
// log shippers, otel for OpenTelemetry log records on w, otlp for shipping
// them to a collector.
func newHandler(ctx context.Context, w io.Writer, level slog.Level, logFormat string) (slog.Handler, func(context.Context) error, error) {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	switch strings.ToLower(logFormat) {
	case "json":
		return slog.NewJSONHandler(w, opts), noopShutdown, nil
	case "text":
		return slog.NewTextHandler(w, opts), noopShutdown, nil
	case "otel":
		exporter, err := stdoutlog.New(stdoutlog.WithWriter(w))
		if err != nil {
			return nil, nil, fmt.Errorf("creating otel log exporter: %w", err)
		}
		return newOTelHandler(sdklog.NewSimpleProcessor(exporter), level)
	case "otlp":
		exporter, err := newOTLPExporter(ctx, os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"))
		if err != nil {
			return nil, nil, fmt.Errorf("creating otlp log exporter: %w", err)
		}
		return newOTelHandler(sdklog.NewBatchProcessor(exporter), level)
	default:
		return nil, nil, fmt.Errorf("unsupported log format %q (expected: json, text, otel, otlp)", logFormat)
	}
}

// newOTelHandler bridges slog into the OpenTelemetry log SDK, dropping
// records below level before they reach processor.
func newOTelHandler(processor sdklog.Processor, level slog.Level) (slog.Handler, func(context.Context) error, error) {
	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(minsev.NewLogProcessor(processor, severity(level))),
	)

	handler := otelslog.NewHandler(instrumentationName, otelslog.WithLoggerProvider(provider))
	return handler, provider.Shutdown, nil
}

// newOTLPExporter picks the transport from OTEL_EXPORTER_OTLP_PROTOCOL.
// Endpoint, headers and TLS come from the standard OTEL_EXPORTER_OTLP_*
// variables read by the exporters themselves.
func newOTLPExporter(ctx context.Context, protocol string) (sdklog.Exporter, error) {
	switch strings.ToLower(protocol) {
	case "grpc":
		return otlploggrpc.New(ctx)
	case "", "http/protobuf":
		return otlploghttp.New(ctx)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q (expected: grpc, http/protobuf)", protocol)
	}
}

// severity maps a slog level to the minimum otel severity that passes.
func severity(level slog.Level) minsev.Severity {
	switch {
	case level <= slog.LevelDebug:
		return minsev.SeverityDebug
	case level <= slog.LevelInfo:
		return minsev.SeverityInfo
	case level <= slog.LevelWarn:
		return minsev.SeverityWarn
	default:
		return minsev.SeverityError
	}
}
