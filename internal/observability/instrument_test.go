package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/processors/minsev"
)

func TestNewHandler(t *testing.T) {
	for _, format := range []string{"text", "JSON", "otel"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			handler, shutdown, err := newHandler(context.Background(), &buf, slog.LevelInfo, format)
			require.NoError(t, err)

			logger := slog.New(handler)
			logger.Debug("hidden")
			logger.Info("fetched words", "count", 3)
			require.NoError(t, shutdown(context.Background()))

			assert.Contains(t, buf.String(), "fetched words")
			assert.NotContains(t, buf.String(), "hidden")
		})
	}
}

func TestNewHandlerRejectsUnknownFormat(t *testing.T) {
	_, _, err := newHandler(context.Background(), &bytes.Buffer{}, slog.LevelInfo, "xml")
	assert.ErrorContains(t, err, "unsupported log format")
}

func TestNewOTLPExporter(t *testing.T) {
	ctx := context.Background()
	for _, protocol := range []string{"", "grpc", "http/protobuf"} {
		exp, err := newOTLPExporter(ctx, protocol)
		require.NoError(t, err, protocol)
		require.NoError(t, exp.Shutdown(ctx))
	}

	_, err := newOTLPExporter(ctx, "thrift")
	assert.ErrorContains(t, err, "unsupported otlp protocol")
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, minsev.SeverityDebug, severity(slog.LevelDebug))
	assert.Equal(t, minsev.SeverityInfo, severity(slog.LevelInfo))
	assert.Equal(t, minsev.SeverityWarn, severity(slog.LevelWarn))
	assert.Equal(t, minsev.SeverityError, severity(slog.LevelError))
}

func TestRequestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newRequestContextHandler(slog.NewTextHandler(&buf, nil)))

	logger.InfoContext(context.Background(), "plain")
	assert.NotContains(t, buf.String(), "request_id")

	ctx := ContextWithRequestID(context.Background(), "req-1")
	logger.With("component", "wordsource").InfoContext(ctx, "tagged")
	assert.Contains(t, buf.String(), "request_id=req-1")
	assert.Contains(t, buf.String(), "component=wordsource")

	_, ok := RequestIDFromContext(ContextWithRequestID(context.Background(), ""))
	assert.False(t, ok)
}
