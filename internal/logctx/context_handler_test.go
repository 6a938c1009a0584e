package logctx

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log output: %v", err)
	}

	return entry
}

// TestContextHandler_PlainContext verifies that no extra fields appear without context values.
func TestContextHandler_PlainContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	logger.InfoContext(context.Background(), "test message", "key", "value")

	entry := decode(t, &buf)
	for _, k := range []string{"run_id", "trace_id", "span_id"} {
		if _, exists := entry[k]; exists {
			t.Errorf("%s should not be present, got: %v", k, entry[k])
		}
	}

	if entry["key"] != "value" {
		t.Errorf("expected key='value', got: %v", entry["key"])
	}
}

// TestContextHandler_RunID verifies run_id injection.
func TestContextHandler_RunID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := WithRunID(context.Background(), "run-123")
	logger.InfoContext(ctx, "downloading")

	if got := decode(t, &buf)["run_id"]; got != "run-123" {
		t.Errorf("expected run_id='run-123', got: %v", got)
	}
}

// TestContextHandler_ValidSpan verifies trace_id and span_id injection.
func TestContextHandler_ValidSpan(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.InfoContext(ctx, "test message")

	entry := decode(t, &buf)
	if entry["trace_id"] != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("unexpected trace_id: %v", entry["trace_id"])
	}

	if entry["span_id"] != "00f067aa0ba902b7" {
		t.Errorf("unexpected span_id: %v", entry["span_id"])
	}
}

// TestContextHandler_Enabled verifies that Enabled delegates to inner handler.
func TestContextHandler_Enabled(t *testing.T) {
	h := NewContextHandler(slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Errorf("expected Info level to be disabled when handler level is Warn")
	}

	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Errorf("expected Error level to be enabled")
	}
}

// TestContextHandler_WithAttrsAndGroup verifies wrappers keep the handler type.
func TestContextHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	h := NewContextHandler(slog.NewJSONHandler(&buf, nil))

	withAttrs := h.WithAttrs([]slog.Attr{slog.String("component", "fetcher")})
	if _, ok := withAttrs.(*ContextHandler); !ok {
		t.Fatalf("WithAttrs should return *ContextHandler, got: %T", withAttrs)
	}

	withGroup := withAttrs.WithGroup("asset")
	if _, ok := withGroup.(*ContextHandler); !ok {
		t.Fatalf("WithGroup should return *ContextHandler, got: %T", withGroup)
	}

	slog.New(withGroup).InfoContext(WithRunID(context.Background(), "r1"), "test", "team", "liverpool")

	out := buf.String()
	if !strings.Contains(out, `"component":"fetcher"`) || !strings.Contains(out, `"asset"`) {
		t.Errorf("expected attrs and group in output, got: %s", out)
	}
}

// TestLoggerFromContext verifies fallback to the default logger.
func TestLoggerFromContext(t *testing.T) {
	if LoggerFromContext(context.Background()) != slog.Default() {
		t.Error("expected slog.Default() for empty context")
	}

	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if LoggerFromContext(WithLogger(context.Background(), l)) != l {
		t.Error("expected logger stored in context")
	}
}

// TestNewContextHandler_Nil verifies the nil guard.
func TestNewContextHandler_Nil(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("NewContextHandler with nil handler should panic")
		}
	}()

	NewContextHandler(nil)
}
