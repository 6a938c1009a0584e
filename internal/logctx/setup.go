package logctx

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
)

// NewLogger builds the process logger. format "text" selects a colored
// console handler, anything else JSON. Records are also fanned out to any
// non-nil extra handler, such as an OTLP exporter. Every destination sees the
// run and trace identifiers carried by the context.
func NewLogger(w io.Writer, format string, level slog.Level, extra ...slog.Handler) *slog.Logger {
	var handler slog.Handler

	switch strings.ToLower(format) {
	case "text", "console":
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	default:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}

	handlers := []slog.Handler{handler}

	for _, h := range extra {
		if h != nil {
			handlers = append(handlers, h)
		}
	}

	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	}

	return slog.New(NewContextHandler(handler))
}
