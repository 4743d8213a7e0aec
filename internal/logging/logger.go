// Package logging configures log/slog for the portal and builds loggers that
// carry request-scoped fields.
//
// Request IDs come from chi's RequestID middleware. Other fields, such as the
// authenticated submitter, are attached to the context with ContextWithAttrs
// and picked up by every FromContext call further down the stack.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey struct{}

// Setup configures the global slog logger and returns it.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) *slog.Logger {
	logger := New(os.Stdout, level, format)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w without touching the global default.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ContextWithAttrs returns a copy of ctx whose loggers include args.
// Attributes accumulate across calls.
func ContextWithAttrs(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}
	existing, _ := ctx.Value(ctxKey{}).([]any)
	merged := make([]any, 0, len(existing)+len(args))
	merged = append(merged, existing...)
	merged = append(merged, args...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

// FromContext returns the default logger enriched with the request ID and any
// attributes stored by ContextWithAttrs.
//
//	func handleSubmit(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.FromContext(r.Context())
//	    logger.Info("company submitted", "status", status)
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if attrs, ok := ctx.Value(ctxKey{}).([]any); ok {
		logger = logger.With(attrs...)
	}

	return logger
}

// WithFields returns a context logger with additional structured fields.
//
//	purgeLogger := logging.WithFields(ctx, "batch_id", batchID)
//	purgeLogger.Info("purge completed", "removed", removed)
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
