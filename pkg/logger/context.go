package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// ToContext returns a copy of ctx carrying l.
func ToContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the request logger, or slog.Default when ctx has none.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// With adds attributes to the context logger and stores the result back:
//
//	log, ctx := logger.With(ctx, "widget_id", id)
func With(ctx context.Context, args ...any) (*slog.Logger, context.Context) {
	l := FromContext(ctx).With(args...)
	return l, ToContext(ctx, l)
}
