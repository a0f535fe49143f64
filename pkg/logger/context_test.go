package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestFromContext_DefaultWhenMissing(t *testing.T) {
	if got := FromContext(context.Background()); got != slog.Default() {
		t.Fatalf("expected slog.Default, got %v", got)
	}
}

func TestWith_AddsAttributesToContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := ToContext(context.Background(), base)

	_, ctx = With(ctx, "widget_id", "w1")
	FromContext(ctx).Info("refreshed")

	if !strings.Contains(buf.String(), "widget_id=w1") {
		t.Fatalf("expected widget_id attribute, got %q", buf.String())
	}
}
