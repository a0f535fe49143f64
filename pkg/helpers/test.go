package helpers

import (
	"context"

	"github.com/GregMSThompson/findash-backend/pkg/logger"
)

// TestCtx returns a background context with a discarding logger attached, so
// code under test can call logger.FromContext freely.
func TestCtx() context.Context {
	return logger.ToContext(context.Background(), logger.New("debug", logger.NewTestHandler))
}
