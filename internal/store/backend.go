package store

import (
	"context"
	"encoding/json"

	"github.com/GregMSThompson/findash-backend/internal/errs"
)

// Backend is a per-user key/value document store. Get returns
// *errs.NotFoundError for a missing key; Delete of a missing key succeeds.
type Backend interface {
	Get(ctx context.Context, uid, key string) ([]byte, error)
	Put(ctx context.Context, uid, key string, value []byte) error
	Delete(ctx context.Context, uid, key string) error
}

// Record keys.
const (
	keyDashboard  = "dashboard"
	keyProviders  = "providers"
	keyAISettings = "ai-settings"
	keyChatPrefix = "chat-"
)

// loadJSON decodes the record at key into out. found is false when the
// record does not exist.
func loadJSON(ctx context.Context, b Backend, uid, key string, out any) (found bool, err error) {
	raw, err := b.Get(ctx, uid, key)
	if err != nil {
		if _, ok := err.(*errs.NotFoundError); ok {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, errs.NewDatabaseError("read", "failed to parse "+key+" record", err)
	}
	return true, nil
}

func saveJSON(ctx context.Context, b Backend, uid, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to encode "+key+" record", err)
	}
	return b.Put(ctx, uid, key, raw)
}
