package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregMSThompson/findash-backend/internal/errs"
	"github.com/GregMSThompson/findash-backend/internal/models"
	"github.com/GregMSThompson/findash-backend/pkg/helpers"
)

func newTestBackend(t *testing.T) *sqliteBackend {
	t.Helper()
	b, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

// reverseCipher stands in for KMS so tests can see what reached the backend.
type reverseCipher struct{}

func (reverseCipher) Encrypt(_ context.Context, s string) (string, error) { return "enc:" + reverse(s), nil }
func (reverseCipher) Decrypt(_ context.Context, s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if !strings.HasPrefix(s, "enc:") {
		return "", errs.NewEncryptionError("not encrypted", nil)
	}
	return reverse(strings.TrimPrefix(s, "enc:")), nil
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func TestSQLiteBackend_CRUD(t *testing.T) {
	ctx := helpers.TestCtx()
	b := newTestBackend(t)

	_, err := b.Get(ctx, "u1", "k")
	var nf *errs.NotFoundError
	require.True(t, errors.As(err, &nf))

	require.NoError(t, b.Put(ctx, "u1", "k", []byte(`{"v":1}`)))
	require.NoError(t, b.Put(ctx, "u1", "k", []byte(`{"v":2}`)))
	require.NoError(t, b.Put(ctx, "u2", "k", []byte(`{"v":3}`)))

	got, err := b.Get(ctx, "u1", "k")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(got))

	require.NoError(t, b.Delete(ctx, "u1", "k"))
	require.NoError(t, b.Delete(ctx, "u1", "k"))
	_, err = b.Get(ctx, "u1", "k")
	assert.True(t, errors.As(err, &nf))

	got, err = b.Get(ctx, "u2", "k")
	require.NoError(t, err)
	assert.Equal(t, `{"v":3}`, string(got))
}

func TestDashboardStateStore_LoadSave(t *testing.T) {
	ctx := helpers.TestCtx()
	s := NewDashboardStateStore(newTestBackend(t))

	widgets, err := s.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, widgets)

	in := []models.Widget{{
		ID:            "widget-1",
		ComponentName: models.ComponentTable,
		Title:         "Search",
		Config:        &models.WidgetConfig{DataSource: "custom", RefreshInterval: "60"},
		Layout:        models.Layouts{LG: &models.GridItem{I: "widget-1", W: 4, H: 2}},
	}}
	require.NoError(t, s.Save(ctx, "u1", in))

	widgets, err = s.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, in, widgets)

	require.NoError(t, s.Save(ctx, "u1", nil))
	widgets, err = s.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, widgets)
}

func TestProviderStore_EncryptsKeys(t *testing.T) {
	ctx := helpers.TestCtx()
	b := newTestBackend(t)
	s := NewProviderStore(b, reverseCipher{})

	saved, err := s.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, saved)

	require.NoError(t, s.Save(ctx, "u1", []models.Provider{{ID: "finnhub", APIKey: "abc123", Enabled: true}}))

	raw, err := b.Get(ctx, "u1", keyProviders)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "abc123")

	saved, err = s.Load(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "abc123", saved[0].APIKey)
}

func TestSettingsStore_RoundTrip(t *testing.T) {
	ctx := helpers.TestCtx()
	s := NewSettingsStore(newTestBackend(t), reverseCipher{})

	_, found, err := s.Load(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Save(ctx, "u1", models.AISettings{
		Platform: models.PlatformOpenAI,
		APIKeys:  map[string]string{models.PlatformOpenAI: "sk-test"},
	}))

	got, found, err := s.Load(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "sk-test", got.APIKeys[models.PlatformOpenAI])
}

func TestChatStore_TrimsHistory(t *testing.T) {
	ctx := helpers.TestCtx()
	s := NewChatStore(newTestBackend(t))

	for i := 0; i < MaxChatHistory+5; i++ {
		require.NoError(t, s.Append(ctx, "u1", "s1", models.ChatMessage{Role: "user", Content: string(rune('a' + i%26))}))
	}

	all, err := s.List(ctx, "u1", "s1", 0)
	require.NoError(t, err)
	assert.Len(t, all, MaxChatHistory)

	last, err := s.List(ctx, "u1", "s1", 2)
	require.NoError(t, err)
	assert.Len(t, last, 2)
	assert.Equal(t, all[len(all)-1], last[1])

	require.NoError(t, s.Clear(ctx, "u1", "s1"))
	all, err = s.List(ctx, "u1", "s1", 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}
