package openaiclient

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregMSThompson/findash-backend/internal/dto"
	"github.com/GregMSThompson/findash-backend/internal/errs"
	"github.com/GregMSThompson/findash-backend/pkg/helpers"
	"github.com/GregMSThompson/findash-backend/pkg/logger"
)

func testLog() *slog.Logger { return slog.New(logger.NewTestHandler(slog.LevelInfo)) }

func TestGenerateContent_BuildsChatRequest(t *testing.T) {
	var got chatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  hello  "}}]}`))
	}))
	defer srv.Close()

	a, err := NewAdapter(testLog(), Config{APIKey: "sk-test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	resp, err := a.GenerateContent(helpers.TestCtx(), dto.LLMGenerateRequest{
		System:       "be brief",
		History:      []dto.LLMMessage{{Role: dto.RoleUser, Content: "q1"}, {Role: dto.RoleAssistant, Content: "a1"}},
		UserMessage:  "q2",
		JSONResponse: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, DefaultModel, got.Model)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, chatMessage{Role: "system", Content: "be brief"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "assistant", Content: "a1"}, got.Messages[2])
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestGenerateContent_RateLimitIsTransient(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a, err := NewAdapter(testLog(), Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = a.GenerateContent(helpers.TestCtx(), dto.LLMGenerateRequest{UserMessage: "hi"})
	var extErr *errs.ExternalServiceError
	require.True(t, errors.As(err, &extErr))
	assert.True(t, extErr.Transient)
	assert.Equal(t, 1, calls)
}

func TestNewAdapter_RequiresKey(t *testing.T) {
	_, err := NewAdapter(testLog(), Config{})
	assert.Error(t, err)
}
