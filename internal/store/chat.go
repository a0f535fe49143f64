package store

import (
	"context"
	"time"

	"github.com/GregMSThompson/findash-backend/internal/models"
)

// MaxChatHistory is the number of messages kept per chat session.
const MaxChatHistory = 50

type chatStore struct {
	backend Backend
}

func NewChatStore(b Backend) *chatStore {
	return &chatStore{backend: b}
}

// Append adds messages to a session, dropping the oldest beyond
// MaxChatHistory.
func (s *chatStore) Append(ctx context.Context, uid, sessionID string, msgs ...models.ChatMessage) error {
	history, err := s.List(ctx, uid, sessionID, 0)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, m := range msgs {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		history = append(history, m)
	}
	if len(history) > MaxChatHistory {
		history = history[len(history)-MaxChatHistory:]
	}
	return saveJSON(ctx, s.backend, uid, keyChatPrefix+sessionID, history)
}

// List returns the session's messages oldest first, at most the last limit
// when limit > 0.
func (s *chatStore) List(ctx context.Context, uid, sessionID string, limit int) ([]models.ChatMessage, error) {
	var history []models.ChatMessage
	if _, err := loadJSON(ctx, s.backend, uid, keyChatPrefix+sessionID, &history); err != nil {
		return nil, err
	}
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history, nil
}

func (s *chatStore) Clear(ctx context.Context, uid, sessionID string) error {
	return s.backend.Delete(ctx, uid, keyChatPrefix+sessionID)
}
