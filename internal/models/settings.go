package models

import "time"

// AI platforms.
const (
	PlatformGemini = "gemini"
	PlatformOpenAI = "openai"
	PlatformVertex = "vertex"
)

// AISettings are the per-user assistant settings. Keys are kept per platform.
type AISettings struct {
	Platform string            `json:"platform"`
	APIKeys  map[string]string `json:"apiKeys,omitempty"`
}

// ChatMessage is one turn of a document chat session.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
