// Package llmclient picks a text generator for the user's AI platform.
package llmclient

import (
	"context"
	"log/slog"
	"time"

	geminiclient "github.com/GregMSThompson/findash-backend/internal/client/gemini"
	openaiclient "github.com/GregMSThompson/findash-backend/internal/client/openai"
	"github.com/GregMSThompson/findash-backend/internal/dto"
	"github.com/GregMSThompson/findash-backend/internal/errs"
	"github.com/GregMSThompson/findash-backend/internal/models"
)

type Generator interface {
	GenerateContent(ctx context.Context, req dto.LLMGenerateRequest) (dto.LLMGenerateResponse, error)
}

type Options struct {
	// Vertex is the shared project-credentialed adapter; nil disables the platform.
	Vertex        Generator
	GeminiModel   string
	OpenAIModel   string
	OpenAIBaseURL string
	OpenAITimeout time.Duration
}

type Registry struct {
	log  *slog.Logger
	opts Options
}

func NewRegistry(log *slog.Logger, opts Options) *Registry {
	return &Registry{log: log, opts: opts}
}

// ForPlatform returns a generator for platform using apiKey. Vertex ignores the
// key and uses project credentials.
func (r *Registry) ForPlatform(ctx context.Context, platform, apiKey string) (Generator, error) {
	switch platform {
	case models.PlatformVertex:
		if r.opts.Vertex == nil {
			return nil, errs.NewConfigError("Vertex AI is not configured for this deployment.")
		}
		return r.opts.Vertex, nil
	case models.PlatformGemini:
		if apiKey == "" {
			return nil, errs.NewConfigError("API key for gemini is missing.")
		}
		a, err := geminiclient.NewAdapter(ctx, r.log, apiKey, r.opts.GeminiModel)
		if err != nil {
			return nil, errs.NewExternalServiceError("gemini", "failed to create gemini client", false, err)
		}
		return a, nil
	case models.PlatformOpenAI:
		if apiKey == "" {
			return nil, errs.NewConfigError("API key for openai is missing.")
		}
		return openaiclient.NewAdapter(r.log, openaiclient.Config{
			APIKey:  apiKey,
			BaseURL: r.opts.OpenAIBaseURL,
			Model:   r.opts.OpenAIModel,
			Timeout: r.opts.OpenAITimeout,
		})
	default:
		return nil, errs.NewValidationError("unknown AI platform: " + platform)
	}
}

// NeedsKey reports whether platform is configured by a per-user API key.
func NeedsKey(platform string) bool {
	return platform == models.PlatformGemini || platform == models.PlatformOpenAI
}
