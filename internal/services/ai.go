package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	llmclient "github.com/GregMSThompson/findash-backend/internal/client/llm"
	"github.com/GregMSThompson/findash-backend/internal/dto"
	"github.com/GregMSThompson/findash-backend/internal/errs"
	"github.com/GregMSThompson/findash-backend/internal/models"
	"github.com/GregMSThompson/findash-backend/pkg/helpers"
	"github.com/GregMSThompson/findash-backend/pkg/logger"
)

const (
	chatHistoryLimit = 20
	defaultSessionID = "default"
)

type generatorSource interface {
	ForPlatform(ctx context.Context, platform, apiKey string) (llmclient.Generator, error)
}

type aiSettingsStore interface {
	Load(ctx context.Context, uid string) (models.AISettings, bool, error)
	Save(ctx context.Context, uid string, settings models.AISettings) error
}

type chatHistoryStore interface {
	Append(ctx context.Context, uid, sessionID string, msgs ...models.ChatMessage) error
	List(ctx context.Context, uid, sessionID string, limit int) ([]models.ChatMessage, error)
}

type AIOptions struct {
	// DefaultPlatform is used until the user picks one. Empty means the user
	// must configure a platform first.
	DefaultPlatform string
	// VertexAvailable reports whether project-credentialed Vertex AI is wired.
	VertexAvailable bool
	WebSearch       Searcher
	ContentSearch   Searcher
}

type aiService struct {
	llms     generatorSource
	settings aiSettingsStore
	chats    chatHistoryStore
	opts     AIOptions
	clockNow func() time.Time
}

func NewAIService(llms generatorSource, settings aiSettingsStore, chats chatHistoryStore, opts AIOptions) *aiService {
	if opts.WebSearch == nil {
		opts.WebSearch = PlaceholderWebSearch{}
	}
	if opts.ContentSearch == nil {
		opts.ContentSearch = PlaceholderContentSearch{}
	}
	return &aiService{
		llms:     llms,
		settings: settings,
		chats:    chats,
		opts:     opts,
		clockNow: time.Now,
	}
}

// --- Flows ---

// Transform rewrites selected text according to transformationType.
func (s *aiService) Transform(ctx context.Context, uid string, req dto.TransformRequest) (dto.TransformResponse, error) {
	if strings.TrimSpace(req.SelectedText) == "" {
		return dto.TransformResponse{}, errs.NewValidationError("selectedText is required")
	}
	if strings.TrimSpace(req.TransformationType) == "" {
		return dto.TransformResponse{}, errs.NewValidationError("transformationType is required")
	}

	text, err := s.generate(ctx, uid, dto.LLMGenerateRequest{
		System:      transformSystemPrompt,
		UserMessage: transformPrompt(req.SelectedText, req.TransformationType),
	})
	if err != nil {
		return dto.TransformResponse{}, err
	}
	return dto.TransformResponse{TransformedText: text}, nil
}

// Chat answers a message about the document and may return an edited copy.
// The exchange is appended to the session history.
func (s *aiService) Chat(ctx context.Context, uid string, req dto.ChatRequest) (dto.ChatResponse, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return dto.ChatResponse{}, errs.NewValidationError("userMessage is required")
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	history, err := s.chats.List(ctx, uid, sessionID, chatHistoryLimit)
	if err != nil {
		return dto.ChatResponse{}, err
	}

	text, err := s.generate(ctx, uid, dto.LLMGenerateRequest{
		System:       chatSystemPrompt,
		History:      toLLMHistory(history),
		UserMessage:  chatPrompt(req.DocumentContent, req.UserMessage),
		JSONResponse: true,
	})
	if err != nil {
		return dto.ChatResponse{}, err
	}
	resp := parseChatReply(text)

	now := s.clockNow()
	if err := s.chats.Append(ctx, uid, sessionID,
		models.ChatMessage{Role: dto.RoleUser, Content: req.UserMessage, CreatedAt: now},
		models.ChatMessage{Role: dto.RoleAssistant, Content: resp.AIResponse, CreatedAt: now},
	); err != nil {
		// the reply is still useful without history
		logger.FromContext(ctx).Warn("failed to save chat history", "session_id", sessionID, "error", err)
	}
	return resp, nil
}

// Summarize searches the web for query and summarizes the results.
func (s *aiService) Summarize(ctx context.Context, uid string, req dto.SummarizeRequest) (dto.SummarizeResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return dto.SummarizeResponse{}, errs.NewValidationError("query is required")
	}
	results, err := s.opts.WebSearch.Search(ctx, req.Query)
	if err != nil {
		return dto.SummarizeResponse{}, errs.NewExternalServiceError("search", "web search failed", true, err)
	}
	text, err := s.generate(ctx, uid, dto.LLMGenerateRequest{
		System:      summarizeSystemPrompt,
		UserMessage: "Summarize the following web search results:\n\n" + results,
	})
	if err != nil {
		return dto.SummarizeResponse{}, err
	}
	return dto.SummarizeResponse{Summary: text}, nil
}

// CreatePresentation drafts a markdown slide deck from content search results.
func (s *aiService) CreatePresentation(ctx context.Context, uid string, req dto.PresentationRequest) (dto.PresentationResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return dto.PresentationResponse{}, errs.NewValidationError("query is required")
	}
	results, err := s.opts.ContentSearch.Search(ctx, req.Query)
	if err != nil {
		return dto.PresentationResponse{}, errs.NewExternalServiceError("search", "content search failed", true, err)
	}
	text, err := s.generate(ctx, uid, dto.LLMGenerateRequest{
		System:      presentationSystemPrompt,
		UserMessage: fmt.Sprintf("Search Query: %s\nSearch Results: %s\n\nPowerpoint Presentation:", req.Query, results),
	})
	if err != nil {
		return dto.PresentationResponse{}, err
	}
	return dto.PresentationResponse{Presentation: text}, nil
}

// --- Settings ---

func (s *aiService) GetSettings(ctx context.Context, uid string) (dto.AISettingsResponse, error) {
	settings, found, err := s.settings.Load(ctx, uid)
	if err != nil {
		return dto.AISettingsResponse{}, err
	}
	if !found || settings.Platform == "" {
		settings.Platform = s.opts.DefaultPlatform
	}
	return s.settingsResponse(settings), nil
}

// UpdateSettings selects the active platform and optionally stores its key.
func (s *aiService) UpdateSettings(ctx context.Context, uid string, req dto.AISettingsRequest) (dto.AISettingsResponse, error) {
	if err := validatePlatform(req.Platform); err != nil {
		return dto.AISettingsResponse{}, err
	}
	settings, _, err := s.settings.Load(ctx, uid)
	if err != nil {
		return dto.AISettingsResponse{}, err
	}
	settings.Platform = req.Platform
	if key := strings.TrimSpace(req.APIKey); key != "" {
		if settings.APIKeys == nil {
			settings.APIKeys = make(map[string]string)
		}
		settings.APIKeys[req.Platform] = key
	}
	if err := s.settings.Save(ctx, uid, settings); err != nil {
		return dto.AISettingsResponse{}, err
	}
	logger.FromContext(ctx).Info("ai settings updated", "platform", req.Platform)
	return s.settingsResponse(settings), nil
}

// --- Helpers ---

func (s *aiService) settingsResponse(settings models.AISettings) dto.AISettingsResponse {
	return dto.AISettingsResponse{
		Platform: settings.Platform,
		Configured: map[string]bool{
			models.PlatformGemini: settings.APIKeys[models.PlatformGemini] != "",
			models.PlatformOpenAI: settings.APIKeys[models.PlatformOpenAI] != "",
			models.PlatformVertex: s.opts.VertexAvailable,
		},
	}
}

func (s *aiService) generate(ctx context.Context, uid string, req dto.LLMGenerateRequest) (string, error) {
	log := logger.FromContext(ctx)

	settings, found, err := s.settings.Load(ctx, uid)
	if err != nil {
		return "", err
	}
	platform := settings.Platform
	if !found || platform == "" {
		platform = s.opts.DefaultPlatform
	}
	if platform == "" {
		return "", errs.NewConfigError("Please select an AI platform and enter its API key in settings.")
	}

	gen, err := s.llms.ForPlatform(ctx, platform, settings.APIKeys[platform])
	if err != nil {
		return "", err
	}

	req.Temperature = helpers.Ptr(float32(0.4))
	resp, err := gen.GenerateContent(ctx, req)
	if err != nil {
		log.Warn("ai generation failed", "platform", platform, "error", err)
		return "", wrapLLMError(platform, err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errs.NewExternalServiceError(platform, "AI returned an empty response", true, nil)
	}
	log.Info("ai generation completed", "platform", platform)
	return text, nil
}

func wrapLLMError(platform string, err error) error {
	var (
		ext *errs.ExternalServiceError
		cfg *errs.ConfigError
		val *errs.ValidationError
	)
	if errors.As(err, &ext) || errors.As(err, &cfg) || errors.As(err, &val) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.NewExternalServiceError(platform, "AI request timed out", true, err)
	}
	return errs.NewExternalServiceError(platform, "AI request failed", false, err)
}

func validatePlatform(p string) error {
	switch p {
	case models.PlatformGemini, models.PlatformOpenAI, models.PlatformVertex:
		return nil
	}
	return errs.NewValidationError("unknown AI platform: " + p)
}

func toLLMHistory(history []models.ChatMessage) []dto.LLMMessage {
	out := make([]dto.LLMMessage, 0, len(history))
	for _, m := range history {
		if m.Content == "" {
			continue
		}
		out = append(out, dto.LLMMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

// parseChatReply reads the model's JSON reply. A reply that is not JSON is
// taken as the chat answer itself.
func parseChatReply(text string) dto.ChatResponse {
	body := strings.TrimSpace(text)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)

	var reply dto.ChatResponse
	if err := json.Unmarshal([]byte(body), &reply); err != nil || (reply.AIResponse == "" && reply.UpdatedDocumentContent == "") {
		return dto.ChatResponse{AIResponse: text}
	}
	if reply.AIResponse == "" {
		reply.AIResponse = "I've updated the document."
	}
	return reply
}
