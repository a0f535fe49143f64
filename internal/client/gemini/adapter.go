package geminiclient

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/GregMSThompson/findash-backend/internal/dto"
)

const DefaultModel = "gemini-2.0-flash"

// Adapter talks to the Gemini API with a user-supplied API key.
type Adapter struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

func NewAdapter(ctx context.Context, log *slog.Logger, apiKey, model string) (*Adapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Adapter{client: client, model: model, log: log}, nil
}

func (a *Adapter) GenerateContent(ctx context.Context, req dto.LLMGenerateRequest) (dto.LLMGenerateResponse, error) {
	out := dto.LLMGenerateResponse{}

	model := req.Model
	if model == "" {
		model = a.model
	}
	if req.UserMessage == "" {
		return out, fmt.Errorf("gemini generate request has no content")
	}

	contents := buildContents(req)

	cfg := &genai.GenerateContentConfig{
		Temperature: req.Temperature,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxOutputTokens != nil {
		cfg.MaxOutputTokens = *req.MaxOutputTokens
	}
	if req.JSONResponse {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := a.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return out, err
	}

	out.Raw = resp
	out.Text = resp.Text()
	if a.log != nil {
		a.log.Debug("gemini generate complete", "model", model, "chars", len(out.Text))
	}
	return out, nil
}

// buildContents turns the chat history plus the new message into Gemini
// turns. Assistant messages become model turns.
func buildContents(req dto.LLMGenerateRequest) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, m := range req.History {
		role := genai.Role(genai.RoleUser)
		if m.Role == dto.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return append(contents, genai.NewContentFromText(req.UserMessage, genai.RoleUser))
}
