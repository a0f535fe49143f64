package dto

type TransformRequest struct {
	SelectedText       string `json:"selectedText"`
	TransformationType string `json:"transformationType"`
}

type TransformResponse struct {
	TransformedText string `json:"transformedText"`
}

type ChatRequest struct {
	SessionID       string `json:"sessionId"`
	DocumentContent string `json:"documentContent"`
	UserMessage     string `json:"userMessage"`
}

type ChatResponse struct {
	AIResponse             string `json:"aiResponse"`
	UpdatedDocumentContent string `json:"updatedDocumentContent,omitempty"`
}

type SummarizeRequest struct {
	Query string `json:"query"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

type PresentationRequest struct {
	Query string `json:"query"`
}

type PresentationResponse struct {
	Presentation string `json:"presentation"`
}

// AISettingsRequest updates the active platform and, when APIKey is set, the
// key stored for that platform.
type AISettingsRequest struct {
	Platform string `json:"platform"`
	APIKey   string `json:"apiKey,omitempty"`
}

// AISettingsResponse never carries keys, only which platforms have one.
type AISettingsResponse struct {
	Platform   string          `json:"platform"`
	Configured map[string]bool `json:"configured"`
}
