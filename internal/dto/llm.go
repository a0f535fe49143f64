package dto

// LLM roles used in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type LLMMessage struct {
	Role    string
	Content string
}

// LLMGenerateRequest is a single-turn generation with optional prior history.
type LLMGenerateRequest struct {
	Model           string
	System          string
	History         []LLMMessage
	UserMessage     string
	Temperature     *float32
	MaxOutputTokens *int32
	// JSONResponse asks the model for an application/json reply.
	JSONResponse bool
}

type LLMGenerateResponse struct {
	Text string
	Raw  any
}
