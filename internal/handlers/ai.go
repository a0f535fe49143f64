package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/findash-backend/internal/dto"
	"github.com/GregMSThompson/findash-backend/internal/middleware"
	"github.com/GregMSThompson/findash-backend/internal/response"
)

type AIService interface {
	Transform(ctx context.Context, uid string, req dto.TransformRequest) (dto.TransformResponse, error)
	Chat(ctx context.Context, uid string, req dto.ChatRequest) (dto.ChatResponse, error)
	Summarize(ctx context.Context, uid string, req dto.SummarizeRequest) (dto.SummarizeResponse, error)
	CreatePresentation(ctx context.Context, uid string, req dto.PresentationRequest) (dto.PresentationResponse, error)
	GetSettings(ctx context.Context, uid string) (dto.AISettingsResponse, error)
	UpdateSettings(ctx context.Context, uid string, req dto.AISettingsRequest) (dto.AISettingsResponse, error)
}

type aiHandlers struct {
	ResponseHandler response.ResponseHandler
	AISvc           AIService
}

func NewAIHandlers(deps *Deps) *aiHandlers {
	return &aiHandlers{
		ResponseHandler: deps.ResponseHandler,
		AISvc:           deps.AISvc,
	}
}

func (h *aiHandlers) AIRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/transform", h.Transform)
	r.Post("/chat", h.Chat)
	r.Post("/summarize", h.Summarize)
	r.Post("/presentation", h.CreatePresentation)
	return r
}

func (h *aiHandlers) SettingsRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/ai", h.GetSettings)
	r.Put("/ai", h.UpdateSettings)
	return r
}

func (h *aiHandlers) Transform(w http.ResponseWriter, r *http.Request) {
	var req dto.TransformRequest
	handleAI(h, w, r, &req, func(ctx context.Context, uid string) (any, error) {
		return h.AISvc.Transform(ctx, uid, req)
	})
}

func (h *aiHandlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req dto.ChatRequest
	handleAI(h, w, r, &req, func(ctx context.Context, uid string) (any, error) {
		return h.AISvc.Chat(ctx, uid, req)
	})
}

func (h *aiHandlers) Summarize(w http.ResponseWriter, r *http.Request) {
	var req dto.SummarizeRequest
	handleAI(h, w, r, &req, func(ctx context.Context, uid string) (any, error) {
		return h.AISvc.Summarize(ctx, uid, req)
	})
}

func (h *aiHandlers) CreatePresentation(w http.ResponseWriter, r *http.Request) {
	var req dto.PresentationRequest
	handleAI(h, w, r, &req, func(ctx context.Context, uid string) (any, error) {
		return h.AISvc.CreatePresentation(ctx, uid, req)
	})
}

func (h *aiHandlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	resp, err := h.AISvc.GetSettings(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *aiHandlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req dto.AISettingsRequest
	handleAI(h, w, r, &req, func(ctx context.Context, uid string) (any, error) {
		return h.AISvc.UpdateSettings(ctx, uid, req)
	})
}

// handleAI decodes the body into req, then runs call and writes its result.
func handleAI(h *aiHandlers, w http.ResponseWriter, r *http.Request, req any, call func(ctx context.Context, uid string) (any, error)) {
	if err := decodeJSON(w, r, req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	resp, err := call(r.Context(), middleware.UID(r.Context()))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}
