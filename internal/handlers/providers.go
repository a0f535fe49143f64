package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/findash-backend/internal/dto"
	"github.com/GregMSThompson/findash-backend/internal/middleware"
	"github.com/GregMSThompson/findash-backend/internal/models"
	"github.com/GregMSThompson/findash-backend/internal/response"
)

type ProviderService interface {
	List(ctx context.Context, uid string) ([]models.Provider, error)
	Save(ctx context.Context, uid string, list []models.Provider) ([]models.Provider, error)
	TestEndpoint(ctx context.Context, req dto.TestEndpointRequest) (dto.TestEndpointResponse, error)
}

type providerHandlers struct {
	ResponseHandler response.ResponseHandler
	ProviderSvc     ProviderService
}

func NewProviderHandlers(deps *Deps) *providerHandlers {
	return &providerHandlers{
		ResponseHandler: deps.ResponseHandler,
		ProviderSvc:     deps.ProviderSvc,
	}
}

func (h *providerHandlers) ProviderRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Put("/", h.Save)
	r.Post("/test", h.TestEndpoint)
	return r
}

func (h *providerHandlers) List(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	list, err := h.ProviderSvc.List(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, list)
}

// Save replaces the user's provider list with the posted array.
func (h *providerHandlers) Save(w http.ResponseWriter, r *http.Request) {
	var list []models.Provider
	if err := decodeJSON(w, r, &list); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	merged, err := h.ProviderSvc.Save(r.Context(), uid, list)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, merged)
}

func (h *providerHandlers) TestEndpoint(w http.ResponseWriter, r *http.Request) {
	var req dto.TestEndpointRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	resp, err := h.ProviderSvc.TestEndpoint(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}
