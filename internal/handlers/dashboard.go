package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/findash-backend/internal/dto"
	"github.com/GregMSThompson/findash-backend/internal/middleware"
	"github.com/GregMSThompson/findash-backend/internal/models"
	"github.com/GregMSThompson/findash-backend/internal/response"
	"github.com/GregMSThompson/findash-backend/pkg/logger"
)

const exportFilename = "dashboard-config.json"

type DashboardService interface {
	List(ctx context.Context, uid string) ([]models.Widget, error)
	AddWidget(ctx context.Context, uid string, req dto.CreateWidgetRequest) (models.Widget, error)
	UpdateWidget(ctx context.Context, uid, widgetID string, req dto.UpdateWidgetRequest) (models.Widget, error)
	RemoveWidget(ctx context.Context, uid, widgetID string) error
	UpdateLayout(ctx context.Context, uid string, req dto.UpdateLayoutRequest) ([]models.Widget, error)
	Templates() []dto.Template
	ApplyTemplate(ctx context.Context, uid, name string) ([]models.Widget, error)
	Export(ctx context.Context, uid string) ([]byte, error)
	Import(ctx context.Context, uid string, raw []byte) (dto.ImportResponse, error)
	Clear(ctx context.Context, uid string) error
	GetWidgetData(ctx context.Context, uid, widgetID string) (dto.WidgetDataResponse, error)
	RefreshAll(ctx context.Context, uid string) ([]dto.WidgetRefreshResult, error)
}

type dashboardHandlers struct {
	ResponseHandler response.ResponseHandler
	DashboardSvc    DashboardService
}

func NewDashboardHandlers(deps *Deps) *dashboardHandlers {
	return &dashboardHandlers{
		ResponseHandler: deps.ResponseHandler,
		DashboardSvc:    deps.DashboardSvc,
	}
}

func (h *dashboardHandlers) DashboardRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Delete("/", h.Clear)
	r.Post("/widgets", h.AddWidget)
	r.Put("/widgets/{widgetId}", h.UpdateWidget)
	r.Delete("/widgets/{widgetId}", h.RemoveWidget)
	r.Get("/widgets/{widgetId}/data", h.GetWidgetData)
	r.Put("/layout", h.UpdateLayout)
	r.Post("/refresh", h.RefreshAll)
	r.Get("/templates", h.ListTemplates)
	r.Post("/templates/{name}", h.ApplyTemplate)
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)
	return r
}

func (h *dashboardHandlers) List(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	widgets, err := h.DashboardSvc.List(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widgets)
}

func (h *dashboardHandlers) AddWidget(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWidgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	widget, err := h.DashboardSvc.AddWidget(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, widget)
}

func (h *dashboardHandlers) UpdateWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	var req dto.UpdateWidgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	widget, err := h.DashboardSvc.UpdateWidget(r.Context(), uid, widgetID, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widget)
}

func (h *dashboardHandlers) RemoveWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	if err := h.DashboardSvc.RemoveWidget(r.Context(), uid, widgetID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *dashboardHandlers) UpdateLayout(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateLayoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	widgets, err := h.DashboardSvc.UpdateLayout(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widgets)
}

func (h *dashboardHandlers) GetWidgetData(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	data, err := h.DashboardSvc.GetWidgetData(r.Context(), uid, widgetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, data)
}

func (h *dashboardHandlers) RefreshAll(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	results, err := h.DashboardSvc.RefreshAll(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, results)
}

func (h *dashboardHandlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.DashboardSvc.Templates())
}

func (h *dashboardHandlers) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	uid := middleware.UID(r.Context())
	widgets, err := h.DashboardSvc.ApplyTemplate(r.Context(), uid, name)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widgets)
}

// Export responds with the bare widget array as a file download, not the
// success envelope, so the body can be imported as is.
func (h *dashboardHandlers) Export(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	body, err := h.DashboardSvc.Export(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.FromContext(r.Context()).Error("failed to write export", "error", err)
	}
}

func (h *dashboardHandlers) Import(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	resp, err := h.DashboardSvc.Import(r.Context(), uid, body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *dashboardHandlers) Clear(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.DashboardSvc.Clear(r.Context(), uid); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
