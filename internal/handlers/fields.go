package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/GregMSThompson/findash-backend/internal/dto"
	"github.com/GregMSThompson/findash-backend/internal/middleware"
	"github.com/GregMSThompson/findash-backend/internal/response"
)

type FieldService interface {
	Fields(ctx context.Context, uid string, req dto.FieldsRequest) (dto.FieldsResponse, error)
}

type fieldHandlers struct {
	ResponseHandler response.ResponseHandler
	FieldSvc        FieldService
}

func NewFieldHandlers(deps *Deps) *fieldHandlers {
	return &fieldHandlers{
		ResponseHandler: deps.ResponseHandler,
		FieldSvc:        deps.FieldSvc,
	}
}

// Fields flattens the payload at ?url= for the field picker. Requests from
// the same ?selector= are debounced and only the newest one answers.
func (h *fieldHandlers) Fields(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	arraysOnly, _ := strconv.ParseBool(q.Get("arraysOnly"))
	req := dto.FieldsRequest{
		SelectorID: q.Get("selector"),
		URL:        q.Get("url"),
		Search:     q.Get("search"),
		ArraysOnly: arraysOnly,
	}

	uid := middleware.UID(r.Context())
	resp, err := h.FieldSvc.Fields(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}
