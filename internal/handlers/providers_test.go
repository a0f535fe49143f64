package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/findash-backend/internal/dto"
	"github.com/GregMSThompson/findash-backend/internal/errs"
	"github.com/GregMSThompson/findash-backend/internal/models"
)

type stubProviderService struct {
	saved   []models.Provider
	testReq dto.TestEndpointRequest
	testErr error
}

func (s *stubProviderService) List(context.Context, string) ([]models.Provider, error) {
	return []models.Provider{{ID: "alpha-vantage"}}, nil
}

func (s *stubProviderService) Save(_ context.Context, _ string, list []models.Provider) ([]models.Provider, error) {
	s.saved = list
	return list, nil
}

func (s *stubProviderService) TestEndpoint(_ context.Context, req dto.TestEndpointRequest) (dto.TestEndpointResponse, error) {
	s.testReq = req
	return dto.TestEndpointResponse{}, s.testErr
}

func TestSaveProviders_DecodesArray(t *testing.T) {
	svc := &stubProviderService{}
	resp := &stubResponseHandler{}
	h := NewProviderHandlers(&Deps{ResponseHandler: resp, ProviderSvc: svc})

	body := `[{"id":"finnhub","enabled":true,"apiKey":"k"}]`
	h.Save(httptest.NewRecorder(), withUID(httptest.NewRequest(http.MethodPut, "/providers", strings.NewReader(body)), "uid1"))

	if len(svc.saved) != 1 || svc.saved[0].APIKey != "k" || !svc.saved[0].Enabled {
		t.Fatalf("unexpected saved list %+v", svc.saved)
	}
}

func TestTestEndpoint_Validation(t *testing.T) {
	svc := &stubProviderService{testErr: errs.NewValidationError("URL must start with http:// or https://")}
	resp := &stubResponseHandler{}
	h := NewProviderHandlers(&Deps{ResponseHandler: resp, ProviderSvc: svc})

	h.TestEndpoint(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/providers/test", strings.NewReader(`{"url":"ftp://x"}`)))

	var vErr *errs.ValidationError
	if !errors.As(resp.handleError, &vErr) || svc.testReq.URL != "ftp://x" {
		t.Fatalf("expected validation error, got %v", resp.handleError)
	}
}

type stubFieldService struct {
	lastUID string
	lastReq dto.FieldsRequest
	err     error
}

func (s *stubFieldService) Fields(_ context.Context, uid string, req dto.FieldsRequest) (dto.FieldsResponse, error) {
	s.lastUID, s.lastReq = uid, req
	return dto.FieldsResponse{}, s.err
}

func TestFields_ParsesQuery(t *testing.T) {
	svc := &stubFieldService{}
	resp := &stubResponseHandler{}
	h := NewFieldHandlers(&Deps{ResponseHandler: resp, FieldSvc: svc})

	req := httptest.NewRequest(http.MethodGet, "/fields?url=https%3A%2F%2Fx%3Fa%3D1&selector=table&search=sym&arraysOnly=true", nil)
	h.Fields(httptest.NewRecorder(), withUID(req, "uid1"))

	want := dto.FieldsRequest{SelectorID: "table", URL: "https://x?a=1", Search: "sym", ArraysOnly: true}
	if svc.lastReq != want || svc.lastUID != "uid1" {
		t.Fatalf("unexpected request %+v", svc.lastReq)
	}
}

func TestFields_Superseded(t *testing.T) {
	svc := &stubFieldService{err: errs.NewSupersededError()}
	resp := &stubResponseHandler{}
	h := NewFieldHandlers(&Deps{ResponseHandler: resp, FieldSvc: svc})

	h.Fields(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fields?url=https://x", nil))

	var sErr *errs.SupersededError
	if !errors.As(resp.handleError, &sErr) {
		t.Fatalf("expected superseded error, got %v", resp.handleError)
	}
}
