package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/findash-backend/internal/dto"
	"github.com/GregMSThompson/findash-backend/internal/errs"
)

type stubAIService struct {
	transformReq dto.TransformRequest
	chatReq      dto.ChatRequest
	settingsReq  dto.AISettingsRequest
	err          error
}

func (s *stubAIService) Transform(_ context.Context, _ string, req dto.TransformRequest) (dto.TransformResponse, error) {
	s.transformReq = req
	return dto.TransformResponse{TransformedText: "short"}, s.err
}

func (s *stubAIService) Chat(_ context.Context, _ string, req dto.ChatRequest) (dto.ChatResponse, error) {
	s.chatReq = req
	return dto.ChatResponse{AIResponse: "hi"}, s.err
}

func (s *stubAIService) Summarize(context.Context, string, dto.SummarizeRequest) (dto.SummarizeResponse, error) {
	return dto.SummarizeResponse{}, s.err
}

func (s *stubAIService) CreatePresentation(context.Context, string, dto.PresentationRequest) (dto.PresentationResponse, error) {
	return dto.PresentationResponse{}, s.err
}

func (s *stubAIService) GetSettings(context.Context, string) (dto.AISettingsResponse, error) {
	return dto.AISettingsResponse{Platform: "gemini"}, s.err
}

func (s *stubAIService) UpdateSettings(_ context.Context, _ string, req dto.AISettingsRequest) (dto.AISettingsResponse, error) {
	s.settingsReq = req
	return dto.AISettingsResponse{Platform: req.Platform}, s.err
}

func TestTransform_OK(t *testing.T) {
	svc := &stubAIService{}
	resp := &stubResponseHandler{}
	h := NewAIHandlers(&Deps{ResponseHandler: resp, AISvc: svc})

	body := `{"selectedText":"a long sentence","transformationType":"shorten"}`
	h.Transform(httptest.NewRecorder(), withUID(httptest.NewRequest(http.MethodPost, "/ai/transform", strings.NewReader(body)), "uid1"))

	if svc.transformReq.TransformationType != "shorten" || !resp.writeSuccessCalled {
		t.Fatalf("unexpected request %+v", svc.transformReq)
	}
	if got, ok := resp.writeSuccessData.(dto.TransformResponse); !ok || got.TransformedText != "short" {
		t.Fatalf("unexpected data %+v", resp.writeSuccessData)
	}
}

func TestChat_ConfigError(t *testing.T) {
	svc := &stubAIService{err: errs.NewConfigError("API key for gemini is missing.")}
	resp := &stubResponseHandler{}
	h := NewAIHandlers(&Deps{ResponseHandler: resp, AISvc: svc})

	body := `{"sessionId":"s1","documentContent":"doc","userMessage":"edit"}`
	h.Chat(httptest.NewRecorder(), withUID(httptest.NewRequest(http.MethodPost, "/ai/chat", strings.NewReader(body)), "uid1"))

	if !resp.handleErrorCalled || svc.chatReq.SessionID != "s1" {
		t.Fatalf("expected HandleError, got success=%v", resp.writeSuccessCalled)
	}
}

func TestSettingsRoutes(t *testing.T) {
	svc := &stubAIService{}
	resp := &stubResponseHandler{}
	r := NewAIHandlers(&Deps{ResponseHandler: resp, AISvc: svc}).SettingsRoutes()

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/ai", strings.NewReader(`{"platform":"openai","apiKey":"sk"}`)))
	if rr.Code != http.StatusOK || svc.settingsReq.Platform != "openai" || svc.settingsReq.APIKey != "sk" {
		t.Fatalf("unexpected settings update: code=%d req=%+v", rr.Code, svc.settingsReq)
	}
}
