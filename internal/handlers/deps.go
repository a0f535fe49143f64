package handlers

import (
	"log/slog"

	"github.com/GregMSThompson/findash-backend/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	DashboardSvc    DashboardService
	ProviderSvc     ProviderService
	FieldSvc        FieldService
	AISvc           AIService
}
