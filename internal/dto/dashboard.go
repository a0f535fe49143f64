package dto

import (
	"time"

	"github.com/GregMSThompson/findash-backend/internal/models"
)

type CreateWidgetRequest struct {
	ComponentName string               `json:"componentName"`
	Title         string               `json:"title"`
	Config        *models.WidgetConfig `json:"config,omitempty"`
	Layout        *models.GridItem     `json:"layout,omitempty"`
}

type UpdateWidgetRequest struct {
	Title  *string              `json:"title,omitempty"`
	Config *models.WidgetConfig `json:"config,omitempty"`
}

type UpdateLayoutRequest struct {
	Layout []models.GridItem `json:"layout"`
}

type WidgetDataResponse struct {
	WidgetID    string    `json:"widgetId"`
	Data        any       `json:"data"`
	LastUpdated time.Time `json:"lastUpdated"`
	Cached      bool      `json:"cached,omitempty"`
}

// WidgetRefreshResult is one entry of a refresh-all response. Exactly one of
// Data or Error is set.
type WidgetRefreshResult struct {
	WidgetID    string    `json:"widgetId"`
	Data        any       `json:"data,omitempty"`
	Error       string    `json:"error,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type Template struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Widgets     []models.Widget `json:"widgets"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
}
