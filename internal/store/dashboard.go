package store

import (
	"context"

	"github.com/GregMSThompson/findash-backend/internal/models"
)

// dashboardStateStore persists a user's widget list as one record.
type dashboardStateStore struct {
	backend Backend
}

func NewDashboardStateStore(b Backend) *dashboardStateStore {
	return &dashboardStateStore{backend: b}
}

// Load returns the saved widgets, or an empty list when nothing was saved.
func (s *dashboardStateStore) Load(ctx context.Context, uid string) ([]models.Widget, error) {
	widgets := []models.Widget{}
	if _, err := loadJSON(ctx, s.backend, uid, keyDashboard, &widgets); err != nil {
		return nil, err
	}
	if widgets == nil {
		widgets = []models.Widget{}
	}
	return widgets, nil
}

// Save replaces the widget list. Saving an empty list removes the record.
func (s *dashboardStateStore) Save(ctx context.Context, uid string, widgets []models.Widget) error {
	if len(widgets) == 0 {
		return s.backend.Delete(ctx, uid, keyDashboard)
	}
	return saveJSON(ctx, s.backend, uid, keyDashboard, widgets)
}
