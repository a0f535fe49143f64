package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/GregMSThompson/findash-backend/internal/dto"
	"github.com/GregMSThompson/findash-backend/internal/errs"
	"github.com/GregMSThompson/findash-backend/internal/mapping"
	"github.com/GregMSThompson/findash-backend/internal/models"
	"github.com/GregMSThompson/findash-backend/internal/refresh"
	"github.com/GregMSThompson/findash-backend/pkg/logger"
)

// maxConcurrentRefresh bounds the fan-out of RefreshAll.
const maxConcurrentRefresh = 8

// dashboardStateStore persists the whole widget list per user.
type dashboardStateStore interface {
	Load(ctx context.Context, uid string) ([]models.Widget, error)
	Save(ctx context.Context, uid string, widgets []models.Widget) error
}

// widgetRunner executes the data pipeline for one widget.
type widgetRunner interface {
	Run(ctx context.Context, uid string, w models.Widget) (any, error)
}

// widgetScheduler keeps background refresh jobs in step with the dashboard.
type widgetScheduler interface {
	Schedule(uid string, w models.Widget)
	Unschedule(uid, widgetID string)
	Sync(uid string, previous, widgets []models.Widget)
	Slots() *refresh.Slots
}

type dashboardService struct {
	store     dashboardStateStore
	pipeline  widgetRunner
	scheduler widgetScheduler
	templates []dto.Template
	clockNow  func() time.Time
	// locks serializes load-modify-save cycles per user within this process.
	locks userLocks
}

func NewDashboardService(store dashboardStateStore, pipeline widgetRunner, scheduler widgetScheduler, templates []dto.Template) *dashboardService {
	return &dashboardService{
		store:     store,
		pipeline:  pipeline,
		scheduler: scheduler,
		templates: templates,
		clockNow:  time.Now,
	}
}

// --- Public service methods ---

func (s *dashboardService) List(ctx context.Context, uid string) ([]models.Widget, error) {
	return s.store.Load(ctx, uid)
}

func (s *dashboardService) AddWidget(ctx context.Context, uid string, req dto.CreateWidgetRequest) (models.Widget, error) {
	if err := validateComponent(req.ComponentName); err != nil {
		return models.Widget{}, err
	}
	if req.Title == "" {
		return models.Widget{}, errs.NewValidationError("title is required")
	}

	defer s.locks.lock(uid)()

	widgets, err := s.store.Load(ctx, uid)
	if err != nil {
		return models.Widget{}, err
	}

	id := "widget-" + uuid.New().String()
	w := models.Widget{
		ID:            id,
		ComponentName: req.ComponentName,
		Title:         req.Title,
		Config:        normalizeConfig(req.Config),
		Layout:        models.Layouts{LG: placeLayout(req.Layout, id)},
	}
	if err := s.store.Save(ctx, uid, append(widgets, w)); err != nil {
		return models.Widget{}, err
	}
	s.scheduler.Schedule(uid, w)

	logger.FromContext(ctx).Info("widget added", "widget_id", id, "component", w.ComponentName)
	return w, nil
}

// UpdateWidget replaces the widget's title and/or config and triggers a
// fresh fetch.
func (s *dashboardService) UpdateWidget(ctx context.Context, uid, widgetID string, req dto.UpdateWidgetRequest) (models.Widget, error) {
	defer s.locks.lock(uid)()

	widgets, err := s.store.Load(ctx, uid)
	if err != nil {
		return models.Widget{}, err
	}
	idx := indexOfWidget(widgets, widgetID)
	if idx < 0 {
		return models.Widget{}, errs.NewNotFoundError("widget not found")
	}

	w := widgets[idx]
	if req.Title != nil {
		if *req.Title == "" {
			return models.Widget{}, errs.NewValidationError("title cannot be empty")
		}
		w.Title = *req.Title
	}
	if req.Config != nil {
		w.Config = normalizeConfig(req.Config)
	}
	widgets[idx] = w

	if err := s.store.Save(ctx, uid, widgets); err != nil {
		return models.Widget{}, err
	}
	s.scheduler.Schedule(uid, w)
	return w, nil
}

func (s *dashboardService) RemoveWidget(ctx context.Context, uid, widgetID string) error {
	defer s.locks.lock(uid)()

	widgets, err := s.store.Load(ctx, uid)
	if err != nil {
		return err
	}
	idx := indexOfWidget(widgets, widgetID)
	if idx < 0 {
		return errs.NewNotFoundError("widget not found")
	}
	widgets = append(widgets[:idx], widgets[idx+1:]...)
	if err := s.store.Save(ctx, uid, widgets); err != nil {
		return err
	}
	s.scheduler.Unschedule(uid, widgetID)
	return nil
}

// UpdateLayout applies grid positions by item id. A layout whose length
// differs from the widget count is ignored and the current widgets are
// returned unchanged.
func (s *dashboardService) UpdateLayout(ctx context.Context, uid string, req dto.UpdateLayoutRequest) ([]models.Widget, error) {
	defer s.locks.lock(uid)()

	widgets, err := s.store.Load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(req.Layout) != len(widgets) {
		logger.FromContext(ctx).Debug("layout ignored", "items", len(req.Layout), "widgets", len(widgets))
		return widgets, nil
	}

	byID := make(map[string]models.GridItem, len(req.Layout))
	for _, item := range req.Layout {
		if _, dup := byID[item.I]; !dup {
			byID[item.I] = item
		}
	}
	for i, w := range widgets {
		if item, ok := byID[w.ID]; ok {
			item := item
			widgets[i].Layout = models.Layouts{LG: &item}
		}
	}
	if err := s.store.Save(ctx, uid, widgets); err != nil {
		return nil, err
	}
	return widgets, nil
}

func (s *dashboardService) Templates() []dto.Template {
	return s.templates
}

// ApplyTemplate replaces the dashboard with the named template's widgets.
func (s *dashboardService) ApplyTemplate(ctx context.Context, uid, name string) ([]models.Widget, error) {
	tpl, ok := findTemplate(s.templates, name)
	if !ok {
		return nil, errs.NewNotFoundError("template not found: " + name)
	}

	defer s.locks.lock(uid)()

	previous, err := s.store.Load(ctx, uid)
	if err != nil {
		return nil, err
	}

	stamp := s.clockNow().UnixMilli()
	widgets := make([]models.Widget, len(tpl.Widgets))
	for i, tw := range tpl.Widgets {
		id := fmt.Sprintf("widget-%d-%d", stamp, i)
		widgets[i] = models.Widget{
			ID:            id,
			ComponentName: tw.ComponentName,
			Title:         tw.Title,
			Config:        normalizeConfig(tw.Config),
			Layout:        models.Layouts{LG: placeLayout(tw.Layout.LG, id)},
		}
	}

	if err := s.store.Save(ctx, uid, widgets); err != nil {
		return nil, err
	}
	s.scheduler.Sync(uid, previous, widgets)

	logger.FromContext(ctx).Info("template applied", "template", tpl.Name, "widgets", len(widgets))
	return widgets, nil
}

// Export renders the dashboard as the indented JSON array used for import.
func (s *dashboardService) Export(ctx context.Context, uid string) ([]byte, error) {
	widgets, err := s.store.Load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(widgets) == 0 {
		return nil, errs.NewValidationError("There are no widgets on the dashboard to export.")
	}
	return json.MarshalIndent(widgets, "", "  ")
}

// Import replaces the dashboard with raw. Nothing changes unless every entry
// is valid.
func (s *dashboardService) Import(ctx context.Context, uid string, raw []byte) (dto.ImportResponse, error) {
	widgets, err := ParseImport(raw)
	if err != nil {
		return dto.ImportResponse{}, err
	}

	defer s.locks.lock(uid)()

	previous, err := s.store.Load(ctx, uid)
	if err != nil {
		return dto.ImportResponse{}, err
	}
	if err := s.store.Save(ctx, uid, widgets); err != nil {
		return dto.ImportResponse{}, err
	}
	s.scheduler.Sync(uid, previous, widgets)

	logger.FromContext(ctx).Info("dashboard imported", "widgets", len(widgets))
	return dto.ImportResponse{Imported: len(widgets)}, nil
}

func (s *dashboardService) Clear(ctx context.Context, uid string) error {
	defer s.locks.lock(uid)()

	previous, err := s.store.Load(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, uid, nil); err != nil {
		return err
	}
	s.scheduler.Sync(uid, previous, nil)
	return nil
}

// GetWidgetData returns the widget's projected data. A slot refreshed within
// the widget's interval is served as is; otherwise the pipeline runs now.
func (s *dashboardService) GetWidgetData(ctx context.Context, uid, widgetID string) (dto.WidgetDataResponse, error) {
	widgets, err := s.store.Load(ctx, uid)
	if err != nil {
		return dto.WidgetDataResponse{}, err
	}
	idx := indexOfWidget(widgets, widgetID)
	if idx < 0 {
		return dto.WidgetDataResponse{}, errs.NewNotFoundError("widget not found")
	}
	w := widgets[idx]

	slots := s.scheduler.Slots()
	now := s.clockNow()
	if r, ok := slots.Fresh(uid, widgetID, refreshInterval(w), now); ok {
		return dto.WidgetDataResponse{WidgetID: widgetID, Data: r.Data, LastUpdated: r.LastUpdated, Cached: true}, nil
	}

	data, err := s.pipeline.Run(ctx, uid, w)
	slots.Put(uid, widgetID, data, err, now)
	if err != nil {
		return dto.WidgetDataResponse{}, err
	}
	return dto.WidgetDataResponse{WidgetID: widgetID, Data: data, LastUpdated: now}, nil
}

// RefreshAll runs every widget's pipeline concurrently. Failures are
// reported per widget and never abort the others.
func (s *dashboardService) RefreshAll(ctx context.Context, uid string) ([]dto.WidgetRefreshResult, error) {
	widgets, err := s.store.Load(ctx, uid)
	if err != nil {
		return nil, err
	}

	slots := s.scheduler.Slots()
	results := make([]dto.WidgetRefreshResult, len(widgets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRefresh)
	for i, w := range widgets {
		i, w := i, w
		g.Go(func() error {
			data, err := s.pipeline.Run(gctx, uid, w)
			now := s.clockNow()
			slots.Put(uid, w.ID, data, err, now)
			res := dto.WidgetRefreshResult{WidgetID: w.ID, LastUpdated: now}
			if err != nil {
				res.Error = err.Error()
			} else {
				res.Data = data
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

// --- Helpers ---

// ParseImport validates an exported dashboard: a JSON array whose entries
// all carry an id, componentName, title and layout.lg.
func ParseImport(raw []byte) ([]models.Widget, error) {
	if !json.Valid(raw) {
		return nil, errs.NewValidationError("Could not parse the JSON file.")
	}
	invalid := errs.NewValidationError("Invalid file format. Please import a valid widget configuration file.")

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, invalid
	}
	widgets := make([]models.Widget, 0, len(items))
	for _, item := range items {
		var w models.Widget
		if err := json.Unmarshal(item, &w); err != nil {
			return nil, invalid
		}
		if w.ID == "" || w.ComponentName == "" || w.Title == "" || w.Layout.LG == nil {
			return nil, invalid
		}
		w.Config = normalizeConfig(w.Config)
		widgets = append(widgets, w)
	}
	return widgets, nil
}

func validateComponent(name string) error {
	switch name {
	case models.ComponentTable, models.ComponentChart, models.ComponentCard:
		return nil
	}
	return errs.NewValidationError("unknown component: " + name)
}

// normalizeConfig copies cfg with its selected fields de-duplicated and
// labelled.
func normalizeConfig(cfg *models.WidgetConfig) *models.WidgetConfig {
	if cfg == nil {
		return nil
	}
	out := *cfg
	out.SelectedFields = mapping.NormalizeFields(cfg.SelectedFields)
	return &out
}

// placeLayout returns the grid item for a new widget, defaulting to a 4x2
// tile at the origin.
func placeLayout(item *models.GridItem, id string) *models.GridItem {
	out := models.GridItem{X: 0, Y: 0, W: 4, H: 2}
	if item != nil {
		out = *item
	}
	out.I = id
	return &out
}

func indexOfWidget(widgets []models.Widget, id string) int {
	for i, w := range widgets {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func refreshInterval(w models.Widget) time.Duration {
	if w.Config == nil {
		return 0
	}
	return time.Duration(w.Config.RefreshInterval.Seconds()) * time.Second
}
