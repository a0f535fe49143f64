// Package refresh re-runs widget data pipelines on each widget's refresh
// interval and keeps the latest result per widget.
package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/GregMSThompson/findash-backend/internal/metrics"
	"github.com/GregMSThompson/findash-backend/internal/models"
	"github.com/GregMSThompson/findash-backend/pkg/logger"
)

// Runner executes one widget's fetch-and-project pipeline.
type Runner func(ctx context.Context, uid string, w models.Widget) (any, error)

// DefaultRunTimeout bounds a single scheduled refresh.
const DefaultRunTimeout = time.Minute

type Scheduler struct {
	cron  *cron.Cron
	run   Runner
	slots *Slots
	log   *slog.Logger

	mu   sync.Mutex
	jobs map[string]cron.EntryID
	// gens holds the live generation per widget; a refresh from an older
	// generation is discarded.
	gens    map[string]uint64
	lastGen uint64
	wg      sync.WaitGroup

	stopped bool
}

func NewScheduler(log *slog.Logger, run Runner, slots *Slots) *Scheduler {
	cl := cronLogger{log: log}
	return &Scheduler{
		cron:  cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		run:   run,
		slots: slots,
		log:   log,
		jobs:  make(map[string]cron.EntryID),
		gens:  make(map[string]uint64),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and waits for in-flight refreshes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.wg.Wait()
}

func (s *Scheduler) Slots() *Slots { return s.slots }

// Schedule refreshes the widget once in the background and, when it has a
// positive refresh interval, again every interval. An existing job for the
// widget is replaced.
func (s *Scheduler) Schedule(uid string, w models.Widget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	key := slotKey(uid, w.ID)
	s.removeLocked(key)
	s.lastGen++
	gen := s.lastGen
	s.gens[key] = gen

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.refresh(uid, w, gen)
	}()

	interval := intervalOf(w)
	if interval <= 0 {
		return
	}
	id := s.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		s.wg.Add(1)
		defer s.wg.Done()
		s.refresh(uid, w, gen)
	}))
	s.jobs[key] = id
	metrics.SetScheduledWidgets(len(s.jobs))
	s.log.Debug("widget refresh scheduled", "uid", uid, "widget_id", w.ID, "interval", interval)
}

// Unschedule stops refreshing a widget and drops its slot.
func (s *Scheduler) Unschedule(uid, widgetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := slotKey(uid, widgetID)
	s.removeLocked(key)
	delete(s.gens, key)
	s.slots.Delete(uid, widgetID)
}

// Sync makes the user's jobs match widgets: every widget is refreshed and
// rescheduled, jobs for widgets no longer present are removed.
func (s *Scheduler) Sync(uid string, previous, widgets []models.Widget) {
	keep := make(map[string]struct{}, len(widgets))
	for _, w := range widgets {
		keep[w.ID] = struct{}{}
	}
	for _, w := range previous {
		if _, ok := keep[w.ID]; !ok {
			s.Unschedule(uid, w.ID)
		}
	}
	for _, w := range widgets {
		s.Schedule(uid, w)
	}
}

// Scheduled reports whether the widget has a periodic job.
func (s *Scheduler) Scheduled(uid, widgetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[slotKey(uid, widgetID)]
	return ok
}

func (s *Scheduler) removeLocked(key string) {
	if id, ok := s.jobs[key]; ok {
		s.cron.Remove(id)
		delete(s.jobs, key)
		metrics.SetScheduledWidgets(len(s.jobs))
	}
}

func (s *Scheduler) refresh(uid string, w models.Widget, gen uint64) {
	timeout := DefaultRunTimeout
	if iv := intervalOf(w); iv > 0 && iv < timeout {
		timeout = iv
	}
	log := s.log.With("uid", uid, "widget_id", w.ID)
	ctx, cancel := context.WithTimeout(logger.ToContext(context.Background(), log), timeout)
	defer cancel()

	data, err := s.run(ctx, uid, w)
	if !s.store(uid, w.ID, gen, data, err) {
		log.Debug("stale widget refresh discarded")
		return
	}
	metrics.RecordRefresh(w.ComponentName, err == nil)
	if err != nil {
		log.Warn("widget refresh failed", "error", err)
		return
	}
	log.Debug("widget refreshed")
}

// store writes a refresh result unless the widget was rescheduled or removed
// while the refresh ran.
func (s *Scheduler) store(uid, widgetID string, gen uint64, data any, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[slotKey(uid, widgetID)] != gen {
		return false
	}
	s.slots.Put(uid, widgetID, data, err, time.Now())
	return true
}

func intervalOf(w models.Widget) time.Duration {
	if w.Config == nil {
		return 0
	}
	return time.Duration(w.Config.RefreshInterval.Seconds()) * time.Second
}

// cronLogger adapts slog to cron's logger interface.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
