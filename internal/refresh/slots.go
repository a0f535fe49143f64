package refresh

import (
	"sync"
	"time"
)

// Result is the outcome of the latest refresh of one widget.
type Result struct {
	WidgetID    string    `json:"widgetId"`
	Data        any       `json:"data,omitempty"`
	Error       string    `json:"error,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`

	err error
}

// Err returns the refresh error, if any.
func (r Result) Err() error { return r.err }

// Slots holds one Result per user widget. Refreshes of different widgets
// never touch each other's slot.
type Slots struct {
	mu sync.RWMutex
	m  map[string]Result
}

func NewSlots() *Slots {
	return &Slots{m: make(map[string]Result)}
}

func slotKey(uid, widgetID string) string { return uid + "/" + widgetID }

func (s *Slots) Put(uid, widgetID string, data any, err error, at time.Time) {
	r := Result{WidgetID: widgetID, Data: data, LastUpdated: at, err: err}
	if err != nil {
		r.Error = err.Error()
		// a failed refresh keeps the last good timestamp
		if prev, ok := s.Get(uid, widgetID); ok && prev.err == nil {
			r.LastUpdated = prev.LastUpdated
		}
		r.Data = nil
	}
	s.mu.Lock()
	s.m[slotKey(uid, widgetID)] = r
	s.mu.Unlock()
}

func (s *Slots) Get(uid, widgetID string) (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.m[slotKey(uid, widgetID)]
	return r, ok
}

// Fresh returns the slot when it holds data newer than maxAge.
func (s *Slots) Fresh(uid, widgetID string, maxAge time.Duration, now time.Time) (Result, bool) {
	r, ok := s.Get(uid, widgetID)
	if !ok || r.err != nil || maxAge <= 0 || now.Sub(r.LastUpdated) > maxAge {
		return Result{}, false
	}
	return r, true
}

func (s *Slots) Delete(uid, widgetID string) {
	s.mu.Lock()
	delete(s.m, slotKey(uid, widgetID))
	s.mu.Unlock()
}
