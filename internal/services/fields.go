package services

import (
	"context"
	"sync"
	"time"

	"github.com/GregMSThompson/findash-backend/internal/dto"
	"github.com/GregMSThompson/findash-backend/internal/errs"
	"github.com/GregMSThompson/findash-backend/internal/mapping"
	"github.com/GregMSThompson/findash-backend/pkg/logger"
)

const DefaultFieldDebounce = 500 * time.Millisecond

// fieldService flattens endpoint payloads for the field picker. Requests are
// debounced per selector: only the latest request for a selector completes,
// earlier ones return SupersededError.
type fieldService struct {
	fetcher  fetcher
	debounce time.Duration

	mu     sync.Mutex
	ticket uint64
	latest map[string]uint64
}

func NewFieldService(f fetcher, debounce time.Duration) *fieldService {
	return &fieldService{fetcher: f, debounce: debounce, latest: make(map[string]uint64)}
}

func (s *fieldService) Fields(ctx context.Context, uid string, req dto.FieldsRequest) (dto.FieldsResponse, error) {
	key := uid + "/" + req.SelectorID
	ticket := s.next(key)
	defer s.release(key, ticket)

	if req.URL == "" {
		return dto.FieldsResponse{Fields: []mapping.FlattenedField{}}, nil
	}

	if s.debounce > 0 {
		timer := time.NewTimer(s.debounce)
		select {
		case <-ctx.Done():
			timer.Stop()
			return dto.FieldsResponse{}, ctx.Err()
		case <-timer.C:
		}
	}
	if !s.current(key, ticket) {
		return dto.FieldsResponse{}, errs.NewSupersededError()
	}

	raw, err := s.fetcher.Get(ctx, req.URL)
	if !s.current(key, ticket) {
		return dto.FieldsResponse{}, errs.NewSupersededError()
	}
	if err != nil {
		logger.FromContext(ctx).Info("field fetch failed", "selector", req.SelectorID, "error", err)
		return dto.FieldsResponse{}, err
	}

	fields := mapping.FilterFields(mapping.Flatten(raw), req.Search, req.ArraysOnly)
	return dto.FieldsResponse{Fields: fields}, nil
}

// next issues a ticket from a service-wide counter so a selector never sees
// the same ticket twice, even after release has dropped its entry.
func (s *fieldService) next(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticket++
	s.latest[key] = s.ticket
	return s.ticket
}

func (s *fieldService) current(key string, ticket uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[key] == ticket
}

// release forgets the selector once its latest request has finished.
func (s *fieldService) release(key string, ticket uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest[key] == ticket {
		delete(s.latest, key)
	}
}
