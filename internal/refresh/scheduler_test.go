package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/GregMSThompson/findash-backend/internal/models"
	"github.com/GregMSThompson/findash-backend/pkg/logger"
)

func testLogger() *slog.Logger {
	return slog.New(logger.NewTestHandler(slog.LevelDebug))
}

func widget(id, interval string) models.Widget {
	return models.Widget{
		ID:            id,
		ComponentName: models.ComponentCard,
		Config:        &models.WidgetConfig{RefreshInterval: models.Interval(interval)},
	}
}

func TestScheduler_RunsImmediatelyAndStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	ran := make(chan struct{}, 8)
	run := func(ctx context.Context, uid string, w models.Widget) (any, error) {
		calls.Add(1)
		ran <- struct{}{}
		return map[string]string{"uid": uid, "widget": w.ID}, nil
	}

	s := NewScheduler(testLogger(), run, NewSlots())
	s.Start()
	s.Schedule("u1", widget("w1", "1"))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("initial refresh did not run")
	}
	assert.True(t, s.Scheduled("u1", "w1"))

	s.Stop()

	r, ok := s.Slots().Get("u1", "w1")
	require.True(t, ok)
	assert.NoError(t, r.Err())
	assert.Equal(t, map[string]string{"uid": "u1", "widget": "w1"}, r.Data)
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestScheduler_ZeroIntervalRunsOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	ran := make(chan struct{}, 1)
	run := func(context.Context, string, models.Widget) (any, error) {
		ran <- struct{}{}
		return nil, errors.New("provider down")
	}

	s := NewScheduler(testLogger(), run, NewSlots())
	s.Start()
	s.Schedule("u1", widget("w1", ""))
	<-ran
	s.Stop()

	assert.False(t, s.Scheduled("u1", "w1"))
	r, ok := s.Slots().Get("u1", "w1")
	require.True(t, ok)
	assert.Equal(t, "provider down", r.Error)
}

func TestScheduler_SyncRemovesDroppedWidgets(t *testing.T) {
	defer goleak.VerifyNone(t)

	run := func(context.Context, string, models.Widget) (any, error) { return "ok", nil }
	s := NewScheduler(testLogger(), run, NewSlots())

	a, b := widget("a", "30"), widget("b", "30")
	s.Sync("u1", nil, []models.Widget{a, b})
	assert.True(t, s.Scheduled("u1", "a"))
	assert.True(t, s.Scheduled("u1", "b"))

	s.Sync("u1", []models.Widget{a, b}, []models.Widget{b})
	assert.False(t, s.Scheduled("u1", "a"))
	assert.True(t, s.Scheduled("u1", "b"))

	s.Stop()
	s.Schedule("u1", a)
	assert.False(t, s.Scheduled("u1", "a"))
}

func TestSlots_FailureKeepsLastGoodTimestamp(t *testing.T) {
	slots := NewSlots()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	slots.Put("u", "w", []int{1}, nil, t0)
	slots.Put("u", "w", nil, errors.New("boom"), t0.Add(time.Minute))

	r, ok := slots.Get("u", "w")
	require.True(t, ok)
	assert.Equal(t, t0, r.LastUpdated)
	assert.Nil(t, r.Data)

	_, fresh := slots.Fresh("u", "w", time.Hour, t0.Add(2*time.Minute))
	assert.False(t, fresh)

	slots.Put("u", "w", []int{2}, nil, t0)
	r, fresh = slots.Fresh("u", "w", time.Hour, t0.Add(2*time.Minute))
	assert.True(t, fresh)
	assert.Equal(t, []int{2}, r.Data)
}

func TestScheduler_RefreshAfterUnscheduleIsDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t)

	started := make(chan struct{})
	release := make(chan struct{})
	run := func(context.Context, string, models.Widget) (any, error) {
		close(started)
		<-release
		return "stale", nil
	}

	s := NewScheduler(testLogger(), run, NewSlots())
	s.Start()
	s.Schedule("u1", widget("w1", ""))
	<-started

	s.Unschedule("u1", "w1")
	close(release)
	s.Stop()

	_, ok := s.Slots().Get("u1", "w1")
	assert.False(t, ok, "refresh finishing after removal must not recreate the slot")
}

func TestScheduler_RescheduleDiscardsOlderRefresh(t *testing.T) {
	defer goleak.VerifyNone(t)

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	secondDone := make(chan struct{})
	var calls atomic.Int32
	run := func(_ context.Context, _ string, w models.Widget) (any, error) {
		if calls.Add(1) == 1 {
			close(firstStarted)
			<-releaseFirst
			return "old", nil
		}
		defer close(secondDone)
		return "new", nil
	}

	s := NewScheduler(testLogger(), run, NewSlots())
	s.Start()
	s.Schedule("u1", widget("w1", ""))
	<-firstStarted

	s.Schedule("u1", widget("w1", ""))
	<-secondDone
	close(releaseFirst)
	s.Stop()

	r, ok := s.Slots().Get("u1", "w1")
	require.True(t, ok)
	assert.Equal(t, "new", r.Data)
}
