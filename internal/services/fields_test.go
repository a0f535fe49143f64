package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/GregMSThompson/findash-backend/internal/dto"
	"github.com/GregMSThompson/findash-backend/internal/errs"
	"github.com/GregMSThompson/findash-backend/pkg/helpers"
)

type countingFetcher struct {
	mu    sync.Mutex
	body  []byte
	calls int
}

func (f *countingFetcher) Get(context.Context, string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.body, nil
}

func TestFields_EmptyURLSkipsFetch(t *testing.T) {
	f := &countingFetcher{}
	svc := NewFieldService(f, time.Hour)

	resp, err := svc.Fields(helpers.TestCtx(), "u1", dto.FieldsRequest{SelectorID: "s"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Fields == nil || len(resp.Fields) != 0 || f.calls != 0 {
		t.Fatalf("expected empty non-nil list and no fetch, got %+v calls=%d", resp.Fields, f.calls)
	}
}

func TestFields_FlattensAndFilters(t *testing.T) {
	f := &countingFetcher{body: []byte(`{"meta":{"symbol":"IBM"},"prices":[1,2],"name":"x"}`)}
	svc := NewFieldService(f, 0)

	resp, err := svc.Fields(helpers.TestCtx(), "u1", dto.FieldsRequest{SelectorID: "s", URL: "https://x", ArraysOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Fields) != 1 || resp.Fields[0].Path != "prices" {
		t.Fatalf("unexpected fields %+v", resp.Fields)
	}

	resp, err = svc.Fields(helpers.TestCtx(), "u1", dto.FieldsRequest{SelectorID: "s", URL: "https://x", Search: "SYM"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Fields) != 1 || resp.Fields[0].Path != "meta.symbol" {
		t.Fatalf("unexpected fields %+v", resp.Fields)
	}
}

func TestFields_NewerRequestSupersedesPending(t *testing.T) {
	f := &countingFetcher{body: []byte(`{"a":1}`)}
	svc := NewFieldService(f, 100*time.Millisecond)
	ctx := helpers.TestCtx()

	first := make(chan error, 1)
	go func() {
		_, err := svc.Fields(ctx, "u1", dto.FieldsRequest{SelectorID: "s", URL: "https://old"})
		first <- err
	}()
	time.Sleep(20 * time.Millisecond)

	resp, err := svc.Fields(ctx, "u1", dto.FieldsRequest{SelectorID: "s", URL: "https://new"})
	if err != nil {
		t.Fatalf("latest request failed: %v", err)
	}
	if len(resp.Fields) != 1 {
		t.Fatalf("unexpected fields %+v", resp.Fields)
	}

	var sup *errs.SupersededError
	if err := <-first; !errors.As(err, &sup) {
		t.Fatalf("expected superseded error, got %v", err)
	}
	if f.calls != 1 {
		t.Fatalf("expected one fetch, got %d", f.calls)
	}
}

// gatedFetcher blocks fetches of gateURL until release is closed.
type gatedFetcher struct {
	gateURL string
	started chan struct{}
	release chan struct{}
}

func (f *gatedFetcher) Get(_ context.Context, url string) ([]byte, error) {
	if url == f.gateURL {
		close(f.started)
		<-f.release
	}
	return []byte(`{"url":"` + url + `"}`), nil
}

func TestFields_StaleFetchStaysSupersededAfterSelectorReuse(t *testing.T) {
	f := &gatedFetcher{gateURL: "https://a", started: make(chan struct{}), release: make(chan struct{})}
	svc := NewFieldService(f, 0)
	ctx := helpers.TestCtx()

	stale := make(chan error, 1)
	go func() {
		_, err := svc.Fields(ctx, "u1", dto.FieldsRequest{SelectorID: "s", URL: "https://a"})
		stale <- err
	}()
	<-f.started

	// B supersedes A and finishes, releasing the selector.
	if _, err := svc.Fields(ctx, "u1", dto.FieldsRequest{SelectorID: "s", URL: "https://b"}); err != nil {
		t.Fatalf("second request failed: %v", err)
	}

	// C starts on the released selector while A is still fetching.
	cDone := make(chan struct{})
	cGate := &gatedFetcher{gateURL: "https://c", started: make(chan struct{}), release: make(chan struct{})}
	svc.fetcher = cGate
	go func() {
		defer close(cDone)
		_, _ = svc.Fields(ctx, "u1", dto.FieldsRequest{SelectorID: "s", URL: "https://c"})
	}()
	<-cGate.started

	close(f.release)
	var sup *errs.SupersededError
	if err := <-stale; !errors.As(err, &sup) {
		t.Fatalf("expected stale request to be superseded, got %v", err)
	}

	close(cGate.release)
	<-cDone
}

func TestFields_SelectorsAreIndependent(t *testing.T) {
	f := &countingFetcher{body: []byte(`{"a":1}`)}
	svc := NewFieldService(f, 30*time.Millisecond)
	ctx := helpers.TestCtx()

	var wg sync.WaitGroup
	errCh := make(chan error, 2)
	for _, sel := range []string{"table", "chart"} {
		wg.Add(1)
		go func(sel string) {
			defer wg.Done()
			_, err := svc.Fields(ctx, "u1", dto.FieldsRequest{SelectorID: sel, URL: "https://x"})
			errCh <- err
		}(sel)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestFields_ContextCancelled(t *testing.T) {
	svc := NewFieldService(&countingFetcher{}, time.Hour)
	ctx, cancel := context.WithCancel(helpers.TestCtx())
	cancel()

	_, err := svc.Fields(ctx, "u1", dto.FieldsRequest{SelectorID: "s", URL: "https://x"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
