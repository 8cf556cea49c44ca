package gate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"feedbackradar-engine/internal/domain"
)

// memStore enforces url uniqueness under a lock, mirroring the
// database's unique index.
type memStore struct {
	mu   sync.Mutex
	urls map[string]bool
	err  error
}

func newMemStore() *memStore {
	return &memStore{urls: make(map[string]bool)}
}

func (s *memStore) InsertIgnore(_ context.Context, item domain.FeedbackItem) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if s.urls[item.URL] {
		return false, nil
	}
	s.urls[item.URL] = true
	return true, nil
}

func item(url string, relevance float64) domain.FeedbackItem {
	return domain.FeedbackItem{
		Source:    "trustreviews",
		Keyword:   "billing",
		Content:   "billing is broken",
		URL:       url,
		Relevance: relevance,
	}
}

func TestAdmitOutcomes(t *testing.T) {
	g := New(newMemStore(), 0.3)
	ctx := context.Background()

	out, err := g.Admit(ctx, item("https://example.com/r/1", 0.9))
	if err != nil || out != Added {
		t.Fatalf("first insert: got %v, %v; want Added, nil", out, err)
	}

	out, err = g.Admit(ctx, item("https://example.com/r/1", 0.9))
	if err != nil || out != Duplicate {
		t.Fatalf("same url again: got %v, %v; want Duplicate, nil", out, err)
	}

	// relevance 0.1 is below the 0.3 threshold: dropped silently,
	// never stored.
	out, err = g.Admit(ctx, item("https://example.com/r/2", 0.1))
	if err != nil || out != Filtered {
		t.Fatalf("low relevance: got %v, %v; want Filtered, nil", out, err)
	}
	out, err = g.Admit(ctx, item("https://example.com/r/2", 0.9))
	if err != nil || out != Added {
		t.Fatalf("filtered item must not occupy the url: got %v, %v", out, err)
	}
}

func TestAdmitThresholdBoundary(t *testing.T) {
	g := New(newMemStore(), 0.3)

	// Exactly at the threshold passes.
	out, err := g.Admit(context.Background(), item("https://example.com/r/3", 0.3))
	if err != nil || out != Added {
		t.Fatalf("at threshold: got %v, %v; want Added, nil", out, err)
	}
}

func TestAdmitStoreError(t *testing.T) {
	s := newMemStore()
	s.err = errors.New("disk full")
	g := New(s, 0.3)

	out, err := g.Admit(context.Background(), item("https://example.com/r/4", 0.9))
	if err == nil {
		t.Fatal("expected error from broken store")
	}
	if !errors.Is(err, s.err) {
		t.Fatalf("error should wrap the store error, got %v", err)
	}
	// Nothing was decided; the outcome must not read as a verdict.
	if out == Added || out == Duplicate || out == Filtered {
		t.Fatalf("outcome alongside an error = %v, want the zero value", out)
	}
	if out.String() != "unknown" {
		t.Fatalf("zero outcome String() = %q, want unknown", out.String())
	}
}

// Two tasks racing on the same url: exactly one Added, one Duplicate.
func TestAdmitConcurrentSameURL(t *testing.T) {
	g := New(newMemStore(), 0.3)

	const racers = 16
	outcomes := make(chan Outcome, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := g.Admit(context.Background(), item("https://example.com/r/race", 0.9))
			if err != nil {
				t.Errorf("admit: %v", err)
				return
			}
			outcomes <- out
		}()
	}
	wg.Wait()
	close(outcomes)

	added, dup := 0, 0
	for out := range outcomes {
		switch out {
		case Added:
			added++
		case Duplicate:
			dup++
		}
	}
	if added != 1 || dup != racers-1 {
		t.Fatalf("got added=%d duplicate=%d, want 1 and %d", added, dup, racers-1)
	}
}
