package gate

import (
	"context"
	"fmt"

	"feedbackradar-engine/internal/domain"
)

// Outcome is the gate's verdict for one scored item. Filtered and
// Duplicate are normal, silent outcomes, never errors. The zero value
// is not a verdict; Admit returns it only alongside an error.
type Outcome int

const (
	Added Outcome = iota + 1
	Duplicate
	Filtered
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Duplicate:
		return "duplicate"
	case Filtered:
		return "filtered"
	}
	return "unknown"
}

// Store is the slice of persistence the gate needs. InsertIgnore must
// treat a url collision as "not added", relying on the storage-level
// uniqueness constraint rather than a lock.
type Store interface {
	InsertIgnore(ctx context.Context, item domain.FeedbackItem) (added bool, err error)
}

// Gate decides whether one scored FeedbackItem reaches storage.
type Gate struct {
	store     Store
	threshold float64 // minimum relevance to persist
}

func New(store Store, relevanceThreshold float64) *Gate {
	return &Gate{store: store, threshold: relevanceThreshold}
}

func (g *Gate) Admit(ctx context.Context, item domain.FeedbackItem) (Outcome, error) {
	if item.Relevance < g.threshold {
		return Filtered, nil
	}

	added, err := g.store.InsertIgnore(ctx, item)
	if err != nil {
		return 0, fmt.Errorf("gate insert url=%q: %w", item.URL, err)
	}
	if !added {
		return Duplicate, nil
	}
	return Added, nil
}
