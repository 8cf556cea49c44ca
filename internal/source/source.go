package source

import (
	"context"

	"feedbackradar-engine/internal/domain"
)

// Adapter fetches raw feedback items matching one keyword from one
// external source. Implementations own their per-call timeouts; an
// empty slice with a nil error means "nothing found", not a failure.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, query string, limit int) ([]domain.RawItem, error)
}

// Registry is the static table of registered adapters. The dispatcher's
// fan-out is a plain iteration over it; there is no string dispatch.
type Registry struct {
	adapters []Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

func (r *Registry) Adapters() []Adapter {
	return r.adapters
}

func (r *Registry) Len() int {
	return len(r.adapters)
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a.Name())
	}
	return out
}
