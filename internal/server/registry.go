package server

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/jfmyers9/chartfm/internal/view"
)

// ErrUnknownView is returned for view IDs that were never registered or
// have expired.
var ErrUnknownView = errors.New("unknown view")

type entry struct {
	view    *view.View
	expires time.Time
}

// Registry keeps loaded views so exports can be served without reloading
// the chart.
type Registry struct {
	mu    sync.RWMutex
	ttl   time.Duration
	views map[string]entry
	now   func() time.Time
}

// NewRegistry creates a registry whose entries live for ttl.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl:   ttl,
		views: make(map[string]entry),
		now:   time.Now,
	}
}

// Add registers v and returns its ID.
func (r *Registry) Add(v *view.View) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New().String()
	r.views[id] = entry{view: v, expires: r.now().Add(r.ttl)}
	return id
}

// Get retrieves a view by ID.
func (r *Registry) Get(id string) (*view.View, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.views[id]
	if !ok || r.now().After(e.expires) {
		return nil, ErrUnknownView
	}
	return e.view, nil
}

// Len returns the number of registered views, expired or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// Sweep drops expired views and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, e := range r.views {
		if now.After(e.expires) {
			delete(r.views, id)
			removed++
		}
	}
	return removed
}
