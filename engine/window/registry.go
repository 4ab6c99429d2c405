package window

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicateID is returned when registering a window under an id that is already taken.
var ErrDuplicateID = errors.New("window: duplicate id")

// Registry maps host ids to windows, the lookup a scene manager resolves host ids against.
type Registry struct {
	mu      sync.RWMutex
	windows map[string]Window
}

// NewRegistry creates a registry holding the given windows.
//
// Parameters:
//   - windows: windows to register up front
//
// Returns:
//   - *Registry: the registry
//   - error: ErrDuplicateID if two windows share an id
func NewRegistry(windows ...Window) (*Registry, error) {
	r := &Registry{windows: make(map[string]Window)}
	for _, w := range windows {
		if err := r.Register(w); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds w under its ID.
func (r *Registry) Register(w Window) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.windows[w.ID()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateID, w.ID())
	}
	r.windows[w.ID()] = w
	return nil
}

// Lookup returns the window registered under id.
func (r *Registry) Lookup(id string) (Window, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.windows[id]
	return w, ok
}

// Unregister removes id. The window itself is not closed.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.windows, id)
}
