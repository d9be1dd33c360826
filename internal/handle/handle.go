// Package handle implements the client-side handle registry (C5):
// interned, mutable references to Locations, Elements and Modules by
// id, kept in sync with server-originated rename/destroy events.
package handle

import (
	"sync"
	"sync/atomic"
)

// Handle is a shared, mutable pointer to an entity identified by ID.
// Two calls to Registry.GetOrIntern with the same id always return the
// same *Handle; an id rewrite updates the existing instance in place
// so every holder observes the new id without re-interning.
type Handle[ID comparable] struct {
	mu   sync.RWMutex
	id   ID
	refs atomic.Int64
}

// ID returns the handle's current id.
func (h *Handle[ID]) ID() ID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.id
}

// Acquire records one more external holder and returns h, so callers
// can chain it off GetOrIntern.
func (h *Handle[ID]) Acquire() *Handle[ID] {
	h.refs.Add(1)
	return h
}

// Release records that one external holder is done with h. It does
// not remove h from its registry directly; that happens on the next
// GC sweep or Destroyed event.
func (h *Handle[ID]) Release() {
	h.refs.Add(-1)
}

func (h *Handle[ID]) rename(id ID) {
	h.mu.Lock()
	h.id = id
	h.mu.Unlock()
}

// Registry is one of the three intern tables (Location/Element/Module)
// described in the handle-registry design.
type Registry[ID comparable] struct {
	mu   sync.Mutex
	byID map[ID]*Handle[ID]
}

// NewRegistry constructs an empty intern table.
func NewRegistry[ID comparable]() *Registry[ID] {
	return &Registry[ID]{byID: make(map[ID]*Handle[ID])}
}

// GetOrIntern returns the existing handle for id if one is already
// interned, otherwise constructs and inserts a new one. The returned
// handle always carries one external reference on behalf of the
// caller; release it when done holding it.
func (r *Registry[ID]) GetOrIntern(id ID) *Handle[ID] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.byID[id]; ok {
		return h.Acquire()
	}
	h := &Handle[ID]{id: id}
	h.refs.Store(1)
	r.byID[id] = h
	return h
}

// Lookup returns the handle currently interned for id, if any, without
// acquiring a reference on the caller's behalf.
func (r *Registry[ID]) Lookup(id ID) (*Handle[ID], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.byID[id]
	return h, ok
}

// Rename relocates the handle interned under old (if any) to new,
// rewriting its id in place. Existing holders keep the same *Handle
// and now observe new.
func (r *Registry[ID]) Rename(old, new ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.byID[old]
	if !ok {
		return
	}
	delete(r.byID, old)
	h.rename(new)
	r.byID[new] = h
}

// Remove drops the handle for id unconditionally, used when a
// Destroyed* event arrives: existing holders become observably dead,
// since any further request for their id now gets the server's
// not-found error.
func (r *Registry[ID]) Remove(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

// Len reports how many handles are currently interned.
func (r *Registry[ID]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// GC reclaims every handle with no external holders left; the
// registry's own slot is not itself counted as a holder. It returns
// how many handles were removed.
func (r *Registry[ID]) GC() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, h := range r.byID {
		if h.refs.Load() <= 0 {
			delete(r.byID, id)
			removed++
		}
	}
	return removed
}
