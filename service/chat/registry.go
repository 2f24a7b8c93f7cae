package chat

import (
	"sync"
)

// PresenceEntry is one row of a presence snapshot.
type PresenceEntry struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Registry is the in-memory set of live connections. Insertion order is
// preserved so presence snapshots enumerate in registration order.
// Several connections may carry the same identity id: simultaneous
// sessions for one user are kept as separate entries, never merged.
type Registry struct {
	mu    sync.RWMutex
	conns []*Conn
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Add(c *Conn) {
	r.mu.Lock()
	r.conns = append(r.conns, c)
	r.mu.Unlock()
}

// Remove deletes the connection; no-op if absent. Reports whether the
// connection was actually registered, so close and eviction racing each
// other settle on exactly one winner.
func (r *Registry) Remove(c *Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, x := range r.conns {
		if x == c {
			r.conns = append(r.conns[:i], r.conns[i+1:]...)
			return true
		}
	}
	return false
}

// FindByUser returns every registered connection whose identity id
// matches: zero, one, or many.
func (r *Registry) FindByUser(id string) []*Conn {
	if id == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Conn
	for _, c := range r.conns {
		if c.Identity().ID == id {
			out = append(out, c)
		}
	}
	return out
}

// Snapshot enumerates all entries in insertion order. Connections whose
// credential never resolved appear with empty fields; that mirrors the
// behavior the clients already depend on.
func (r *Registry) Snapshot() []PresenceEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PresenceEntry, 0, len(r.conns))
	for _, c := range r.conns {
		ident := c.Identity()
		out = append(out, PresenceEntry{ID: ident.ID, Username: ident.Username})
	}
	return out
}

// All returns a copy of the current connection list.
func (r *Registry) All() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Conn, len(r.conns))
	copy(out, r.conns)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// UpdateUsername refreshes the cached username on every connection bound
// to the given identity id. Each affected connection notifies itself; this
// is not a broadcast. Returns the number of connections updated.
func (r *Registry) UpdateUsername(id, newUsername string) int {
	if id == "" {
		return 0
	}
	targets := r.FindByUser(id)
	for _, c := range targets {
		c.UpdateIdentity(newUsername)
	}
	return len(targets)
}
