package session

import (
	"sort"
	"sync"
)

// Registry tracks live sessions by remote address.
//
// Sessions are inserted when a connection is accepted and removed exactly
// once when they terminate. If a new session is inserted under an address
// that is still registered, the newer session wins; the stale session's
// later Remove does not evict it.
//
// All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Insert registers s under its address and returns the session it replaced,
// if any.
func (r *Registry) Insert(s *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.sessions[s.Addr()]
	r.sessions[s.Addr()] = s
	return prev
}

// Remove unregisters s. It reports whether s was registered; removing a
// session twice, or one that was replaced, is a no-op.
func (r *Registry) Remove(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.sessions[s.Addr()]
	if !ok || cur != s {
		return false
	}
	delete(r.sessions, s.Addr())
	return true
}

// Get returns the session registered under addr.
func (r *Registry) Get(addr string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[addr]
	return s, ok
}

// Count returns the number of registered sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot returns the info of every registered session, sorted by address.
func (r *Registry) Snapshot() []Info {
	r.mu.RLock()
	infos := make([]Info, 0, len(r.sessions))
	for _, s := range r.sessions {
		infos = append(infos, s.Info())
	}
	r.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Address < infos[j].Address
	})
	return infos
}
