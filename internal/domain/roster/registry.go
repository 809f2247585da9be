package roster

import "sync"

// Registry maps a scope id to at most one live session. It is the only
// shared-mutable surface besides the sessions themselves; all map access
// serializes on the registry lock, roster mutations on each session's own
// lock. Sessions in different scopes never block each other.
type Registry struct {
	mu       sync.RWMutex
	capacity int
	byScope  map[string]*Session
}

// NewRegistry creates a registry producing sessions of the given capacity.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		capacity: capacity,
		byScope:  make(map[string]*Session),
	}
}

// Start creates the scope's session. A closed leftover is replaced; an open
// one fails with ErrAlreadyActive.
func (r *Registry) Start(scopeID, ownerID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byScope[scopeID]; ok && !existing.IsClosed() {
		return nil, ErrAlreadyActive
	}
	sess := NewSession(scopeID, ownerID, r.capacity)
	r.byScope[scopeID] = sess
	return sess, nil
}

// Get returns the scope's session, if any.
func (r *Registry) Get(scopeID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.byScope[scopeID]
	return sess, ok
}

// Close runs the owner-only close and the eviction as one critical section,
// so a Start racing for the same scope can never be evicted by a stale close.
func (r *Registry) Close(scopeID, actorID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.byScope[scopeID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	if err := sess.Close(actorID); err != nil {
		return nil, err
	}
	delete(r.byScope, scopeID)
	return sess, nil
}

// ForceReset closes and evicts the scope's session regardless of owner.
// Privileged: callers are expected to gate this behind moderation access.
func (r *Registry) ForceReset(scopeID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.byScope[scopeID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	sess.ForceClose()
	delete(r.byScope, scopeID)
	return sess, nil
}

// ForceResetIf closes and evicts the scope's session only while it is still
// the given one. Returns false when the mapping changed in the meantime, so
// callers holding a session from an earlier lookup cannot evict a
// replacement they never examined.
func (r *Registry) ForceResetIf(scopeID string, sess *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byScope[scopeID]
	if !ok || current != sess {
		return false
	}
	sess.ForceClose()
	delete(r.byScope, scopeID)
	return true
}

// Adopt installs a restored session for its scope, used during warm start.
// An existing mapping wins; closed sessions are not adopted.
func (r *Registry) Adopt(sess *Session) bool {
	if sess.IsClosed() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byScope[sess.ScopeID()]; ok {
		return false
	}
	r.byScope[sess.ScopeID()] = sess
	return true
}

// Scopes returns the scope ids with a registered session.
func (r *Registry) Scopes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byScope))
	for scope := range r.byScope {
		out = append(out, scope)
	}
	return out
}
