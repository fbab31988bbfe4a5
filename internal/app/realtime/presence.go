package realtime

import "sync"

// Registry counts live sessions per user. Presence is edge-triggered: only
// the 0→1 and 1→0 transitions matter, so a user with three devices stays
// online until the last one disconnects.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]int
}

// NewRegistry returns an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]int)}
}

// Add records one more session for the user and reports whether this was
// the first, i.e. the user just came online.
func (r *Registry) Add(userID string) (first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[userID]++
	return r.sessions[userID] == 1
}

// Remove drops one session for the user and reports whether it was the
// last, i.e. the user just went offline. Removing an untracked user is a
// no-op reporting false.
func (r *Registry) Remove(userID string) (last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.sessions[userID]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(r.sessions, userID)
		return true
	}
	r.sessions[userID] = n - 1
	return false
}

// Online reports whether the user has at least one live session.
func (r *Registry) Online(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[userID] > 0
}

// Count returns the user's live session count.
func (r *Registry) Count(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[userID]
}
