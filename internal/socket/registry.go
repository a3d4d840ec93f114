package socket

import "sync"

// TransitionFunc is invoked when a user's presence changes. It is always
// called outside the registry lock.
type TransitionFunc func(userID uint, online bool)

// Registry tracks which users currently hold live connections. It is the
// single shared mutable structure of the realtime layer; every operation
// is a fast in-memory map access under one mutex, never held across I/O.
type Registry struct {
	mu           sync.RWMutex
	users        map[uint]map[string]*Client
	conns        map[string]uint
	onTransition TransitionFunc
}

// NewRegistry creates a Registry. onTransition may be nil.
func NewRegistry(onTransition TransitionFunc) *Registry {
	return &Registry{
		users:        make(map[uint]map[string]*Client),
		conns:        make(map[string]uint),
		onTransition: onTransition,
	}
}

// Bind associates a connection with a user after credential verification.
// A connection belongs to at most one user: binding an already-bound
// connection moves it. Returns true when this was the user's first
// connection (online transition).
func (r *Registry) Bind(c *Client, userID uint) bool {
	r.mu.Lock()
	var wentOffline *uint
	if prev, ok := r.conns[c.id]; ok && prev != userID {
		if r.removeLocked(c.id, prev) {
			wentOffline = &prev
		}
	}
	set, ok := r.users[userID]
	if !ok {
		set = make(map[string]*Client)
		r.users[userID] = set
	}
	first := len(set) == 0
	set[c.id] = c
	r.conns[c.id] = userID
	r.mu.Unlock()

	if r.onTransition != nil {
		if wentOffline != nil {
			r.onTransition(*wentOffline, false)
		}
		if first {
			r.onTransition(userID, true)
		}
	}
	return first
}

// Unbind removes a connection from whichever user's set contains it.
// Returns true when the user's set became empty (offline transition).
func (r *Registry) Unbind(connID string) bool {
	r.mu.Lock()
	userID, ok := r.conns[connID]
	var last bool
	if ok {
		last = r.removeLocked(connID, userID)
	}
	r.mu.Unlock()

	if last && r.onTransition != nil {
		r.onTransition(userID, false)
	}
	return last
}

// removeLocked deletes a connection from a user's set and reports whether
// the set became empty. Caller must hold the lock.
func (r *Registry) removeLocked(connID string, userID uint) bool {
	delete(r.conns, connID)
	set, ok := r.users[userID]
	if !ok {
		return false
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(r.users, userID)
		return true
	}
	return false
}

// IsOnline reports whether the user has at least one active connection
func (r *Registry) IsOnline(userID uint) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID]) > 0
}

// ConnectionsFor returns all live connections owned by a user
func (r *Registry) ConnectionsFor(userID uint) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.users[userID]
	clients := make([]*Client, 0, len(set))
	for _, c := range set {
		clients = append(clients, c)
	}
	return clients
}

// ConnectionCount returns how many connections a user currently holds
func (r *Registry) ConnectionCount(userID uint) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID])
}

// OnlineUsers returns the IDs of every user with at least one connection
func (r *Registry) OnlineUsers() []uint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uint, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	return ids
}
