package socket

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CredentialVerifier checks a handshake token and yields the user identity
type CredentialVerifier func(token string) (uint, error)

// Hub owns every live notification-socket connection and the presence
// registry derived from them. Presence transitions are broadcast to all
// connected clients as user_status events, best-effort and at-most-once.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	registry *Registry
	verify   CredentialVerifier
}

// NewHub creates a Hub using the given credential verifier
func NewHub(verify CredentialVerifier) *Hub {
	h := &Hub{
		clients: make(map[*Client]struct{}),
		verify:  verify,
	}
	h.registry = NewRegistry(h.broadcastUserStatus)
	return h
}

// Registry exposes the connection registry for presence queries
func (h *Hub) Registry() *Registry {
	return h.registry
}

// IsUserOnline is the canonical reachability check used by the dispatcher
func (h *Hub) IsUserOnline(userID uint) bool {
	return h.registry.IsOnline(userID)
}

// OnlineUsers returns the IDs of all currently reachable users
func (h *Hub) OnlineUsers() []uint {
	return h.registry.OnlineUsers()
}

// ClientCount returns the number of open connections, authenticated or not
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// attach registers a freshly upgraded connection with the hub
func (h *Hub) attach(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	log.Info().Str("conn_id", c.id).Int("total_clients", total).Msg("socket connected")
}

// detach removes a connection from the hub and the registry
func (h *Hub) detach(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	total := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return
	}
	h.registry.Unbind(c.id)
	c.closeSend()
	log.Info().Str("conn_id", c.id).Int("total_clients", total).Msg("socket disconnected")
}

// Broadcast queues an event on every open connection. Sends are
// non-blocking: a client with a full buffer misses the event.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.trySend(ev)
	}
}

// EmitToUser queues an event on every connection owned by a user and
// reports whether at least one connection accepted it.
func (h *Hub) EmitToUser(userID uint, ev Event) bool {
	delivered := false
	for _, c := range h.registry.ConnectionsFor(userID) {
		if c.trySend(ev) {
			delivered = true
		}
	}
	return delivered
}

// broadcastUserStatus announces a presence transition to all clients
func (h *Hub) broadcastUserStatus(userID uint, online bool) {
	status := "offline"
	if online {
		status = "online"
	}
	log.Debug().Uint("user_id", userID).Str("status", status).Msg("presence transition")
	h.Broadcast(Event{
		Event: EventUserStatus,
		Data: UserStatusData{
			UserID:    userID,
			Status:    status,
			Timestamp: time.Now(),
		},
	})
}
