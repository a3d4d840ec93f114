package socket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// realtimeConn is one connection on the simple realtime socket
type realtimeConn struct {
	socketID string
	conn     *websocket.Conn
	mu       sync.Mutex // serializes writes
}

func (rc *realtimeConn) writeJSON(v interface{}) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if err := rc.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return rc.conn.WriteJSON(v)
}

// RealtimeMap backs the simpler realtime socket used for non-notification
// features. One connection per user id, last write wins.
type RealtimeMap struct {
	mu    sync.RWMutex
	conns map[uint]*realtimeConn
}

// NewRealtimeMap creates an empty RealtimeMap
func NewRealtimeMap() *RealtimeMap {
	return &RealtimeMap{conns: make(map[uint]*realtimeConn)}
}

// IsUserOnline reports whether a user holds a realtime connection
func (m *RealtimeMap) IsUserOnline(userID uint) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.conns[userID]
	return ok
}

// EmitToUser sends an event to a user's realtime connection, if any
func (m *RealtimeMap) EmitToUser(userID uint, ev Event) bool {
	m.mu.RLock()
	rc, ok := m.conns[userID]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	if err := rc.writeJSON(ev); err != nil {
		log.Warn().Err(err).Uint("user_id", userID).Msg("realtime emit failed")
		return false
	}
	return true
}

// Serve runs the read loop for one upgraded realtime connection.
// Blocks until the connection drops.
func (m *RealtimeMap) Serve(conn *websocket.Conn) {
	rc := &realtimeConn{socketID: uuid.NewString(), conn: conn}
	var userID uint
	registered := false

	defer func() {
		if registered {
			m.mu.Lock()
			// Only drop the mapping if it still points at this connection;
			// a newer register may have replaced it.
			if cur, ok := m.conns[userID]; ok && cur == rc {
				delete(m.conns, userID)
			}
			m.mu.Unlock()
			log.Info().Uint("user_id", userID).Msg("realtime socket deregistered")
		}
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	for {
		var msg InboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Event {
		case EventRegister:
			if msg.UserID == 0 {
				continue
			}
			m.mu.Lock()
			m.conns[msg.UserID] = rc
			m.mu.Unlock()
			userID = msg.UserID
			registered = true
			log.Info().Uint("user_id", userID).Str("socket_id", rc.socketID).Msg("realtime socket registered")
			_ = rc.writeJSON(Event{
				Event: EventRegistered,
				Data:  RegisteredData{Success: true, UserID: userID, SocketID: rc.socketID},
			})

		case EventPing:
			_ = rc.writeJSON(Event{Event: EventPong})
		}
	}
}
