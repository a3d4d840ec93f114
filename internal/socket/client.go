package socket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// ConnState is the lifecycle state of one notification-socket connection
type ConnState int

const (
	StateUnauthenticated ConnState = iota
	StateAuthenticated
	StateClosed
)

// stepResult is the outcome of one state transition: the next state plus
// the side effects the connection loop must apply.
type stepResult struct {
	next    ConnState
	userID  uint
	replies []Event
	bind    bool
	unbind  bool
	close   bool
}

// transition computes the next state and requested effects for an inbound
// event. Pure apart from the injected credential check, which keeps the
// protocol testable without a live transport.
func transition(state ConnState, msg InboundMessage, verify CredentialVerifier) stepResult {
	if state == StateClosed {
		return stepResult{next: StateClosed}
	}

	switch msg.Event {
	case EventPing:
		return stepResult{next: state, replies: []Event{{Event: EventPong}}}

	case EventAuthenticate:
		userID, err := verify(msg.Token)
		if err != nil {
			return stepResult{
				next:    StateClosed,
				replies: []Event{{Event: EventAuthError, Data: AuthErrorData{Message: "Invalid token"}}},
				close:   true,
			}
		}
		return stepResult{
			next:    StateAuthenticated,
			userID:  userID,
			replies: []Event{{Event: EventAuthenticated, Data: AuthenticatedData{UserID: userID}}},
			bind:    true,
		}

	case EventLogout:
		if state != StateAuthenticated {
			return stepResult{next: state}
		}
		// Explicit unbind without closing the transport
		return stepResult{next: StateUnauthenticated, unbind: true}

	default:
		return stepResult{next: state}
	}
}

// Client is one live connection between a browser/app and the hub
type Client struct {
	id    string
	hub   *Hub
	conn  *websocket.Conn
	state ConnState

	// sendMu guards send against the close in detach: the dispatcher may
	// hold a registry snapshot of this client while the read pump is
	// tearing it down.
	sendMu sync.Mutex
	closed bool
	send   chan Event
}

// NewClient wraps an upgraded websocket connection
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:    uuid.NewString(),
		hub:   hub,
		conn:  conn,
		send:  make(chan Event, 256),
		state: StateUnauthenticated,
	}
}

// ID returns the connection identifier
func (c *Client) ID() string {
	return c.id
}

// trySend queues an event without blocking; reports whether it was queued.
// Safe to call after the connection has been torn down.
func (c *Client) trySend(ev Event) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- ev:
		return true
	default:
		log.Warn().Str("conn_id", c.id).Str("event", ev.Event).Msg("send buffer full, dropping event")
		return false
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Start attaches the client to the hub and begins the read/write pumps
func (c *Client) Start() {
	c.hub.attach(c)
	go c.writePump()
	go c.readPump()
}

// handleMessage applies one inbound event to the connection state machine
func (c *Client) handleMessage(msg InboundMessage) {
	res := transition(c.state, msg, c.hub.verify)
	c.state = res.next

	if res.bind {
		c.hub.registry.Bind(c, res.userID)
	}
	if res.unbind {
		c.hub.registry.Unbind(c.id)
	}
	for _, ev := range res.replies {
		c.trySend(ev)
	}
	if res.close {
		log.Warn().Str("conn_id", c.id).Msg("socket authentication failed, closing")
		_ = c.conn.Close()
	}
}

// readPump pumps inbound messages from the websocket into the state machine
func (c *Client) readPump() {
	defer func() {
		c.hub.detach(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg InboundMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("conn_id", c.id).Msg("unexpected websocket close")
			}
			break
		}
		c.handleMessage(msg)
	}
}

// writePump pumps queued events to the websocket and keeps the connection alive
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				log.Error().Err(err).Str("conn_id", c.id).Msg("failed to write event")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
