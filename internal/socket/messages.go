package socket

import "time"

// Event names exchanged over the notification socket
const (
	EventAuthenticate      = "authenticate"
	EventAuthenticated     = "authenticated"
	EventAuthError         = "authentication_error"
	EventLogout            = "logout"
	EventPing              = "ping"
	EventPong              = "pong"
	EventUserStatus        = "user_status"
	EventNotification      = "notification"
	EventAdminNotification = "admin_notification"

	// Simple realtime variant
	EventRegister   = "register"
	EventRegistered = "registered"
)

// Event is a server-to-client message
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// InboundMessage is a client-to-server message
type InboundMessage struct {
	Event  string `json:"event"`
	Token  string `json:"token,omitempty"`
	UserID uint   `json:"userId,omitempty"`
}

// UserStatusData is broadcast on presence transitions
type UserStatusData struct {
	UserID    uint      `json:"userId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// AuthenticatedData acknowledges a successful handshake
type AuthenticatedData struct {
	UserID uint `json:"userId"`
}

// AuthErrorData reports a failed handshake
type AuthErrorData struct {
	Message string `json:"message"`
}

// RegisteredData acknowledges a register on the simple realtime socket
type RegisteredData struct {
	Success  bool   `json:"success"`
	UserID   uint   `json:"userId"`
	SocketID string `json:"socketId"`
}
