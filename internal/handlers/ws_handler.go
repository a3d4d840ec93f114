package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/vidora/backend/internal/socket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from arbitrary origins; auth happens on the
	// socket itself via the authenticate handshake.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades HTTP requests onto the realtime sockets
type WSHandler struct {
	hub      *socket.Hub
	realtime *socket.RealtimeMap
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *socket.Hub, realtime *socket.RealtimeMap) *WSHandler {
	return &WSHandler{hub: hub, realtime: realtime}
}

// RegisterWSRoutes registers the websocket endpoints
func (h *WSHandler) RegisterWSRoutes(e *echo.Echo) {
	e.GET("/ws", h.ServeNotificationSocket)
	e.GET("/ws/realtime", h.ServeRealtimeSocket)
}

// ServeNotificationSocket upgrades onto the authenticated notification socket
func (h *WSHandler) ServeNotificationSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return err
	}
	socket.NewClient(h.hub, conn).Start()
	return nil
}

// ServeRealtimeSocket upgrades onto the simple register-by-id socket
func (h *WSHandler) ServeRealtimeSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return err
	}
	go h.realtime.Serve(conn)
	return nil
}
