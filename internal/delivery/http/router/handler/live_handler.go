package handler

import (
	"dealradar/internal/delivery/ws"

	"github.com/labstack/echo/v4"
)

// LiveHandler upgrades clients onto the real-time broadcast hub.
type LiveHandler struct {
	hub *ws.Hub
}

// NewLiveHandler is the constructor for LiveHandler.
func NewLiveHandler(hub *ws.Hub) *LiveHandler {
	return &LiveHandler{hub: hub}
}

// Connect upgrades the request to a websocket connection. The client
// receives every broadcast from then on; there is no replay of missed
// events.
func (h *LiveHandler) Connect(c echo.Context) error {
	return h.hub.HandleConnection(c.Response(), c.Request())
}
