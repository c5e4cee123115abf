package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs blocks for the lifetime of the connection.
func ServeWs(hub *Hub, c *websocket.Conn, userID uuid.UUID) {
	client := NewClient(hub, c, userID)
	hub.Register(client)

	go client.writePump()
	client.readPump()
}
