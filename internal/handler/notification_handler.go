package handler

import (
	"collectify-be/internal/pkg/jwtauth"
	"collectify-be/internal/pkg/logger"
	"collectify-be/internal/pkg/serverutils"
	"collectify-be/internal/pkg/tokenstore"
	internalWS "collectify-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type NotificationHandler struct {
	verifier serverutils.AccessTokenVerifier
	denylist tokenstore.Denylist
	hub      *internalWS.Hub
	logger   logger.ILogger
}

func NewNotificationHandler(verifier serverutils.AccessTokenVerifier, denylist tokenstore.Denylist, hub *internalWS.Hub, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		verifier: verifier,
		denylist: denylist,
		hub:      hub,
		logger:   log,
	}
}

// ServeWs authenticates the handshake and then hands the connection to the hub.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on a websocket handshake, so the query wins.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = serverutils.BearerToken(c)
	}

	claims, err := serverutils.Authenticate(c.UserContext(), h.verifier, h.denylist, tokenStr)
	if err != nil {
		h.logger.Warn("NotificationHandler", "Rejected websocket handshake", map[string]interface{}{"error": err.Error()})
		return err
	}

	userID, err := jwtauth.UserIDFromClaims(claims)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("NotificationHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID.String()})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("NotificationHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID.String()})
	})(c)
}

func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
