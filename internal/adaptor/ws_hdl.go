package adaptor

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WSServer upgrades an authenticated request into a push channel.
type WSServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error
}

type WSHandler struct {
	hub WSServer
	log *zap.Logger
}

func NewWSHandler(hub WSServer, log *zap.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		log: log.With(zap.String("handler", "ws")),
	}
}

// Connect handles GET /api/ws (protected, token may be passed as ?token=)
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.hub.ServeWS(w, r, principal.UserID); err != nil {
		// the upgrader has already replied
		h.log.Warn("Websocket upgrade failed", zap.Error(err), zap.String("user_id", principal.UserID.String()))
	}
}
