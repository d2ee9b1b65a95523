package notify

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/olahol/melody"
	"go.uber.org/zap"
)

const userKey = "user_id"

// Hub pushes realtime messages to connected websocket clients.
type Hub struct {
	m   *melody.Melody
	log *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	h := &Hub{
		m:   melody.New(),
		log: log.With(zap.String("component", "ws_hub")),
	}

	h.m.HandleConnect(func(s *melody.Session) {
		userID, _ := s.Get(userKey)
		h.log.Debug("Websocket connected", zap.Any("user_id", userID))
	})
	h.m.HandleDisconnect(func(s *melody.Session) {
		userID, _ := s.Get(userKey)
		h.log.Debug("Websocket disconnected", zap.Any("user_id", userID))
	})
	h.m.HandleError(func(s *melody.Session, err error) {
		h.log.Debug("Websocket error", zap.Error(err))
	})

	return h
}

// ServeWS upgrades the request and tags the session with the caller.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	return h.m.HandleRequestWithKeys(w, r, map[string]interface{}{userKey: userID.String()})
}

// SendToUser writes payload as JSON to every live session of the user.
func (h *Hub) SendToUser(userID uuid.UUID, payload any) error {
	msg, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	target := userID.String()
	return h.m.BroadcastFilter(msg, func(s *melody.Session) bool {
		v, ok := s.Get(userKey)
		return ok && v == target
	})
}

func (h *Hub) Close() error {
	return h.m.Close()
}
