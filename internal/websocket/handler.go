package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pickem-tracker/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler accepte les connexions WebSocket
type Handler struct {
	hub    *Hub
	hello  func() *models.WSMessage
	logger *zerolog.Logger
}

// NewHandler crée le handler ; hello (optionnel) fournit le premier
// message envoyé à chaque nouveau client
func NewHandler(hub *Hub, hello func() *models.WSMessage) *Handler {
	return &Handler{hub: hub, hello: hello, logger: hub.logger}
}

// ServeHTTP passe la connexion en WebSocket et l'enregistre auprès du hub
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Erreur upgrade WebSocket")
		return
	}

	client := NewClient(h.hub, conn)
	if !h.hub.Register(client) {
		// writePump envoie la trame de fermeture puis ferme la connexion
		client.Start()
		return
	}
	client.Start()

	if h.hello != nil {
		if msg := h.hello(); msg != nil {
			client.Send(msg)
		}
	}
}

// DatasetMessage message de diffusion après un rechargement
func DatasetMessage(snap *models.Snapshot, err error) *models.WSMessage {
	if err != nil {
		return &models.WSMessage{Type: models.WSTypeReloadFailed, Error: err.Error()}
	}

	payload := map[string]interface{}{}
	if snap != nil {
		payload["sequence"] = snap.Sequence
		payload["loaded_at"] = snap.LoadedAt
		if snap.Dataset != nil {
			payload["entries"] = len(snap.Dataset.Entries)
			payload["resolved"] = snap.Dataset.ResolvedCount()
		}
	}
	return &models.WSMessage{Type: models.WSTypeDatasetUpdated, Payload: payload}
}
