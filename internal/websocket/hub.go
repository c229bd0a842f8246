// Package websocket pousse les mises à jour du tableau aux navigateurs connectés
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"pickem-tracker/internal/models"
)

// Hub gère toutes les connexions WebSocket
type Hub struct {
	// Clients connectés par identifiant
	clients map[string]*Client

	// Canal pour enregistrer un nouveau client
	register chan *Client

	// Canal pour désenregistrer un client
	unregister chan *Client

	// Canal pour diffuser un message à tous les clients
	broadcast chan []byte

	// Fermé quand Run se termine
	done chan struct{}

	// Mutex pour l'accès concurrent
	mutex sync.RWMutex

	logger *zerolog.Logger
}

// NewHub crée un hub ; Run doit être lancé pour traiter les messages
func NewHub(logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run boucle principale du hub, jusqu'à l'annulation de ctx
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case data := <-h.broadcast:
			h.broadcastAll(data)
		}
	}
}

// registerClient enregistre un nouveau client
func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client.ID] = client
	h.logger.Debug().Str("client", client.ID).Int("clients", len(h.clients)).Msg("Client connecté")
}

// unregisterClient désenregistre un client
func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, exists := h.clients[client.ID]; exists {
		delete(h.clients, client.ID)
		client.Close()
		h.logger.Debug().Str("client", client.ID).Int("clients", len(h.clients)).Msg("Client déconnecté")
	}
}

// broadcastAll diffuse un message à tous les clients ; ceux dont le
// tampon est plein sont déconnectés
func (h *Hub) broadcastAll(data []byte) {
	var slow []*Client

	h.mutex.RLock()
	for _, client := range h.clients {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range slow {
		h.logger.Warn().Str("client", client.ID).Msg("Tampon plein, client déconnecté")
		h.unregisterClient(client)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, client := range h.clients {
		client.Close()
		delete(h.clients, id)
	}
}

// ============================================================================
// MÉTHODES PUBLIQUES
// ============================================================================

// Register enregistre un client. Si le hub est arrêté, le client est
// fermé et false est retourné.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		client.Close()
		return false
	}
}

// Unregister désenregistre un client ; sans effet une fois le hub arrêté
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Done est fermé quand Run se termine
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Broadcast diffuse un message à tous les clients.
// Le message est abandonné si la file du hub est pleine.
func (h *Hub) Broadcast(msg *models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("Erreur marshal message")
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn().Str("type", string(msg.Type)).Msg("File de diffusion pleine, message abandonné")
	}
}

// ClientCount nombre de clients connectés
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
