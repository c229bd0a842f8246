package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pickem-tracker/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client connexion d'un navigateur
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	ID string

	logger zerolog.Logger

	closed bool
	mutex  sync.Mutex
}

// NewClient crée un client avec un identifiant aléatoire
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	id := uuid.NewString()
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 16),
		ID:     id,
		logger: hub.logger.With().Str("client", id).Logger(),
	}
}

// Start démarre les boucles de lecture et d'écriture
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// readPump ne traite que les pings applicatifs ; le tableau est en lecture seule
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("Erreur WebSocket")
			}
			break
		}

		var wsMsg models.WSMessage
		if err := json.Unmarshal(message, &wsMsg); err != nil {
			c.SendError("Message invalide")
			continue
		}

		switch wsMsg.Type {
		case models.WSTypePing:
			c.Send(&models.WSMessage{Type: models.WSTypePong})
		default:
			c.SendError("Type de message non supporté")
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug().Err(err).Msg("Erreur écriture WebSocket")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Send envoie un message à ce client uniquement
func (c *Client) Send(msg *models.WSMessage) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error().Err(err).Msg("Erreur marshal message")
		return
	}

	select {
	case c.send <- data:
	default:
		c.logger.Warn().Msg("Tampon plein")
	}
}

// SendError envoie un message d'erreur
func (c *Client) SendError(errMsg string) {
	c.Send(&models.WSMessage{
		Type:  models.WSTypeError,
		Error: errMsg,
	})
}

// Close ferme le canal d'envoi ; writePump ferme ensuite la connexion
func (c *Client) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.send)
}

// IsClosed indique si le client a été fermé
func (c *Client) IsClosed() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.closed
}
