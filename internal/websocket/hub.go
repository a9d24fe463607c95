package websocket

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for dev simplicity
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client represents a single connected WebSocket client
type Client struct {
	Hub   *Hub
	Conn  *websocket.Conn
	Send  chan []byte
	Email string
}

// Envelope is a message addressed to one user.
type Envelope struct {
	Email   string
	Payload []byte
}

// Hub maintains the set of active clients and delivers messages to the
// clients of the addressed user
type Hub struct {
	clients    map[*Client]bool
	deliver    chan Envelope
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     logrus.FieldLogger
}

// NewHub initializes a new WS Hub instance
func NewHub(logger logrus.FieldLogger) *Hub {
	return &Hub{
		deliver:    make(chan Envelope, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger.WithField("component", "websocket"),
	}
}

// Run starts the core dispatch loop for WebSocket events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.WithField("email", client.Email).Debug("websocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.WithField("email", client.Email).Debug("websocket client disconnected")
			}
			h.mu.Unlock()
		case env := <-h.deliver:
			h.mu.Lock()
			for client := range h.clients {
				if client.Email != env.Email {
					continue
				}
				select {
				case client.Send <- env.Payload:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendTo queues payload for every connection of email. It never blocks: when
// the delivery queue is full the message is dropped and false is returned.
func (h *Hub) SendTo(email string, payload []byte) bool {
	select {
	case h.deliver <- Envelope{Email: strings.ToLower(strings.TrimSpace(email)), Payload: payload}:
		return true
	default:
		return false
	}
}

// Connected reports whether email has at least one open connection.
func (h *Hub) Connected(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if client.Email == email {
			return true
		}
	}
	return false
}

// writePump handles writing messages from the Hub to the WebSocket connection
func (c *Client) writePump() {
	defer func() {
		_ = c.Conn.Close()
	}()
	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		_ = c.Conn.Close()
	}()
	for {
		// Reads only keep the connection alive; clients do not send commands.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.WithError(err).Warn("websocket read failed")
			}
			break
		}
	}
}

// ServeWs upgrades an authenticated request; the token's email claim selects
// which notifications the connection receives.
func ServeWs(hub *Hub, c *gin.Context, secret []byte) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		hub.logger.WithError(err).Info("websocket connection rejected: invalid token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	email, _ := claims["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	client := &Client{Hub: hub, Conn: conn, Send: make(chan []byte, 256), Email: email}
	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}
