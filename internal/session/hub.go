package session

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Participants authenticate with a join token, not an origin check.
		return true
	},
}

// Hub is the session broadcast channel: the rendezvous between the remote
// agent, the bridge, and any frontends. Every frame is fanned out to every
// connected participant; delivery is at-most-once, best-effort.
type Hub struct {
	clients     map[*websocket.Conn]bool
	broadcast   chan []byte
	register    chan *websocket.Conn
	unregister  chan *websocket.Conn
	mutex       sync.RWMutex
	tokenSecret string
	logger      *utils.Logger
}

// NewHub builds a hub. When tokenSecret is non-empty, joins require a valid
// token in the "token" query parameter.
func NewHub(tokenSecret string, logger *utils.Logger) *Hub {
	return &Hub{
		clients:     make(map[*websocket.Conn]bool),
		broadcast:   make(chan []byte),
		register:    make(chan *websocket.Conn),
		unregister:  make(chan *websocket.Conn),
		tokenSecret: tokenSecret,
		logger:      logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mutex.Lock()
			h.clients[conn] = true
			h.mutex.Unlock()
			h.logf("session participant connected")

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()
			h.logf("session participant disconnected")

		case message := <-h.broadcast:
			// Full lock: the fan-out drops dead connections from the map.
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logf("session write error: %v", err)
					delete(h.clients, conn)
					conn.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Publish frames a payload under a topic and broadcasts it to every
// participant.
func (h *Hub) Publish(topic string, payload any) error {
	frame, err := Encode(topic, payload)
	if err != nil {
		return err
	}
	h.broadcast <- frame
	return nil
}

// Broadcast sends a pre-framed message.
func (h *Hub) Broadcast(message []byte) {
	h.broadcast <- message
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades a join request after validating the token, then
// re-broadcasts any frame the participant publishes.
func (h *Hub) HandleWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.tokenSecret != "" {
			token := c.Query("token")
			if _, err := ValidateToken(h.tokenSecret, token); err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
				return
			}
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logf("session upgrade error: %v", err)
			return
		}

		h.register <- conn

		defer func() {
			h.unregister <- conn
		}()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logf("session read error: %v", err)
				}
				break
			}
			// Participants publish by sending a frame; the hub relays it to
			// everyone else (and back to the sender, who filters by topic).
			h.broadcast <- raw
		}
	}
}

func (h *Hub) logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if h.logger != nil {
		h.logger.Write(msg)
		return
	}
	log.Println(msg)
}
