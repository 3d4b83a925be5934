package session

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/utils"
)

// Client is a participant on the session channel: it publishes topic-framed
// messages and dispatches inbound frames to per-topic handlers. The bridge
// uses one as its notification publisher and, optionally, as the channel
// relay's inbound side.
type Client struct {
	conn *websocket.Conn
	log  *utils.Logger

	writeMu  sync.Mutex
	mu       sync.Mutex
	handlers map[string][]func(Message)
	done     chan struct{}
	once     sync.Once
}

// Dial joins the session at wsURL, authenticating with the given token when
// the hub requires one.
func Dial(wsURL, token string, log *utils.Logger) (*Client, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("bad session URL: %w", err)
	}
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("session dial failed: %w", err)
	}

	c := &Client{
		conn:     conn,
		log:      log,
		handlers: make(map[string][]func(Message)),
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Publish frames a payload under a topic and sends it to the hub, which fans
// it out to every other participant.
func (c *Client) Publish(topic string, payload any) error {
	frame, err := Encode(topic, payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

// Subscribe registers a handler for frames on the given topic. Handlers run
// on the read loop goroutine and must not block.
func (c *Client) Subscribe(topic string, handler func(Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = append(c.handlers[topic], handler)
}

// Done is closed when the connection drops.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close tears the connection down.
func (c *Client) Close() error {
	c.once.Do(func() { close(c.done) })
	return c.conn.Close()
}

func (c *Client) readLoop() {
	defer c.once.Do(func() { close(c.done) })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if c.log != nil {
				c.log.Writef("session connection closed: %v", err)
			}
			return
		}
		msg, err := Decode(raw)
		if err != nil {
			if c.log != nil {
				c.log.Writef("dropping malformed session frame: %v", err)
			}
			continue
		}
		c.mu.Lock()
		handlers := append([]func(Message){}, c.handlers[msg.Topic]...)
		c.mu.Unlock()
		for _, h := range handlers {
			h(msg)
		}
	}
}
