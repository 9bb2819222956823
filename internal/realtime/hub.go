// Package realtime pushes change nudges to connected clients over
// websockets. An event carries only the topic and kind; clients respond by
// refetching the affected list, so a dropped event costs staleness, not
// data.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// Topic conventions: "user:<id>" for notification nudges and
// "pickup:<request id>" for chat threads.
type Event struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}

type Hub struct {
	logger *logrus.Logger

	register   chan *Client
	unregister chan *Client
	events     chan Event

	mu      sync.RWMutex
	clients map[string]map[*Client]bool
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan Event, 256),
		clients:    make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.topic] == nil {
				h.clients[client.topic] = make(map[*Client]bool)
			}
			h.clients[client.topic][client] = true
			h.mu.Unlock()
			h.logger.WithField("topic", client.topic).Debug("realtime client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.topic]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.topic)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.events:
			h.mu.RLock()
			clients := h.clients[event.Topic]
			h.mu.RUnlock()

			if len(clients) == 0 {
				continue
			}

			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.WithError(err).Error("failed to marshal realtime event")
				continue
			}

			for client := range clients {
				select {
				case client.send <- payload:
				default:
					// Slow consumer; drop it rather than block the hub.
					h.mu.Lock()
					close(client.send)
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.clients, event.Topic)
					}
					h.mu.Unlock()
				}
			}
		}
	}
}

// Publish never blocks the caller; when the event buffer is full the nudge
// is dropped and clients catch up on their next refetch.
func (h *Hub) Publish(topic, eventType string) {
	select {
	case h.events <- Event{Type: eventType, Topic: topic}:
	default:
		h.logger.WithField("topic", topic).Warn("realtime event buffer full, dropping nudge")
	}
}

type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	topic string
	send  chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, topic string) *Client {
	return &Client{
		hub:   hub,
		conn:  conn,
		topic: topic,
		send:  make(chan []byte, sendBuffer),
	}
}

// Serve registers the client and runs its pumps. It returns when the
// connection closes.
func (c *Client) Serve() {
	c.hub.register <- c
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Clients never send application messages; reading only surfaces
	// disconnects and pong frames.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
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
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
