// Package ws provides WebSocket support using gorilla/websocket.
//
// Clients subscribe to a topic at upgrade time and receive everything
// published to it. Order tracking uses one topic per order:
//
//	// In your route file:
//	router.Get("/ws/orders/{id}", "orders.track", ctx.Wrap(func(c *ctx.Context) {
//	    ws.Upgrade(c.W, c.R, hub, "orders."+c.Param("id"))
//	}))
//
//	// Define a hub and start it:
//	var hub = ws.NewHub()
//	func init() { go hub.Run() }
//
//	// Publish from anywhere:
//	hub.Publish("orders.42", payload)
package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shashiranjanraj/dabba/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512 KB
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins by default — restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the default (allow-all) origin checker.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// ─── Client ───────────────────────────────────────────────────────────────────

// Client represents a single connected WebSocket client.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	topic string
	send  chan []byte
}

// readPump pumps messages from the WebSocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: unexpected close", "error", err)
			}
			break
		}
		c.hub.Inbound <- Message{Client: c, Data: msg}
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// Send queues a message to be sent to this specific client.
func (c *Client) Send(data []byte) {
	select {
	case c.send <- data:
	default:
		// Buffer full — drop message.
	}
}

// Topic returns the topic this client subscribed to.
func (c *Client) Topic() string { return c.topic }

// ─── Hub ──────────────────────────────────────────────────────────────────────

// Message is an inbound message received from a client.
type Message struct {
	Client *Client
	Data   []byte
}

type outbound struct {
	topic string // empty = all clients
	data  []byte
}

// Hub maintains all active WebSocket connections, keyed by topic. In-process
// consumers (the SSE fallback) can also tap a topic through Subscribe.
type Hub struct {
	topics      map[string]map[*Client]bool
	subs        map[string]map[*Subscription]bool
	publish     chan outbound
	Inbound     chan Message // messages received from clients
	register    chan *Client
	unregister  chan *Client
	subscribe   chan *Subscription
	unsubscribe chan *Subscription
	// OnMessage is called for every inbound message (optional).
	OnMessage func(hub *Hub, msg Message)
}

// NewHub creates a new Hub. Call hub.Run() in a goroutine at startup.
func NewHub() *Hub {
	return &Hub{
		topics:      make(map[string]map[*Client]bool),
		subs:        make(map[string]map[*Subscription]bool),
		publish:     make(chan outbound, 256),
		Inbound:     make(chan Message, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan *Subscription),
		unsubscribe: make(chan *Subscription),
	}
}

// Subscription is an in-process tap on a topic. Messages published to the
// topic arrive on C. The channel is closed by Unsubscribe.
type Subscription struct {
	topic string
	C     chan []byte
}

// Subscribe registers an in-process consumer for topic.
func (h *Hub) Subscribe(topic string) *Subscription {
	sub := &Subscription{topic: topic, C: make(chan []byte, 16)}
	h.subscribe <- sub
	return sub
}

// Unsubscribe removes the subscription and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.unsubscribe <- sub
}

// Publish sends data to every client subscribed to topic.
func (h *Hub) Publish(topic string, data []byte) {
	select {
	case h.publish <- outbound{topic: topic, data: data}:
	default:
		logger.Warn("ws: publish buffer full, message dropped", "topic", topic)
	}
}

// Broadcast sends data to every connected client regardless of topic.
func (h *Hub) Broadcast(data []byte) {
	select {
	case h.publish <- outbound{data: data}:
	default:
		logger.Warn("ws: publish buffer full, broadcast dropped")
	}
}

// Run starts the hub event loop. Must be run in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.topics[client.topic] == nil {
				h.topics[client.topic] = make(map[*Client]bool)
			}
			h.topics[client.topic][client] = true
			logger.Info("ws: client connected", "topic", client.topic)

		case client := <-h.unregister:
			if subs, ok := h.topics[client.topic]; ok && subs[client] {
				delete(subs, client)
				close(client.send)
				if len(subs) == 0 {
					delete(h.topics, client.topic)
				}
				logger.Info("ws: client disconnected", "topic", client.topic)
			}

		case sub := <-h.subscribe:
			if h.subs[sub.topic] == nil {
				h.subs[sub.topic] = make(map[*Subscription]bool)
			}
			h.subs[sub.topic][sub] = true

		case sub := <-h.unsubscribe:
			if set, ok := h.subs[sub.topic]; ok && set[sub] {
				delete(set, sub)
				close(sub.C)
				if len(set) == 0 {
					delete(h.subs, sub.topic)
				}
			}

		case msg := <-h.publish:
			if msg.topic != "" {
				h.deliver(h.topics[msg.topic], msg.topic, msg.data)
				h.deliverSubs(msg.topic, msg.data)
				continue
			}
			for topic, subs := range h.topics {
				h.deliver(subs, topic, msg.data)
			}
			for topic := range h.subs {
				h.deliverSubs(topic, msg.data)
			}

		case msg := <-h.Inbound:
			if h.OnMessage != nil {
				h.OnMessage(h, msg)
			}
		}
	}
}

func (h *Hub) deliver(subs map[*Client]bool, topic string, data []byte) {
	for client := range subs {
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.topics, topic)
			}
		}
	}
}

func (h *Hub) deliverSubs(topic string, data []byte) {
	for sub := range h.subs[topic] {
		select {
		case sub.C <- data:
		default:
			// Slow consumer — drop message.
		}
	}
}

// ClientCount returns the number of clients subscribed to topic.
func (h *Hub) ClientCount(topic string) int { return len(h.topics[topic]) }

// ─── Upgrade ─────────────────────────────────────────────────────────────────

// Upgrade upgrades an HTTP connection to a WebSocket and subscribes the
// resulting client to topic on the given hub.
func Upgrade(w http.ResponseWriter, r *http.Request, hub *Hub, topic string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("ws: upgrade failed", "error", err)
		return
	}
	client := &Client{hub: hub, conn: conn, topic: topic, send: make(chan []byte, 256)}
	hub.register <- client
	go client.writePump()
	go client.readPump()
}
