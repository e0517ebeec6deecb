package server

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/arrakis/arrakis-server-go/internal/game"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Message is the JSON frame exchanged with WebSocket clients.
type Message struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Frame types.
const (
	MessageSubscribe   = "subscribe"
	MessageUnsubscribe = "unsubscribe"
	MessageView        = "match_view"
	MessageError       = "error"
)

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	matchID string
}

type delivery struct {
	matchID string
	payload []byte
}

type subscription struct {
	client  *client
	matchID string
}

// Hub fans match notifications out to subscribed WebSocket clients.
type Hub struct {
	mgr          *game.Manager
	logger       *zap.Logger
	upgrader     websocket.Upgrader
	pingInterval time.Duration

	clients    map[*client]bool
	broadcast  chan delivery
	register   chan *client
	unregister chan *client
	subscribe  chan subscription
}

// NewHub creates a hub. An empty origins list accepts any origin.
func NewHub(mgr *game.Manager, origins []string, pingInterval time.Duration, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Hub{
		mgr:    mgr,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return len(origins) == 0 || slices.Contains(origins, r.Header.Get("Origin"))
			},
		},
		pingInterval: pingInterval,
		clients:      make(map[*client]bool),
		broadcast:    make(chan delivery, sendBuffer),
		register:     make(chan *client),
		unregister:   make(chan *client),
		subscribe:    make(chan subscription),
	}
}

// Run owns the client set until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return nil

		case c := <-h.register:
			h.clients[c] = true
			h.logger.Debug("websocket client registered", zap.String("remote", c.conn.RemoteAddr().String()))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.logger.Debug("websocket client unregistered", zap.String("match_id", c.matchID))
			}

		case sub := <-h.subscribe:
			if _, ok := h.clients[sub.client]; ok {
				sub.client.matchID = sub.matchID
			}

		case d := <-h.broadcast:
			for c := range h.clients {
				if c.matchID != d.matchID {
					continue
				}
				select {
				case c.send <- d.payload:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

// Notify is installed as the manager's notification handler. It never blocks:
// when the broadcast buffer is full the notification is dropped.
func (h *Hub) Notify(n game.Notification) {
	payload, err := json.Marshal(Message{Type: n.Type, MatchID: n.MatchID, Data: n.Data})
	if err != nil {
		h.logger.Warn("failed to encode notification", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- delivery{matchID: n.MatchID, payload: payload}:
	default:
		h.logger.Warn("notification dropped", zap.String("match_id", n.MatchID), zap.String("type", n.Type))
	}
}

// ServeWS upgrades the request. A match query parameter subscribes at once.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register <- c

	go h.writePump(c)
	if id := r.URL.Query().Get("match"); id != "" {
		h.handleMessage(c, Message{Type: MessageSubscribe, MatchID: id})
	}
	go h.readPump(c)
}

func (h *Hub) handleMessage(c *client, msg Message) {
	switch msg.Type {
	case MessageSubscribe:
		view, err := h.mgr.View(msg.MatchID)
		if err != nil {
			h.reply(c, Message{Type: MessageError, MatchID: msg.MatchID, Data: err.Error()})
			return
		}
		h.subscribe <- subscription{client: c, matchID: msg.MatchID}
		snapshot, err := viewToMap(view)
		if err != nil {
			h.reply(c, Message{Type: MessageError, MatchID: msg.MatchID, Data: err.Error()})
			return
		}
		h.reply(c, Message{Type: MessageView, MatchID: msg.MatchID, Data: snapshot})

	case MessageUnsubscribe:
		h.subscribe <- subscription{client: c}

	default:
		h.reply(c, Message{Type: MessageError, Data: "unknown message type " + msg.Type})
	}
}

func (h *Hub) reply(c *client, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	defer func() {
		// send may already be closed by the hub
		_ = recover()
	}()
	select {
	case c.send <- payload:
	default:
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.reply(c, Message{Type: MessageError, Data: "malformed message"})
			continue
		}
		h.handleMessage(c, msg)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
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

// NewWebSocketServer serves the hub on /ws and a liveness check on /healthz.
func NewWebSocketServer(addr string, h *Hub) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}
