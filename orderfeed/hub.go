package orderfeed

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"recipebook/models"
	"recipebook/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Event is what subscribers receive for each placed order. Address and
// phone number stay out of the feed.
type Event struct {
	Event     string    `json:"event"`
	OrderID   string    `json:"orderId"`
	Items     int       `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
}

type Client struct {
	Conn     *websocket.Conn
	Send     chan []byte
	Username string
}

// Hub fans placed orders out to connected websocket clients. The client
// set is only touched by the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	quit       chan struct{}
	done       chan struct{}
	logger     *zap.Logger
	upgrader   websocket.Upgrader
}

func NewHub(logger *zap.Logger, checkOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger,
		upgrader:   websocket.Upgrader{CheckOrigin: checkOrigin},
	}
}

func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true

		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.Send)
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.Send <- msg:
				default:
					// slow consumer
					close(c.Send)
					delete(h.clients, c)
				}
			}

		case <-h.quit:
			for c := range h.clients {
				close(c.Send)
				delete(h.clients, c)
			}
			return
		}
	}
}

// Stop ends Run and closes every client. It waits for Run to return.
func (h *Hub) Stop() {
	close(h.quit)
	<-h.done
}

// Publish queues an order.placed event. It never blocks the caller; when
// the queue is full or the hub has stopped the event is dropped.
func (h *Hub) Publish(order *models.Order) {
	data, err := json.Marshal(Event{
		Event:     "order.placed",
		OrderID:   order.OrderID,
		Items:     len(order.Items),
		CreatedAt: order.CreatedAt,
	})
	if err != nil {
		h.logger.Error("marshal order event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.quit:
	default:
		h.logger.Warn("order feed full, event dropped", zap.String("orderId", order.OrderID))
	}
}

func (h *Hub) subscribe(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.quit:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// ServeWS handles GET /orders/live. It expects the auth middleware to
// have rejected anonymous requests already.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity := utils.IdentityFromRequest(r)
	if identity == nil {
		http.Error(w, "You must be logged in.", http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{Conn: conn, Send: make(chan []byte, 16), Username: identity.Username}
	if !h.subscribe(client) {
		_ = conn.Close()
		return
	}

	go h.writePump(client)
	go h.readPump(client)
}

func (h *Hub) writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the peer going away; the feed is one-way.
func (h *Hub) readPump(c *Client) {
	defer func() {
		h.leave(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

// AllowOrigins builds an upgrader origin check from the CORS origin
// list. "*" allows any origin; requests without an Origin header pass.
func AllowOrigins(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
