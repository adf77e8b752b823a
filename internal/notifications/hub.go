// Package notifications pushes company-scoped domain events to websocket
// subscribers.
package notifications

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"transroute/internal/middleware"
)

const (
	broadcastBuffer = 100
	clientBuffer    = 16
	writeWait       = 10 * time.Second
)

// Message is the frame sent to subscribers.
type Message struct {
	CompanyID uint        `json:"company_id"`
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload"`
	SentAt    time.Time   `json:"sent_at"`
}

type client struct {
	conn *websocket.Conn
	send chan Message
}

// Hub tracks subscribers per company and fans events out to them.
type Hub struct {
	clients   map[uint]map[*client]bool
	broadcast chan Message
	mu        sync.Mutex
	done      chan struct{}
	upgrader  websocket.Upgrader
}

// NewHub starts the broadcasting goroutine; Close stops it.
func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{
		clients:   make(map[uint]map[*client]bool),
		broadcast: make(chan Message, broadcastBuffer),
		done:      make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
	go h.run()
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			return
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients[msg.CompanyID] {
				select {
				case c.send <- msg:
				default:
					logrus.WithFields(logrus.Fields{
						"company_id": msg.CompanyID,
						"conn_ptr":   fmt.Sprintf("%p", c.conn),
					}).Warn("Hub: subscriber too slow, dropping event")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues an event for every subscriber of the company.
func (h *Hub) Publish(companyID uint, event string, payload interface{}) {
	msg := Message{CompanyID: companyID, Event: event, Payload: payload, SentAt: time.Now().UTC()}
	select {
	case h.broadcast <- msg:
	default:
		logrus.WithField("event", event).Warn("Hub: broadcast channel full, dropping event")
	}
}

// Close stops broadcasting.
func (h *Hub) Close() {
	close(h.done)
}

func (h *Hub) register(companyID uint, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[companyID]; !ok {
		h.clients[companyID] = make(map[*client]bool)
	}
	h.clients[companyID][c] = true
	logrus.WithFields(logrus.Fields{
		"company_id": companyID,
		"conn_ptr":   fmt.Sprintf("%p", c.conn),
	}).Info("Subscriber registered")
}

func (h *Hub) unregister(companyID uint, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.clients[companyID]; ok {
		if clients[c] {
			delete(clients, c)
			close(c.send)
		}
		if len(clients) == 0 {
			delete(h.clients, companyID)
		}
	}
	logrus.WithField("company_id", companyID).Info("Subscriber unregistered")
}

// Subscribers reports how many connections a company has open.
func (h *Hub) Subscribers(companyID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[companyID])
}

// Handler upgrades the request after validating the JWT passed in the
// "token" query parameter, since browsers cannot set headers on websockets.
func (h *Hub) Handler(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication token"})
			return
		}
		claims, err := middleware.ValidateToken(secret, tokenString)
		if err != nil {
			logrus.WithError(err).Warn("Notifications: websocket authentication failed")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logrus.WithError(err).Error("Notifications: failed to upgrade websocket connection")
			return
		}
		h.serve(claims.CompanyID, conn)
	}
}

func (h *Hub) serve(companyID uint, conn *websocket.Conn) {
	cl := &client{conn: conn, send: make(chan Message, clientBuffer)}
	h.register(companyID, cl)

	go func() {
		defer conn.Close()
		for msg := range cl.send {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				logrus.WithError(err).WithField("company_id", companyID).Warn("Notifications: write failed")
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}()

	// Subscribers only listen; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).WithField("company_id", companyID).Debug("Notifications: read ended")
			}
			break
		}
	}
	h.unregister(companyID, cl)
}
