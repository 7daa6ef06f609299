package feed

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mroshb/kudos/pkg/logger"
	"github.com/mroshb/kudos/pkg/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Clients only listen; anything they send is read and discarded.
	maxMessageSize = 512
)

// Server upgrades admitted HTTP connections to websocket feed clients.
type Server struct {
	hub            *Hub
	verifier       Verifier
	clientBuffer   int
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

func NewServer(hub *Hub, verifier Verifier, clientBuffer int, allowedOrigins []string) *Server {
	if clientBuffer < 1 {
		clientBuffer = 1
	}
	s := &Server{
		hub:            hub,
		verifier:       verifier,
		clientBuffer:   clientBuffer,
		allowedOrigins: allowedOrigins,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	admission := Admit(r, s.verifier)
	if admission.Kind == Rejected {
		logger.Warn("Feed connection rejected", "remote", r.RemoteAddr, "reason", admission.Reason)
		response.JSON(w, http.StatusUnauthorized, response.ErrorBody{
			Message: http.StatusText(http.StatusUnauthorized),
			Error:   admission.Reason,
		})
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.Debug("Feed upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, s.clientBuffer),
		userID: admission.UserID,
	}
	if !s.hub.Join(c) {
		_ = conn.Close()
		return
	}
	logger.Debug("Feed client connected", "admission", admission.Kind.String(), "user_id", c.userID)

	go c.writePump()
	go c.readPump()
}

// client is one websocket connection in the room. userID is uuid.Nil for
// anonymous clients.
type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uuid.UUID

	closeOnce sync.Once
}

func (c *client) Deliver(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Close is called by the hub only, so send is never written after close.
func (c *client) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

func (c *client) readPump() {
	defer func() {
		c.hub.Leave(c)
		_ = c.conn.Close()
		logger.Debug("Feed client disconnected", "user_id", c.userID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
