// Package socket is the websocket adapter: it upgrades gated connections,
// runs the read/write pumps, and dispatches envelope events to the presence
// and broadcast handlers.
package socket

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/avelis/huddle/internal/config"
	"github.com/avelis/huddle/internal/domain"
	"github.com/avelis/huddle/internal/presence"
)

// IdentityKey is the gin context key under which the gate middleware stores
// the verified domain.OnlineUser.
const IdentityKey = "identity"

var ErrBackpressure = errors.New("backpressure")

// Controller owns the presence registry and the hub; all mutation of either
// happens in its handlers.
type Controller struct {
	cfg      *config.Config
	hub      *Hub
	presence *presence.Registry
	limiter  *JoinRateLimiter
}

func NewController(cfg *config.Config, hub *Hub, reg *presence.Registry, limiter *JoinRateLimiter) *Controller {
	return &Controller{
		cfg:      cfg,
		hub:      hub,
		presence: reg,
		limiter:  limiter,
	}
}

type wsConn struct {
	conn *websocket.Conn
	send chan Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSocket upgrades a gated request and runs the connection until the
// client goes away. The gate middleware has already attached the identity.
func (ctl *Controller) HandleSocket(c *gin.Context) {
	v, ok := c.Get(IdentityKey)
	user, isUser := v.(domain.OnlineUser)
	if !ok || !isUser {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "socket").Msg("ws upgrade")
		return
	}

	wc := &wsConn{
		conn: ws,
		send: make(chan Frame, ctl.cfg.SendBuffer),
	}
	s := &session{
		ID:   SessionID(uuid.NewString()),
		User: user,
		conn: wc,
	}
	log.Info().Str("module", "socket").Str("sid", string(s.ID)).Str("user", string(user.ID)).Msg("connected")

	go ctl.writePump(s, wc)
	go ctl.readPump(s, wc)
}
