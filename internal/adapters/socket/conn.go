// Package socket is the browser-facing websocket adapter: one Conn per
// tab, a command dispatcher and the command handlers.
package socket

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/sbertrand101/web-phone/internal/core"
	"github.com/sbertrand101/web-phone/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Conn wraps one websocket with a buffered outbound queue. The user id
// is bound on the first successful sign-in and never changes after.
type Conn struct {
	ws   *websocket.Conn
	send chan core.Frame
	host string

	mu       sync.RWMutex
	closed   bool
	userID   domain.UserID
	attached bool
}

func newConn(ws *websocket.Conn, host string) *Conn {
	return &Conn{
		ws:   ws,
		send: make(chan core.Frame, 32),
		host: host,
	}
}

func (c *Conn) TrySend(f core.Frame) error {
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

func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	if c.ws != nil {
		_ = c.ws.Close()
	}
	c.mu.Unlock()
}

// Host is the HTTP host the socket was opened against; callback URLs
// for provisioning are built from it.
func (c *Conn) Host() string {
	return c.host
}

func (c *Conn) UserID() domain.UserID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// markAttached binds the user id and claims the registry attach for
// this connection. Returns false when the connection already attached,
// so a repeated sign-in never double-increments the session count.
func (c *Conn) markAttached(userID domain.UserID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID == "" {
		c.userID = userID
	}
	if c.attached {
		return false
	}
	c.attached = true
	return true
}

// clearAttached releases the attach claim; returns false when there
// was nothing to release (never signed in, or already signed out).
func (c *Conn) clearAttached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.attached {
		return false
	}
	c.attached = false
	return true
}
