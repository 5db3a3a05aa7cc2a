package socket

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSocket upgrades the request and runs the connection's pumps.
// Each inbound frame is dispatched in its own goroutine, so commands
// from one tab can be in flight concurrently.
func (ctl *Controller) HandleSocket(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "socket").Msg("ws upgrade")
		return
	}
	if ctl.cfg.ReadLimit > 0 {
		ws.SetReadLimit(ctl.cfg.ReadLimit)
	}

	conn := newConn(ws, c.Request.Host)
	ctl.addConn(conn)
	log.Info().Str("module", "socket").Str("host", conn.Host()).Msg("new socket connection")

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ctl.writePump(ctx, conn)
		cancel()
	}()
	go func() {
		ctl.readPump(ctx, conn)
		cancel()
	}()
}

func (ctl *Controller) writePump(ctx context.Context, c *Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "socket").Msg("writePump set deadline")
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "socket").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, c *Conn) {
	defer func() {
		log.Info().Str("module", "socket").Str("user", string(c.UserID())).Msg("readPump closing")
		ctl.dropConn(c)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.ws.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "socket").Str("user", string(c.UserID())).Msg("readPump read error")
				return
			}
			// Handlers already in flight survive the connection; a
			// closing tab must not abort a half-built bridge.
			go ctl.dispatch(context.WithoutCancel(ctx), c, data)
		}
	}
}
