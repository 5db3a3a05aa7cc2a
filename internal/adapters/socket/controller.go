package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sbertrand101/web-phone/internal/app"
	"github.com/sbertrand101/web-phone/internal/catapult"
	"github.com/sbertrand101/web-phone/internal/config"
	"github.com/sbertrand101/web-phone/internal/core"
	"github.com/sbertrand101/web-phone/internal/domain"
)

// CommandHandler runs one command and returns the success payload or
// an error that is surfaced to the originating connection.
type CommandHandler func(ctx context.Context, cmd *Command, conn *Conn) (any, error)

// Controller owns every live Conn and the command registry.
type Controller struct {
	cfg      *config.Config
	registry *app.Registry
	clients  *catapult.Factory
	limiter  *AuthRateLimiter
	handlers map[string]CommandHandler

	mu    sync.RWMutex
	conns map[*Conn]struct{}
}

func NewController(cfg *config.Config, registry *app.Registry, clients *catapult.Factory) *Controller {
	ctl := &Controller{
		cfg:      cfg,
		registry: registry,
		clients:  clients,
		limiter:  NewAuthRateLimiter(cfg.AuthLimit, cfg.AuthWindow),
		conns:    make(map[*Conn]struct{}),
	}
	ctl.handlers = map[string]CommandHandler{
		"signIn":      ctl.handleSignIn,
		"getMessages": ctl.handleGetMessages,
		"sendMessage": ctl.handleSendMessage,
		"signOut":     ctl.handleSignOut,
	}
	return ctl
}

// dispatch parses one raw frame and runs its handler. Frames that do
// not parse are dropped: there is no correlation id to reply against.
func (ctl *Controller) dispatch(ctx context.Context, conn *Conn, data []byte) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		log.Error().Err(err).Str("module", "socket").Msg("invalid frame, dropping")
		return
	}

	handler, ok := ctl.handlers[cmd.Command]
	if !ok {
		msg := fmt.Sprintf("Command %s is not implemented", cmd.Command)
		log.Error().Str("module", "socket").Str("command", cmd.Command).Msg("unknown command")
		ctl.emitError(conn, &cmd, msg)
		return
	}

	log.Info().Str("module", "socket").Str("command", cmd.Command).
		Str("user", string(conn.UserID())).Msg("executing command")
	result, err := handler(ctx, &cmd, conn)
	if err != nil {
		ctl.emitError(conn, &cmd, err.Error())
		return
	}
	ctl.emit(conn, fmt.Sprintf("%s.success.%s", cmd.Command, cmd.CorrelationID()), result)
}

func (ctl *Controller) emitError(conn *Conn, cmd *Command, msg string) {
	ctl.emit(conn, fmt.Sprintf("%s.error.%s", cmd.Command, cmd.CorrelationID()), msg)
}

func (ctl *Controller) emit(conn *Conn, eventName string, data any) {
	b, err := json.Marshal(Event{EventName: eventName, Data: data})
	if err != nil {
		log.Error().Err(err).Str("module", "socket").Str("event", eventName).Msg("emit marshal")
		return
	}
	if err := conn.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "socket").Str("event", eventName).Msg("emit dropped")
	}
}

// Broadcast sends an event to every connection bound to the user.
func (ctl *Controller) Broadcast(userID domain.UserID, eventName string, data any) {
	ctl.mu.RLock()
	targets := make([]*Conn, 0, 4)
	for c := range ctl.conns {
		if c.UserID() == userID {
			targets = append(targets, c)
		}
	}
	ctl.mu.RUnlock()
	for _, c := range targets {
		ctl.emit(c, eventName, data)
	}
}

func (ctl *Controller) addConn(c *Conn) {
	ctl.mu.Lock()
	ctl.conns[c] = struct{}{}
	ctl.mu.Unlock()
}

// dropConn unregisters the connection and detaches it from its session
// exactly once; session teardown (and call cleanup) happens inside the
// registry when this was the last connection.
func (ctl *Controller) dropConn(c *Conn) {
	ctl.mu.Lock()
	delete(ctl.conns, c)
	ctl.mu.Unlock()
	c.Close()
	if c.clearAttached() {
		ctl.registry.Detach(c.UserID())
	}
}

// clientFor builds a vendor client from the frame's credentials.
func (ctl *Controller) clientFor(cmd *Command) (*catapult.Client, error) {
	if cmd.Auth == nil {
		return nil, domain.ErrCredentialsIncomplete
	}
	if err := cmd.Auth.Validate(); err != nil {
		return nil, err
	}
	return ctl.clients.Client(*cmd.Auth), nil
}

var _ core.SocketConn = (*Conn)(nil)
