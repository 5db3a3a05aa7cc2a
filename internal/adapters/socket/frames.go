package socket

import (
	"encoding/json"
	"strings"

	"github.com/sbertrand101/web-phone/internal/domain"
)

// Command is an inbound frame. Auth rides along on every command; the
// correlation id is opaque and echoed back inside the reply topic.
type Command struct {
	Command string              `json:"command"`
	ID      json.RawMessage     `json:"id"`
	Data    json.RawMessage     `json:"data"`
	Auth    *domain.Credentials `json:"auth,omitempty"`
}

// CorrelationID renders the opaque id as the token used in reply
// topics: string ids lose their quotes, everything else is verbatim.
func (c *Command) CorrelationID() string {
	return strings.Trim(string(c.ID), `"`)
}

// Event is an outbound frame.
type Event struct {
	EventName string `json:"eventName"`
	Data      any    `json:"data"`
}
