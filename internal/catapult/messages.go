package catapult

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Message struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Text      string    `json:"text,omitempty"`
	Media     []string  `json:"media,omitempty"`
	Direction string    `json:"direction,omitempty"`
	State     string    `json:"state,omitempty"`
	Time      time.Time `json:"time"`
}

type MessageParams struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Text  string   `json:"text,omitempty"`
	Media []string `json:"media,omitempty"`
}

type ListMessagesOptions struct {
	From      string
	To        string
	Direction string
	Size      int
}

// CreateMessage submits the message and fetches it back so the browser
// receives the backend's record (id, state, timestamp).
func (c *Client) CreateMessage(ctx context.Context, p MessageParams) (*Message, error) {
	id, err := c.create(ctx, c.userPath("messages"), p)
	if err != nil {
		return nil, err
	}
	var msg Message
	if _, err := c.do(ctx, http.MethodGet, c.userPath("messages", id), nil, nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) ListMessages(ctx context.Context, opts ListMessagesOptions) ([]Message, error) {
	q := url.Values{}
	if opts.From != "" {
		q.Set("from", opts.From)
	}
	if opts.To != "" {
		q.Set("to", opts.To)
	}
	if opts.Direction != "" {
		q.Set("direction", opts.Direction)
	}
	if opts.Size > 0 {
		q.Set("size", strconv.Itoa(opts.Size))
	}
	var msgs []Message
	if _, err := c.do(ctx, http.MethodGet, c.userPath("messages"), q, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
