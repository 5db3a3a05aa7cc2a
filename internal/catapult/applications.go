package catapult

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type Application struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	IncomingMessageURL string `json:"incomingMessageUrl,omitempty"`
	IncomingCallURL    string `json:"incomingCallUrl,omitempty"`
	AutoAnswer         bool   `json:"autoAnswer"`
}

type ApplicationParams struct {
	Name               string `json:"name"`
	IncomingMessageURL string `json:"incomingMessageUrl,omitempty"`
	IncomingCallURL    string `json:"incomingCallUrl,omitempty"`
	AutoAnswer         bool   `json:"autoAnswer"`
}

func (c *Client) ListApplications(ctx context.Context, size int) ([]Application, error) {
	q := url.Values{}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	var apps []Application
	if _, err := c.do(ctx, http.MethodGet, c.userPath("applications"), q, nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (c *Client) CreateApplication(ctx context.Context, p ApplicationParams) (string, error) {
	return c.create(ctx, c.userPath("applications"), p)
}
