package catapult

import (
	"context"
	"net/http"
)

// Domain is a SIP registration realm; endpoints live inside one.
type Domain struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (c *Client) ListDomains(ctx context.Context) ([]Domain, error) {
	var domains []Domain
	if _, err := c.do(ctx, http.MethodGet, c.userPath("domains"), nil, nil, &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

func (c *Client) CreateDomain(ctx context.Context, name string) (string, error) {
	return c.create(ctx, c.userPath("domains"), map[string]string{"name": name})
}
