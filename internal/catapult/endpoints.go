package catapult

import (
	"context"
	"net/http"
)

type EndpointCredentials struct {
	Realm    string `json:"realm,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

type Endpoint struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	DomainID      string              `json:"domainId"`
	ApplicationID string              `json:"applicationId,omitempty"`
	Enabled       bool                `json:"enabled"`
	SipURI        string              `json:"sipUri,omitempty"`
	Credentials   EndpointCredentials `json:"credentials,omitempty"`
}

type EndpointParams struct {
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	DomainID      string              `json:"domainId"`
	ApplicationID string              `json:"applicationId,omitempty"`
	Enabled       bool                `json:"enabled"`
	Credentials   EndpointCredentials `json:"credentials"`
}

func (c *Client) ListEndpoints(ctx context.Context, domainID string) ([]Endpoint, error) {
	var endpoints []Endpoint
	if _, err := c.do(ctx, http.MethodGet, c.userPath("domains", domainID, "endpoints"), nil, nil, &endpoints); err != nil {
		return nil, err
	}
	return endpoints, nil
}

// CreateEndpoint creates the endpoint and fetches it back so the caller
// gets the assigned sip uri and realm.
func (c *Client) CreateEndpoint(ctx context.Context, p EndpointParams) (*Endpoint, error) {
	id, err := c.create(ctx, c.userPath("domains", p.DomainID, "endpoints"), p)
	if err != nil {
		return nil, err
	}
	var ep Endpoint
	if _, err := c.do(ctx, http.MethodGet, c.userPath("domains", p.DomainID, "endpoints", id), nil, nil, &ep); err != nil {
		return nil, err
	}
	return &ep, nil
}
