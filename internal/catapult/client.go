// Package catapult is a minimal client for the Bandwidth/Catapult v1
// REST API, covering the surface this server consumes. One method per
// operation, everything takes a context.
package catapult

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sbertrand101/web-phone/internal/core"
	"github.com/sbertrand101/web-phone/internal/domain"
)

const DefaultAPIURL = "https://api.catapult.inetwork.com"

// APIError carries the vendor's status and message so command handlers
// can surface it to the browser as-is.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("catapult: unexpected status %d", e.StatusCode)
}

// Factory builds per-user clients from caller-supplied credentials.
type Factory struct {
	APIURL     string
	HTTPClient *http.Client
}

func (f *Factory) Client(creds domain.Credentials) *Client {
	apiURL := f.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	hc := f.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		userID: string(creds.UserID),
		token:  creds.APIToken,
		secret: creds.APISecret,
		apiURL: strings.TrimSuffix(apiURL, "/"),
		http:   hc,
	}
}

// CallControl adapts the factory to the core capability interface.
func (f *Factory) CallControl(creds domain.Credentials) core.CallControl {
	return f.Client(creds)
}

type Client struct {
	userID string
	token  string
	secret string
	apiURL string
	http   *http.Client
}

// userPath joins parts under /v1/users/{userId}.
func (c *Client) userPath(parts ...string) string {
	return path.Join(append([]string{"/v1/users", c.userID}, parts...)...)
}

func (c *Client) do(ctx context.Context, method, p string, query url.Values, body, out any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("catapult: marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	u := c.apiURL + p
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.token, c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	log.Debug().Str("module", "catapult").Str("method", method).Str("path", p).Msg("api request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return resp, decodeError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("catapult: decode response: %w", err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return resp, nil
}

// create POSTs and returns the id of the new resource from the
// Location header, which is how the v1 API reports creations.
func (c *Client) create(ctx context.Context, p string, body any) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, p, nil, body, nil)
	if err != nil {
		return "", err
	}
	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "missing Location header on create"}
	}
	return loc[strings.LastIndex(loc, "/")+1:], nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" && body.Code != "" {
			apiErr.Message = body.Code
		}
	}
	return apiErr
}
