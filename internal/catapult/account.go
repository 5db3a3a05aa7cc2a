package catapult

import (
	"context"
	"encoding/json"
	"net/http"
)

// Account holds the account overview. Balance comes over the wire as a
// decimal string.
type Account struct {
	Balance     json.Number `json:"balance"`
	AccountType string      `json:"accountType,omitempty"`
}

func (c *Client) GetAccount(ctx context.Context) (*Account, error) {
	var acct Account
	if _, err := c.do(ctx, http.MethodGet, c.userPath("account"), nil, nil, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}
