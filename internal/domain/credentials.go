// Package domain contains entities without logic, just meta-data.
package domain

import "errors"

var (
	ErrCredentialsIncomplete = errors.New("credentials are incomplete")
)

type UserID string

// Credentials identify a Catapult account. The browser sends them with
// every command; the registry keeps the first set seen per user.
type Credentials struct {
	UserID    UserID `json:"userId"`
	APIToken  string `json:"apiToken"`
	APISecret string `json:"apiSecret"`
}

func (c Credentials) Validate() error {
	if c.UserID == "" || c.APIToken == "" || c.APISecret == "" {
		return ErrCredentialsIncomplete
	}
	return nil
}
