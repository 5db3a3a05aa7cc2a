package catapult

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type PhoneNumber struct {
	ID            string `json:"id"`
	Number        string `json:"number"`
	ApplicationID string `json:"application,omitempty"`
}

type AvailableNumber struct {
	Number string `json:"number"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Price  string `json:"price,omitempty"`
}

func (c *Client) ListPhoneNumbers(ctx context.Context, applicationID string, size int) ([]PhoneNumber, error) {
	q := url.Values{}
	if applicationID != "" {
		q.Set("applicationId", applicationID)
	}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	var numbers []PhoneNumber
	if _, err := c.do(ctx, http.MethodGet, c.userPath("phoneNumbers"), q, nil, &numbers); err != nil {
		return nil, err
	}
	return numbers, nil
}

func (c *Client) CreatePhoneNumber(ctx context.Context, number, applicationID string) error {
	body := map[string]string{
		"number":        number,
		"applicationId": applicationID,
	}
	_, err := c.do(ctx, http.MethodPost, c.userPath("phoneNumbers"), nil, body, nil)
	return err
}

// SearchLocalNumbers queries numbers available for ordering in a city.
func (c *Client) SearchLocalNumbers(ctx context.Context, city, state string, quantity int) ([]AvailableNumber, error) {
	q := url.Values{}
	q.Set("city", city)
	q.Set("state", state)
	if quantity > 0 {
		q.Set("quantity", strconv.Itoa(quantity))
	}
	var numbers []AvailableNumber
	if _, err := c.do(ctx, http.MethodGet, "/v1/availableNumbers/local", q, nil, &numbers); err != nil {
		return nil, err
	}
	return numbers, nil
}
