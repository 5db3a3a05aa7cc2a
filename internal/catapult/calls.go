package catapult

import (
	"context"
	"net/http"

	"github.com/sbertrand101/web-phone/internal/core"
	"github.com/sbertrand101/web-phone/internal/domain"
)

type wireCall struct {
	ID    string `json:"id"`
	State string `json:"state"`
	From  string `json:"from"`
	To    string `json:"to"`
}

func (w wireCall) info() core.CallInfo {
	return core.CallInfo{
		ID:    domain.CallID(w.ID),
		State: w.State,
		From:  w.From,
		To:    w.To,
	}
}

func (c *Client) GetCall(ctx context.Context, id domain.CallID) (*core.CallInfo, error) {
	var w wireCall
	if _, err := c.do(ctx, http.MethodGet, c.userPath("calls", string(id)), nil, nil, &w); err != nil {
		return nil, err
	}
	info := w.info()
	return &info, nil
}

func (c *Client) CreateCall(ctx context.Context, p core.CallParams) (domain.CallID, error) {
	body := map[string]any{
		"from": p.From,
		"to":   p.To,
	}
	if p.Bridge != "" {
		body["bridgeId"] = string(p.Bridge)
	}
	if p.Tag != "" {
		body["tag"] = p.Tag
	}
	id, err := c.create(ctx, c.userPath("calls"), body)
	if err != nil {
		return "", err
	}
	return domain.CallID(id), nil
}

// AnswerCall transitions an incoming call to active.
func (c *Client) AnswerCall(ctx context.Context, id domain.CallID) error {
	return c.setCallState(ctx, id, "active")
}

func (c *Client) HangupCall(ctx context.Context, id domain.CallID) error {
	return c.setCallState(ctx, id, "completed")
}

func (c *Client) setCallState(ctx context.Context, id domain.CallID, state string) error {
	_, err := c.do(ctx, http.MethodPost, c.userPath("calls", string(id)), nil, map[string]string{"state": state}, nil)
	return err
}

func (c *Client) PlayAudio(ctx context.Context, id domain.CallID, fileURL string, loop bool) error {
	body := map[string]any{
		"fileUrl":     fileURL,
		"loopEnabled": loop,
	}
	_, err := c.do(ctx, http.MethodPost, c.userPath("calls", string(id), "audio"), nil, body, nil)
	return err
}
