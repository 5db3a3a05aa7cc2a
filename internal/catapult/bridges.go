package catapult

import (
	"context"
	"net/http"

	"github.com/sbertrand101/web-phone/internal/core"
	"github.com/sbertrand101/web-phone/internal/domain"
)

func (c *Client) CreateBridge(ctx context.Context, bridgeAudio bool, calls ...domain.CallID) (domain.BridgeID, error) {
	ids := make([]string, len(calls))
	for i, id := range calls {
		ids[i] = string(id)
	}
	body := map[string]any{
		"bridgeAudio": bridgeAudio,
		"callIds":     ids,
	}
	id, err := c.create(ctx, c.userPath("bridges"), body)
	if err != nil {
		return "", err
	}
	return domain.BridgeID(id), nil
}

// BridgeCalls lists every leg currently on the bridge.
func (c *Client) BridgeCalls(ctx context.Context, id domain.BridgeID) ([]core.CallInfo, error) {
	var wire []wireCall
	if _, err := c.do(ctx, http.MethodGet, c.userPath("bridges", string(id), "calls"), nil, nil, &wire); err != nil {
		return nil, err
	}
	infos := make([]core.CallInfo, len(wire))
	for i, w := range wire {
		infos[i] = w.info()
	}
	return infos, nil
}
