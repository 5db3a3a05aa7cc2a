package domain

type CallID string

type BridgeID string

// CallState is the explicit per-leg state. A leg that is gone from the
// session's call table is ended; ended records are never stored.
type CallState string

const (
	CallRinging CallState = "ringing"
	CallBridged CallState = "bridged"
	CallEnded   CallState = "ended"
)

// CallRecord ties one leg to the bridge both legs share.
type CallRecord struct {
	Bridge BridgeID
	State  CallState
}

// CallEvent is the webhook body for call lifecycle callbacks.
// Tag carries the originating leg's call id on machine-created legs.
type CallEvent struct {
	EventType string `json:"eventType"`
	CallID    CallID `json:"callId"`
	From      string `json:"from"`
	To        string `json:"to"`
	Tag       string `json:"tag,omitempty"`
}
