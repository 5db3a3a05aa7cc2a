package core

import (
	"context"

	"github.com/sbertrand101/web-phone/internal/domain"
)

// Frame is a marshaled outbound socket payload.
type Frame []byte

// SocketConn abstracts one browser socket connection.
// Owned by the adapter; the adapter must Close() it.
type SocketConn interface {
	TrySend(Frame) error
	Close()
}

// CallInfo is the backend's view of one call leg.
type CallInfo struct {
	ID    domain.CallID
	State string
	From  string
	To    string
}

// CallParams creates an outbound leg, optionally joined to a bridge.
type CallParams struct {
	From   string
	To     string
	Bridge domain.BridgeID
	Tag    string
}

// CallControl is the slice of the vendor API the signaling machine and
// session teardown consume. *catapult.Client satisfies it.
type CallControl interface {
	GetCall(ctx context.Context, id domain.CallID) (*CallInfo, error)
	CreateCall(ctx context.Context, p CallParams) (domain.CallID, error)
	AnswerCall(ctx context.Context, id domain.CallID) error
	PlayAudio(ctx context.Context, id domain.CallID, fileURL string, loop bool) error
	HangupCall(ctx context.Context, id domain.CallID) error
	CreateBridge(ctx context.Context, bridgeAudio bool, calls ...domain.CallID) (domain.BridgeID, error)
	BridgeCalls(ctx context.Context, id domain.BridgeID) ([]CallInfo, error)
}

// ClientFactory builds a call-control handle from stored credentials.
type ClientFactory func(domain.Credentials) CallControl
