package app

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sbertrand101/web-phone/internal/core"
	"github.com/sbertrand101/web-phone/internal/domain"
)

const (
	eventIncomingCall = "incomingcall"
	eventHangup       = "hangup"
)

// Signaling drives bridge setup and teardown between a PSTN leg and
// the browser's SIP leg. All vendor failures are logged and contained;
// nothing here has a synchronous caller waiting on it.
type Signaling struct {
	Clients      core.ClientFactory
	Registry     *Registry
	RingAudioURL string
}

func NewSignaling(clients core.ClientFactory, registry *Registry, ringAudioURL string) *Signaling {
	return &Signaling{Clients: clients, Registry: registry, RingAudioURL: ringAudioURL}
}

// HandleEvent processes one call webhook for the user. Unknown event
// types are ignored; the backend delivers more than we care about.
func (s *Signaling) HandleEvent(ctx context.Context, userID domain.UserID, ev *domain.CallEvent) {
	switch ev.EventType {
	case eventIncomingCall:
		s.handleIncoming(ctx, userID, ev)
	case eventHangup:
		s.handleHangup(ctx, userID, ev)
	default:
		log.Debug().Str("module", "app.signaling").Str("event", ev.EventType).Msg("ignoring call event")
	}
}

func (s *Signaling) handleIncoming(ctx context.Context, userID domain.UserID, ev *domain.CallEvent) {
	// A tag means this is our own second leg ringing back at us.
	if ev.Tag != "" {
		log.Info().Str("module", "app.signaling").Str("call", string(ev.CallID)).
			Str("tag", ev.Tag).Msg("second leg event, nothing to do")
		return
	}

	creds, ok := s.Registry.Credentials(userID)
	if !ok {
		log.Warn().Str("module", "app.signaling").Str("user", string(userID)).Msg("call event for unknown session")
		return
	}
	prov, ok := s.Registry.Provision(userID)
	if !ok {
		log.Warn().Str("module", "app.signaling").Str("user", string(userID)).Msg("call event before provisioning")
		return
	}

	// Direction: a from-address inside the session's signaling domain
	// is the browser softphone dialing out; anything else is PSTN in.
	var from, to string
	if m := sipChatPattern(prov.Domain).FindStringSubmatch(ev.From); m != nil {
		from = "+" + m[1]
		to = ev.To
	} else {
		from = ev.To
		to = "sip:chat-" + digits(ev.To) + "@" + prov.Domain
	}

	cc := s.Clients(creds)
	if err := cc.AnswerCall(ctx, ev.CallID); err != nil {
		log.Error().Err(err).Str("module", "app.signaling").Str("call", string(ev.CallID)).Msg("answer failed")
		return
	}
	if err := cc.PlayAudio(ctx, ev.CallID, s.RingAudioURL, true); err != nil {
		log.Error().Err(err).Str("module", "app.signaling").Str("call", string(ev.CallID)).Msg("ring audio failed")
	}

	bridgeID, err := cc.CreateBridge(ctx, true, ev.CallID)
	if err != nil {
		log.Error().Err(err).Str("module", "app.signaling").Str("call", string(ev.CallID)).Msg("bridge create failed")
		return
	}
	s.Registry.RecordCall(userID, ev.CallID, bridgeID, domain.CallRinging)

	secondID, err := cc.CreateCall(ctx, core.CallParams{
		From:   from,
		To:     to,
		Bridge: bridgeID,
		Tag:    string(ev.CallID),
	})
	if err != nil {
		log.Error().Err(err).Str("module", "app.signaling").Str("bridge", string(bridgeID)).Msg("second leg create failed")
		return
	}
	s.Registry.RecordCall(userID, ev.CallID, bridgeID, domain.CallBridged)
	s.Registry.RecordCall(userID, secondID, bridgeID, domain.CallBridged)
	log.Info().Str("module", "app.signaling").Str("user", string(userID)).
		Str("call", string(ev.CallID)).Str("second", string(secondID)).
		Str("bridge", string(bridgeID)).Msg("bridged call legs")
}

func (s *Signaling) handleHangup(ctx context.Context, userID domain.UserID, ev *domain.CallEvent) {
	rec, ok := s.Registry.Call(userID, ev.CallID)
	if !ok {
		// Already torn down, or a leg we never bridged.
		log.Debug().Str("module", "app.signaling").Str("call", string(ev.CallID)).Msg("hangup for untracked call")
		return
	}
	creds, ok := s.Registry.Credentials(userID)
	if !ok {
		return
	}
	cc := s.Clients(creds)

	s.Registry.ClearCall(userID, ev.CallID)
	legs, err := cc.BridgeCalls(ctx, rec.Bridge)
	if err != nil {
		log.Error().Err(err).Str("module", "app.signaling").Str("bridge", string(rec.Bridge)).Msg("bridge calls lookup failed")
		return
	}
	for _, leg := range legs {
		s.Registry.ClearCall(userID, leg.ID)
		if leg.ID == ev.CallID || leg.State != "active" {
			continue
		}
		if err := cc.HangupCall(ctx, leg.ID); err != nil {
			log.Error().Err(err).Str("module", "app.signaling").Str("call", string(leg.ID)).Msg("cascade hangup failed")
		}
	}
	log.Info().Str("module", "app.signaling").Str("user", string(userID)).
		Str("call", string(ev.CallID)).Str("bridge", string(rec.Bridge)).Msg("call torn down")
}

// Cleanup hangs up every call the session still had when its last
// connection went away. Wired as the registry's teardown hook; one
// failed hangup never blocks the others.
func (s *Signaling) Cleanup(td Teardown) {
	if len(td.Calls) == 0 {
		return
	}
	ctx := context.Background()
	cc := s.Clients(td.Credentials)
	for _, id := range td.Calls {
		if err := cc.HangupCall(ctx, id); err != nil {
			log.Error().Err(err).Str("module", "app.signaling").Str("user", string(td.UserID)).
				Str("call", string(id)).Msg("teardown hangup failed")
		}
	}
	log.Info().Str("module", "app.signaling").Str("user", string(td.UserID)).
		Int("calls", len(td.Calls)).Msg("session calls cleaned up")
}

func sipChatPattern(domainName string) *regexp.Regexp {
	return regexp.MustCompile(`^sip:chat-(\d+)@` + regexp.QuoteMeta(domainName))
}

func digits(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
