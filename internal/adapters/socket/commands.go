package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sbertrand101/web-phone/internal/catapult"
	"github.com/sbertrand101/web-phone/internal/domain"
)

const historyPageSize = 1000

var (
	errNoBalance         = errors.New("You have no enough amount of money on your account")
	errTooManyAttempts   = errors.New("too many sign in attempts, try again later")
	errNumberUnavailable = errors.New("no phone number available to reserve")
)

// handleSignIn checks the account, provisions application, number and
// SIP endpoint, and attaches the connection to the user's session.
// A user with a live session gets the stored provisioning result back
// without any vendor calls.
func (ctl *Controller) handleSignIn(ctx context.Context, cmd *Command, conn *Conn) (any, error) {
	var creds domain.Credentials
	if err := json.Unmarshal(cmd.Data, &creds); err != nil {
		return nil, fmt.Errorf("invalid sign in payload: %w", err)
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if !ctl.limiter.Allow(creds.UserID) {
		return nil, errTooManyAttempts
	}

	if prov, ok := ctl.registry.Provision(creds.UserID); ok {
		if conn.markAttached(creds.UserID) {
			ctl.registry.Attach(creds.UserID, creds)
		}
		log.Info().Str("module", "socket").Str("user", string(creds.UserID)).Msg("sign in, session reused")
		return prov, nil
	}

	client := ctl.clients.Client(creds)

	acct, err := client.GetAccount(ctx)
	if err != nil {
		return nil, err
	}
	if balance, _ := acct.Balance.Float64(); balance <= 0 {
		return nil, errNoBalance
	}

	appID, err := ctl.ensureApplication(ctx, client, conn.Host(), creds.UserID)
	if err != nil {
		return nil, err
	}
	number, err := ctl.ensurePhoneNumber(ctx, client, appID)
	if err != nil {
		return nil, err
	}
	endpoint, password, err := ctl.provisionEndpoint(ctx, client, appID, number)
	if err != nil {
		return nil, err
	}

	realm := endpoint.Credentials.Realm
	if realm == "" {
		if at := strings.LastIndex(endpoint.SipURI, "@"); at >= 0 {
			realm = endpoint.SipURI[at+1:]
		}
	}
	prov := &domain.Provision{
		PhoneNumber: number,
		Domain:      realm,
		Endpoint: domain.SIPEndpoint{
			URI:      endpoint.SipURI,
			Password: password,
			Realm:    realm,
		},
	}

	if conn.markAttached(creds.UserID) {
		ctl.registry.Attach(creds.UserID, creds)
	}
	ctl.registry.SetProvision(creds.UserID, prov)
	log.Info().Str("module", "socket").Str("user", string(creds.UserID)).
		Str("number", number).Str("sip", endpoint.SipURI).Msg("signed in")
	return prov, nil
}

// ensureApplication finds or creates the Catapult application that
// points callbacks at this host.
func (ctl *Controller) ensureApplication(ctx context.Context, client *catapult.Client, host string, userID domain.UserID) (string, error) {
	name := "web-phone on " + host
	apps, err := client.ListApplications(ctx, historyPageSize)
	if err != nil {
		return "", err
	}
	for _, a := range apps {
		if a.Name == name {
			return a.ID, nil
		}
	}
	log.Info().Str("module", "socket").Str("name", name).Msg("creating application")
	return client.CreateApplication(ctx, catapult.ApplicationParams{
		Name:               name,
		IncomingMessageURL: fmt.Sprintf("http://%s/%s/message/callback", host, userID),
		IncomingCallURL:    fmt.Sprintf("http://%s/%s/call/callback", host, userID),
		AutoAnswer:         false,
	})
}

// ensurePhoneNumber returns the number bound to the application,
// reserving one when the account has none yet.
func (ctl *Controller) ensurePhoneNumber(ctx context.Context, client *catapult.Client, appID string) (string, error) {
	numbers, err := client.ListPhoneNumbers(ctx, appID, 1)
	if err != nil {
		return "", err
	}
	if len(numbers) > 0 {
		return numbers[0].Number, nil
	}

	log.Info().Str("module", "socket").Msg("reserving new phone number")
	available, err := client.SearchLocalNumbers(ctx, "Cary", "NC", 1)
	if err != nil {
		return "", err
	}
	if len(available) == 0 {
		return "", errNumberUnavailable
	}
	if err := client.CreatePhoneNumber(ctx, available[0].Number, appID); err != nil {
		return "", err
	}
	return available[0].Number, nil
}

// provisionEndpoint creates a fresh SIP domain for this session and an
// endpoint named after the number's digits inside it. The domain is
// session-scoped so concurrent sign-ins never share routing state.
func (ctl *Controller) provisionEndpoint(ctx context.Context, client *catapult.Client, appID, number string) (*catapult.Endpoint, string, error) {
	domainName := "wp" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	domainID, err := client.CreateDomain(ctx, domainName)
	if err != nil {
		return nil, "", err
	}
	password := uuid.NewString()
	endpoint, err := client.CreateEndpoint(ctx, catapult.EndpointParams{
		Name:          "chat-" + digitsOf(number),
		Description:   "web-phone softphone endpoint",
		DomainID:      domainID,
		ApplicationID: appID,
		Enabled:       true,
		Credentials:   catapult.EndpointCredentials{Password: password},
	})
	if err != nil {
		return nil, "", err
	}
	return endpoint, password, nil
}

// handleGetMessages merges the outbound and inbound history, sorted
// ascending by timestamp.
func (ctl *Controller) handleGetMessages(ctx context.Context, cmd *Command, conn *Conn) (any, error) {
	client, err := ctl.clientFor(cmd)
	if err != nil {
		return nil, err
	}
	var p struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := json.Unmarshal(cmd.Data, &p); err != nil {
		return nil, fmt.Errorf("invalid getMessages payload: %w", err)
	}

	out, err := client.ListMessages(ctx, catapult.ListMessagesOptions{From: p.PhoneNumber, Direction: "out", Size: historyPageSize})
	if err != nil {
		return nil, err
	}
	in, err := client.ListMessages(ctx, catapult.ListMessagesOptions{To: p.PhoneNumber, Direction: "in", Size: historyPageSize})
	if err != nil {
		return nil, err
	}

	merged := make([]catapult.Message, 0, len(out)+len(in))
	merged = append(merged, out...)
	merged = append(merged, in...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Time.Before(merged[j].Time)
	})
	return merged, nil
}

func (ctl *Controller) handleSendMessage(ctx context.Context, cmd *Command, conn *Conn) (any, error) {
	client, err := ctl.clientFor(cmd)
	if err != nil {
		return nil, err
	}
	var p catapult.MessageParams
	if err := json.Unmarshal(cmd.Data, &p); err != nil {
		return nil, fmt.Errorf("invalid sendMessage payload: %w", err)
	}
	return client.CreateMessage(ctx, p)
}

// handleSignOut detaches the connection from its session without
// closing the socket; the socket close later will not detach again.
func (ctl *Controller) handleSignOut(ctx context.Context, cmd *Command, conn *Conn) (any, error) {
	if conn.clearAttached() {
		ctl.registry.Detach(conn.UserID())
	}
	return struct{}{}, nil
}

func digitsOf(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
