package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sbertrand101/web-phone/internal/domain"
)

type session struct {
	creds     domain.Credentials
	count     int
	provision *domain.Provision
	calls     map[domain.CallID]domain.CallRecord
}

// Teardown is the state a session leaves behind when its last
// connection goes away; the cleanup hook receives it.
type Teardown struct {
	UserID      domain.UserID
	Credentials domain.Credentials
	Calls       []domain.CallID
}

// Registry owns all per-user session state: reference-counted
// connection counts, stored credentials and the active call table.
type Registry struct {
	mu       sync.Mutex
	sessions map[domain.UserID]*session

	// TeardownHook runs after the last connection for a user detaches,
	// outside the registry lock. Failures inside it must be contained
	// by the hook itself.
	TeardownHook func(Teardown)
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.UserID]*session)}
}

// Attach registers one more connection for the user. The first attach
// creates the session and keeps the given credentials; later attaches
// only bump the count (first-writer-wins on credentials). The caller
// guards against double-attaching the same connection.
func (r *Registry) Attach(userID domain.UserID, creds domain.Credentials) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		s = &session{creds: creds, calls: make(map[domain.CallID]domain.CallRecord)}
		r.sessions[userID] = s
		log.Info().Str("module", "app.registry").Str("user", string(userID)).Msg("created session")
	}
	s.count++
	log.Info().Str("module", "app.registry").Str("user", string(userID)).Int("count", s.count).Msg("attached connection")
	return s.count
}

// Detach drops one connection. When the count reaches zero the session
// is removed and the teardown hook (if set) runs with the leftover
// call state. Detaching an unknown user is a no-op.
func (r *Registry) Detach(userID domain.UserID) {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	if !ok {
		r.mu.Unlock()
		return
	}
	s.count--
	if s.count > 0 {
		log.Info().Str("module", "app.registry").Str("user", string(userID)).Int("count", s.count).Msg("detached connection")
		r.mu.Unlock()
		return
	}
	delete(r.sessions, userID)
	td := Teardown{UserID: userID, Credentials: s.creds, Calls: make([]domain.CallID, 0, len(s.calls))}
	for id := range s.calls {
		td.Calls = append(td.Calls, id)
	}
	r.mu.Unlock()

	log.Info().Str("module", "app.registry").Str("user", string(userID)).Int("calls", len(td.Calls)).Msg("session torn down")
	if r.TeardownHook != nil {
		r.TeardownHook(td)
	}
}

func (r *Registry) Count(userID domain.UserID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok {
		return s.count
	}
	return 0
}

func (r *Registry) Credentials(userID domain.UserID) (domain.Credentials, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok {
		return s.creds, true
	}
	return domain.Credentials{}, false
}

// SetProvision stores the sign-in provisioning result on the session
// so further tabs can sign in without vendor round-trips.
func (r *Registry) SetProvision(userID domain.UserID, p *domain.Provision) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok {
		s.provision = p
	}
}

func (r *Registry) Provision(userID domain.UserID) (*domain.Provision, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok && s.provision != nil {
		return s.provision, true
	}
	return nil, false
}

// RecordCall writes one leg's record. No-op when the session is
// already gone (last connection closed mid-flight).
func (r *Registry) RecordCall(userID domain.UserID, callID domain.CallID, bridgeID domain.BridgeID, state domain.CallState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		return
	}
	s.calls[callID] = domain.CallRecord{Bridge: bridgeID, State: state}
	log.Info().Str("module", "app.registry").Str("user", string(userID)).
		Str("call", string(callID)).Str("bridge", string(bridgeID)).Str("state", string(state)).Msg("recorded call")
}

// ClearCall removes one leg's record; the leg is ended. No-op when the
// session or the record is gone.
func (r *Registry) ClearCall(userID domain.UserID, callID domain.CallID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		return
	}
	if _, ok := s.calls[callID]; !ok {
		return
	}
	delete(s.calls, callID)
	log.Info().Str("module", "app.registry").Str("user", string(userID)).Str("call", string(callID)).Msg("cleared call")
}

func (r *Registry) Call(userID domain.UserID, callID domain.CallID) (domain.CallRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok {
		rec, ok := s.calls[callID]
		return rec, ok
	}
	return domain.CallRecord{}, false
}

// ActiveCalls returns a snapshot of the user's call table.
func (r *Registry) ActiveCalls(userID domain.UserID) map[domain.CallID]domain.CallRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		return nil
	}
	out := make(map[domain.CallID]domain.CallRecord, len(s.calls))
	for id, rec := range s.calls {
		out[id] = rec
	}
	return out
}
