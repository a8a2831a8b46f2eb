package service

import (
	"github.com/rs/zerolog/log"

	"github.com/chatify/chatify-cli/internal/audit"
	"github.com/chatify/chatify-cli/internal/model"
	"github.com/chatify/chatify-cli/internal/store"
	"github.com/chatify/chatify-cli/internal/telemetry"
)

// SessionService is the session/identity cache. It gates every other
// component: no bearer token in the store means no session, full stop.
// Malformed stored data never raises; it degrades to logged-out.
type SessionService struct {
	store     store.Store
	telemetry *telemetry.Telemetry
}

func NewSessionService(s store.Store, tel *telemetry.Telemetry) *SessionService {
	return &SessionService{store: s, telemetry: tel}
}

// IsAuthenticated reports whether a bearer token is present in the store.
func (s *SessionService) IsAuthenticated() bool {
	token, ok, err := s.store.Get(store.KeyToken)
	if err != nil {
		log.Warn().Err(err).Msg("read token from store")
		return false
	}
	return ok && token != ""
}

// Token returns the stored bearer token, or empty when logged out.
func (s *SessionService) Token() string {
	token, _, err := s.store.Get(store.KeyToken)
	if err != nil {
		log.Warn().Err(err).Msg("read token from store")
		return ""
	}
	return token
}

// CurrentUser returns the stored profile snapshot, or nil when absent or
// malformed. Malformed data is reported to telemetry, not raised.
func (s *SessionService) CurrentUser() *model.UserSnapshot {
	user, err := store.ReadUser(s.store)
	if err != nil {
		s.telemetry.CaptureException(err)
		return nil
	}
	return user
}

// Current returns the session as one value for callers that need both the
// token and the identity.
func (s *SessionService) Current() *model.Session {
	return &model.Session{Token: s.Token(), User: s.CurrentUser()}
}

// Login persists the bearer token and the profile snapshot, flipping the
// authenticated state.
func (s *SessionService) Login(token string, user *model.UserSnapshot) error {
	if err := s.store.Set(store.KeyToken, token); err != nil {
		return err
	}
	if err := store.WriteUser(s.store, user); err != nil {
		return err
	}

	audit.Log(audit.Event{Type: audit.EventLoginSuccess, UserID: user.ID, Username: user.Username})
	return nil
}

// Logout clears the token and the user snapshot.
func (s *SessionService) Logout() {
	if err := s.store.Delete(store.KeyToken); err != nil {
		log.Warn().Err(err).Msg("clear token")
	}
	if err := s.store.Delete(store.KeyUser); err != nil {
		log.Warn().Err(err).Msg("clear user")
	}
	audit.Log(audit.Event{Type: audit.EventLogout})
}

// Invalidate clears the session after the remote API rejected the token.
func (s *SessionService) Invalidate() {
	audit.Log(audit.Event{Type: audit.EventSessionLost})
	s.Logout()
}

// Refresh re-reads the persistent store and re-derives the authenticated
// state. When the expected fields are absent or malformed the session is
// logged out and false is returned.
func (s *SessionService) Refresh() bool {
	if !s.IsAuthenticated() {
		return false
	}

	raw, ok, err := s.store.Get(store.KeyUser)
	if err != nil || !ok || raw == "" {
		s.Logout()
		return false
	}
	if _, err := model.NormalizeUser([]byte(raw)); err != nil {
		s.telemetry.CaptureException(err)
		s.Logout()
		return false
	}
	return true
}
