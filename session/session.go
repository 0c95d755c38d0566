package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/milops/asset-console/backend"
)

// Session is one browser's console session: the backend token pair plus
// the cached current user. It is the only mutable shared state in the
// console; every read and write goes through its methods.
//
// Tokens are overwritten wholesale on login and refresh and cleared on
// logout or an unrecoverable auth failure, so the access token is always
// paired with the refresh token minted alongside it.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	user         *backend.User
	state        State

	// refreshMu serialises the 401-triggered refresh exchange; it is
	// exposed through Lock/Unlock to satisfy backend.TokenStore.
	refreshMu sync.Mutex
}

var _ backend.TokenStore = (*Session)(nil)

// New creates an anonymous session with the given lifetime.
func New(ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Tokens returns the current token pair.
func (s *Session) Tokens() (accessToken, refreshToken string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refreshToken
}

// SetTokens overwrites both tokens as one unit.
func (s *Session) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
}

// Clear drops both tokens and the cached user. The session record
// itself survives so the browser keeps its cookie across logins.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
	s.state = StateAnonymous
}

// Lock acquires the refresh-exchange lock.
func (s *Session) Lock() { s.refreshMu.Lock() }

// Unlock releases the refresh-exchange lock.
func (s *Session) Unlock() { s.refreshMu.Unlock() }

// User returns the cached current user, or nil when anonymous.
func (s *Session) User() *backend.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SetUser caches the current user fetched from the backend.
func (s *Session) SetUser(user *backend.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

// State returns the session's authentication state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState records an authentication state transition.
func (s *Session) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Authenticated reports whether the session holds a verified user.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateAuthenticated && s.user != nil
}

// HasTokens reports whether an access token is stored.
func (s *Session) HasTokens() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken != ""
}

// Expired reports whether the session itself (not the tokens) lapsed.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
