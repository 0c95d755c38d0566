// Package auth drives the per-session authentication state machine:
// it exchanges credentials with the inventory backend, caches the
// current user on the session, and restores authenticated sessions
// on subsequent requests.
package auth

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/milops/asset-console/backend"
	errs "github.com/milops/asset-console/internal/errors"
	"github.com/milops/asset-console/session"
)

// Service performs credential exchanges against the backend API and
// keeps the session's tokens, cached user and state consistent.
type Service struct {
	client *backend.Client
}

// NewService initializes an authentication Service with its backend client.
func NewService(client *backend.Client) (*Service, error) {
	if client == nil {
		return nil, errs.Wrapf(errs.ErrInternal, "[NewService] backend client is required")
	}
	return &Service{client: client}, nil
}

// Login exchanges credentials for a token pair, stores the pair on the
// session and caches the current user. A failed user fetch after a
// successful exchange restores the session's previous tokens so the
// caller sees the error without a half-completed login.
func (s *Service) Login(ctx context.Context, sess *session.Session, username, password string) error {
	ctx = backend.ContextWithTokens(ctx, sess)

	resp, err := s.client.Login(ctx, backend.LoginRequest{Username: username, Password: password})
	if err != nil {
		if errs.Is(err, errs.ErrUnauthorized) {
			return errs.Wrapf(errs.ErrInvalidCredentials, "[Login] %s", username)
		}
		return errs.Wrapf(err, "[Login] credential exchange")
	}

	return s.adoptTokens(ctx, sess, resp)
}

// Register creates a new account and then behaves like Login with the
// token pair the backend returns for the fresh account.
func (s *Service) Register(ctx context.Context, sess *session.Session, req backend.RegisterRequest) error {
	ctx = backend.ContextWithTokens(ctx, sess)

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return errs.Wrapf(err, "[Register] account creation")
	}

	return s.adoptTokens(ctx, sess, resp)
}

// Logout drops the session's tokens and cached user. It is purely
// local: no backend call is made, so it cannot fail.
func (s *Service) Logout(sess *session.Session) {
	sess.Clear()
	log.Debug().Str("sessionID", sess.ID).Msg("session logged out")
}

// Resume restores the authentication state for a session that already
// holds tokens, fetching the current user to verify them. Sessions
// without tokens become anonymous immediately. A rejected token pair
// is cleared so the next request starts from a clean anonymous state;
// Resume itself does not fail in that case.
func (s *Service) Resume(ctx context.Context, sess *session.Session) error {
	access, refresh := sess.Tokens()
	if access == "" {
		sess.SetState(session.StateAnonymous)
		return nil
	}

	// An expired access token with nothing to refresh it cannot be
	// verified; skip the doomed round trip.
	if claims, err := backend.ParseTokenClaims(access); err == nil &&
		claims.Expired(time.Now()) && refresh == "" {
		sess.Clear()
		return nil
	}

	sess.SetState(session.StateLoading)
	ctx = backend.ContextWithTokens(ctx, sess)

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		if errs.Is(err, errs.ErrUnauthorized) || errs.Is(err, errs.ErrRefreshFailed) {
			log.Debug().Str("sessionID", sess.ID).Err(err).Msg("stored tokens rejected, session downgraded")
			sess.Clear()
			return nil
		}
		sess.SetState(session.StateUninitialized)
		return errs.Wrapf(err, "[Resume] current user fetch")
	}

	sess.SetUser(&user)
	sess.SetState(session.StateAuthenticated)
	return nil
}

// adoptTokens installs a freshly issued token pair and caches the user
// it belongs to, rolling back to the previous pair when the user fetch
// fails.
func (s *Service) adoptTokens(ctx context.Context, sess *session.Session, resp backend.AuthResponse) error {
	prevAccess, prevRefresh := sess.Tokens()
	sess.SetTokens(resp.Token, resp.RefreshToken)

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		sess.SetTokens(prevAccess, prevRefresh)
		return errs.Wrapf(err, "[adoptTokens] current user fetch")
	}

	sess.SetUser(&user)
	sess.SetState(session.StateAuthenticated)
	log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("user authenticated")
	return nil
}
