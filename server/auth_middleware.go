package server

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/milops/asset-console/backend"
	"github.com/milops/asset-console/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the resolved console session
	ContextKeySession ContextKey = "session"
)

// RequireSessionAuth resolves the console session from its cookie,
// resumes the authentication state against the backend when needed and
// redirects anonymous browsers to the login page. Authenticated
// requests continue with the session and its token store on the
// context, so every backend call the handler makes carries the
// session's credentials.
func (s *Server) RequireSessionAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sess, err := s.sessionFromCookie(r)
			if err != nil {
				redirectError(w, r, RouteLogin, "Session expired")
				return
			}

			if sess.State() != session.StateAuthenticated {
				if err := s.auth.Resume(r.Context(), sess); err != nil {
					log.Err(err).Str("sessionID", sess.ID).Msg("session resume failed")
					renderErrorPage(w, http.StatusBadGateway, "The inventory service is unreachable. Try again shortly.")
					return
				}
			}
			if !sess.Authenticated() {
				redirectError(w, r, RouteLogin, "Please sign in")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, sess)
			ctx = backend.ContextWithTokens(ctx, sess)
			next(w, r.WithContext(ctx))
		}
	}
}

// sessionFromCookie looks up the live session the browser's cookie
// points at.
func (s *Server) sessionFromCookie(r *http.Request) (*session.Session, error) {
	cookie, err := r.Cookie(s.config.GetSessionCookieName())
	if err != nil || cookie.Value == "" {
		return nil, err
	}
	return s.sessions.Get(cookie.Value)
}

// ensureSession returns the browser's existing session or mints a new
// one and sets its cookie. Used by the public auth pages, which must
// work before any session exists.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	if sess, err := s.sessionFromCookie(r); err == nil && sess != nil {
		return sess, nil
	}

	sess := session.New(s.config.GetSessionTTL())
	if err := s.sessions.Upsert(sess); err != nil {
		return nil, err
	}
	s.SetSessionCookie(w, r, sess.ID, int(s.config.GetSessionTTL().Seconds()))
	return sess, nil
}

// sessionFrom returns the session injected by RequireSessionAuth.
func sessionFrom(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(ContextKeySession).(*session.Session)
	return sess
}

// currentUser returns the authenticated user for the request, or nil
// on public pages.
func currentUser(r *http.Request) *backend.User {
	if sess := sessionFrom(r); sess != nil {
		return sess.User()
	}
	return nil
}
