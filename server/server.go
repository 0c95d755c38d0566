package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/milops/asset-console/auth"
	"github.com/milops/asset-console/backend"
	"github.com/milops/asset-console/internal/config"
	"github.com/milops/asset-console/session"
)

// Server is the browser-facing console: it owns the session repository,
// the backend client and the HTML routes for every inventory page.
type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	backend   *backend.Client
	auth      *auth.Service
	sessions  session.Repo
	rateLimit func(http.HandlerFunc) http.HandlerFunc
}

func New(config config.Config, backendClient *backend.Client, sessionRepo session.Repo) (*Server, error) {
	authService, err := auth.NewService(backendClient)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create auth service: %w", err)
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   config,
		backend:  backendClient,
		auth:     authService,
		sessions: sessionRepo,
	}
	s.env = config.GetEnv()
	s.rateLimit = newRateLimitMiddleware(config.GetRateLimitPerSecond(), config.GetRateLimitBurst())

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Debug().Str("method", method).Str("path", path).Msg("route")
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
