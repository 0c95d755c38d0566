package server

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/milops/asset-console/backend"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName  string
	Error    string
	Notice   string
	Username string // Preserve username on error
}

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	loginTmpl, err := ParseTemplate("login.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse login template")
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			AppName:  s.config.GetAppName(),
			Error:    r.URL.Query().Get("error"),
			Notice:   r.URL.Query().Get("notice"),
			Username: r.URL.Query().Get("username"),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := loginTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render login template")
			renderErrorPage(w, http.StatusInternalServerError, "Failed to render login page")
		}
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			renderErrorPage(w, http.StatusBadRequest, "Invalid form data")
			return
		}

		username := r.FormValue("username")
		password := r.FormValue("password")
		if username == "" || password == "" {
			s.renderLoginError(w, r, "Username and password are required", username)
			return
		}

		sess, err := s.ensureSession(w, r)
		if err != nil {
			log.Err(err).Msg("failed to create session")
			renderErrorPage(w, http.StatusInternalServerError, "Failed to start session")
			return
		}

		if err := s.auth.Login(r.Context(), sess, username, password); err != nil {
			log.Warn().Str("username", username).Err(err).Msg("login rejected")
			s.renderLoginError(w, r, "Invalid username or password", username)
			return
		}

		redirectSuccess(w, r, RouteDashboard)
	}
}

// RegisterPageUIHandler displays the sign-up page (GET /register)
func (s *Server) RegisterPageUIHandler() http.HandlerFunc {
	registerTmpl, err := ParseTemplate("register.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse register template")
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := struct {
			AppName  string
			Error    string
			Username string
			Roles    []backend.Role
		}{
			AppName:  s.config.GetAppName(),
			Error:    r.URL.Query().Get("error"),
			Username: r.URL.Query().Get("username"),
			Roles:    backend.Roles,
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := registerTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render register template")
			renderErrorPage(w, http.StatusInternalServerError, "Failed to render sign-up page")
		}
	}
}

// RegisterSubmissionHandler processes the sign-up form. Validation
// failures, mismatched passwords included, never reach the backend.
func (s *Server) RegisterSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			renderErrorPage(w, http.StatusBadRequest, "Invalid form data")
			return
		}

		req, err := parseRegisterForm(r)
		if err != nil {
			s.renderRegisterError(w, r, err.Error(), r.FormValue("username"))
			return
		}

		sess, err := s.ensureSession(w, r)
		if err != nil {
			log.Err(err).Msg("failed to create session")
			renderErrorPage(w, http.StatusInternalServerError, "Failed to start session")
			return
		}

		if err := s.auth.Register(r.Context(), sess, req); err != nil {
			log.Warn().Str("username", req.Username).Err(err).Msg("registration rejected")
			s.renderRegisterError(w, r, "Registration failed", req.Username)
			return
		}

		redirectSuccess(w, r, RouteDashboard)
	}
}

// LogoutHandler drops the session's credentials and returns the browser
// to the login page. The logout itself never calls the backend.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sess, err := s.sessionFromCookie(r); err == nil && sess != nil {
			s.auth.Logout(sess)
		}
		redirectNotice(w, r, RouteLogin, "Signed out")
	}
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, username string) {
	redirectURL := RouteLogin + "?error=" + url.QueryEscape(errorMsg)
	if username != "" {
		redirectURL += "&username=" + url.QueryEscape(username)
	}
	redirectSuccess(w, r, redirectURL)
}

func (s *Server) renderRegisterError(w http.ResponseWriter, r *http.Request, errorMsg, username string) {
	redirectURL := RouteRegister + "?error=" + url.QueryEscape(errorMsg)
	if username != "" {
		redirectURL += "&username=" + url.QueryEscape(username)
	}
	redirectSuccess(w, r, redirectURL)
}
