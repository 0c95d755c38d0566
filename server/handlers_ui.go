package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/milops/asset-console/backend"
	errs "github.com/milops/asset-console/internal/errors"
)

const contentTypeHTML = "text/html; charset=utf-8"

var templateFuncs = template.FuncMap{
	"money": func(v float64) string {
		return fmt.Sprintf("$%.2f", v)
	},
}

// pageData is everything the layout template needs around the page
// content rendered by a specific handler.
type pageData struct {
	AppName    string
	PageTitle  string
	ActivePage string
	User       *backend.User
	CanApprove bool
	Error      string
	Notice     string
	Content    template.HTML
}

// renderPage renders contentTemplate into the shared layout. Error and
// notice banners come from the query string so handlers can use
// POST-redirect-GET after mutations.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, activePage, pageTitle, contentTemplate string, contentData any) {
	contentTmpl, err := ParseTemplate(contentTemplate)
	if err != nil {
		log.Err(err).Str("template", contentTemplate).Msg("failed to load content template")
		renderErrorPage(w, http.StatusInternalServerError, "Failed to load page")
		return
	}

	var contentBuf strings.Builder
	if err := contentTmpl.Execute(&contentBuf, contentData); err != nil {
		log.Err(err).Str("template", contentTemplate).Msg("failed to render content template")
		renderErrorPage(w, http.StatusInternalServerError, "Failed to render page")
		return
	}

	layoutTmpl, err := ParseTemplate("layout.html")
	if err != nil {
		log.Err(err).Msg("failed to load layout template")
		renderErrorPage(w, http.StatusInternalServerError, "Failed to load page")
		return
	}

	user := currentUser(r)
	data := pageData{
		AppName:    s.config.GetAppName(),
		PageTitle:  pageTitle,
		ActivePage: activePage,
		User:       user,
		CanApprove: user != nil && user.CanApproveTransfers(),
		Error:      r.URL.Query().Get("error"),
		Notice:     r.URL.Query().Get("notice"),
		Content:    template.HTML(contentBuf.String()),
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	if err := layoutTmpl.Execute(w, data); err != nil {
		log.Err(err).Msg("failed to render layout template")
	}
}

// ConfirmDeleteData feeds the shared delete confirmation page.
type ConfirmDeleteData struct {
	Entity      string
	Summary     string
	Action      string
	CancelRoute string
}

// deleteConfirmed reports whether the delete form carried the explicit
// confirmation field. A bare POST without it never deletes anything.
func deleteConfirmed(r *http.Request) bool {
	return r.FormValue("confirm") == "yes"
}

// renderErrorPage writes a minimal error response when templates or the
// backend are unavailable.
func renderErrorPage(w http.ResponseWriter, status int, message string) {
	http.Error(w, message, status)
}

// renderFetchFailure surfaces a failed page fetch. A failed token
// refresh means the session's credentials are gone, so that browser
// goes straight back to the login page instead of seeing a 502.
func renderFetchFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errs.Is(err, errs.ErrRefreshFailed) {
		redirectError(w, r, RouteLogin, "Your session has expired. Please sign in again.")
		return
	}
	renderErrorPage(w, http.StatusBadGateway, "The inventory service is unreachable. Try again shortly.")
}

// backendErrorRedirect sends the browser back to returnPath with the
// backend's error message in the banner.
func backendErrorRedirect(w http.ResponseWriter, r *http.Request, returnPath string, err error) {
	log.Err(err).Str("path", r.URL.Path).Msg("backend call failed")
	msg := "Operation failed"
	var statusErr *backend.StatusError
	if errs.As(err, &statusErr) && statusErr.Message != "" {
		msg = statusErr.Message
	}
	redirectError(w, r, returnPath, msg)
}
