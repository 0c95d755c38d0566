package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/milops/asset-console/backend"
)

// AuditLogsListData feeds the audit log template.
type AuditLogsListData struct {
	Logs   []backend.AuditLog
	Filter backend.Filter
	Users  []backend.User
}

// AuditLogsListHandler renders the read-only audit trail.
func (s *Server) AuditLogsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := AuditLogsListData{Filter: filterFromQuery(r)}

		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			data.Logs, err = s.backend.AuditLogs(ctx, data.Filter)
			return err
		})
		g.Go(func() error {
			var err error
			data.Users, err = s.backend.Users(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			log.Err(err).Msg("audit logs fetch failed")
			renderFetchFailure(w, r, err)
			return
		}

		s.renderPage(w, r, "audit-logs", "Audit Logs", "audit_logs_content.html", data)
	}
}
