package server

import (
	"net/http"

	"github.com/milops/asset-console/internal/obs"
)

func (s *Server) initRoutes() {
	// Public auth pages
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.RegisterPageUIHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Dashboard ({$} so the fallback below owns everything unmatched)
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))

	// Purchases
	s.RegisterRouteHandler("GET "+RoutePurchases, ChainMiddleware(s.PurchasesListHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RoutePurchaseNew, ChainMiddleware(s.PurchaseNewHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RoutePurchases, ChainMiddleware(s.PurchaseCreateHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RoutePurchaseEdit, ChainMiddleware(s.PurchaseEditHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RoutePurchaseEdit, ChainMiddleware(s.PurchaseUpdateHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RoutePurchaseDelete, ChainMiddleware(s.PurchaseDeleteConfirmHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RoutePurchaseDelete, ChainMiddleware(s.PurchaseDeleteHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))

	// Transfers
	s.RegisterRouteHandler("GET "+RouteTransfers, ChainMiddleware(s.TransfersListHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RouteTransferNew, ChainMiddleware(s.TransferNewHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RouteTransfers, ChainMiddleware(s.TransferCreateHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RouteTransferEdit, ChainMiddleware(s.TransferEditHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RouteTransferEdit, ChainMiddleware(s.TransferUpdateHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RouteTransferDelete, ChainMiddleware(s.TransferDeleteConfirmHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RouteTransferDelete, ChainMiddleware(s.TransferDeleteHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RouteTransferApprove, ChainMiddleware(s.TransferApproveHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RouteTransferReject, ChainMiddleware(s.TransferRejectHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))

	// Assignments
	s.RegisterRouteHandler("GET "+RouteAssignments, ChainMiddleware(s.AssignmentsListHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RouteAssignmentNew, ChainMiddleware(s.AssignmentNewHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RouteAssignments, ChainMiddleware(s.AssignmentCreateHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RouteAssignmentEdit, ChainMiddleware(s.AssignmentEditHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RouteAssignmentEdit, ChainMiddleware(s.AssignmentUpdateHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RouteAssignmentDelete, ChainMiddleware(s.AssignmentDeleteConfirmHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RouteAssignmentDelete, ChainMiddleware(s.AssignmentDeleteHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RouteAssignmentReturn, ChainMiddleware(s.AssignmentReturnHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))

	// Expenditures
	s.RegisterRouteHandler("GET "+RouteExpenditures, ChainMiddleware(s.ExpendituresListHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RouteExpenditureNew, ChainMiddleware(s.ExpenditureNewHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RouteExpenditures, ChainMiddleware(s.ExpenditureCreateHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RouteExpenditureEdit, ChainMiddleware(s.ExpenditureEditHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RouteExpenditureEdit, ChainMiddleware(s.ExpenditureUpdateHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RouteExpenditureDelete, ChainMiddleware(s.ExpenditureDeleteConfirmHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RouteExpenditureDelete, ChainMiddleware(s.ExpenditureDeleteHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))

	// Audit logs (read-only)
	s.RegisterRouteHandler("GET "+RouteAuditLogs, ChainMiddleware(s.AuditLogsListHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))

	// Operational endpoints
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, obs.Handler())

	// Anything unmatched lands on the dashboard or the login page.
	s.RegisterRouteFunc("/", s.FallbackHandler())
}

// FallbackHandler redirects unknown paths instead of serving a bare
// 404, authenticated browsers go to the dashboard.
func (s *Server) FallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sess, err := s.sessionFromCookie(r); err == nil && sess != nil && sess.Authenticated() {
			http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

// HealthzHandler reports process liveness for load balancers.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
