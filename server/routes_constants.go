package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteLogin    = "/login"
	RouteRegister = "/register"
	RouteLogout   = "/logout"

	// Dashboard
	RouteDashboard = "/"

	// Purchases
	RoutePurchases      = "/purchases"
	RoutePurchaseNew    = "/purchases/new"
	RoutePurchaseEdit   = "/purchases/{id}/edit"
	RoutePurchaseDelete = "/purchases/{id}/delete"

	// Transfers
	RouteTransfers       = "/transfers"
	RouteTransferNew     = "/transfers/new"
	RouteTransferEdit    = "/transfers/{id}/edit"
	RouteTransferDelete  = "/transfers/{id}/delete"
	RouteTransferApprove = "/transfers/{id}/approve"
	RouteTransferReject  = "/transfers/{id}/reject"

	// Assignments
	RouteAssignments      = "/assignments"
	RouteAssignmentNew    = "/assignments/new"
	RouteAssignmentEdit   = "/assignments/{id}/edit"
	RouteAssignmentDelete = "/assignments/{id}/delete"
	RouteAssignmentReturn = "/assignments/{id}/return"

	// Expenditures
	RouteExpenditures      = "/expenditures"
	RouteExpenditureNew    = "/expenditures/new"
	RouteExpenditureEdit   = "/expenditures/{id}/edit"
	RouteExpenditureDelete = "/expenditures/{id}/delete"

	// Audit
	RouteAuditLogs = "/audit-logs"

	// Operational endpoints
	RouteHealthz = "/healthz"
	RouteMetrics = "/metrics"
)
