package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/milops/asset-console/backend"
	"github.com/milops/asset-console/internal/config"
	"github.com/milops/asset-console/server"
	"github.com/milops/asset-console/session"
)

const (
	testUsername = "cmd1"
	testPassword = "secret1"
	testAccess   = "access-token-a"
	testRefresh  = "refresh-token-b"
)

// fakeBackend is a counting in-memory stand-in for the asset management
// API. Handler tests assert on its call counters to prove the console
// avoids needless backend traffic.
type fakeBackend struct {
	t      *testing.T
	server *httptest.Server

	loginCalls    int
	registerCalls int
	deleteCalls   int
	approveCalls  int
	rejectCalls   int

	userRole backend.Role
	revoked  bool
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{t: t, userRole: backend.RoleAdmin}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		fb.loginCalls++
		var req backend.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Username != testUsername || req.Password != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fb.writeJSON(w, backend.AuthResponse{Token: testAccess, RefreshToken: testRefresh})
	})
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		fb.registerCalls++
		fb.writeJSON(w, backend.AuthResponse{Token: testAccess, RefreshToken: testRefresh})
	})
	mux.HandleFunc("GET /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testAccess {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fb.writeJSON(w, backend.User{ID: 1, Username: testUsername, Role: fb.userRole})
	})
	mux.HandleFunc("GET /api/users", func(w http.ResponseWriter, r *http.Request) {
		fb.writeJSON(w, []backend.User{{ID: 1, Username: testUsername, Role: fb.userRole}})
	})
	mux.HandleFunc("GET /api/bases", func(w http.ResponseWriter, r *http.Request) {
		fb.writeJSON(w, []backend.Base{{ID: 2, Name: "Fort Alpha", Location: "North"}})
	})
	mux.HandleFunc("GET /api/asset-types", func(w http.ResponseWriter, r *http.Request) {
		fb.writeJSON(w, []backend.AssetType{{ID: 5, Name: "Rifle", Category: "WEAPON"}})
	})
	mux.HandleFunc("GET /api/assets", func(w http.ResponseWriter, r *http.Request) {
		fb.writeJSON(w, []backend.Asset{{ID: 3, SerialNumber: "RF-0003"}})
	})
	mux.HandleFunc("GET /api/dashboard/metrics", func(w http.ResponseWriter, r *http.Request) {
		fb.writeJSON(w, backend.DashboardMetrics{
			OpeningBalance: 1000, ClosingBalance: 1500, NetMovement: 500,
			Purchases: 400, TransfersIn: 200, TransfersOut: 100,
		})
	})
	mux.HandleFunc("GET /api/purchases", func(w http.ResponseWriter, r *http.Request) {
		if fb.revoked {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fb.writeJSON(w, []backend.Purchase{{
			ID: 11, Quantity: 10, UnitPrice: 50, TotalAmount: 500,
			AssetType: backend.AssetType{ID: 5, Name: "Rifle"},
			Base:      backend.Base{ID: 2, Name: "Fort Alpha"},
		}})
	})
	mux.HandleFunc("GET /api/purchases/{id}", func(w http.ResponseWriter, r *http.Request) {
		fb.writeJSON(w, backend.Purchase{
			ID: 11, Quantity: 10, UnitPrice: 50, TotalAmount: 500,
			AssetType: backend.AssetType{ID: 5, Name: "Rifle"},
			Base:      backend.Base{ID: 2, Name: "Fort Alpha"},
		})
	})
	mux.HandleFunc("DELETE /api/purchases/{id}", func(w http.ResponseWriter, r *http.Request) {
		fb.deleteCalls++
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/transfers", func(w http.ResponseWriter, r *http.Request) {
		fb.writeJSON(w, []backend.Transfer{{
			ID: 9, Status: backend.TransferPending,
			Asset:    backend.Asset{ID: 3, SerialNumber: "RF-0003"},
			FromBase: backend.Base{ID: 2, Name: "Fort Alpha"},
			ToBase:   backend.Base{ID: 4, Name: "Fort Bravo"},
		}})
	})
	mux.HandleFunc("POST /api/transfers/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		fb.approveCalls++
		fb.writeJSON(w, backend.Transfer{ID: 9, Status: backend.TransferApproved})
	})
	mux.HandleFunc("POST /api/transfers/{id}/reject", func(w http.ResponseWriter, r *http.Request) {
		fb.rejectCalls++
		fb.writeJSON(w, backend.Transfer{ID: 9, Status: backend.TransferRejected})
	})

	fb.server = httptest.NewServer(mux)
	t.Cleanup(fb.server.Close)
	return fb
}

func (fb *fakeBackend) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	require.NoError(fb.t, json.NewEncoder(w).Encode(v))
}

// consoleFixture is a console server wired to the fake backend plus the
// cookie state of one simulated browser.
type consoleFixture struct {
	backend *fakeBackend
	console *server.Server
	cookie  *http.Cookie
}

func newConsoleFixture(t *testing.T) *consoleFixture {
	t.Helper()
	fb := newFakeBackend(t)

	client := backend.New(fb.server.URL+"/api", backend.WithTimeout(5*time.Second))
	console, err := server.New(config.New(), client, session.NewInMemoryRepo())
	require.NoError(t, err)

	return &consoleFixture{backend: fb, console: console}
}

// do performs one request against the console, carrying the browser's
// session cookie if one was issued.
func (fx *consoleFixture) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if fx.cookie != nil {
		req.AddCookie(fx.cookie)
	}

	w := httptest.NewRecorder()
	fx.console.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == "console_session" && c.Value != "" {
			fx.cookie = c
		}
	}
	return w
}

func (fx *consoleFixture) login(t *testing.T) {
	t.Helper()
	w := fx.do(t, http.MethodPost, "/login", url.Values{
		"username": {testUsername},
		"password": {testPassword},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))
	require.NotNil(t, fx.cookie, "login must set the session cookie")
}

func TestLoginFlowReachesDashboard(t *testing.T) {
	fx := newConsoleFixture(t)
	fx.login(t)

	w := fx.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	require.Contains(t, body, "Dashboard")
	require.Contains(t, body, "$500.00", "net movement from the backend metrics")
	require.Contains(t, body, "Transfers In")
	require.Contains(t, body, testUsername)
}

func TestUnauthenticatedBrowsersAreRedirectedToLogin(t *testing.T) {
	fx := newConsoleFixture(t)

	w := fx.do(t, http.MethodGet, "/purchases", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Location"), "/login"))
}

func TestUnknownPathsFallBackByAuthState(t *testing.T) {
	fx := newConsoleFixture(t)

	w := fx.do(t, http.MethodGet, "/no-such-page", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))

	fx.login(t)
	w = fx.do(t, http.MethodGet, "/no-such-page", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))
}

func TestBadCredentialsReturnToLoginForm(t *testing.T) {
	fx := newConsoleFixture(t)

	w := fx.do(t, http.MethodPost, "/login", url.Values{
		"username": {testUsername},
		"password": {"wrong"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	loc := w.Header().Get("Location")
	require.Contains(t, loc, "/login?error=")
	require.Contains(t, loc, "username="+testUsername)
}

func TestRegisterPasswordMismatchNeverCallsBackend(t *testing.T) {
	fx := newConsoleFixture(t)

	w := fx.do(t, http.MethodPost, "/register", url.Values{
		"username":        {"newuser"},
		"password":        {"one-password"},
		"confirmPassword": {"another-password"},
		"role":            {"LOGISTICS_OFFICER"},
		"baseId":          {"2"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Contains(t, w.Header().Get("Location"), "/register?error=")
	require.Zero(t, fx.backend.registerCalls, "validation failures must not reach the backend")
}

func TestRevokedSessionIsSentBackToLogin(t *testing.T) {
	fx := newConsoleFixture(t)
	fx.login(t)

	// The backend revokes the session mid-flight: the access token stops
	// working and the refresh exchange fails too (no refresh route on
	// this fake). The page must bounce to login, not render a 502.
	fx.backend.revoked = true

	w := fx.do(t, http.MethodGet, "/purchases", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Location"), "/login"))
}

func TestPurchasesListRendersRows(t *testing.T) {
	fx := newConsoleFixture(t)
	fx.login(t)

	w := fx.do(t, http.MethodGet, "/purchases", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	require.Contains(t, body, "Rifle")
	require.Contains(t, body, "Fort Alpha")
	require.Contains(t, body, "$500.00", "total amount column")
}

func TestDeleteRequiresExplicitConfirmation(t *testing.T) {
	fx := newConsoleFixture(t)
	fx.login(t)

	// Confirmation page does not delete anything.
	w := fx.do(t, http.MethodGet, "/purchases/11/delete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "This cannot be undone")
	require.Zero(t, fx.backend.deleteCalls)

	// A POST without the confirm field is rejected.
	w = fx.do(t, http.MethodPost, "/purchases/11/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Zero(t, fx.backend.deleteCalls, "unconfirmed delete must not reach the backend")

	// The confirmed POST goes through.
	w = fx.do(t, http.MethodPost, "/purchases/11/delete", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, 1, fx.backend.deleteCalls)
}

func TestApproveControlsFollowRole(t *testing.T) {
	fx := newConsoleFixture(t)
	fx.login(t)

	w := fx.do(t, http.MethodGet, "/transfers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Approve", "admins see approve controls on pending transfers")

	// A logistics officer gets the same list without the controls.
	officer := newConsoleFixture(t)
	officer.backend.userRole = backend.RoleLogisticsOfficer
	officer.login(t)

	w = officer.do(t, http.MethodGet, "/transfers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "Approve")
}

func TestRejectRequiresReason(t *testing.T) {
	fx := newConsoleFixture(t)
	fx.login(t)

	w := fx.do(t, http.MethodPost, "/transfers/9/reject", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Contains(t, w.Header().Get("Location"), "error=")
	require.Zero(t, fx.backend.rejectCalls)

	w = fx.do(t, http.MethodPost, "/transfers/9/reject", url.Values{"reason": {"wrong destination"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, 1, fx.backend.rejectCalls)
}

func TestApproveForbiddenForLogisticsOfficer(t *testing.T) {
	fx := newConsoleFixture(t)
	fx.backend.userRole = backend.RoleLogisticsOfficer
	fx.login(t)

	w := fx.do(t, http.MethodPost, "/transfers/9/approve", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Contains(t, w.Header().Get("Location"), "error=")
	require.Zero(t, fx.backend.approveCalls)
}

func TestLogoutDropsTheSession(t *testing.T) {
	fx := newConsoleFixture(t)
	fx.login(t)

	w := fx.do(t, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Location"), "/login"))
	require.Equal(t, 1, fx.backend.loginCalls, "logout is local, no extra backend auth traffic")

	w = fx.do(t, http.MethodGet, "/purchases", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Location"), "/login"))
}

func TestPurchaseFormTotal(t *testing.T) {
	form := server.PurchaseForm{PurchaseInput: backend.PurchaseInput{Quantity: 10, UnitPrice: 50}}
	require.EqualValues(t, 500, form.Total())
}
