package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/milops/asset-console/auth"
	"github.com/milops/asset-console/backend"
	errs "github.com/milops/asset-console/internal/errors"
	"github.com/milops/asset-console/session"
)

const (
	testUsername     = "cmd1"
	testPassword     = "secret1"
	testAccessToken  = "access-token-a"
	testRefreshToken = "refresh-token-b"
)

// testFixture wires a fake inventory backend behind a real HTTP server
// so the service exercises the same transport the application uses.
type testFixture struct {
	server  *httptest.Server
	service *auth.Service
	sess    *session.Session

	userCalls int
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	fx := &testFixture{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req backend.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Username != testUsername || req.Password != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(t, w, backend.AuthResponse{Token: testAccessToken, RefreshToken: testRefreshToken})
	})
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req backend.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(t, w, backend.AuthResponse{Token: testAccessToken, RefreshToken: testRefreshToken})
	})
	mux.HandleFunc("GET /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		fx.userCalls++
		if r.Header.Get("Authorization") != "Bearer "+testAccessToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(t, w, backend.User{
			ID:       1,
			Username: testUsername,
			Role:     backend.RoleBaseCommander,
		})
	})

	fx.server = httptest.NewServer(mux)
	t.Cleanup(fx.server.Close)

	client := backend.New(fx.server.URL + "/api")
	service, err := auth.NewService(client)
	require.NoError(t, err)

	fx.service = service
	fx.sess = session.New(time.Hour)
	return fx
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestLoginStoresTokensAndUser(t *testing.T) {
	fx := newTestFixture(t)

	err := fx.service.Login(context.Background(), fx.sess, testUsername, testPassword)
	require.NoError(t, err)

	access, refresh := fx.sess.Tokens()
	require.Equal(t, testAccessToken, access)
	require.Equal(t, testRefreshToken, refresh)

	require.Equal(t, session.StateAuthenticated, fx.sess.State())
	require.True(t, fx.sess.Authenticated())
	require.NotNil(t, fx.sess.User())
	require.Equal(t, testUsername, fx.sess.User().Username)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	fx := newTestFixture(t)

	err := fx.service.Login(context.Background(), fx.sess, testUsername, "wrong")
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.ErrInvalidCredentials))

	access, refresh := fx.sess.Tokens()
	require.Empty(t, access)
	require.Empty(t, refresh)
	require.False(t, fx.sess.Authenticated())
}

func TestLogoutClearsSessionWithoutNetwork(t *testing.T) {
	fx := newTestFixture(t)

	require.NoError(t, fx.service.Login(context.Background(), fx.sess, testUsername, testPassword))
	callsAfterLogin := fx.userCalls

	fx.service.Logout(fx.sess)

	access, refresh := fx.sess.Tokens()
	require.Empty(t, access)
	require.Empty(t, refresh)
	require.Nil(t, fx.sess.User())
	require.Equal(t, session.StateAnonymous, fx.sess.State())
	require.Equal(t, callsAfterLogin, fx.userCalls, "logout must not call the backend")
}

func TestResumeWithoutTokensIsAnonymous(t *testing.T) {
	fx := newTestFixture(t)

	require.NoError(t, fx.service.Resume(context.Background(), fx.sess))
	require.Equal(t, session.StateAnonymous, fx.sess.State())
	require.Zero(t, fx.userCalls)
}

func TestResumeVerifiesStoredTokens(t *testing.T) {
	fx := newTestFixture(t)
	fx.sess.SetTokens(testAccessToken, testRefreshToken)

	require.NoError(t, fx.service.Resume(context.Background(), fx.sess))
	require.Equal(t, session.StateAuthenticated, fx.sess.State())
	require.Equal(t, testUsername, fx.sess.User().Username)
}

func TestResumeSkipsBackendForExpiredUnrefreshableToken(t *testing.T) {
	fx := newTestFixture(t)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    "1",
		"role":   "ADMIN",
		"baseId": float64(2),
		"exp":    time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	fx.sess.SetTokens(signed, "")

	require.NoError(t, fx.service.Resume(context.Background(), fx.sess))
	require.Equal(t, session.StateAnonymous, fx.sess.State())
	require.Zero(t, fx.userCalls, "an expired token with no refresh token must not hit the backend")
}

func TestResumeClearsRejectedTokens(t *testing.T) {
	fx := newTestFixture(t)
	fx.sess.SetTokens("stale-access", "")

	require.NoError(t, fx.service.Resume(context.Background(), fx.sess))
	require.Equal(t, session.StateAnonymous, fx.sess.State())

	access, refresh := fx.sess.Tokens()
	require.Empty(t, access)
	require.Empty(t, refresh)
}

func TestRegisterLogsInWithReturnedPair(t *testing.T) {
	fx := newTestFixture(t)

	err := fx.service.Register(context.Background(), fx.sess, backend.RegisterRequest{
		Username: testUsername,
		Password: testPassword,
		Role:     backend.RoleBaseCommander,
		BaseID:   2,
	})
	require.NoError(t, err)
	require.True(t, fx.sess.Authenticated())

	access, refresh := fx.sess.Tokens()
	require.Equal(t, testAccessToken, access)
	require.Equal(t, testRefreshToken, refresh)
}
