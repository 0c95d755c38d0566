package backend_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/milops/asset-console/backend"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestParseTokenClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	raw := signedToken(t, jwt.MapClaims{
		"sub":    "42",
		"role":   "BASE_COMMANDER",
		"baseId": float64(7),
		"exp":    exp.Unix(),
	})

	claims, err := backend.ParseTokenClaims(raw)
	require.NoError(t, err)
	require.Equal(t, "42", claims.Subject)
	require.Equal(t, backend.RoleBaseCommander, claims.Role)
	require.EqualValues(t, 7, claims.BaseID)
	require.False(t, claims.Expired(time.Now()))
	require.True(t, claims.Expired(exp.Add(time.Minute)))
}

func TestParseTokenClaimsRejectsGarbage(t *testing.T) {
	_, err := backend.ParseTokenClaims("")
	require.Error(t, err)

	_, err = backend.ParseTokenClaims("not-a-jwt")
	require.Error(t, err)
}

func TestClaimsWithoutExpiryNeverExpire(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"sub": "1"})

	claims, err := backend.ParseTokenClaims(raw)
	require.NoError(t, err)
	require.False(t, claims.Expired(time.Now().Add(100*time.Hour)))
}
