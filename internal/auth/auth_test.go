package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "test-secret", Issuer: "sahakari.identity"}

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["iss"]; !ok {
		claims["iss"] = testConfig.Issuer
	}
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testConfig.Secret))
	require.NoError(t, err)
	return token
}

func TestParseBranchClaims(t *testing.T) {
	token := sign(t, jwt.MapClaims{
		"sub":    "user-1",
		"role":   "branch",
		"branch": " Pokhara ",
		"scopes": []string{ScopeReportsRead, ScopeReportsExport},
	})

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.True(t, claims.HasScope(ScopeReportsExport))
	require.Equal(t, Session{Subject: "user-1", Role: RoleBranch, Branch: "Pokhara"}, claims.Session())
	require.Equal(t, "Pokhara", claims.Session().PinnedBranch())
}

func TestParseAdminIsNotPinned(t *testing.T) {
	token := sign(t, jwt.MapClaims{"sub": "root", "role": "ADMIN", "scopes": "reports:read"})

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.True(t, claims.Session().IsAdmin())
	require.Empty(t, claims.Session().PinnedBranch())
	require.True(t, claims.HasScope(ScopeReportsRead))
}

func TestParseRejectsInvalidTokens(t *testing.T) {
	cases := map[string]string{
		"branch role without branch": sign(t, jwt.MapClaims{"sub": "user-1", "role": "branch"}),
		"unknown role":               sign(t, jwt.MapClaims{"sub": "user-1", "role": "owner"}),
		"missing subject":            sign(t, jwt.MapClaims{"role": "admin"}),
		"wrong issuer":               sign(t, jwt.MapClaims{"sub": "user-1", "role": "admin", "iss": "other"}),
		"expired":                    sign(t, jwt.MapClaims{"sub": "user-1", "role": "admin", "exp": time.Now().Add(-time.Minute).Unix()}),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(token, testConfig)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err := Parse("  ", testConfig)
	require.True(t, errors.Is(err, ErrMissingToken))
}

func TestMiddleware(t *testing.T) {
	var seen *Claims
	handler := NewMiddleware(testConfig).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Nil(t, seen)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/reports/summary", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/summary", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, jwt.MapClaims{"sub": "root", "role": "admin"}))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.NotNil(t, seen)
	require.Equal(t, "root", seen.Subject)
}
