// AngelaMos | 2026
// auth_test.go

package middleware_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariposa-labs/storefront/internal/core"
	"github.com/mariposa-labs/storefront/internal/middleware"
)

// fakeResolver maps literal token strings to principals or errors.
type fakeResolver struct {
	principals map[string]*middleware.Principal
	errs       map[string]error
}

func (f *fakeResolver) ResolvePrincipal(
	_ context.Context,
	token string,
) (*middleware.Principal, error) {
	if err, ok := f.errs[token]; ok {
		return nil, err
	}
	if principal, ok := f.principals[token]; ok {
		return principal, nil
	}
	return nil, fmt.Errorf("resolve principal: %w", core.ErrTokenInvalid)
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		principals: map[string]*middleware.Principal{
			"user-token": {
				UserID: "u-1",
				Email:  "user@example.com",
				Roles:  []string{"user"},
			},
			"admin-token": {
				UserID: "a-1",
				Email:  "admin@example.com",
				Roles:  []string{"admin"},
			},
		},
		errs: map[string]error{
			"expired-token": fmt.Errorf("verify: %w", core.ErrTokenExpired),
		},
	}
}

func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.GetPrincipal(r.Context())
		if principal == nil {
			w.WriteHeader(http.StatusOK)
			//nolint:errcheck // test helper
			_, _ = w.Write([]byte("anonymous"))
			return
		}
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck // test helper
		_, _ = w.Write([]byte(principal.Email))
	})
}

func doRequest(handler http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body core.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestAuthenticator_MissingToken(t *testing.T) {
	handler := middleware.Authenticator(newFakeResolver())(echoPrincipal())

	rec := doRequest(handler, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticator_InvalidToken(t *testing.T) {
	handler := middleware.Authenticator(newFakeResolver())(echoPrincipal())

	rec := doRequest(handler, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_INVALID", errorCode(t, rec))
}

func TestAuthenticator_ExpiredToken(t *testing.T) {
	handler := middleware.Authenticator(newFakeResolver())(echoPrincipal())

	rec := doRequest(handler, "expired-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_EXPIRED", errorCode(t, rec))
}

func TestAuthenticator_ValidToken(t *testing.T) {
	handler := middleware.Authenticator(newFakeResolver())(echoPrincipal())

	rec := doRequest(handler, "user-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user@example.com", rec.Body.String())
}

func TestOptionalAuth_SwallowsFailures(t *testing.T) {
	resolver := newFakeResolver()

	for _, token := range []string{"", "garbage", "expired-token"} {
		handler := middleware.OptionalAuth(resolver)(echoPrincipal())
		rec := doRequest(handler, token)

		assert.Equal(t, http.StatusOK, rec.Code, "token %q", token)
		assert.Equal(t, "anonymous", rec.Body.String(), "token %q", token)
	}
}

func TestOptionalAuth_AttachesPrincipal(t *testing.T) {
	handler := middleware.OptionalAuth(newFakeResolver())(echoPrincipal())

	rec := doRequest(handler, "admin-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin@example.com", rec.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	resolver := newFakeResolver()
	protected := middleware.Authenticator(resolver)(
		middleware.RequireAdmin(echoPrincipal()),
	)

	t.Run("no principal", func(t *testing.T) {
		rec := doRequest(middleware.RequireAdmin(echoPrincipal()), "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("plain user", func(t *testing.T) {
		rec := doRequest(protected, "user-token")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin", func(t *testing.T) {
		rec := doRequest(protected, "admin-token")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
