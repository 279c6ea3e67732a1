// AngelaMos | 2026
// handler_test.go

package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariposa-labs/storefront/internal/core"
	"github.com/mariposa-labs/storefront/internal/middleware"
)

type staticResolver struct {
	principals map[string]*middleware.Principal
}

func (s *staticResolver) ResolvePrincipal(
	_ context.Context,
	token string,
) (*middleware.Principal, error) {
	if principal, ok := s.principals[token]; ok {
		return principal, nil
	}
	return nil, fmt.Errorf("resolve principal: %w", core.ErrTokenInvalid)
}

func newTestRouter(t *testing.T) (*chi.Mux, *fakeRepo) {
	t.Helper()

	svc, repo, _ := newTestService()
	handler := NewHandler(svc)

	resolver := &staticResolver{
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
	}

	router := chi.NewRouter()
	handler.RegisterRoutes(
		router,
		middleware.OptionalAuth(resolver),
		middleware.Authenticator(resolver),
		middleware.RequireAdmin,
	)

	return router, repo
}

func do(
	router http.Handler,
	method, path, token, body string,
) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func seedProduct(t *testing.T, repo *fakeRepo, name string, stock int) string {
	t.Helper()

	svc := NewService(repo, nil, time.Minute, nil)
	product, err := svc.CreateProduct(
		context.Background(),
		name,
		decimal.NewFromFloat(9.99),
		stock,
		nil,
	)
	require.NoError(t, err)
	return product.ID
}

func TestRoutes_AnonymousCanRead(t *testing.T) {
	router, repo := newTestRouter(t)
	id := seedProduct(t, repo, "Widget", 5)

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/products", "", "").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/products/"+id, "", "").Code)
}

func TestRoutes_AnonymousCannotWrite(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"name":"Widget","price":"9.99","stock":5}`
	rec := do(router, http.MethodPost, "/products", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_UserCannotWrite(t *testing.T) {
	router, repo := newTestRouter(t)
	id := seedProduct(t, repo, "Widget", 5)

	rec := do(router, http.MethodDelete, "/products/"+id, "user-token", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoutes_AdminCanWrite(t *testing.T) {
	router, repo := newTestRouter(t)

	body := `{"name":"Widget","price":"9.99","stock":5}`
	rec := do(router, http.MethodPost, "/products", "admin-token", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, repo.products, 1)
}

func TestRoutes_LowStockIsAdminOnly(t *testing.T) {
	router, repo := newTestRouter(t)
	seedProduct(t, repo, "Scarce", 2)

	assert.Equal(
		t,
		http.StatusUnauthorized,
		do(router, http.MethodGet, "/products/low-stock", "", "").Code,
	)
	assert.Equal(
		t,
		http.StatusForbidden,
		do(router, http.MethodGet, "/products/low-stock", "user-token", "").Code,
	)
	assert.Equal(
		t,
		http.StatusOK,
		do(router, http.MethodGet, "/products/low-stock", "admin-token", "").Code,
	)
}

func TestRoutes_CreateValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(router, http.MethodPost, "/products", "admin-token", `{"price":"9.99"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
