// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mariposa-labs/storefront/internal/core"
)

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
	UserRoleKey  contextKey = "user_role"
	PrincipalKey contextKey = "principal"
)

// Principal is the resolved identity attached to an authenticated request:
// the credential-store user the token's subject mapped to, plus the role
// set carried by the token itself.
type Principal struct {
	UserID string
	Email  string
	Roles  []string
}

func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PrincipalResolver verifies a bearer token and resolves its subject against
// the credential store. A missing subject is an error, not an anonymous
// principal.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (*Principal, error)
}

// Authenticator rejects requests that do not carry a valid token resolving
// to a known principal. Routes behind it always see an authenticated
// context; anonymous traffic gets a 401 before reaching the handler.
func Authenticator(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsAuthenticated(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			principal, err := resolver.ResolvePrincipal(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(
				withPrincipal(r.Context(), principal),
			))
		})
	}
}

// OptionalAuth attaches a principal when a valid token is present and lets
// the request through anonymously otherwise. Decode failures are swallowed
// and logged at debug level; anonymous requests are legal and the route's
// own authorization decides their fate.
func OptionalAuth(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsAuthenticated(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			if token := ExtractToken(r); token != "" {
				principal, err := resolver.ResolvePrincipal(r.Context(), token)
				if err == nil {
					r = r.WithContext(withPrincipal(r.Context(), principal))
				} else {
					slog.Debug("ignoring invalid bearer token",
						"error", err,
						"path", r.URL.Path,
					)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole allows the request through when the principal carries any of
// the given roles. No principal yields 401, a principal with the wrong role
// yields 403; the two are never conflated.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipal(r.Context())

			if principal == nil {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			allowed := false
			for _, role := range principal.Roles {
				if _, ok := roleSet[role]; ok {
					allowed = true
					break
				}
			}

			if !allowed {
				core.JSONError(
					w,
					core.ForbiddenError("insufficient permissions"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole("admin")(next)
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenInvalid):
		core.JSONError(w, core.TokenInvalidError())
	case errors.Is(err, core.ErrNotFound):
		// Token subject no longer resolves to a user. Do not reveal which
		// part failed.
		core.JSONError(w, core.TokenInvalidError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func withPrincipal(ctx context.Context, p *Principal) context.Context {
	role := ""
	if len(p.Roles) > 0 {
		role = p.Roles[0]
	}

	ctx = context.WithValue(ctx, UserIDKey, p.UserID)
	ctx = context.WithValue(ctx, UserEmailKey, p.Email)
	ctx = context.WithValue(ctx, UserRoleKey, role)
	ctx = context.WithValue(ctx, PrincipalKey, p)
	return ctx
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}

func GetUserRole(ctx context.Context) string {
	if role, ok := ctx.Value(UserRoleKey).(string); ok {
		return role
	}
	return ""
}

func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(PrincipalKey).(*Principal); ok {
		return p
	}
	return nil
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != ""
}

func IsAdmin(ctx context.Context) bool {
	p := GetPrincipal(ctx)
	return p != nil && p.HasRole("admin")
}
