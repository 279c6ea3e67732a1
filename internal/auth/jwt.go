// AngelaMos | 2026
// jwt.go

package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/mariposa-labs/storefront/internal/config"
	"github.com/mariposa-labs/storefront/internal/core"
)

const rolesClaim = "roles"

// JWTManager signs and verifies access tokens with a single symmetric
// HS256 key. Tokens are self-contained: subject (the user's email), a
// comma-joined roles claim, issued-at and a fixed validity window.
type JWTManager struct {
	key    jwk.Key
	config config.JWTConfig
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	if len(cfg.Secret) < config.MinJWTSecretLength {
		return nil, fmt.Errorf(
			"jwt secret too short: need at least %d bytes for HS256",
			config.MinJWTSecretLength,
		)
	}

	key, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("import signing key: %w", err)
	}

	if setErr := key.Set(jwk.AlgorithmKey, jwa.HS256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	return &JWTManager{
		key:    key,
		config: cfg,
	}, nil
}

// AccessTokenClaims is the decoded claims bag of a verified token.
type AccessTokenClaims struct {
	Subject   string
	Roles     []string
	ExpiresAt time.Time
}

func (m *JWTManager) CreateAccessToken(
	subject string,
	roles []string,
) (string, error) {
	now := time.Now()

	token, err := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(m.config.Issuer).
		Audience([]string{m.config.Audience}).
		Subject(subject).
		IssuedAt(now).
		Expiration(now.Add(m.config.TokenValidity)).
		NotBefore(now).
		Claim(rolesClaim, strings.Join(roles, ",")).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

func (m *JWTManager) VerifyAccessToken(
	tokenString string,
) (*AccessTokenClaims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), m.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	var rolesStr string
	if err := token.Get(rolesClaim, &rolesStr); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing roles claim: %w",
			core.ErrTokenInvalid,
		)
	}

	expiration, ok := token.Expiration()
	if !ok {
		return nil, fmt.Errorf(
			"verify token: missing expiration: %w",
			core.ErrTokenInvalid,
		)
	}

	return &AccessTokenClaims{
		Subject:   subject,
		Roles:     splitRoles(rolesStr),
		ExpiresAt: expiration,
	}, nil
}

func (m *JWTManager) TokenValidity() time.Duration {
	return m.config.TokenValidity
}

func splitRoles(s string) []string {
	parts := strings.Split(s, ",")
	roles := make([]string, 0, len(parts))
	for _, part := range parts {
		if role := strings.TrimSpace(part); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}
