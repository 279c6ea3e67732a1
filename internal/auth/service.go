// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mariposa-labs/storefront/internal/core"
	"github.com/mariposa-labs/storefront/internal/middleware"
)

// Canonical role strings. The token's roles claim, the credential store and
// the route guards all use these; no prefixed variants exist anywhere.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
)

type UserInfo struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// UserProvider is the credential-store capability the auth service needs:
// lookup by email/id, creation, and an existence probe for the bootstrap
// rule.
type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(
		ctx context.Context,
		email, passwordHash, role string,
	) (*UserInfo, error)
	ExistsAny(ctx context.Context) (bool, error)
}

type Service struct {
	jwt   *JWTManager
	users UserProvider
}

func NewService(jwt *JWTManager, users UserProvider) *Service {
	return &Service{
		jwt:   jwt,
		users: users,
	}
}

// Register creates a user with a hashed password. The very first account in
// an empty store is promoted to admin regardless of what was requested;
// every later registration starts as a plain user.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*UserInfo, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := RoleUser
	exists, err := s.users.ExistsAny(ctx)
	if err != nil {
		return nil, fmt.Errorf("check existing users: %w", err)
	}
	if !exists {
		role = RoleAdmin
	}

	user, err := s.users.Create(ctx, req.Email, passwordHash, role)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password both fail with the same generic error so callers cannot
// enumerate accounts, and the password check runs either way to keep
// timing flat.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.updatePasswordHash(ctx, user.ID, newHash)
	}

	token, err := s.jwt.CreateAccessToken(user.Email, []string{user.Role})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: time.Now().Add(s.jwt.TokenValidity()),
		User:      toUserResponse(user),
	}, nil
}

// ResolvePrincipal implements middleware.PrincipalResolver: verify the
// bearer token, then resolve its subject against the credential store. A
// token whose subject no longer exists does not authenticate.
func (s *Service) ResolvePrincipal(
	ctx context.Context,
	token string,
) (*middleware.Principal, error) {
	claims, err := s.jwt.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("resolve principal: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("resolve principal: %w", err)
	}

	return &middleware.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  claims.Roles,
	}, nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// PasswordUpdater is optional: providers that support it get transparent
// argon2 parameter upgrades on login.
type PasswordUpdater interface {
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

func (s *Service) updatePasswordHash(
	ctx context.Context,
	userID, hash string,
) error {
	updater, ok := s.users.(PasswordUpdater)
	if !ok {
		return nil
	}
	return updater.UpdatePassword(ctx, userID, hash)
}

func toUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

var _ middleware.PrincipalResolver = (*Service)(nil)
