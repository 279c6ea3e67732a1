// AngelaMos | 2026
// service_test.go

package auth_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariposa-labs/storefront/internal/auth"
	"github.com/mariposa-labs/storefront/internal/core"
)

// fakeUsers is an in-memory auth.UserProvider.
type fakeUsers struct {
	byEmail map[string]*auth.UserInfo
	nextID  int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: make(map[string]*auth.UserInfo)}
}

func (f *fakeUsers) GetByEmail(
	_ context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return user, nil
}

func (f *fakeUsers) GetByID(
	_ context.Context,
	id string,
) (*auth.UserInfo, error) {
	for _, user := range f.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (f *fakeUsers) Create(
	_ context.Context,
	email, passwordHash, role string,
) (*auth.UserInfo, error) {
	key := strings.ToLower(email)
	if _, ok := f.byEmail[key]; ok {
		return nil, fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}

	f.nextID++
	user := &auth.UserInfo{
		ID:           fmt.Sprintf("user-%d", f.nextID),
		Email:        key,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	f.byEmail[key] = user
	return user, nil
}

func (f *fakeUsers) ExistsAny(_ context.Context) (bool, error) {
	return len(f.byEmail) > 0, nil
}

func newTestService(t *testing.T) (*auth.Service, *fakeUsers) {
	t.Helper()

	manager, err := auth.NewJWTManager(testJWTConfig())
	require.NoError(t, err)

	users := newFakeUsers()
	return auth.NewService(manager, users), users
}

func TestRegister_FirstUserBecomesAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, auth.RegisterRequest{
		Email:    "first@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, first.Role)

	second, err := svc.Register(ctx, auth.RegisterRequest{
		Email:    "second@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, second.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterRequest{
		Email:    "dup@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, auth.RegisterRequest{
		Email:    "dup@example.com",
		Password: "different456",
	})
	assert.ErrorIs(t, err, auth.ErrEmailExists)
}

func TestRegister_PasswordIsHashed(t *testing.T) {
	svc, users := newTestService(t)
	ctx := context.Background()

	const raw = "password123"
	_, err := svc.Register(ctx, auth.RegisterRequest{
		Email:    "hash@example.com",
		Password: raw,
	})
	require.NoError(t, err)

	stored := users.byEmail["hash@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, raw, stored.PasswordHash)

	valid, err := core.VerifyPassword(raw, stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterRequest{
		Email:    "login@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, auth.LoginRequest{
		Email:    "login@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "login@example.com", resp.User.Email)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
}

func TestLogin_GenericFailure(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterRequest{
		Email:    "known@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, unknownErr := svc.Login(ctx, auth.LoginRequest{
		Email:    "unknown@example.com",
		Password: "password123",
	})
	_, wrongErr := svc.Login(ctx, auth.LoginRequest{
		Email:    "known@example.com",
		Password: "wrongpassword",
	})

	assert.ErrorIs(t, unknownErr, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, auth.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestResolvePrincipal(t *testing.T) {
	svc, users := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, auth.RegisterRequest{
		Email:    "principal@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, auth.LoginRequest{
		Email:    "principal@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	principal, err := svc.ResolvePrincipal(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, principal.UserID)
	assert.Equal(t, "principal@example.com", principal.Email)
	assert.True(t, principal.HasRole(auth.RoleAdmin))

	delete(users.byEmail, "principal@example.com")

	_, err = svc.ResolvePrincipal(ctx, resp.Token)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
