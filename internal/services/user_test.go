package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eventboard/internal/domain"
)

type mockHasher struct{}

func (mockHasher) GenerateSalt() (string, error) { return "salt", nil }

func (mockHasher) Hash(salt, password string) (string, error) {
	return salt + ":" + password, nil
}

func (mockHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return errors.New("hash mismatch")
	}
	return nil
}

type mockIssuer struct {
	lastRoles []string
}

func (m *mockIssuer) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	m.lastRoles = roles
	return "token-" + userID, nil
}

func newUserServiceFixture(users ...*domain.User) (domain.UserService, *mockUserRepo, *mockIssuer) {
	repo := newMockUserRepo(users...)
	issuer := &mockIssuer{}
	svc := NewUserService(repo, mockHasher{}, issuer, domain.FixedClock{T: testNow}, time.Second)
	return svc, repo, issuer
}

func TestUserCreate(t *testing.T) {
	svc, repo, _ := newUserServiceFixture()
	ctx := context.Background()

	user, err := svc.Create(ctx, "  Alice@Example.COM ", "Alice", "secret")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
	require.Equal(t, "salt:secret", user.PasswordHash)
	require.Equal(t, testNow, user.CreatedAt)
	require.False(t, user.Admin)
	require.Contains(t, repo.users, user.ID)

	_, err = svc.Create(ctx, "alice@example.com", "Alice Again", "secret")
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Create(ctx, "bob@example.com", "", "secret")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestUserLogin(t *testing.T) {
	svc, _, issuer := newUserServiceFixture(&domain.User{
		ID:           "us-1",
		Email:        "admin@example.com",
		Name:         "Admin",
		Admin:        true,
		Salt:         "salt",
		PasswordHash: "salt:secret",
	})
	ctx := context.Background()

	token, user, err := svc.Login(ctx, "Admin@Example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, "token-us-1", token)
	require.Equal(t, "us-1", user.ID)
	require.Equal(t, []string{"admin", "user"}, issuer.lastRoles)

	_, _, err = svc.Login(ctx, "admin@example.com", "wrong")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = svc.Login(ctx, "ghost@example.com", "secret")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestUserDelete(t *testing.T) {
	svc, _, _ := newUserServiceFixture(&domain.User{ID: "us-1", Email: "a@example.com"})
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "us-1"))
	err := svc.Delete(ctx, "us-1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
