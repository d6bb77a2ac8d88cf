package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-account-api/internal/config"
	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/infrastructure/admin"
	jwtinfra "github.com/go-account-api/internal/infrastructure/jwt"
	"github.com/go-account-api/internal/pkg/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

var hasher = password.NewHasher(4)

func newCodec() *jwtinfra.Codec {
	return jwtinfra.NewCodec(config.Tokens{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	})
}

func newSvc(t *testing.T, us *mockUserStore, codec *jwtinfra.Codec) Service {
	t.Helper()
	adminHash, err := hasher.Hash("Admin1!pass")
	require.NoError(t, err)
	return NewService(ServiceDeps{
		UserRepo: us,
		Tokens:   codec,
		Hasher:   hasher,
		Admins:   admin.NewWhitelist([]config.AdminCredential{{Email: "root@example.com", PasswordHash: adminHash}}),
	})
}

func existingUser(t *testing.T) *domain.User {
	t.Helper()
	h, err := hasher.Hash("Alice1!pass")
	require.NoError(t, err)
	return &domain.User{UserID: "user-123", Email: "alice@example.com", PasswordHash: h, Role: domain.RoleUser}
}

// --- Login ---

func TestLogin_User(t *testing.T) {
	us, codec := &mockUserStore{}, newCodec()
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(existingUser(t), nil)

	res, err := newSvc(t, us, codec).Login(context.Background(), LoginRequest{Email: "Alice@Example.com", Password: "Alice1!pass"})
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.Equal(t, "user-123", res.User.UserID)

	claims, err := codec.VerifyAccess(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)

	_, err = codec.VerifyRefresh(res.RefreshToken)
	assert.NoError(t, err)
}

func TestLogin_Admin(t *testing.T) {
	us, codec := &mockUserStore{}, newCodec()

	res, err := newSvc(t, us, codec).Login(context.Background(), LoginRequest{Email: "root@example.com", Password: "Admin1!pass"})
	require.NoError(t, err)
	assert.Nil(t, res.User)

	claims, err := codec.VerifyAccess(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.AdminUserID, claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	us.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestLogin_AdminWrongPasswordFallsThroughToUsers(t *testing.T) {
	us, codec := &mockUserStore{}, newCodec()
	us.On("GetByEmail", mock.Anything, "root@example.com").Return(nil, domain.ErrNotFound)

	_, err := newSvc(t, us, codec).Login(context.Background(), LoginRequest{Email: "root@example.com", Password: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	cases := []struct {
		name     string
		user     *domain.User
		err      error
		password string
	}{
		{name: "unknown email", err: domain.ErrNotFound, password: "Alice1!pass"},
		{name: "wrong password", user: existingUser(t), password: "Wrong1!pass"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			us := &mockUserStore{}
			us.On("GetByEmail", mock.Anything, "alice@example.com").Return(c.user, c.err)

			_, err := newSvc(t, us, newCodec()).Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: c.password})
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
			assert.Equal(t, "Invalid email or password", err.Error())
		})
	}
}

func TestLogin_StoreError(t *testing.T) {
	us := &mockUserStore{}
	boom := errors.New("dynamo down")
	us.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, boom)

	_, err := newSvc(t, us, newCodec()).Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "x"})
	assert.ErrorIs(t, err, boom)
}

// --- Refresh ---

func TestRefresh_MintsAccessForSameIdentity(t *testing.T) {
	codec := newCodec()
	refresh, err := codec.SignRefresh("user-123", "alice@example.com", domain.RoleUser)
	require.NoError(t, err)

	access, err := newSvc(t, &mockUserStore{}, codec).Refresh(context.Background(), refresh)
	require.NoError(t, err)

	claims, err := codec.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	codec := newCodec()
	access, err := codec.SignAccess("user-123", "alice@example.com", domain.RoleUser)
	require.NoError(t, err)

	_, err = newSvc(t, &mockUserStore{}, codec).Refresh(context.Background(), access)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
