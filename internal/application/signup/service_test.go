package signup

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-account-api/internal/application/verification"
	"github.com/go-account-api/internal/config"
	"github.com/go-account-api/internal/domain"
	jwtinfra "github.com/go-account-api/internal/infrastructure/jwt"
	snsinfra "github.com/go-account-api/internal/infrastructure/sns"
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
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

type mockVerificationStore struct{ mock.Mock }

func (m *mockVerificationStore) Get(ctx context.Context, verificationID string) (*domain.UserVerification, error) {
	args := m.Called(ctx, verificationID)
	if v, _ := args.Get(0).(*domain.UserVerification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockVerificationStore) Transition(ctx context.Context, verificationID string, from, to domain.RecordStatus, now time.Time) (bool, error) {
	args := m.Called(ctx, verificationID, from, to, now)
	return args.Bool(0), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, ev snsinfra.AccountEvent) error {
	return m.Called(ctx, ev).Error(0)
}

// --- helpers ---

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const goodPassword = "Aa1!aaaa"

type fixture struct {
	users  *mockUserStore
	store  *mockVerificationStore
	events *mockPublisher
	codec  *jwtinfra.Codec
	svc    Service
}

func newFixture() *fixture {
	f := &fixture{
		users:  &mockUserStore{},
		store:  &mockVerificationStore{},
		events: &mockPublisher{},
		codec: jwtinfra.NewCodec(config.Tokens{
			VerificationSecret: "verification-secret",
			VerificationTTL:    30 * time.Minute,
		}),
	}
	f.svc = NewService(ServiceDeps{
		Users:         f.users,
		Verifications: f.store,
		Tokens:        f.codec,
		Hasher:        password.NewHasher(4),
		Events:        f.events,
		Now:           func() time.Time { return t0 },
	})
	return f
}

func verifiedRecord() *domain.UserVerification {
	v, _ := domain.NewUserVerification("v-1", "alice@example.com", "123456", "ch-1", 15*time.Minute, t0)
	v.IsVerified = true
	return v
}

func (f *fixture) token(t *testing.T, code, email, verificationID string) string {
	t.Helper()
	secret, err := f.codec.VerificationSecret()
	require.NoError(t, err)
	tok, err := f.codec.SignVerification(verification.SignupHash(secret, code, email, verificationID), email, verificationID, t0)
	require.NoError(t, err)
	return tok
}

// --- tests ---

func TestSignup_CreatesUserAndConsumesRecord(t *testing.T) {
	f := newFixture()
	tok := f.token(t, "123456", "alice@example.com", "v-1")
	f.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	f.store.On("Get", mock.Anything, "v-1").Return(verifiedRecord(), nil)
	f.store.On("Transition", mock.Anything, "v-1", domain.StatusActive, domain.StatusConsumed, t0).Return(true, nil)
	f.users.On("Put", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "alice@example.com" && u.Role == domain.RoleUser && u.PasswordHash != goodPassword
	})).Return(nil)
	f.events.On("Publish", mock.Anything, mock.MatchedBy(func(ev snsinfra.AccountEvent) bool {
		return ev.Type == snsinfra.EventUserSignedUp && ev.Email == "alice@example.com"
	})).Return(nil)

	res, err := f.svc.Signup(context.Background(), Request{Email: "Alice@example.com", Password: goodPassword, VerificationToken: tok})
	require.NoError(t, err)
	assert.Equal(t, "User created successfully", res.Message)
	assert.True(t, password.NewHasher(4).Compare(goodPassword, res.User.PasswordHash))
	f.users.AssertExpectations(t)
	f.store.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestSignup_OverlongPasswordIsBadRequestAndKeepsRecord(t *testing.T) {
	f := newFixture()
	tok := f.token(t, "123456", "alice@example.com", "v-1")
	f.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	f.store.On("Get", mock.Anything, "v-1").Return(verifiedRecord(), nil)

	_, err := f.svc.Signup(context.Background(), Request{Email: "alice@example.com", Password: "Aa1!" + strings.Repeat("a", 80), VerificationToken: tok})
	assert.ErrorIs(t, err, domain.ErrPasswordTooLong)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	f.store.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSignup_ExistingUserIsConflictBeforeRecordLookup(t *testing.T) {
	f := newFixture()
	tok := f.token(t, "123456", "alice@example.com", "v-1")
	f.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{UserID: "u-1"}, nil)

	_, err := f.svc.Signup(context.Background(), Request{Email: "alice@example.com", Password: goodPassword, VerificationToken: tok})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	assert.ErrorIs(t, err, domain.ErrConflict)
	f.store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSignup_TamperedHashRejected(t *testing.T) {
	f := newFixture()
	tok := f.token(t, "999999", "alice@example.com", "v-1")
	f.users.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	f.store.On("Get", mock.Anything, "v-1").Return(verifiedRecord(), nil)

	_, err := f.svc.Signup(context.Background(), Request{Email: "alice@example.com", Password: goodPassword, VerificationToken: tok})
	assert.ErrorIs(t, err, domain.ErrInvalid)
	f.users.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSignup_TokenEmailMustMatch(t *testing.T) {
	f := newFixture()
	tok := f.token(t, "123456", "alice@example.com", "v-1")

	_, err := f.svc.Signup(context.Background(), Request{Email: "bob@example.com", Password: goodPassword, VerificationToken: tok})
	assert.ErrorIs(t, err, domain.ErrVerificationRequired)
}

func TestSignup_BadToken(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Signup(context.Background(), Request{Email: "alice@example.com", Password: goodPassword, VerificationToken: "junk"})
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestSignup_RecordNotUsable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *domain.UserVerification)
		getErr error
	}{
		{name: "missing", getErr: domain.ErrNotFound},
		{name: "not verified", mutate: func(v *domain.UserVerification) { v.IsVerified = false }},
		{name: "already consumed", mutate: func(v *domain.UserVerification) { v.Status = domain.StatusConsumed }},
		{name: "other email", mutate: func(v *domain.UserVerification) { v.Email = "eve@example.com" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tok := f.token(t, "123456", "alice@example.com", "v-1")
			f.users.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
			if tt.getErr != nil {
				f.store.On("Get", mock.Anything, "v-1").Return(nil, tt.getErr)
			} else {
				rec := verifiedRecord()
				tt.mutate(rec)
				f.store.On("Get", mock.Anything, "v-1").Return(rec, nil)
			}

			_, err := f.svc.Signup(context.Background(), Request{Email: "alice@example.com", Password: goodPassword, VerificationToken: tok})
			assert.ErrorIs(t, err, domain.ErrVerificationNotFound)
		})
	}
}

func TestSignup_LostConsumeRace(t *testing.T) {
	f := newFixture()
	tok := f.token(t, "123456", "alice@example.com", "v-1")
	f.users.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	f.store.On("Get", mock.Anything, "v-1").Return(verifiedRecord(), nil)
	f.store.On("Transition", mock.Anything, "v-1", domain.StatusActive, domain.StatusConsumed, mock.Anything).Return(false, nil)

	_, err := f.svc.Signup(context.Background(), Request{Email: "alice@example.com", Password: goodPassword, VerificationToken: tok})
	assert.ErrorIs(t, err, domain.ErrVerificationNotFound)
	f.users.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSignup_UserWriteFailureRestoresRecord(t *testing.T) {
	f := newFixture()
	tok := f.token(t, "123456", "alice@example.com", "v-1")
	f.users.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	f.store.On("Get", mock.Anything, "v-1").Return(verifiedRecord(), nil)
	f.store.On("Transition", mock.Anything, "v-1", domain.StatusActive, domain.StatusConsumed, mock.Anything).Return(true, nil)
	f.store.On("Transition", mock.Anything, "v-1", domain.StatusConsumed, domain.StatusActive, mock.Anything).Return(true, nil)
	f.users.On("Put", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	_, err := f.svc.Signup(context.Background(), Request{Email: "alice@example.com", Password: goodPassword, VerificationToken: tok})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	f.store.AssertExpectations(t)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestSignup_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	tok := f.token(t, "123456", "alice@example.com", "v-1")
	f.users.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	f.store.On("Get", mock.Anything, "v-1").Return(verifiedRecord(), nil)
	f.store.On("Transition", mock.Anything, "v-1", domain.StatusActive, domain.StatusConsumed, mock.Anything).Return(true, nil)
	f.users.On("Put", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(errors.New("sns down"))

	res, err := f.svc.Signup(context.Background(), Request{Email: "alice@example.com", Password: goodPassword, VerificationToken: tok})
	require.NoError(t, err)
	assert.NotNil(t, res.User)
}
