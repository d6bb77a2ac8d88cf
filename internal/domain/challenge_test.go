package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerificationChallenge_NormalizesAndActivates(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c, err := NewVerificationChallenge("c1", "  Bob@Example.COM ", "123456", PurposeEmailVerification, 15*time.Minute, now)
	require.NoError(t, err)

	assert.Equal(t, "bob@example.com", c.Email)
	assert.Equal(t, StatusActive, c.Status)
	assert.Equal(t, now.Add(15*time.Minute), c.ExpiresAt)
	assert.Equal(t, now.Add(15*time.Minute+24*time.Hour).Unix(), c.PurgeAt)
	assert.False(t, c.IsExpired(now.Add(15*time.Minute)))
	assert.True(t, c.IsExpired(now.Add(15*time.Minute+time.Second)))
}

func TestNewVerificationChallenge_RequiresFields(t *testing.T) {
	now := time.Now()
	cases := map[string]func() error{
		"id": func() error {
			_, err := NewVerificationChallenge("", "a@x.com", "1", PurposeEmailVerification, time.Minute, now)
			return err
		},
		"email": func() error {
			_, err := NewVerificationChallenge("c", " ", "1", PurposeEmailVerification, time.Minute, now)
			return err
		},
		"code": func() error {
			_, err := NewVerificationChallenge("c", "a@x.com", "", PurposeEmailVerification, time.Minute, now)
			return err
		},
		"purpose": func() error {
			_, err := NewVerificationChallenge("c", "a@x.com", "1", "login", time.Minute, now)
			return err
		},
		"ttl": func() error {
			_, err := NewVerificationChallenge("c", "a@x.com", "1", PurposeEmailVerification, 0, now)
			return err
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, fn(), ErrBadRequest)
		})
	}
}

func TestNewUser_DefaultsToUserRole(t *testing.T) {
	u, err := NewUser("u1", "A@X.com", "hash", time.Now())
	require.NoError(t, err)
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, "a@x.com", u.Email)

	_, err = NewUser("u1", "a@x.com", "", time.Now())
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestError_UnwrapsToKind(t *testing.T) {
	var err error = ErrChallengeExpired
	assert.True(t, errors.Is(err, ErrExpired))
	assert.False(t, errors.Is(err, ErrInvalid))

	var coded *Error
	require.True(t, errors.As(err, &coded))
	assert.Equal(t, "CHALLENGE_EXPIRED", coded.Code)
}

func TestRecordStatus_Terminal(t *testing.T) {
	assert.False(t, StatusActive.Terminal())
	assert.True(t, StatusConsumed.Terminal())
	assert.True(t, StatusSuperseded.Terminal())
	assert.True(t, StatusExpired.Terminal())
}
