package domain

import (
	"fmt"
	"strings"
	"time"
)

// Purposes embedded in challenges and signed tokens.
const (
	PurposeEmailVerification   = "email_verification"
	PurposeSignupAuthorization = "signup_authorization"
)

// VerificationChallenge is a one-time code bound to an email.
// At most one challenge per email is active at a time.
type VerificationChallenge struct {
	ChallengeID      string       `json:"id" dynamodbav:"challenge_id"`
	Email            string       `json:"email" dynamodbav:"email"`
	VerificationCode string       `json:"-" dynamodbav:"verification_code"`
	Purpose          string       `json:"purpose" dynamodbav:"purpose"`
	Status           RecordStatus `json:"status" dynamodbav:"status"`
	ExpiresAt        time.Time    `json:"expires_at" dynamodbav:"expires_at,unixtime"`
	PurgeAt          int64        `json:"-" dynamodbav:"purge_at"` // TTL (Unix seconds)
	CreatedAt        time.Time    `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time    `json:"updated" dynamodbav:"updated_at"`
}

// purgeGrace keeps tombstoned rows around for a day before DynamoDB TTL reclaims them.
const purgeGrace = 24 * time.Hour

// NewVerificationChallenge builds an active challenge expiring ttl after now.
func NewVerificationChallenge(id, email, code, purpose string, ttl time.Duration, now time.Time) (*VerificationChallenge, error) {
	email = NormalizeEmail(email)
	switch {
	case id == "":
		return nil, fmt.Errorf("challenge id required: %w", ErrBadRequest)
	case email == "":
		return nil, fmt.Errorf("challenge email required: %w", ErrBadRequest)
	case code == "":
		return nil, fmt.Errorf("challenge code required: %w", ErrBadRequest)
	case purpose != PurposeEmailVerification && purpose != PurposeSignupAuthorization:
		return nil, fmt.Errorf("unknown challenge purpose %q: %w", purpose, ErrBadRequest)
	case ttl <= 0:
		return nil, fmt.Errorf("challenge ttl must be positive: %w", ErrBadRequest)
	}
	now = now.UTC()
	expiresAt := now.Add(ttl)
	return &VerificationChallenge{
		ChallengeID:      id,
		Email:            email,
		VerificationCode: code,
		Purpose:          purpose,
		Status:           StatusActive,
		ExpiresAt:        expiresAt,
		PurgeAt:          expiresAt.Add(purgeGrace).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// IsExpired reports whether the challenge's expiry has passed at now.
func (c *VerificationChallenge) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
