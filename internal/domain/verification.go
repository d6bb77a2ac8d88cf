package domain

import (
	"fmt"
	"time"
)

// UserVerification tracks the pending email verification for an address.
// ChallengeID is a weak reference to the challenge issued on the last send.
type UserVerification struct {
	VerificationID   string       `json:"id" dynamodbav:"verification_id"`
	Email            string       `json:"email" dynamodbav:"email"`
	VerificationCode string       `json:"-" dynamodbav:"verification_code"`
	ChallengeID      string       `json:"challenge_id" dynamodbav:"challenge_id"`
	IsVerified       bool         `json:"is_verified" dynamodbav:"is_verified"`
	VerifiedAt       *time.Time   `json:"verified_at,omitempty" dynamodbav:"verified_at"`
	Status           RecordStatus `json:"status" dynamodbav:"status"`
	ExpiresAt        time.Time    `json:"expires_at" dynamodbav:"expires_at,unixtime"`
	CreatedAt        time.Time    `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time    `json:"updated" dynamodbav:"updated_at"`
}

func NewUserVerification(id, email, code, challengeID string, ttl time.Duration, now time.Time) (*UserVerification, error) {
	email = NormalizeEmail(email)
	switch {
	case id == "":
		return nil, fmt.Errorf("verification id required: %w", ErrBadRequest)
	case email == "":
		return nil, fmt.Errorf("verification email required: %w", ErrBadRequest)
	case code == "":
		return nil, fmt.Errorf("verification code required: %w", ErrBadRequest)
	case challengeID == "":
		return nil, fmt.Errorf("verification challenge id required: %w", ErrBadRequest)
	}
	now = now.UTC()
	return &UserVerification{
		VerificationID:   id,
		Email:            email,
		VerificationCode: code,
		ChallengeID:      challengeID,
		Status:           StatusActive,
		ExpiresAt:        now.Add(ttl),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func (v *UserVerification) IsExpired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
