package domain

import (
	"fmt"
	"time"
)

// PasswordReset holds the bcrypt hash of a short reset code mailed to the user.
type PasswordReset struct {
	ResetID   string       `json:"id" dynamodbav:"reset_id"`
	Email     string       `json:"email" dynamodbav:"email"`
	CodeHash  string       `json:"-" dynamodbav:"code_hash"`
	Status    RecordStatus `json:"status" dynamodbav:"status"`
	ExpiresAt time.Time    `json:"expires_at" dynamodbav:"expires_at,unixtime"`
	CreatedAt time.Time    `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time    `json:"updated" dynamodbav:"updated_at"`
}

func NewPasswordReset(id, email, codeHash string, ttl time.Duration, now time.Time) (*PasswordReset, error) {
	email = NormalizeEmail(email)
	switch {
	case id == "":
		return nil, fmt.Errorf("reset id required: %w", ErrBadRequest)
	case email == "":
		return nil, fmt.Errorf("reset email required: %w", ErrBadRequest)
	case codeHash == "":
		return nil, fmt.Errorf("reset code hash required: %w", ErrBadRequest)
	}
	now = now.UTC()
	return &PasswordReset{
		ResetID:   id,
		Email:     email,
		CodeHash:  codeHash,
		Status:    StatusActive,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (p *PasswordReset) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
