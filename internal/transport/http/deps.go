package http

import (
	"context"
	"time"

	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/infrastructure/admin"
	jwtinfra "github.com/go-account-api/internal/infrastructure/jwt"
	"github.com/go-account-api/internal/infrastructure/mail"
	snsinfra "github.com/go-account-api/internal/infrastructure/sns"
	"github.com/go-account-api/internal/pkg/password"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, userID string) error
}

// ChallengeRepository is the minimal interface the router requires from a challenge store.
type ChallengeRepository interface {
	Put(ctx context.Context, c *domain.VerificationChallenge) error
	Get(ctx context.Context, challengeID string) (*domain.VerificationChallenge, error)
	ListActiveByEmail(ctx context.Context, email string) ([]domain.VerificationChallenge, error)
	ListExpiredActive(ctx context.Context, now time.Time) ([]domain.VerificationChallenge, error)
	Transition(ctx context.Context, challengeID string, from, to domain.RecordStatus, now time.Time) (bool, error)
}

// VerificationRepository is the minimal interface the router requires from a verification store.
type VerificationRepository interface {
	Put(ctx context.Context, v *domain.UserVerification) error
	Get(ctx context.Context, verificationID string) (*domain.UserVerification, error)
	GetActiveByEmail(ctx context.Context, email string) (*domain.UserVerification, error)
	Reissue(ctx context.Context, verificationID, code, challengeID string, expiresAt, now time.Time) (bool, error)
	MarkVerified(ctx context.Context, verificationID string, verifiedAt time.Time) (bool, error)
	Transition(ctx context.Context, verificationID string, from, to domain.RecordStatus, now time.Time) (bool, error)
}

// PasswordResetRepository is the minimal interface the router requires from a reset store.
type PasswordResetRepository interface {
	Put(ctx context.Context, p *domain.PasswordReset) error
	ListActiveByEmail(ctx context.Context, email string) ([]domain.PasswordReset, error)
	Transition(ctx context.Context, resetID string, from, to domain.RecordStatus, now time.Time) (bool, error)
}

// ImageStore is the object storage backend for profile images.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev snsinfra.AccountEvent) error
}

type EmailLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type NationalIDReader interface {
	Extract(ctx context.Context, frontBase64, backBase64 string) (map[string]string, error)
}

// Deps holds all infrastructure dependencies for the router.
// Events, EmailLimiter and OCR are optional and must be left nil when unset.
type Deps struct {
	UserRepo          UserRepository
	ChallengeRepo     ChallengeRepository
	VerificationRepo  VerificationRepository
	PasswordResetRepo PasswordResetRepository
	Images            ImageStore
	Mailer            mail.Mailer
	Events            EventPublisher
	EmailLimiter      EmailLimiter
	OCR               NationalIDReader
	Tokens            *jwtinfra.Codec
	Hasher            *password.Hasher
	Admins            *admin.Whitelist
}
