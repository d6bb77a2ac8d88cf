package signup

import (
	"context"
	"crypto/hmac"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-account-api/internal/application/verification"
	"github.com/go-account-api/internal/domain"
	jwtinfra "github.com/go-account-api/internal/infrastructure/jwt"
	snsinfra "github.com/go-account-api/internal/infrastructure/sns"
	"github.com/go-account-api/internal/pkg/id"
)

type Service interface {
	Signup(ctx context.Context, req Request) (*Result, error)
}

type Request struct {
	Email             string
	Password          string
	VerificationToken string
}

type Result struct {
	User    *domain.User
	Message string
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

type verificationStore interface {
	Get(ctx context.Context, verificationID string) (*domain.UserVerification, error)
	Transition(ctx context.Context, verificationID string, from, to domain.RecordStatus, now time.Time) (bool, error)
}

type tokenVerifier interface {
	VerificationSecret() ([]byte, error)
	VerifyVerification(token string) (*jwtinfra.VerificationClaims, error)
}

type passwordHasher interface {
	Hash(plain string) (string, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, ev snsinfra.AccountEvent) error
}

type service struct {
	users         userStore
	verifications verificationStore
	tokens        tokenVerifier
	hasher        passwordHasher
	events        eventPublisher
	now           func() time.Time
}

type ServiceDeps struct {
	Users         userStore
	Verifications verificationStore
	Tokens        tokenVerifier
	Hasher        passwordHasher
	Events        eventPublisher // optional
	Now           func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:         deps.Users,
		verifications: deps.Verifications,
		tokens:        deps.Tokens,
		hasher:        deps.Hasher,
		events:        deps.Events,
		now:           now,
	}
}

func (s *service) Signup(ctx context.Context, req Request) (*Result, error) {
	claims, err := s.tokens.VerifyVerification(req.VerificationToken)
	if err != nil {
		return nil, err
	}
	email := domain.NormalizeEmail(req.Email)
	if claims.Purpose != domain.PurposeSignupAuthorization || domain.NormalizeEmail(claims.Email) != email {
		return nil, domain.ErrVerificationRequired
	}

	// Checked first so a replay after a completed signup reports the conflict.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	rec, err := s.verifications.Get(ctx, claims.VerificationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrVerificationNotFound
		}
		return nil, err
	}
	if rec.Email != email || !rec.IsVerified || rec.Status != domain.StatusActive {
		return nil, domain.ErrVerificationNotFound
	}
	if rec.ChallengeID == "" {
		return nil, domain.ErrVerificationRequired
	}

	secret, err := s.tokens.VerificationSecret()
	if err != nil {
		return nil, err
	}
	expected := verification.SignupHash(secret, rec.VerificationCode, rec.Email, rec.VerificationID)
	if !hmac.Equal([]byte(expected), []byte(claims.Hash)) {
		return nil, domain.ErrVerificationRequired
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user, err := domain.NewUser(id.New(), email, hash, s.now())
	if err != nil {
		return nil, err
	}

	ok, err := s.verifications.Transition(ctx, rec.VerificationID, domain.StatusActive, domain.StatusConsumed, s.now())
	if err != nil {
		return nil, fmt.Errorf("consume verification: %w", err)
	}
	if !ok {
		return nil, domain.ErrVerificationNotFound
	}

	if err := s.users.Put(ctx, user); err != nil {
		if _, rerr := s.verifications.Transition(ctx, rec.VerificationID, domain.StatusConsumed, domain.StatusActive, s.now()); rerr != nil {
			slog.Warn("failed to restore verification after signup error", "verification_id", rec.VerificationID, "err", rerr)
		}
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.publishSignedUp(ctx, user)
	return &Result{User: user, Message: "User created successfully"}, nil
}

func (s *service) publishSignedUp(ctx context.Context, u *domain.User) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, snsinfra.AccountEvent{
		Type:       snsinfra.EventUserSignedUp,
		UserID:     u.UserID,
		Email:      u.Email,
		OccurredAt: u.CreatedAt,
	})
	if err != nil {
		slog.Warn("failed to publish signup event", "user_id", u.UserID, "err", err)
	}
}
