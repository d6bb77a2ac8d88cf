package verification

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-account-api/internal/application/challenge"
	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/infrastructure/mail"
	"github.com/go-account-api/internal/pkg/id"
	"github.com/go-account-api/internal/pkg/token"
)

type Service interface {
	SendVerificationCode(ctx context.Context, email string) (*SendResult, error)
	VerifyCode(ctx context.Context, req VerifyRequest) (*VerifyResult, error)
}

type SendResult struct {
	Message        string
	ChallengeToken string
	ExpiresIn      time.Duration
}

type VerifyRequest struct {
	Email            string
	VerificationCode string
	ChallengeToken   string
}

type VerifyResult struct {
	Verified          bool
	VerificationID    string
	VerificationToken string
}

type challengeIssuer interface {
	CreateChallenge(ctx context.Context, email, code string) (*challenge.Issued, error)
}

type challengeValidator interface {
	Validate(ctx context.Context, req challenge.ValidateRequest) (*challenge.Validation, error)
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.UserVerification) error
	Get(ctx context.Context, verificationID string) (*domain.UserVerification, error)
	GetActiveByEmail(ctx context.Context, email string) (*domain.UserVerification, error)
	Reissue(ctx context.Context, verificationID, code, challengeID string, expiresAt, now time.Time) (bool, error)
	MarkVerified(ctx context.Context, verificationID string, verifiedAt time.Time) (bool, error)
	Transition(ctx context.Context, verificationID string, from, to domain.RecordStatus, now time.Time) (bool, error)
}

type tokenSigner interface {
	VerificationSecret() ([]byte, error)
	SignVerification(hash, email, verificationID string, verifiedAt time.Time) (string, error)
}

type emailSender interface {
	SendEmail(ctx context.Context, msg mail.Message) error
}

type service struct {
	challenges    challengeIssuer
	validator     challengeValidator
	verifications verificationStore
	tokens        tokenSigner
	mailer        emailSender
	codeTTL       time.Duration
	now           func() time.Time
}

type ServiceDeps struct {
	Challenges    challengeIssuer
	Validator     challengeValidator
	Verifications verificationStore
	Tokens        tokenSigner
	Mailer        emailSender
	CodeTTL       time.Duration
	Now           func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		challenges:    deps.Challenges,
		validator:     deps.Validator,
		verifications: deps.Verifications,
		tokens:        deps.Tokens,
		mailer:        deps.Mailer,
		codeTTL:       deps.CodeTTL,
		now:           now,
	}
}

// SignupHash binds a verification token to the code and record it was minted
// for. It is the hex HMAC-SHA256 of "code:email:verificationID".
func SignupHash(secret []byte, code, email, verificationID string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(code + ":" + email + ":" + verificationID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *service) SendVerificationCode(ctx context.Context, email string) (*SendResult, error) {
	email = domain.NormalizeEmail(email)
	code, err := token.NewNumericCode()
	if err != nil {
		return nil, err
	}

	issued, err := s.challenges.CreateChallenge(ctx, email, code)
	if err != nil {
		return nil, err
	}
	if err := s.upsertVerification(ctx, email, code, issued.ChallengeID); err != nil {
		return nil, err
	}
	if err := s.mailer.SendEmail(ctx, verificationEmail(email, code, issued.ChallengeID, s.codeTTL)); err != nil {
		return nil, fmt.Errorf("send verification email: %w", err)
	}

	return &SendResult{
		Message:        "Verification code sent",
		ChallengeToken: issued.ChallengeToken,
		ExpiresIn:      issued.ExpiresIn,
	}, nil
}

// upsertVerification rewrites the active record for email in place, or
// creates one when there is none.
func (s *service) upsertVerification(ctx context.Context, email, code, challengeID string) error {
	now := s.now()
	existing, err := s.verifications.GetActiveByEmail(ctx, email)
	switch {
	case err == nil:
		ok, err := s.verifications.Reissue(ctx, existing.VerificationID, code, challengeID, now.Add(s.codeTTL), now)
		if err != nil {
			return fmt.Errorf("reissue verification: %w", err)
		}
		if ok {
			return nil
		}
		// retired between read and write; start a fresh record
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	v, err := domain.NewUserVerification(id.New(), email, code, challengeID, s.codeTTL, now)
	if err != nil {
		return err
	}
	return s.verifications.Put(ctx, v)
}

func (s *service) VerifyCode(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	email := domain.NormalizeEmail(req.Email)

	var challengeID string
	res, err := s.validator.Validate(ctx, challenge.ValidateRequest{
		Email:            email,
		ChallengeToken:   req.ChallengeToken,
		VerificationCode: req.VerificationCode,
	})
	var consumed *challenge.ConsumedError
	switch {
	case err == nil:
		challengeID = res.ChallengeID
	case errors.As(err, &consumed):
		challengeID = consumed.ChallengeID
	default:
		return nil, err
	}

	rec, err := s.currentVerification(ctx, email)
	if err != nil {
		return nil, err
	}

	if consumed != nil {
		// A replayed challenge only succeeds for the record it already verified.
		if rec.ChallengeID != challengeID || !rec.IsVerified {
			return nil, consumed
		}
	} else if rec.ChallengeID != challengeID {
		return nil, domain.ErrChallengeMismatch
	}

	if rec.IsVerified {
		verifiedAt := s.now()
		if rec.VerifiedAt != nil {
			verifiedAt = *rec.VerifiedAt
		}
		return s.success(rec, verifiedAt)
	}

	if subtle.ConstantTimeCompare([]byte(rec.VerificationCode), []byte(req.VerificationCode)) != 1 {
		return nil, domain.ErrInvalidVerificationCode
	}
	now := s.now()
	if rec.IsExpired(now) {
		if _, err := s.verifications.Transition(ctx, rec.VerificationID, domain.StatusActive, domain.StatusExpired, now); err != nil {
			slog.Warn("failed to expire verification", "verification_id", rec.VerificationID, "err", err)
		}
		return nil, domain.ErrVerificationExpired
	}

	ok, err := s.verifications.MarkVerified(ctx, rec.VerificationID, now)
	if err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}
	if !ok {
		return nil, domain.ErrVerificationNotFound
	}
	return s.success(rec, now)
}

// currentVerification finds the active record by email, then re-reads it by
// id so a reissue that the email index has not caught up with is seen.
func (s *service) currentVerification(ctx context.Context, email string) (*domain.UserVerification, error) {
	found, err := s.verifications.GetActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrVerificationNotFound
		}
		return nil, err
	}
	rec, err := s.verifications.Get(ctx, found.VerificationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrVerificationNotFound
		}
		return nil, err
	}
	if rec.Status != domain.StatusActive {
		return nil, domain.ErrVerificationNotFound
	}
	return rec, nil
}

func (s *service) success(rec *domain.UserVerification, verifiedAt time.Time) (*VerifyResult, error) {
	secret, err := s.tokens.VerificationSecret()
	if err != nil {
		return nil, err
	}
	hash := SignupHash(secret, rec.VerificationCode, rec.Email, rec.VerificationID)
	signed, err := s.tokens.SignVerification(hash, rec.Email, rec.VerificationID, verifiedAt)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Verified: true, VerificationID: rec.VerificationID, VerificationToken: signed}, nil
}
