package passwordreset

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/infrastructure/mail"
	"github.com/go-account-api/internal/pkg/id"
	"github.com/go-account-api/internal/pkg/token"
)

const codeLength = 6

type ResetRequest struct {
	Email       string
	Code        string
	NewPassword string
}

type Service interface {
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req ResetRequest) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type resetStore interface {
	Put(ctx context.Context, p *domain.PasswordReset) error
	ListActiveByEmail(ctx context.Context, email string) ([]domain.PasswordReset, error)
	Transition(ctx context.Context, resetID string, from, to domain.RecordStatus, now time.Time) (bool, error)
}

type passwordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, digest string) bool
}

type adminList interface {
	Contains(email string) bool
}

type emailSender interface {
	SendEmail(ctx context.Context, msg mail.Message) error
}

type service struct {
	users   userStore
	resets  resetStore
	hasher  passwordHasher
	admins  adminList
	mailer  emailSender
	codeTTL time.Duration
	now     func() time.Time
}

type ServiceDeps struct {
	Users   userStore
	Resets  resetStore
	Hasher  passwordHasher
	Admins  adminList
	Mailer  emailSender
	CodeTTL time.Duration
	Now     func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:   deps.Users,
		resets:  deps.Resets,
		hasher:  deps.Hasher,
		admins:  deps.Admins,
		mailer:  deps.Mailer,
		codeTTL: deps.CodeTTL,
		now:     now,
	}
}

func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if s.admins.Contains(email) {
		return domain.ErrPasswordResetUnavailable
	}
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	code, err := token.NewAlphanumericCode(codeLength)
	if err != nil {
		return err
	}
	codeHash, err := s.hasher.Hash(code)
	if err != nil {
		return err
	}

	active, err := s.resets.ListActiveByEmail(ctx, email)
	if err != nil {
		return err
	}
	for _, prev := range active {
		if _, err := s.resets.Transition(ctx, prev.ResetID, domain.StatusActive, domain.StatusSuperseded, s.now()); err != nil {
			return fmt.Errorf("supersede reset %s: %w", prev.ResetID, err)
		}
	}

	reset, err := domain.NewPasswordReset(id.New(), email, codeHash, s.codeTTL, s.now())
	if err != nil {
		return err
	}
	if err := s.resets.Put(ctx, reset); err != nil {
		return fmt.Errorf("store password reset: %w", err)
	}
	if err := s.mailer.SendEmail(ctx, resetEmail(email, code, s.codeTTL)); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

func (s *service) ResetPassword(ctx context.Context, req ResetRequest) error {
	email := domain.NormalizeEmail(req.Email)
	reset, err := s.latestActive(ctx, email)
	if err != nil {
		return err
	}
	if !s.hasher.Compare(strings.ToUpper(strings.TrimSpace(req.Code)), reset.CodeHash) {
		return domain.ErrResetCodeInvalid
	}
	if reset.IsExpired(s.now()) {
		if _, err := s.resets.Transition(ctx, reset.ResetID, domain.StatusActive, domain.StatusExpired, s.now()); err != nil {
			slog.Warn("failed to expire password reset", "reset_id", reset.ResetID, "err", err)
		}
		return domain.ErrResetCodeExpired
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	if s.hasher.Compare(req.NewPassword, u.PasswordHash) {
		return domain.ErrPasswordReused
	}
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	ok, err := s.resets.Transition(ctx, reset.ResetID, domain.StatusActive, domain.StatusConsumed, s.now())
	if err != nil {
		return fmt.Errorf("consume password reset: %w", err)
	}
	if !ok {
		return domain.ErrResetCodeInvalid
	}
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{"password_hash": hash}); err != nil {
		if _, rerr := s.resets.Transition(ctx, reset.ResetID, domain.StatusConsumed, domain.StatusActive, s.now()); rerr != nil {
			slog.Warn("failed to restore password reset", "reset_id", reset.ResetID, "err", rerr)
		}
		return err
	}
	return nil
}

func (s *service) latestActive(ctx context.Context, email string) (*domain.PasswordReset, error) {
	resets, err := s.resets.ListActiveByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(resets) == 0 {
		return nil, domain.ErrResetCodeInvalid
	}
	latest := &resets[0]
	for i := range resets[1:] {
		if resets[i+1].CreatedAt.After(latest.CreatedAt) {
			latest = &resets[i+1]
		}
	}
	return latest, nil
}

func resetEmail(to, code string, ttl time.Duration) mail.Message {
	minutes := int(ttl.Minutes())
	return mail.Message{
		To:      to,
		Subject: "Reset your password",
		Text:    fmt.Sprintf("Your password reset code is: %s. This code expires in %d minutes.", code, minutes),
		HTML: fmt.Sprintf(`<div style="font-family:sans-serif">
  <h2>Reset your password</h2>
  <p>Use this code to choose a new password:</p>
  <p style="font-size:28px;letter-spacing:6px"><strong>%s</strong></p>
  <p>This code expires in %d minutes. If you did not ask for a reset you can ignore this email.</p>
</div>`, html.EscapeString(code), minutes),
	}
}
