package challenge

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/go-account-api/internal/domain"
)

type ValidateRequest struct {
	Email            string
	ChallengeToken   string
	VerificationCode string
}

type Validation struct {
	Valid       bool
	ChallengeID string
}

// ConsumedError reports a challenge that already passed validation once.
type ConsumedError struct {
	ChallengeID string
}

func (e *ConsumedError) Error() string { return domain.ErrChallengeAlreadyUsed.Message }

func (e *ConsumedError) Unwrap() error { return domain.ErrChallengeAlreadyUsed }

// Validator checks a presented challenge token and code against the store.
type Validator struct {
	store  challengeStore
	tokens challengeTokens
	now    func() time.Time
}

func NewValidator(deps Deps) *Validator {
	return &Validator{store: deps.Store, tokens: deps.Tokens, now: nowFunc(deps.Now)}
}

// Validate accepts a challenge at most once. A challenge seen after its expiry
// is retired as a side effect.
func (v *Validator) Validate(ctx context.Context, req ValidateRequest) (*Validation, error) {
	claims, err := v.tokens.VerifyChallenge(req.ChallengeToken)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != domain.PurposeEmailVerification {
		return nil, domain.ErrTokenInvalid
	}

	c, err := v.store.Get(ctx, claims.ChallengeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrChallengeNotFound
		}
		return nil, err
	}

	email := domain.NormalizeEmail(req.Email)
	if c.Email != email || c.Email != domain.NormalizeEmail(claims.Email) {
		return nil, domain.ErrEmailMismatch
	}
	if subtle.ConstantTimeCompare([]byte(c.VerificationCode), []byte(req.VerificationCode)) != 1 {
		return nil, domain.ErrInvalidVerificationCode
	}

	if c.Status == domain.StatusExpired || c.IsExpired(v.now()) {
		if c.Status == domain.StatusActive {
			if _, err := v.store.Transition(ctx, c.ChallengeID, domain.StatusActive, domain.StatusExpired, v.now()); err != nil {
				slog.Warn("failed to expire challenge", "challenge_id", c.ChallengeID, "err", err)
			}
		}
		return nil, domain.ErrChallengeExpired
	}

	switch c.Status {
	case domain.StatusSuperseded:
		return nil, domain.ErrChallengeSuperseded
	case domain.StatusConsumed:
		return nil, &ConsumedError{ChallengeID: c.ChallengeID}
	}

	ok, err := v.store.Transition(ctx, c.ChallengeID, domain.StatusActive, domain.StatusConsumed, v.now())
	switch {
	case err != nil:
		// The code and expiry checks passed; a failed write only widens the
		// window in which the same challenge could be presented again.
		slog.Warn("failed to mark challenge consumed", "challenge_id", c.ChallengeID, "err", err)
	case !ok:
		return nil, &ConsumedError{ChallengeID: c.ChallengeID}
	}
	return &Validation{Valid: true, ChallengeID: c.ChallengeID}, nil
}
