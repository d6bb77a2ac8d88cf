package challenge

import (
	"context"
	"fmt"
	"time"

	"github.com/go-account-api/internal/domain"
	jwtinfra "github.com/go-account-api/internal/infrastructure/jwt"
	"github.com/go-account-api/internal/pkg/id"
)

type challengeStore interface {
	Put(ctx context.Context, c *domain.VerificationChallenge) error
	Get(ctx context.Context, challengeID string) (*domain.VerificationChallenge, error)
	ListActiveByEmail(ctx context.Context, email string) ([]domain.VerificationChallenge, error)
	ListExpiredActive(ctx context.Context, now time.Time) ([]domain.VerificationChallenge, error)
	Transition(ctx context.Context, challengeID string, from, to domain.RecordStatus, now time.Time) (bool, error)
}

type challengeTokens interface {
	SignChallenge(challengeID, email string) (string, error)
	VerifyChallenge(token string) (*jwtinfra.ChallengeClaims, error)
}

// Issued is a freshly minted challenge handed back to the caller.
type Issued struct {
	ChallengeID    string
	ChallengeToken string
	ExpiresIn      time.Duration
}

// Lifecycle creates challenges and retires stale ones.
type Lifecycle struct {
	store  challengeStore
	tokens challengeTokens
	ttl    time.Duration
	now    func() time.Time
}

type Deps struct {
	Store  challengeStore
	Tokens challengeTokens
	TTL    time.Duration
	Now    func() time.Time
}

func NewLifecycle(deps Deps) *Lifecycle {
	return &Lifecycle{store: deps.Store, tokens: deps.Tokens, ttl: deps.TTL, now: nowFunc(deps.Now)}
}

// CreateChallenge supersedes every active challenge for email, stores a new one
// and signs a token bound to it. Store and token are not atomic: if signing
// fails the stored row is left active until the next call supersedes it.
func (l *Lifecycle) CreateChallenge(ctx context.Context, email, code string) (*Issued, error) {
	email = domain.NormalizeEmail(email)
	now := l.now()
	c, err := domain.NewVerificationChallenge(id.New(), email, code, domain.PurposeEmailVerification, l.ttl, now)
	if err != nil {
		return nil, err
	}

	active, err := l.store.ListActiveByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	for _, prev := range active {
		if _, err := l.store.Transition(ctx, prev.ChallengeID, domain.StatusActive, domain.StatusSuperseded, now); err != nil {
			return nil, fmt.Errorf("supersede challenge %s: %w", prev.ChallengeID, err)
		}
	}

	if err := l.store.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("store challenge: %w", err)
	}
	token, err := l.tokens.SignChallenge(c.ChallengeID, c.Email)
	if err != nil {
		return nil, err
	}
	return &Issued{ChallengeID: c.ChallengeID, ChallengeToken: token, ExpiresIn: l.ttl}, nil
}

// CleanupExpiredChallenges marks every active challenge past its expiry as
// expired and returns how many it changed. Rows another sweeper or validator
// retired first are not counted.
func (l *Lifecycle) CleanupExpiredChallenges(ctx context.Context) (int, error) {
	now := l.now()
	stale, err := l.store.ListExpiredActive(ctx, now)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range stale {
		ok, err := l.store.Transition(ctx, c.ChallengeID, domain.StatusActive, domain.StatusExpired, now)
		if err != nil {
			return n, fmt.Errorf("expire challenge %s: %w", c.ChallengeID, err)
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func nowFunc(f func() time.Time) func() time.Time {
	if f == nil {
		return time.Now
	}
	return f
}
