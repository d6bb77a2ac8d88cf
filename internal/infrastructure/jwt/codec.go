package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-account-api/internal/config"
	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/pkg/id"
	"github.com/golang-jwt/jwt/v5"
)

// ChallengeClaims binds a challenge token to one stored challenge.
type ChallengeClaims struct {
	ChallengeID string `json:"challengeId"`
	Email       string `json:"email"`
	Purpose     string `json:"purpose"`
	jwt.RegisteredClaims
}

// VerificationClaims is the payload of a verification-success token.
// Hash is the hex HMAC-SHA256 of "code:email:verificationId".
type VerificationClaims struct {
	Hash           string `json:"hash"`
	Email          string `json:"email"`
	VerificationID string `json:"verificationId"`
	Purpose        string `json:"purpose"`
	VerifiedAt     int64  `json:"verifiedAt"` // unix ms
	jwt.RegisteredClaims
}

// UserClaims is the payload of access and refresh tokens.
type UserClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type key struct {
	secret []byte
	ttl    time.Duration
	name   string
}

// Codec signs and verifies the HS256 tokens of each kind with its own secret.
type Codec struct {
	challenge    key
	verification key
	access       key
	refresh      key
	now          func() time.Time
}

func NewCodec(cfg config.Tokens) *Codec {
	return &Codec{
		challenge:    key{secret: []byte(cfg.ChallengeSecret), ttl: cfg.ChallengeTTL, name: "challenge"},
		verification: key{secret: []byte(cfg.VerificationSecret), ttl: cfg.VerificationTTL, name: "verification"},
		access:       key{secret: []byte(cfg.AccessSecret), ttl: cfg.AccessTTL, name: "access"},
		refresh:      key{secret: []byte(cfg.RefreshSecret), ttl: cfg.RefreshTTL, name: "refresh"},
		now:          time.Now,
	}
}

// Missing lists the token kinds that have no secret configured.
func (c *Codec) Missing() []string {
	var out []string
	for _, k := range []key{c.challenge, c.verification, c.access, c.refresh} {
		if len(k.secret) == 0 {
			out = append(out, k.name)
		}
	}
	return out
}

// VerificationSecret is the HMAC key for the hash embedded in verification tokens.
func (c *Codec) VerificationSecret() ([]byte, error) {
	if len(c.verification.secret) == 0 {
		return nil, unconfigured(c.verification)
	}
	return c.verification.secret, nil
}

func (c *Codec) SignChallenge(challengeID, email string) (string, error) {
	return c.sign(c.challenge, &ChallengeClaims{
		ChallengeID:      challengeID,
		Email:            email,
		Purpose:          domain.PurposeEmailVerification,
		RegisteredClaims: c.registered(c.challenge),
	})
}

func (c *Codec) VerifyChallenge(token string) (*ChallengeClaims, error) {
	claims := &ChallengeClaims{}
	if err := c.verify(c.challenge, token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Codec) SignVerification(hash, email, verificationID string, verifiedAt time.Time) (string, error) {
	return c.sign(c.verification, &VerificationClaims{
		Hash:             hash,
		Email:            email,
		VerificationID:   verificationID,
		Purpose:          domain.PurposeSignupAuthorization,
		VerifiedAt:       verifiedAt.UnixMilli(),
		RegisteredClaims: c.registered(c.verification),
	})
}

func (c *Codec) VerifyVerification(token string) (*VerificationClaims, error) {
	claims := &VerificationClaims{}
	if err := c.verify(c.verification, token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Codec) SignAccess(userID, email, role string) (string, error) {
	return c.sign(c.access, c.userClaims(c.access, userID, email, role))
}

func (c *Codec) VerifyAccess(token string) (*UserClaims, error) {
	claims := &UserClaims{}
	if err := c.verify(c.access, token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Codec) SignRefresh(userID, email, role string) (string, error) {
	return c.sign(c.refresh, c.userClaims(c.refresh, userID, email, role))
}

func (c *Codec) VerifyRefresh(token string) (*UserClaims, error) {
	claims := &UserClaims{}
	if err := c.verify(c.refresh, token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Codec) userClaims(k key, userID, email, role string) *UserClaims {
	return &UserClaims{UserID: userID, Email: email, Role: role, RegisteredClaims: c.registered(k)}
}

// registered stamps iat/exp and a unique jti so two tokens minted in the same
// second still differ.
func (c *Codec) registered(k key) jwt.RegisteredClaims {
	now := c.now()
	return jwt.RegisteredClaims{
		ID:        id.New(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(k.ttl)),
	}
}

func (c *Codec) sign(k key, claims jwt.Claims) (string, error) {
	if len(k.secret) == 0 {
		return "", unconfigured(k)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(k.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", k.name, err)
	}
	return signed, nil
}

func (c *Codec) verify(k key, token string, claims jwt.Claims) error {
	if len(k.secret) == 0 {
		return unconfigured(k)
	}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return k.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	default:
		return domain.ErrTokenInvalid
	}
}

func unconfigured(k key) error {
	return domain.NewError(domain.ErrUnconfigured, "TOKEN_SECRET_MISSING",
		fmt.Sprintf("%s token secret is not configured", k.name))
}
