package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-account-api/internal/domain"
	jwtinfra "github.com/go-account-api/internal/infrastructure/jwt"
)

type contextKey string

const claimsKey contextKey = "claims"

type accessVerifier interface {
	VerifyAccess(token string) (*jwtinfra.UserClaims, error)
}

// Auth returns middleware that validates the Bearer access token and injects
// its claims into the request context.
func Auth(verifier accessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "TOKEN_MISSING", "missing or invalid authorization header")
				return
			}
			claims, err := verifier.VerifyAccess(token)
			if err != nil {
				code := domain.ErrTokenInvalid.Code
				if errors.Is(err, domain.ErrTokenExpired) {
					code = domain.ErrTokenExpired.Code
				}
				writeJSONError(w, http.StatusUnauthorized, code, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return token, token != ""
}

func WithClaims(ctx context.Context, c *jwtinfra.UserClaims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromContext extracts access-token claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.UserClaims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.UserClaims)
	return c, ok
}
