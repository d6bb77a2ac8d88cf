package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-account-api/internal/domain"
)

// maxPeekBytes bounds how much of a body is buffered to find the email.
const maxPeekBytes = 64 << 10

type emailLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// EmailRateLimit throttles requests per email address found in the JSON body.
// The body is restored for the next handler. Limiter failures let the request through.
func EmailRateLimit(l emailLimiter, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}
			orig := r.Body
			raw, err := io.ReadAll(io.LimitReader(orig, maxPeekBytes))
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
				return
			}
			r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(raw), orig), Closer: orig}

			var body struct {
				Email string `json:"email"`
			}
			_ = json.Unmarshal(raw, &body)
			email := domain.NormalizeEmail(body.Email)
			if email == "" {
				next.ServeHTTP(w, r)
				return
			}

			ok, err := l.Allow(r.Context(), scope+":"+email)
			if err != nil {
				slog.Warn("email rate limiter unavailable", "scope", scope, "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				writeJSONError(w, http.StatusTooManyRequests, domain.ErrRateLimited.Code, domain.ErrRateLimited.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}
