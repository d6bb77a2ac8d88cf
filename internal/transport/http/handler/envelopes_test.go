package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-account-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidVerificationCode, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", domain.ErrBadRequest), http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrPasswordResetUnavailable, http.StatusForbidden},
		{domain.ErrChallengeNotFound, http.StatusNotFound},
		{domain.ErrUserAlreadyExists, http.StatusConflict},
		{domain.ErrChallengeExpired, http.StatusGone},
		{domain.ErrRateLimited, http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestWriteServiceError_HidesInternalMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	writeServiceError(rr, r, fmt.Errorf("dynamo put: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	env, _ := decodeEnvelope(t, rr)
	assert.Equal(t, "internal server error", env.Message)
	assert.Equal(t, "INTERNAL_ERROR", env.Code)
}

func TestWriteServiceError_UnconfiguredKeepsCode(t *testing.T) {
	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	writeServiceError(rr, r, domain.NewError(domain.ErrUnconfigured, "TOKEN_SECRET_MISSING", "verification token secret is not configured"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	env, _ := decodeEnvelope(t, rr)
	assert.Equal(t, "TOKEN_SECRET_MISSING", env.Code)
	assert.Equal(t, "internal server error", env.Message)
}

func TestHealth_Ping(t *testing.T) {
	h := NewHealthHandler()
	rctx := withChiParam(httptest.NewRequest(http.MethodGet, "/v1/health-check/ping", nil), "action", "ping")
	rr := httptest.NewRecorder()
	h.Ping(rr, rctx)
	assert.Equal(t, http.StatusOK, rr.Code)
	env, _ := decodeEnvelope(t, rr)
	assert.Equal(t, "pong", env.Message)

	rr = httptest.NewRecorder()
	h.Ping(rr, withChiParam(httptest.NewRequest(http.MethodGet, "/v1/health-check/x", nil), "action", "x"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
