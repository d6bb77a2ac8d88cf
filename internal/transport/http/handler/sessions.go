package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-account-api/internal/application/session"
	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/transport/http/middleware"
)

// SessionHandler handles login and token refresh.
type SessionHandler struct {
	svc session.Service
}

func NewSessionHandler(svc session.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type loginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *domain.User `json:"user,omitempty"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req session.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	msg := "User login successful"
	if res.User == nil {
		msg = "Admin login successful"
	}
	writeData(w, http.StatusOK, msg, loginResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         res.User,
	})
}

// Refresh takes the refresh token from the Authorization header, or from a
// refresh_token body field when no header is sent.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		_ = json.NewDecoder(r.Body).Decode(&body)
		token = body.RefreshToken
	}
	if token == "" {
		writeError(w, http.StatusUnauthorized, "TOKEN_MISSING", "refresh token required")
		return
	}
	access, err := h.svc.Refresh(r.Context(), token)
	if err != nil {
		writeTokenError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Access token refreshed successfully", refreshResponse{AccessToken: access})
}

// writeTokenError reports a rejected token as 401 with its code.
func writeTokenError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, domain.ErrTokenExpired.Code, "refresh token expired")
	case errors.Is(err, domain.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, domain.ErrTokenInvalid.Code, "invalid refresh token")
	default:
		writeServiceError(w, r, err)
	}
}
