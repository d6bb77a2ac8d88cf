package handler

import (
	"net/http"

	"github.com/go-account-api/internal/application/passwordreset"
)

// PasswordResetHandler handles the mailed-code password reset flow.
type PasswordResetHandler struct {
	svc passwordreset.Service
}

func NewPasswordResetHandler(svc passwordreset.Service) *PasswordResetHandler {
	return &PasswordResetHandler{svc: svc}
}

type requestResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,alphanum"`
	NewPassword string `json:"new_password" validate:"required,password"`
}

func (h *PasswordResetHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req requestResetRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Password reset code has been sent to your email", nil)
}

func (h *PasswordResetHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	err := h.svc.ResetPassword(r.Context(), passwordreset.ResetRequest{
		Email:       req.Email,
		Code:        req.Code,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Password has been reset successfully", nil)
}
