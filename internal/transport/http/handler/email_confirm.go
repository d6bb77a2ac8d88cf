package handler

import (
	"net/http"

	"github.com/go-account-api/internal/application/verification"
)

// VerificationHandler handles the send-code and verify steps of signup.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

type sendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type sendCodeResponse struct {
	ChallengeToken string `json:"challenge_token"`
	ExpiresIn      int64  `json:"expires_in"`
}

type verifyCodeRequest struct {
	Email            string `json:"email" validate:"required,email"`
	VerificationCode string `json:"verification_code" validate:"required,len=6,numeric"`
	ChallengeToken   string `json:"challenge_token" validate:"required"`
}

type verifyCodeResponse struct {
	Verified          bool   `json:"verified"`
	VerificationID    string `json:"verification_id"`
	VerificationToken string `json:"verification_token"`
}

func (h *VerificationHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req sendCodeRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.SendVerificationCode(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res.Message, sendCodeResponse{
		ChallengeToken: res.ChallengeToken,
		ExpiresIn:      int64(res.ExpiresIn.Seconds()),
	})
}

func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.VerifyCode(r.Context(), verification.VerifyRequest{
		Email:            req.Email,
		VerificationCode: req.VerificationCode,
		ChallengeToken:   req.ChallengeToken,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Email successfully verified", verifyCodeResponse{
		Verified:          res.Verified,
		VerificationID:    res.VerificationID,
		VerificationToken: res.VerificationToken,
	})
}
