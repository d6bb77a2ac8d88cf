package handler

import (
	"net/http"

	"github.com/go-account-api/internal/application/signup"
)

type SignupHandler struct {
	svc signup.Service
}

func NewSignupHandler(svc signup.Service) *SignupHandler { return &SignupHandler{svc: svc} }

type signupRequest struct {
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required,password"`
	VerificationToken string `json:"verification_token" validate:"required"`
}

func (h *SignupHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Signup(r.Context(), signup.Request{
		Email:             req.Email,
		Password:          req.Password,
		VerificationToken: req.VerificationToken,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, res.Message, res.User)
}
