package handler

import (
	"net/http"

	"github.com/go-account-api/internal/application/nationalid"
)

type NationalIDHandler struct {
	svc nationalid.Service
}

func NewNationalIDHandler(svc nationalid.Service) *NationalIDHandler {
	return &NationalIDHandler{svc: svc}
}

type nationalIDRequest struct {
	FrontBase64 string `json:"front_base64" validate:"required"`
	BackBase64  string `json:"back_base64" validate:"required"`
}

func (h *NationalIDHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req nationalIDRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := h.svc.Extract(r.Context(), req.FrontBase64, req.BackBase64)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "National ID data extracted successfully", id)
}
