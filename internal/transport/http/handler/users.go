package handler

import (
	"net/http"

	"github.com/go-account-api/internal/application/user"
	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// UserHandler handles profile endpoints for the authenticated user and the
// admin delete.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

type uploadImageRequest struct {
	Image string `json:"image" validate:"required"`
}

// Get returns a profile. Users may read their own; admins may read any.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}
	targetID := chi.URLParam(r, "id")
	if claims.UserID != targetID && claims.Role != domain.RoleAdmin {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "cannot view another user's profile")
		return
	}
	u, err := h.svc.Get(r.Context(), targetID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "User profile retrieved successfully", u)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}
	var req domain.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.Update(r.Context(), claims.UserID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "User account updated successfully", u)
}

func (h *UserHandler) CompleteSignup(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}
	var req domain.CompleteSignupRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.CompleteSignup(r.Context(), claims.UserID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "User profile completed successfully", u)
}

func (h *UserHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}
	var req uploadImageRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.UploadImage(r.Context(), claims.UserID, req.Image)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Profile image updated successfully", u)
}

// DeleteSelf soft-deletes the caller's own account.
func (h *UserHandler) DeleteSelf(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}
	h.delete(w, r, claims.UserID)
}

// Delete is the admin route.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, chi.URLParam(r, "id"))
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request, userID string) {
	if err := h.svc.Delete(r.Context(), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "User account deleted successfully", nil)
}
