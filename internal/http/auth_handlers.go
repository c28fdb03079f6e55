package http

import (
	"net/http"

	"github.com/sun1tar/taskmanager/internal/middleware"
	"github.com/sun1tar/taskmanager/internal/models"
	"github.com/sun1tar/taskmanager/internal/service"
)

type AuthHandler struct {
	base
	auth *service.AuthService
}

type profileResponse struct {
	Message string             `json:"message"`
	User    models.UserSummary `json:"user"`
}

// Register обрабатывает POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	logEntry := h.entry(r, "Register")

	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, logEntry, err)
		return
	}

	res, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.fail(w, logEntry, err)
		return
	}

	logEntry.WithField("user_id", res.User.ID).Info("user registered")
	writeJSON(w, http.StatusCreated, res)
}

// Login обрабатывает POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	logEntry := h.entry(r, "Login")

	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, logEntry, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, logEntry, err)
		return
	}

	logEntry.WithField("user_id", res.User.ID).Info("login successful")
	writeJSON(w, http.StatusOK, res)
}

// Me обрабатывает GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	logEntry := h.entry(r, "Me")

	user, err := h.auth.Me(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.fail(w, logEntry, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Summary())
}

// UpdateProfile обрабатывает PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	logEntry := h.entry(r, "UpdateProfile")
	userID := middleware.UserID(r.Context())

	var req profileRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, logEntry, err)
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), userID, req.Username, req.Email)
	if err != nil {
		h.fail(w, logEntry, err)
		return
	}

	logEntry.WithField("user_id", userID).Info("profile updated")
	writeJSON(w, http.StatusOK, profileResponse{Message: "profile updated", User: user.Summary()})
}

// ChangePassword обрабатывает PUT /api/auth/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	logEntry := h.entry(r, "ChangePassword")
	userID := middleware.UserID(r.Context())

	var req passwordRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, logEntry, err)
		return
	}

	if err := h.auth.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(w, logEntry, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}
