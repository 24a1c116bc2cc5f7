package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/coursereg/coursereg-go/internal/model"
	"github.com/coursereg/coursereg-go/internal/service"
	"github.com/coursereg/coursereg-go/internal/session"
)

// AuthHandler handles HTTP requests for signup, login and logout.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *session.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

// HandleRegister handles POST /register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	if _, err := h.auth.Signup(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			writeJSON(w, http.StatusBadRequest, errorResponse("Passwords do not match"))
		case errors.Is(err, service.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		default:
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("registration failed")
			writeJSON(w, http.StatusInternalServerError, errorResponse("Registration failed"))
		}
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Registered!"})
}

// HandleLogin handles POST /login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	identity, err := h.auth.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorResponse("Invalid credentials"))
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("login failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse("Login failed"))
		return
	}

	if _, err := h.sessions.Create(r.Context(), w, identity); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("user_id", identity.ID).Msg("creating session failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse("Login failed"))
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Logged in!"})
}

// HandleLogout handles GET /logout requests.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("destroying session failed")
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
