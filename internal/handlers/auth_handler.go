package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/interfaces"
)

// AuthHandler handles account registration and token issuance
type AuthHandler struct {
	authService interfaces.AuthService
	logger      arbor.ILogger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService interfaces.AuthService, logger arbor.ILogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type registerResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// RegisterHandler handles POST /api/auth/register
func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "Invalid registration payload")
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, interfaces.ErrEmailTaken) {
			WriteError(w, http.StatusBadRequest, "Email already registered")
			return
		}
		h.logger.Error().Err(err).Msg("Registration failed")
		WriteError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	h.logger.Info().Str("user_id", user.ID).Msg("User registered")

	WriteJSON(w, http.StatusCreated, registerResponse{
		ID:    user.ID,
		Email: user.Email,
	})
}

type tokenRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenHandler handles POST /api/auth/token. The credentials arrive either
// as an OAuth2-style form (username/password) or as a JSON body.
func (h *AuthHandler) TokenHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	email, password, ok := h.readCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.authService.IssueToken(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, interfaces.ErrInvalidCredentials) {
			WriteError(w, http.StatusBadRequest, "Incorrect email or password")
			return
		}
		h.logger.Error().Err(err).Msg("Token issuance failed")
		WriteError(w, http.StatusInternalServerError, "Token issuance failed")
		return
	}

	WriteJSON(w, http.StatusOK, token)
}

// readCredentials extracts the email/password pair from a form or JSON body
func (h *AuthHandler) readCredentials(w http.ResponseWriter, r *http.Request) (email, password string, ok bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var req tokenRequest
		if !DecodeJSON(w, r, &req) {
			return "", "", false
		}
		email = req.Email
		if email == "" {
			email = req.Username
		}
		return email, req.Password, true
	}

	if err := r.ParseForm(); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid form payload")
		return "", "", false
	}
	return r.PostFormValue("username"), r.PostFormValue("password"), true
}
