package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/valeo/internal/interfaces"
	"github.com/ternarybob/valeo/internal/models"
)

// BearerToken extracts the access token from the Authorization header.
// Websocket clients cannot set headers from browsers, so a token query
// parameter is accepted as a fallback.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// RequireUser resolves the request's bearer token to its user.
// Returns false after writing a 401 challenge when the token is missing
// or cannot be validated.
func RequireUser(w http.ResponseWriter, r *http.Request, auth interfaces.AuthService) (*models.User, bool) {
	user, err := auth.Authenticate(r.Context(), BearerToken(r))
	if err != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		WriteError(w, http.StatusUnauthorized, "Could not validate credentials")
		return nil, false
	}
	return user, true
}
