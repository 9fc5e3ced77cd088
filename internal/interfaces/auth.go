package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/valeo/internal/models"
)

// Auth errors returned by AuthService implementations
var (
	// ErrInvalidCredentials indicates the email/password pair did not match
	// a registered account
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrInvalidToken indicates a bearer token that is missing, malformed,
	// expired, or references an unknown user
	ErrInvalidToken = errors.New("could not validate credentials")
)

// AuthService manages account registration and bearer-token authentication
type AuthService interface {
	// Register creates a new account. Returns ErrEmailTaken when the email
	// is already registered.
	Register(ctx context.Context, email, password, fullName string) (*models.User, error)

	// IssueToken verifies the credentials and issues a signed access token.
	// Returns ErrInvalidCredentials when verification fails.
	IssueToken(ctx context.Context, email, password string) (*models.AuthToken, error)

	// Authenticate resolves a bearer token to its user. Returns
	// ErrInvalidToken for anything that cannot be resolved.
	Authenticate(ctx context.Context, token string) (*models.User, error)
}
