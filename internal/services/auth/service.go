package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/common"
	"github.com/ternarybob/valeo/internal/interfaces"
	"github.com/ternarybob/valeo/internal/models"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// hashPrefix identifies the password hash scheme. The encoded form is
	// $pbkdf2-sha256$<iterations>$<salt>$<digest> with adapted base64
	// (no padding, '+' replaced by '.').
	hashPrefix = "pbkdf2-sha256"

	saltLength = 16
	keyLength  = 32

	// localUserID is the synthetic account used when auth is disabled.
	localUserID    = "user_local"
	localUserEmail = "local@localhost"
)

// Service issues and verifies bearer tokens and manages user accounts.
// Tokens are HS256 JWTs carrying the user ID as subject.
type Service struct {
	users      interfaces.UserStorage
	secret     []byte
	tokenTTL   time.Duration
	iterations int
	disabled   bool
	logger     arbor.ILogger
}

// NewService creates the authentication service from config. TokenTTL is
// parsed as a Go duration string.
func NewService(config *common.AuthConfig, users interfaces.UserStorage, logger arbor.ILogger) (interfaces.AuthService, error) {
	ttl, err := time.ParseDuration(config.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid token TTL %q: %w", config.TokenTTL, err)
	}

	iterations := config.PBKDF2Iterations
	if iterations <= 0 {
		iterations = 600000
	}

	return &Service{
		users:      users,
		secret:     []byte(config.Secret),
		tokenTTL:   ttl,
		iterations: iterations,
		disabled:   config.Disabled,
		logger:     logger,
	}, nil
}

// Register creates a new user account with a hashed password. Returns
// interfaces.ErrEmailTaken when the email is already registered.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	user := &models.User{
		ID:           common.NewUserID(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: s.hashPassword(password),
		CreatedAt:    time.Now(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User registered")
	return user, nil
}

// IssueToken verifies the credentials and returns a signed bearer token.
// Returns interfaces.ErrInvalidCredentials on unknown email or wrong
// password.
func (s *Service) IssueToken(ctx context.Context, email, password string) (*models.AuthToken, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if err == interfaces.ErrUserNotFound {
			return nil, interfaces.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.verifyPassword(password, user.PasswordHash) {
		return nil, interfaces.ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"sub": user.ID,
		"exp": jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &models.AuthToken{
		AccessToken: signed,
		TokenType:   models.TokenTypeBearer,
	}, nil
}

// Authenticate resolves a bearer token to its user. With auth disabled
// it returns the synthetic local user without inspecting the token.
// Returns interfaces.ErrInvalidToken for malformed, expired, or orphaned
// tokens.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if s.disabled {
		return s.localUser(ctx)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, interfaces.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, interfaces.ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, interfaces.ErrInvalidToken
	}

	user, err := s.users.GetUserByID(ctx, sub)
	if err != nil {
		return nil, interfaces.ErrInvalidToken
	}
	return user, nil
}

// localUser returns the account all requests run as when auth is
// disabled, creating it on first use.
func (s *Service) localUser(ctx context.Context) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, localUserID)
	if err == nil {
		return user, nil
	}
	if err != interfaces.ErrUserNotFound {
		return nil, err
	}

	user = &models.User{
		ID:        localUserID,
		Email:     localUserEmail,
		FullName:  "Local User",
		CreatedAt: time.Now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// Lost a race with another request creating it
		if err == interfaces.ErrEmailTaken {
			return s.users.GetUserByID(ctx, localUserID)
		}
		return nil, err
	}

	s.logger.Debug().Str("user_id", localUserID).Msg("Created local user for disabled auth")
	return user, nil
}

func (s *Service) hashPassword(password string) string {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		// crypto/rand failure means the process cannot do anything safely
		panic(fmt.Sprintf("failed to read random salt: %v", err))
	}

	digest := pbkdf2.Key([]byte(password), salt, s.iterations, keyLength, sha256.New)
	return fmt.Sprintf("$%s$%d$%s$%s", hashPrefix, s.iterations, ab64Encode(salt), ab64Encode(digest))
}

func (s *Service) verifyPassword(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != hashPrefix {
		return false
	}

	iterations, err := strconv.Atoi(parts[2])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := ab64Decode(parts[3])
	if err != nil {
		return false
	}
	expected, err := ab64Decode(parts[4])
	if err != nil {
		return false
	}

	digest := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(digest, expected) == 1
}

// ab64Encode applies the adapted base64 used in the hash encoding:
// standard alphabet with '+' swapped for '.', padding stripped.
func ab64Encode(data []byte) string {
	return strings.ReplaceAll(base64.RawStdEncoding.EncodeToString(data), "+", ".")
}

func ab64Decode(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.ReplaceAll(s, ".", "+"))
}
