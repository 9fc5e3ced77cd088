package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/common"
	"github.com/ternarybob/valeo/internal/interfaces"
	"github.com/ternarybob/valeo/internal/models"
)

// stubUserStorage is an in-memory UserStorage for service tests.
type stubUserStorage struct {
	users map[string]*models.User
}

func newStubUserStorage() *stubUserStorage {
	return &stubUserStorage{users: make(map[string]*models.User)}
}

func (s *stubUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return interfaces.ErrEmailTaken
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *stubUserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, interfaces.ErrUserNotFound
	}
	return user, nil
}

func (s *stubUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, interfaces.ErrUserNotFound
}

func (s *stubUserStorage) CountUsers(ctx context.Context) (int, error) {
	return len(s.users), nil
}

func testConfig() *common.AuthConfig {
	return &common.AuthConfig{
		Secret:   "unit-test-secret",
		TokenTTL: "8h",
		// Low iteration count keeps the tests fast
		PBKDF2Iterations: 1000,
	}
}

func TestRegisterAndIssueToken(t *testing.T) {
	users := newStubUserStorage()
	service, err := NewService(testConfig(), users, arbor.NewLogger())
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	ctx := context.Background()

	user, err := service.Register(ctx, "owner@example.com", "s3cret-pass", "Test Owner")
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	if !strings.HasPrefix(user.ID, "user_") {
		t.Errorf("Expected user_ ID prefix, got %s", user.ID)
	}
	stored := users.users[user.ID]
	if !strings.HasPrefix(stored.PasswordHash, "$pbkdf2-sha256$1000$") {
		t.Errorf("Unexpected hash encoding: %s", stored.PasswordHash)
	}
	if strings.Contains(stored.PasswordHash, "s3cret-pass") {
		t.Error("Password stored in plaintext")
	}

	token, err := service.IssueToken(ctx, "owner@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	if token.AccessToken == "" {
		t.Error("Expected non-empty access token")
	}
	if token.TokenType != models.TokenTypeBearer {
		t.Errorf("Expected bearer token type, got %s", token.TokenType)
	}

	if _, err := service.IssueToken(ctx, "owner@example.com", "wrong-pass"); err != interfaces.ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := service.IssueToken(ctx, "nobody@example.com", "s3cret-pass"); err != interfaces.ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service, err := NewService(testConfig(), newStubUserStorage(), arbor.NewLogger())
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	ctx := context.Background()

	if _, err := service.Register(ctx, "dup@example.com", "pass-one", ""); err != nil {
		t.Fatalf("Failed to register first user: %v", err)
	}
	if _, err := service.Register(ctx, "dup@example.com", "pass-two", ""); err != interfaces.ErrEmailTaken {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	users := newStubUserStorage()
	service, err := NewService(testConfig(), users, arbor.NewLogger())
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	ctx := context.Background()

	registered, err := service.Register(ctx, "owner@example.com", "s3cret-pass", "")
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	token, err := service.IssueToken(ctx, "owner@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	resolved, err := service.Authenticate(ctx, token.AccessToken)
	if err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}
	if resolved.ID != registered.ID {
		t.Errorf("Expected user %s, got %s", registered.ID, resolved.ID)
	}

	if _, err := service.Authenticate(ctx, "not.a.jwt"); err != interfaces.ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for garbage, got %v", err)
	}

	// Token signed with a different secret must be rejected
	otherConfig := testConfig()
	otherConfig.Secret = "some-other-secret"
	other, err := NewService(otherConfig, users, arbor.NewLogger())
	if err != nil {
		t.Fatalf("Failed to create second service: %v", err)
	}
	foreign, err := other.IssueToken(ctx, "owner@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Failed to issue foreign token: %v", err)
	}
	if _, err := service.Authenticate(ctx, foreign.AccessToken); err != interfaces.ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	config := testConfig()
	config.TokenTTL = "-1m"
	service, err := NewService(config, newStubUserStorage(), arbor.NewLogger())
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	ctx := context.Background()

	if _, err := service.Register(ctx, "owner@example.com", "s3cret-pass", ""); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	token, err := service.IssueToken(ctx, "owner@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	if _, err := service.Authenticate(ctx, token.AccessToken); err != interfaces.ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestDisabledAuthReturnsLocalUser(t *testing.T) {
	config := testConfig()
	config.Disabled = true
	users := newStubUserStorage()
	service, err := NewService(config, users, arbor.NewLogger())
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	ctx := context.Background()

	user, err := service.Authenticate(ctx, "")
	if err != nil {
		t.Fatalf("Failed to authenticate with disabled auth: %v", err)
	}
	if user.ID != "user_local" {
		t.Errorf("Expected local user, got %s", user.ID)
	}

	again, err := service.Authenticate(ctx, "ignored-token")
	if err != nil {
		t.Fatalf("Failed on second authenticate: %v", err)
	}
	if again.ID != user.ID {
		t.Error("Expected the same local user on repeat calls")
	}
	if count, _ := users.CountUsers(ctx); count != 1 {
		t.Errorf("Expected a single local user, got %d", count)
	}
}

func TestPasswordHashSaltsDiffer(t *testing.T) {
	service, err := NewService(testConfig(), newStubUserStorage(), arbor.NewLogger())
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	impl := service.(*Service)
	first := impl.hashPassword("same-password")
	second := impl.hashPassword("same-password")
	if first == second {
		t.Error("Expected unique salts to produce different hashes")
	}
	if !impl.verifyPassword("same-password", first) || !impl.verifyPassword("same-password", second) {
		t.Error("Expected both hashes to verify")
	}
	if impl.verifyPassword("other-password", first) {
		t.Error("Expected wrong password to fail verification")
	}
}
