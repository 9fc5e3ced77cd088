package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/valeo/internal/models"
)

// Sentinel errors returned by storage implementations
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrEmailTaken         = errors.New("email already registered")
)

// UserStorage - interface for user account persistence
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// AssessmentStorage - interface for assessment persistence. All read and
// delete operations are scoped to the owning user.
type AssessmentStorage interface {
	SaveAssessment(ctx context.Context, assessment *models.Assessment) error
	GetAssessment(ctx context.Context, userID, id string) (*models.Assessment, error)
	ListAssessments(ctx context.Context, userID string, limit, offset int) ([]*models.Assessment, error)
	DeleteAssessment(ctx context.Context, userID, id string) error

	// Retention operations
	DeleteAssessmentsBefore(ctx context.Context, cutoff time.Time) (int, error)

	// Stats operations
	CountAssessments(ctx context.Context) (int, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	UserStorage() UserStorage
	AssessmentStorage() AssessmentStorage
	KeyValueStorage() KeyValueStorage
	Close() error

	// LoadVariablesFromFiles seeds the key/value store from variables.toml
	// files in the given directory
	LoadVariablesFromFiles(ctx context.Context, dirPath string) error

	// LoadEnvFile seeds the key/value store from a .env file. Values loaded
	// here take precedence over TOML variables.
	LoadEnvFile(ctx context.Context, filePath string) error
}
