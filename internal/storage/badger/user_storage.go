package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/interfaces"
	"github.com/ternarybob/valeo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// UserStorage implements the UserStorage interface for Badger
type UserStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewUserStorage creates a new UserStorage instance
func NewUserStorage(db *BadgerDB, logger arbor.ILogger) interfaces.UserStorage {
	return &UserStorage{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new user account. Returns ErrEmailTaken when an
// account with the same email already exists.
func (s *UserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return fmt.Errorf("user ID is required")
	}
	if user.Email == "" {
		return fmt.Errorf("user email is required")
	}

	var existing []models.User
	if err := s.db.Store().Find(&existing, badgerhold.Where("Email").Eq(user.Email)); err != nil {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if len(existing) > 0 {
		return interfaces.ErrEmailTaken
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	if err := s.db.Store().Insert(user.ID, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *UserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.Store().Get(id, &user); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *UserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var users []models.User
	if err := s.db.Store().Find(&users, badgerhold.Where("Email").Eq(email)); err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, interfaces.ErrUserNotFound
	}
	return &users[0], nil
}

func (s *UserStorage) CountUsers(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.User{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return int(count), nil
}
