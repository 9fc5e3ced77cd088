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

// AssessmentStorage implements the AssessmentStorage interface for Badger
type AssessmentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAssessmentStorage creates a new AssessmentStorage instance
func NewAssessmentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AssessmentStorage {
	return &AssessmentStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AssessmentStorage) SaveAssessment(ctx context.Context, assessment *models.Assessment) error {
	if assessment.ID == "" {
		return fmt.Errorf("assessment ID is required")
	}
	if assessment.UserID == "" {
		return fmt.Errorf("assessment user ID is required")
	}

	if assessment.CreatedAt.IsZero() {
		assessment.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(assessment.ID, assessment); err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}
	return nil
}

// GetAssessment returns the assessment only when it belongs to userID.
// A record owned by another user is reported as not found.
func (s *AssessmentStorage) GetAssessment(ctx context.Context, userID, id string) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := s.db.Store().Get(id, &assessment); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	if assessment.UserID != userID {
		return nil, interfaces.ErrAssessmentNotFound
	}
	return &assessment, nil
}

// ListAssessments returns the user's assessments newest first.
func (s *AssessmentStorage) ListAssessments(ctx context.Context, userID string, limit, offset int) ([]*models.Assessment, error) {
	query := badgerhold.Where("UserID").Eq(userID).SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Skip(offset)
	}

	var assessments []models.Assessment
	if err := s.db.Store().Find(&assessments, query); err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	result := make([]*models.Assessment, len(assessments))
	for i := range assessments {
		result[i] = &assessments[i]
	}
	return result, nil
}

func (s *AssessmentStorage) DeleteAssessment(ctx context.Context, userID, id string) error {
	// Ownership check before delete
	if _, err := s.GetAssessment(ctx, userID, id); err != nil {
		return err
	}

	if err := s.db.Store().Delete(id, &models.Assessment{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return interfaces.ErrAssessmentNotFound
		}
		return fmt.Errorf("failed to delete assessment: %w", err)
	}
	return nil
}

// DeleteAssessmentsBefore removes all assessments created before cutoff,
// across all users, and returns how many were deleted.
func (s *AssessmentStorage) DeleteAssessmentsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var expired []models.Assessment
	if err := s.db.Store().Find(&expired, badgerhold.Where("CreatedAt").Lt(cutoff)); err != nil {
		return 0, fmt.Errorf("failed to find expired assessments: %w", err)
	}

	deleted := 0
	for _, assessment := range expired {
		if err := s.db.Store().Delete(assessment.ID, &models.Assessment{}); err != nil {
			s.logger.Warn().Str("id", assessment.ID).Err(err).Msg("Failed to delete expired assessment")
			continue
		}
		deleted++
	}
	return deleted, nil
}

func (s *AssessmentStorage) CountAssessments(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Assessment{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count assessments: %w", err)
	}
	return int(count), nil
}
