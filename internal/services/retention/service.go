package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/common"
	"github.com/ternarybob/valeo/internal/interfaces"
)

const purgeTimeout = 5 * time.Minute

// Service deletes assessments older than the configured retention window.
// It is registered with the scheduler as the retention_purge job.
type Service struct {
	assessments interfaces.AssessmentStorage
	events      interfaces.EventService
	days        int
	logger      arbor.ILogger
}

// NewService creates a retention purge service
func NewService(config *common.RetentionConfig, assessments interfaces.AssessmentStorage, events interfaces.EventService, logger arbor.ILogger) (*Service, error) {
	if config.Days < 1 {
		return nil, fmt.Errorf("retention days must be at least 1, got %d", config.Days)
	}

	return &Service{
		assessments: assessments,
		events:      events,
		days:        config.Days,
		logger:      logger,
	}, nil
}

// Purge deletes all assessments created before the retention cutoff. The
// signature matches the scheduler's job handler contract.
func (s *Service) Purge() error {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	cutoff := time.Now().UTC().AddDate(0, 0, -s.days)
	deleted, err := s.assessments.DeleteAssessmentsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("retention purge failed: %w", err)
	}

	s.logger.Info().
		Int("deleted_count", deleted).
		Str("cutoff", cutoff.Format(time.RFC3339)).
		Int("retention_days", s.days).
		Msg("Retention purge completed")

	// Notify subscribers only when something changed
	if deleted > 0 && s.events != nil {
		event := interfaces.Event{
			Type: interfaces.EventRetentionPurgeDone,
			Payload: map[string]interface{}{
				"deleted_count": deleted,
				"cutoff":        cutoff.Format(time.RFC3339),
			},
		}
		if err := s.events.Publish(ctx, event); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish retention purge event")
		}
	}

	return nil
}
