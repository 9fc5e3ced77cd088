package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/common"
	"github.com/ternarybob/valeo/internal/interfaces"
	"github.com/ternarybob/valeo/internal/models"
	"github.com/ternarybob/valeo/internal/services/health"
)

// Service runs the upload-to-result pipeline: extract the dataset, score it,
// optionally polish the narrative, encrypt the original file and persist the
// assessment. All reads are scoped to the owning user by the storage layer.
type Service struct {
	storage   interfaces.AssessmentStorage
	extractor interfaces.DatasetExtractor
	analyzer  *health.Analyzer
	rewriter  interfaces.NarrativeRewriter
	vault     interfaces.FileVault
	events    interfaces.EventService
	logger    arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.AssessmentService = (*Service)(nil)

// NewService creates the assessment service
func NewService(
	storage interfaces.AssessmentStorage,
	extractor interfaces.DatasetExtractor,
	analyzer *health.Analyzer,
	rewriter interfaces.NarrativeRewriter,
	vault interfaces.FileVault,
	events interfaces.EventService,
	logger arbor.ILogger,
) *Service {
	return &Service{
		storage:   storage,
		extractor: extractor,
		analyzer:  analyzer,
		rewriter:  rewriter,
		vault:     vault,
		events:    events,
		logger:    logger,
	}
}

// CreateFromUpload extracts the dataset, analyzes it, polishes the
// narrative, encrypts the original file and persists the assessment
func (s *Service) CreateFromUpload(ctx context.Context, userID string, input interfaces.UploadInput) (*interfaces.AssessmentView, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if len(input.Data) == 0 {
		return nil, fmt.Errorf("uploaded file is empty")
	}

	startTime := time.Now()

	table, err := s.extractor.Extract(ctx, input.FileName, input.ContentType, input.Data)
	if err != nil {
		return nil, err
	}

	dataset := health.FromTable(table.Headers, table.Rows)
	summary := s.analyzer.Analyze(dataset, input.Industry)
	s.polishNarrative(ctx, &summary)

	encrypted, err := s.vault.Encrypt(input.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt uploaded file: %w", err)
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize summary: %w", err)
	}

	assessment := &models.Assessment{
		ID:            common.NewAssessmentID(),
		UserID:        userID,
		BusinessName:  input.BusinessName,
		Industry:      input.Industry,
		Locale:        input.Locale,
		FileName:      input.FileName,
		FileMimeType:  input.ContentType,
		FileEncrypted: encrypted,
		SummaryJSON:   summaryJSON,
		OverallScore:  summary.OverallScore,
		RiskLevel:     summary.RiskLevel,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.storage.SaveAssessment(ctx, assessment); err != nil {
		return nil, fmt.Errorf("failed to save assessment: %w", err)
	}

	s.logger.Info().
		Str("assessment_id", assessment.ID).
		Str("user_id", userID).
		Str("risk_level", string(summary.RiskLevel)).
		Float64("overall_score", summary.OverallScore).
		Int("row_count", dataset.RowCount()).
		Dur("duration", time.Since(startTime)).
		Msg("Assessment created")

	s.publish(ctx, interfaces.EventAssessmentCreated, assessment)

	view := s.baseView(assessment)
	view.Summary = &summary
	return view, nil
}

// GetAssessment returns one assessment owned by the user
func (s *Service) GetAssessment(ctx context.Context, userID, id string) (*interfaces.AssessmentView, error) {
	assessment, err := s.storage.GetAssessment(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.toView(assessment), nil
}

// ListAssessments returns the user's assessments, newest first
func (s *Service) ListAssessments(ctx context.Context, userID string, limit, offset int) ([]*interfaces.AssessmentView, error) {
	assessments, err := s.storage.ListAssessments(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	views := make([]*interfaces.AssessmentView, 0, len(assessments))
	for _, assessment := range assessments {
		views = append(views, s.toView(assessment))
	}
	return views, nil
}

// AnalyzeRows runs the scoring engine over already-tabular row data without
// persisting anything
func (s *Service) AnalyzeRows(rows []map[string]any, industry string) *models.AssessmentSummary {
	dataset := health.FromRows(rows)
	summary := s.analyzer.Analyze(dataset, industry)
	return &summary
}

// DeleteAssessment removes an assessment owned by the user
func (s *Service) DeleteAssessment(ctx context.Context, userID, id string) error {
	assessment, err := s.storage.GetAssessment(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteAssessment(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info().
		Str("assessment_id", id).
		Str("user_id", userID).
		Msg("Assessment deleted")

	s.publish(ctx, interfaces.EventAssessmentDeleted, assessment)
	return nil
}

// Reanalyze re-runs the analysis pipeline against the stored original file
// and replaces the cached summary
func (s *Service) Reanalyze(ctx context.Context, userID, id string) (*interfaces.AssessmentView, error) {
	assessment, err := s.storage.GetAssessment(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	data := s.vault.Decrypt(assessment.FileEncrypted)
	table, err := s.extractor.Extract(ctx, assessment.FileName, assessment.FileMimeType, data)
	if err != nil {
		return nil, err
	}

	dataset := health.FromTable(table.Headers, table.Rows)
	summary := s.analyzer.Analyze(dataset, assessment.Industry)
	s.polishNarrative(ctx, &summary)

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize summary: %w", err)
	}

	assessment.SummaryJSON = summaryJSON
	assessment.OverallScore = summary.OverallScore
	assessment.RiskLevel = summary.RiskLevel

	if err := s.storage.SaveAssessment(ctx, assessment); err != nil {
		return nil, fmt.Errorf("failed to save assessment: %w", err)
	}

	s.logger.Info().
		Str("assessment_id", assessment.ID).
		Str("user_id", userID).
		Str("risk_level", string(summary.RiskLevel)).
		Msg("Assessment reanalyzed")

	s.publish(ctx, interfaces.EventAssessmentUpdated, assessment)

	view := s.baseView(assessment)
	view.Summary = &summary
	return view, nil
}

// GetOriginalFile decrypts and returns the stored upload
func (s *Service) GetOriginalFile(ctx context.Context, userID, id string) (*interfaces.FileDownload, error) {
	assessment, err := s.storage.GetAssessment(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	return &interfaces.FileDownload{
		FileName:    assessment.FileName,
		ContentType: assessment.FileMimeType,
		Data:        s.vault.Decrypt(assessment.FileEncrypted),
	}, nil
}

// polishNarrative swaps in the LLM-rewritten narrative when a provider is
// configured. Failures keep the deterministic narrative.
func (s *Service) polishNarrative(ctx context.Context, summary *models.AssessmentSummary) {
	if s.rewriter == nil || !s.rewriter.Enabled() {
		return
	}

	polished, err := s.rewriter.Rewrite(ctx, summary.Narrative, summary.Metrics)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Narrative rewrite failed, keeping deterministic narrative")
		return
	}
	if polished != "" {
		summary.Narrative = polished
	}
}

func (s *Service) publish(ctx context.Context, eventType interfaces.EventType, assessment *models.Assessment) {
	if s.events == nil {
		return
	}

	event := interfaces.Event{
		Type: eventType,
		Payload: map[string]interface{}{
			"assessment_id": assessment.ID,
			"user_id":       assessment.UserID,
			"business_name": assessment.BusinessName,
			"overall_score": assessment.OverallScore,
			"risk_level":    string(assessment.RiskLevel),
			"created_at":    assessment.CreatedAt.Format(time.RFC3339),
		},
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().
			Err(err).
			Str("event_type", string(eventType)).
			Msg("Failed to publish assessment event")
	}
}

// baseView maps the stored assessment without touching the cached summary
func (s *Service) baseView(assessment *models.Assessment) *interfaces.AssessmentView {
	return &interfaces.AssessmentView{
		ID:           assessment.ID,
		BusinessName: assessment.BusinessName,
		Industry:     assessment.Industry,
		Locale:       assessment.Locale,
		FileName:     assessment.FileName,
		CreatedAt:    assessment.CreatedAt,
	}
}

// toView maps a stored assessment including its cached summary. A summary
// that no longer decodes is returned as nil rather than failing the read.
func (s *Service) toView(assessment *models.Assessment) *interfaces.AssessmentView {
	view := s.baseView(assessment)

	if len(assessment.SummaryJSON) > 0 {
		var summary models.AssessmentSummary
		if err := json.Unmarshal(assessment.SummaryJSON, &summary); err != nil {
			s.logger.Warn().
				Err(err).
				Str("assessment_id", assessment.ID).
				Msg("Failed to decode cached summary")
		} else {
			view.Summary = &summary
		}
	}

	return view
}
