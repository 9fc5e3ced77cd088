package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/valeo/internal/models"
)

// UploadInput carries one uploaded financial data file plus the business
// context submitted alongside it.
type UploadInput struct {
	FileName    string
	ContentType string
	Data        []byte

	BusinessName string
	Industry     string
	Locale       string
}

// AssessmentView is the API representation of an assessment. Summary is nil
// when the cached analysis cannot be decoded.
type AssessmentView struct {
	ID           string                    `json:"id"`
	BusinessName string                    `json:"business_name,omitempty"`
	Industry     string                    `json:"industry,omitempty"`
	Locale       string                    `json:"locale,omitempty"`
	FileName     string                    `json:"file_name,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
	Summary      *models.AssessmentSummary `json:"summary"`
}

// FileDownload is a decrypted original upload returned for download
type FileDownload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// AssessmentService runs the upload-to-result pipeline and manages stored
// assessments. All lookups are scoped to the owning user.
type AssessmentService interface {
	// CreateFromUpload extracts the dataset, analyzes it, polishes the
	// narrative, encrypts the original file and persists the assessment
	CreateFromUpload(ctx context.Context, userID string, input UploadInput) (*AssessmentView, error)

	// GetAssessment returns one assessment owned by the user
	GetAssessment(ctx context.Context, userID, id string) (*AssessmentView, error)

	// ListAssessments returns the user's assessments, newest first. A
	// limit or offset of 0 means unbounded.
	ListAssessments(ctx context.Context, userID string, limit, offset int) ([]*AssessmentView, error)

	// AnalyzeRows runs the scoring engine over already-tabular row data
	// without persisting anything
	AnalyzeRows(rows []map[string]any, industry string) *models.AssessmentSummary

	// DeleteAssessment removes an assessment owned by the user
	DeleteAssessment(ctx context.Context, userID, id string) error

	// Reanalyze re-runs the analysis pipeline against the stored original
	// file and replaces the cached summary
	Reanalyze(ctx context.Context, userID, id string) (*AssessmentView, error)

	// GetOriginalFile decrypts and returns the stored upload
	GetOriginalFile(ctx context.Context, userID, id string) (*FileDownload, error)
}
