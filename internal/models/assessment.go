package models

import "time"

// Assessment represents one stored financial-health assessment.
// The uploaded file is kept encrypted at rest; the analysis result is
// cached as JSON so list and detail responses never recompute.
type Assessment struct {
	// Identity
	ID     string `json:"id"` // asmt_{uuid}
	UserID string `json:"user_id" badgerhold:"index"`

	// Business context supplied with the upload
	BusinessName string `json:"business_name,omitempty"`
	Industry     string `json:"industry,omitempty"`
	Locale       string `json:"locale,omitempty"`

	// Original upload, encrypted at rest
	FileName      string `json:"file_name"`
	FileMimeType  string `json:"file_mime_type"`
	FileEncrypted []byte `json:"-"`

	// Cached analysis result (serialized AssessmentSummary)
	SummaryJSON []byte `json:"-"`

	// Denormalized for list views and retention queries
	OverallScore float64   `json:"overall_score"`
	RiskLevel    RiskLevel `json:"risk_level"`

	CreatedAt time.Time `json:"created_at"`
}
