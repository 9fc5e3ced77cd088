package common

import (
	"github.com/google/uuid"
)

// NewUserID generates a unique user ID with the "user_" prefix
// Format: user_<uuid>
func NewUserID() string {
	return "user_" + uuid.New().String()
}

// NewAssessmentID generates a unique assessment ID with the "asmt_" prefix
// Format: asmt_<uuid>
func NewAssessmentID() string {
	return "asmt_" + uuid.New().String()
}
