package models

import "time"

// User represents a registered account. PasswordHash holds the encoded
// PBKDF2 digest, never the raw password.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email" badgerhold:"index"`
	FullName     string    `json:"full_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
