package interfaces

// FileVault encrypts uploaded files at rest. When no key is configured both
// operations pass data through unchanged, which keeps the service runnable
// in development without key material.
type FileVault interface {
	// Encrypt seals the data for storage. With no key configured the input
	// is returned unchanged.
	Encrypt(data []byte) ([]byte, error)

	// Decrypt opens sealed data. With no key configured, or when the
	// payload is not a valid sealed token, the input is returned unchanged
	// rather than failing.
	Decrypt(data []byte) []byte

	// Enabled reports whether a key is configured
	Enabled() bool
}
