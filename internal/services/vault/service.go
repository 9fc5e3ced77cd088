package vault

import (
	"fmt"

	"github.com/fernet/fernet-go"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/interfaces"
)

// Service encrypts uploaded files at rest using Fernet symmetric
// encryption. With no key configured it passes data through unchanged.
type Service struct {
	key    *fernet.Key
	logger arbor.ILogger
}

// NewService creates a file vault from a base64url-encoded 32-byte
// Fernet key. An empty key disables encryption.
func NewService(encryptionKey string, logger arbor.ILogger) (interfaces.FileVault, error) {
	service := &Service{logger: logger}

	if encryptionKey == "" {
		logger.Warn().Msg("No encryption key configured, files will be stored unencrypted")
		return service, nil
	}

	key, err := fernet.DecodeKey(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	service.key = key

	return service, nil
}

// Enabled reports whether a key is configured.
func (s *Service) Enabled() bool {
	return s.key != nil
}

// Encrypt returns the Fernet token for data, or data unchanged when no
// key is configured.
func (s *Service) Encrypt(data []byte) ([]byte, error) {
	if s.key == nil {
		return data, nil
	}

	token, err := fernet.EncryptAndSign(data, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt data: %w", err)
	}
	return token, nil
}

// Decrypt reverses Encrypt. Data that does not verify as a Fernet token
// is returned unchanged, so plaintext stored before a key was configured
// stays readable.
func (s *Service) Decrypt(data []byte) []byte {
	if s.key == nil {
		return data
	}

	msg := fernet.VerifyAndDecrypt(data, 0, []*fernet.Key{s.key})
	if msg == nil {
		return data
	}
	return msg
}
