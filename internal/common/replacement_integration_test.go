package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

// TestConfigReplacement_Integration tests that config replacement works with
// the actual Config struct from the application
func TestConfigReplacement_Integration(t *testing.T) {
	logger := arbor.NewLogger()
	kvMap := map[string]string{
		"gemini-api-key": "sk-gemini-12345",
		"claude-api-key": "sk-claude-67890",
		"db-path":        "/data/valeo",
		"benchmark-file": "/etc/valeo/benchmarks.yaml",
		"fernet-key":     "dGVzdC1rZXktZm9yLXZhbGVvLXRlc3RzLTAwMDAwMDA=",
	}

	config := NewDefaultConfig()
	config.Gemini.APIKey = "{gemini-api-key}"
	config.Claude.APIKey = "{claude-api-key}"
	config.Storage.Badger.Path = "{db-path}"
	config.Benchmarks.OverridesFile = "{benchmark-file}"
	config.Crypto.EncryptionKey = "{fernet-key}"

	err := ReplaceInStruct(config, kvMap, logger)
	require.NoError(t, err)

	assert.Equal(t, "sk-gemini-12345", config.Gemini.APIKey)
	assert.Equal(t, "sk-claude-67890", config.Claude.APIKey)
	assert.Equal(t, "/data/valeo", config.Storage.Badger.Path)
	assert.Equal(t, "/etc/valeo/benchmarks.yaml", config.Benchmarks.OverridesFile)
	assert.Equal(t, "dGVzdC1rZXktZm9yLXZhbGVvLXRlc3RzLTAwMDAwMDA=", config.Crypto.EncryptionKey)

	// Untouched defaults stay intact
	assert.Equal(t, "gemini-2.0-flash", config.Gemini.Model)
	assert.Equal(t, 8080, config.Server.Port)
}

// TestConfigReplacement_MissingKeysLeftIntact ensures unresolved references
// survive replacement so the failure is visible in later validation
func TestConfigReplacement_MissingKeysLeftIntact(t *testing.T) {
	logger := arbor.NewLogger()
	kvMap := map[string]string{"present": "resolved"}

	config := NewDefaultConfig()
	config.Gemini.APIKey = "{present}"
	config.Claude.APIKey = "{absent}"

	err := ReplaceInStruct(config, kvMap, logger)
	require.NoError(t, err)

	assert.Equal(t, "resolved", config.Gemini.APIKey)
	assert.Equal(t, "{absent}", config.Claude.APIKey)
}

// TestReplaceInStruct_MapStringString tests the map[string]string support
func TestReplaceInStruct_MapStringString(t *testing.T) {
	logger := arbor.NewLogger()
	kvMap := map[string]string{
		"value1": "replaced1",
		"value2": "replaced2",
	}

	type Config struct {
		Name    string
		Options map[string]string
	}

	config := &Config{
		Name: "test",
		Options: map[string]string{
			"key1": "{value1}",
			"key2": "{value2}",
			"key3": "static",
		},
	}

	err := ReplaceInStruct(config, kvMap, logger)
	require.NoError(t, err)

	assert.Equal(t, "replaced1", config.Options["key1"])
	assert.Equal(t, "replaced2", config.Options["key2"])
	assert.Equal(t, "static", config.Options["key3"])
}

// TestReplaceInStruct_SliceOfStrings tests the []string support
func TestReplaceInStruct_SliceOfStrings(t *testing.T) {
	logger := arbor.NewLogger()
	kvMap := map[string]string{
		"event1": "assessment_created",
		"event2": "assessment_deleted",
	}

	type WebSocketConfig struct {
		AllowedEvents []string
	}

	cfg := &WebSocketConfig{
		AllowedEvents: []string{"{event1}", "static_event", "{event2}"},
	}

	err := ReplaceInStruct(cfg, kvMap, logger)
	require.NoError(t, err)

	assert.Equal(t, []string{"assessment_created", "static_event", "assessment_deleted"}, cfg.AllowedEvents)
}
