package common

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, "./data", config.Storage.Badger.Path)
	assert.Equal(t, "8h", config.Auth.TokenTTL)
	assert.Equal(t, 600000, config.Auth.PBKDF2Iterations)
	assert.Equal(t, LLMProviderNone, config.LLM.Provider)
	assert.Equal(t, 10, config.Limits.MaxUploadMB)
	assert.False(t, config.Retention.Enabled)
}

func TestLoadFromFile_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "valeo.toml")

	content := `
environment = "production"

[server]
port = 9090
host = "0.0.0.0"

[auth]
secret = "unit-test-secret"

[llm]
provider = "claude"

[retention]
enabled = true
days = 30
schedule = "0 15 3 * * *"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFile(nil, path)
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, "unit-test-secret", config.Auth.Secret)
	assert.Equal(t, LLMProviderClaude, config.LLM.Provider)
	assert.True(t, config.Retention.Enabled)
	assert.Equal(t, 30, config.Retention.Days)

	// Untouched sections keep defaults
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "./data", config.Storage.Badger.Path)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(nil, "/nonexistent/valeo.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VALEO_SERVER_PORT", "9999")
	t.Setenv("VALEO_LLM_PROVIDER", "gemini")
	t.Setenv("VALEO_AUTH_DISABLED", "true")
	t.Setenv("VALEO_RETENTION_DAYS", "90")

	config, err := LoadFromFiles(nil)
	require.NoError(t, err)

	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, LLMProviderGemini, config.LLM.Provider)
	assert.True(t, config.Auth.Disabled)
	assert.Equal(t, 90, config.Retention.Days)
}

func TestValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		config := NewDefaultConfig()
		assert.NoError(t, config.Validate())
	})

	t.Run("rejects unknown llm provider", func(t *testing.T) {
		config := NewDefaultConfig()
		config.LLM.Provider = "openai"
		assert.Error(t, config.Validate())
	})

	t.Run("rejects bad token ttl", func(t *testing.T) {
		config := NewDefaultConfig()
		config.Auth.TokenTTL = "eight hours"
		assert.Error(t, config.Validate())
	})

	t.Run("rejects default secret in production", func(t *testing.T) {
		config := NewDefaultConfig()
		config.Environment = "production"
		err := config.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth.secret")
	})

	t.Run("allows default secret when auth disabled", func(t *testing.T) {
		config := NewDefaultConfig()
		config.Environment = "production"
		config.Auth.Disabled = true
		assert.NoError(t, config.Validate())
	})

	t.Run("rejects bad retention schedule when enabled", func(t *testing.T) {
		config := NewDefaultConfig()
		config.Retention.Enabled = true
		config.Retention.Schedule = "not-a-schedule"
		assert.Error(t, config.Validate())
	})
}

func TestValidateCronSchedule(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("0 30 2 * * *"))
	assert.NoError(t, ValidateCronSchedule("0 */10 * * * *"))

	// Every minute violates the 5-minute minimum
	assert.Error(t, ValidateCronSchedule("0 * * * * *"))
	assert.Error(t, ValidateCronSchedule("0 */2 * * * *"))

	// Five-field expressions are rejected (seconds field required)
	assert.Error(t, ValidateCronSchedule("30 2 * * *"))
	assert.Error(t, ValidateCronSchedule("garbage"))
}

func TestResolveAPIKey(t *testing.T) {
	ctx := context.Background()

	t.Run("env var wins", func(t *testing.T) {
		t.Setenv("VALEO_GEMINI_API_KEY", "env-key")
		key, err := ResolveAPIKey(ctx, nil, "gemini_api_key", "config-key")
		require.NoError(t, err)
		assert.Equal(t, "env-key", key)
	})

	t.Run("anthropic standard env var", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")
		key, err := ResolveAPIKey(ctx, nil, "anthropic_api_key", "")
		require.NoError(t, err)
		assert.Equal(t, "sk-ant-env", key)
	})

	t.Run("config fallback", func(t *testing.T) {
		key, err := ResolveAPIKey(ctx, nil, "gemini_api_key", "config-key")
		require.NoError(t, err)
		assert.Equal(t, "config-key", key)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := ResolveAPIKey(ctx, nil, "gemini_api_key", "")
		assert.Error(t, err)
	})
}
