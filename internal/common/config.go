package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/valeo/internal/interfaces"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment" validate:"omitempty,oneof=development production prod"`
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Auth        AuthConfig       `toml:"auth"`
	Crypto      CryptoConfig     `toml:"crypto"`
	Limits      LimitsConfig     `toml:"limits"`
	Retention   RetentionConfig  `toml:"retention"`
	Benchmarks  BenchmarksConfig `toml:"benchmarks"`
	WebSocket   WebSocketConfig  `toml:"websocket"`
	Variables   KeysDirConfig    `toml:"variables"` // Variables directory (./keys/*.toml) for key/value pairs
	Gemini      GeminiConfig     `toml:"gemini"`
	Claude      ClaudeConfig     `toml:"claude"`
	LLM         LLMConfig        `toml:"llm"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format     string   `toml:"format" validate:"omitempty,oneof=text json"`
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// AuthConfig contains token signing and account settings
type AuthConfig struct {
	Secret           string `toml:"secret"`                               // HMAC signing secret for access tokens
	TokenTTL         string `toml:"token_ttl"`                            // Token lifetime as duration string (default: "8h")
	PBKDF2Iterations int    `toml:"pbkdf2_iterations" validate:"min=0"`   // Password hash iterations (default: 600000)
	Disabled         bool   `toml:"disabled"`                             // Skip authentication; all requests act as a local user
}

// CryptoConfig contains at-rest encryption settings for uploaded files
type CryptoConfig struct {
	EncryptionKey string `toml:"encryption_key"` // Fernet key (base64). Empty disables encryption.
}

// LimitsConfig contains request size and rate limits
type LimitsConfig struct {
	MaxUploadMB int     `toml:"max_upload_mb" validate:"min=1"` // Maximum upload size in megabytes
	RateRPS     float64 `toml:"rate_rps" validate:"min=0"`      // Sustained requests per second per client (0 disables)
	RateBurst   int     `toml:"rate_burst" validate:"min=0"`    // Burst allowance per client
}

// RetentionConfig controls the scheduled purge of old assessments
type RetentionConfig struct {
	Enabled  bool   `toml:"enabled"`
	Days     int    `toml:"days" validate:"min=1"` // Assessments older than this are purged
	Schedule string `toml:"schedule"`              // Cron schedule format
}

// BenchmarksConfig points at optional industry benchmark overrides
type BenchmarksConfig struct {
	OverridesFile string `toml:"overrides_file"` // YAML file merged over the built-in benchmark table
}

// KeysDirConfig points at the directory scanned for variables.toml files
type KeysDirConfig struct {
	Dir string `toml:"dir"`
}

// WebSocketConfig contains configuration for WebSocket event streaming
type WebSocketConfig struct {
	// Whitelist of event types to broadcast via WebSocket. Empty list allows all events.
	AllowedEvents []string `toml:"allowed_events"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for rewrite operations (default: "gemini-2.0-flash")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "30s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.4)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key for Claude operations
	Model       string  `toml:"model"`       // Model for rewrite operations (default: "claude-3-5-haiku-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 1024)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "30s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.4)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderNone disables narrative rewriting
	LLMProviderNone LLMProvider = "none"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig selects the provider used to polish assessment narratives
type LLMConfig struct {
	Provider LLMProvider `toml:"provider" validate:"omitempty,oneof=none gemini claude"`
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in valeo.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Auth: AuthConfig{
			Secret:           "CHANGE_ME", // Must be overridden outside development
			TokenTTL:         "8h",
			PBKDF2Iterations: 600000,
		},
		Crypto: CryptoConfig{
			EncryptionKey: "", // Empty disables at-rest encryption
		},
		Limits: LimitsConfig{
			MaxUploadMB: 10,
			RateRPS:     20,
			RateBurst:   40,
		},
		Retention: RetentionConfig{
			Enabled:  false,          // Disabled by default - user must explicitly opt-in
			Days:     365,
			Schedule: "0 30 2 * * *", // Daily at 02:30 (cron format with seconds)
		},
		Benchmarks: BenchmarksConfig{
			OverridesFile: "", // Built-in table only
		},
		WebSocket: WebSocketConfig{
			// Empty AllowedEvents allows all events
			AllowedEvents: []string{},
		},
		Variables: KeysDirConfig{
			Dir: "./", // Default directory for variables.toml file
		},
		Gemini: GeminiConfig{
			APIKey:      "", // User must provide API key (no fallback)
			Model:       "gemini-2.0-flash",
			Timeout:     "30s",
			Temperature: 0.4,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-3-5-haiku-20241022",
			MaxTokens:   1024,
			Timeout:     "30s",
			Temperature: 0.4,
		},
		LLM: LLMConfig{
			Provider: LLMProviderNone, // Rewriting is opt-in
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
// Priority system: CLI flags > Environment variables > Config file > Defaults
// kvStorage can be nil for backward compatibility (replacement will be skipped)
func LoadFromFile(kvStorage interfaces.KeyValueStorage, path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles(kvStorage)
	}
	return LoadFromFiles(kvStorage, path)
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env -> CLI
// Later files override earlier files. Priority system: CLI flags > Environment variables > Last config file > ... > First config file > Defaults
// kvStorage can be nil for backward compatibility (replacement will be skipped)
func LoadFromFiles(kvStorage interfaces.KeyValueStorage, paths ...string) (*Config, error) {
	// Start with defaults
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier files)
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Perform {key-name} replacement if KV storage is available
	if kvStorage != nil {
		ctx := context.Background()
		kvMap, err := kvStorage.GetAll(ctx)
		if err != nil {
			// Log warning and skip replacement (graceful degradation)
			logger := arbor.NewLogger()
			logger.Warn().Err(err).Msg("Failed to fetch KV map for config replacement, skipping replacement")
		} else {
			logger := arbor.NewLogger()
			if err := ReplaceInStruct(config, kvMap, logger); err != nil {
				logger.Warn().Err(err).Msg("Failed to replace key references in config")
			} else {
				logger.Info().Int("keys", len(kvMap)).Msg("Applied key/value replacements to config")
			}
		}
	}

	// Apply environment variables (overrides all file configs and replacements)
	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: VALEO_ENV, fallback: GO_ENV)
	if env := os.Getenv("VALEO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("VALEO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("VALEO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("VALEO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("VALEO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("VALEO_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("VALEO_LOG_OUTPUT"); output != "" {
		// Split comma-separated output types
		outputs := []string{}
		for _, o := range splitString(output, ",") {
			trimmed := trimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Auth configuration
	if secret := os.Getenv("VALEO_AUTH_SECRET"); secret != "" {
		config.Auth.Secret = secret
	} else if secret := os.Getenv("SECRET_KEY"); secret != "" {
		config.Auth.Secret = secret
	}
	if ttl := os.Getenv("VALEO_AUTH_TOKEN_TTL"); ttl != "" {
		if _, err := time.ParseDuration(ttl); err == nil {
			config.Auth.TokenTTL = ttl
		}
	}
	if iterations := os.Getenv("VALEO_AUTH_PBKDF2_ITERATIONS"); iterations != "" {
		if n, err := strconv.Atoi(iterations); err == nil && n > 0 {
			config.Auth.PBKDF2Iterations = n
		}
	}
	if disabled := os.Getenv("VALEO_AUTH_DISABLED"); disabled != "" {
		if d, err := strconv.ParseBool(disabled); err == nil {
			config.Auth.Disabled = d
		}
	}

	// Crypto configuration
	if key := os.Getenv("VALEO_ENCRYPTION_KEY"); key != "" {
		config.Crypto.EncryptionKey = key
	} else if key := os.Getenv("ENCRYPTION_KEY"); key != "" {
		config.Crypto.EncryptionKey = key
	}

	// Limits configuration
	if maxUpload := os.Getenv("VALEO_LIMITS_MAX_UPLOAD_MB"); maxUpload != "" {
		if mb, err := strconv.Atoi(maxUpload); err == nil && mb > 0 {
			config.Limits.MaxUploadMB = mb
		}
	}
	if rateRPS := os.Getenv("VALEO_LIMITS_RATE_RPS"); rateRPS != "" {
		if r, err := strconv.ParseFloat(rateRPS, 64); err == nil && r >= 0 {
			config.Limits.RateRPS = r
		}
	}
	if rateBurst := os.Getenv("VALEO_LIMITS_RATE_BURST"); rateBurst != "" {
		if b, err := strconv.Atoi(rateBurst); err == nil && b >= 0 {
			config.Limits.RateBurst = b
		}
	}

	// Retention configuration
	if enabled := os.Getenv("VALEO_RETENTION_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Retention.Enabled = e
		}
	}
	if days := os.Getenv("VALEO_RETENTION_DAYS"); days != "" {
		if d, err := strconv.Atoi(days); err == nil && d > 0 {
			config.Retention.Days = d
		}
	}
	if schedule := os.Getenv("VALEO_RETENTION_SCHEDULE"); schedule != "" {
		config.Retention.Schedule = schedule
	}

	// Benchmarks configuration
	if overrides := os.Getenv("VALEO_BENCHMARKS_OVERRIDES_FILE"); overrides != "" {
		config.Benchmarks.OverridesFile = overrides
	}

	// WebSocket configuration
	if allowedEvents := os.Getenv("VALEO_WEBSOCKET_ALLOWED_EVENTS"); allowedEvents != "" {
		// Split comma-separated event types
		events := []string{}
		for _, e := range splitString(allowedEvents, ",") {
			trimmed := trimSpace(e)
			if trimmed != "" {
				events = append(events, trimmed)
			}
		}
		if len(events) > 0 {
			config.WebSocket.AllowedEvents = events
		}
	}

	// Variables configuration
	if variablesDir := os.Getenv("VALEO_VARIABLES_DIR"); variablesDir != "" {
		config.Variables.Dir = variablesDir
	}

	// Gemini configuration
	if apiKey := os.Getenv("VALEO_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("VALEO_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if timeout := os.Getenv("VALEO_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}
	if temperature := os.Getenv("VALEO_GEMINI_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Gemini.Temperature = float32(t)
		}
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("VALEO_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // VALEO_ prefix takes priority
	}
	if model := os.Getenv("VALEO_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("VALEO_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}
	if timeout := os.Getenv("VALEO_CLAUDE_TIMEOUT"); timeout != "" {
		config.Claude.Timeout = timeout
	}
	if temperature := os.Getenv("VALEO_CLAUDE_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Claude.Temperature = float32(t)
		}
	}

	// LLM provider configuration
	if provider := os.Getenv("VALEO_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = LLMProvider(provider)
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks the merged configuration for invalid values. Called once
// at startup after all override layers are applied.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Auth.TokenTTL != "" {
		if _, err := time.ParseDuration(c.Auth.TokenTTL); err != nil {
			return fmt.Errorf("invalid auth.token_ttl %q: %w", c.Auth.TokenTTL, err)
		}
	}
	if c.Retention.Enabled {
		if err := ValidateCronSchedule(c.Retention.Schedule); err != nil {
			return fmt.Errorf("invalid retention.schedule: %w", err)
		}
	}
	if c.IsProduction() && c.Auth.Secret == "CHANGE_ME" && !c.Auth.Disabled {
		return fmt.Errorf("auth.secret must be set in production")
	}
	return nil
}

// ResolveAPIKey resolves an API key by name with environment variable priority
// Resolution order: environment variables → KV store → config fallback → error
// This ensures VALEO_* environment variables always take precedence
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	// Map of KV store key names to environment variable names.
	// Environment variables have highest priority.
	keyToEnvMapping := map[string][]string{
		"gemini_api_key":    {"VALEO_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"google_api_key":    {"VALEO_GEMINI_API_KEY", "GEMINI_API_KEY"}, // Legacy KV store key
		"anthropic_api_key": {"VALEO_CLAUDE_API_KEY"},
		"claude_api_key":    {"VALEO_CLAUDE_API_KEY"},
	}

	// For Claude, also check the standard ANTHROPIC_API_KEY env var
	if name == "anthropic_api_key" || name == "claude_api_key" {
		if envValue := os.Getenv("ANTHROPIC_API_KEY"); envValue != "" {
			return envValue, nil
		}
	}

	// Check environment variables (highest priority)
	if envVarNames, hasMappedEnv := keyToEnvMapping[name]; hasMappedEnv {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	// Try to resolve from KV store (medium priority - file-based variables)
	if kvStorage != nil {
		apiKey, err := kvStorage.Get(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	// Fallback to config value (lowest priority)
	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment, KV store, or config", name)
}

// Helper functions for string manipulation
func splitString(s, sep string) []string {
	result := []string{}
	start := 0
	for i := 0; i < len(s); i++ {
		if i+len(sep) <= len(s) && s[i:i+len(sep)] == sep {
			result = append(result, s[start:i])
			start = i + len(sep)
			i = start - 1
		}
	}
	result = append(result, s[start:])
	return result
}

func trimSpace(s string) string {
	start := 0
	end := len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t' || s[start] == '\n' || s[start] == '\r') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}
	return s[start:end]
}

// ValidateCronSchedule validates a cron schedule expression (with seconds
// field) and ensures at least a 5-minute interval
func ValidateCronSchedule(schedule string) error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	parts := strings.Fields(schedule)
	if len(parts) < 6 {
		return fmt.Errorf("invalid cron format: expected 6 fields")
	}

	minuteField := parts[1]

	// Check for patterns that violate the 5-minute minimum
	if minuteField == "*" {
		return fmt.Errorf("schedule must have minimum 5-minute interval (every minute is not allowed)")
	}

	// Check for */n patterns where n < 5
	if strings.HasPrefix(minuteField, "*/") {
		intervalStr := strings.TrimPrefix(minuteField, "*/")
		interval, err := strconv.Atoi(intervalStr)
		if err == nil && interval < 5 {
			return fmt.Errorf("schedule interval must be at least 5 minutes, got %d", interval)
		}
	}

	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
