package badger

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// variableEntry is one [section] of a variables TOML file:
//
//	[gemini-api-key]
//	value = "AIza..."
//	description = "optional"
type variableEntry struct {
	Value       string `toml:"value"`
	Description string `toml:"description"`
}

// seedResult tallies the outcome of seeding the KV store from files.
type seedResult struct {
	loaded  int
	skipped int
	failed  int
}

func (r *seedResult) merge(other seedResult) {
	r.loaded += other.loaded
	r.skipped += other.skipped
	r.failed += other.failed
}

// LoadVariablesFromFiles seeds the KV store from TOML variable files: a
// variables.toml directly in dirPath, plus any *.toml files under a
// variables/ subdirectory. Missing files are not an error.
func (m *Manager) LoadVariablesFromFiles(ctx context.Context, dirPath string) error {
	m.logger.Debug().Str("dir", dirPath).Msg("Loading variables from files")

	var candidates []string
	if path := filepath.Join(dirPath, "variables.toml"); fileExists(path) {
		candidates = append(candidates, path)
	}
	if entries, err := os.ReadDir(filepath.Join(dirPath, "variables")); err == nil {
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
				continue
			}
			candidates = append(candidates, filepath.Join(dirPath, "variables", entry.Name()))
		}
	}

	var total seedResult
	for _, path := range candidates {
		total.merge(m.seedTOMLFile(ctx, path))
	}

	m.logger.Debug().
		Int("files", len(candidates)).
		Int("loaded", total.loaded).
		Int("skipped", total.skipped).
		Int("failed", total.failed).
		Msg("Finished loading variables from files")

	return nil
}

// seedTOMLFile loads every [key] section of one TOML file into the KV store.
func (m *Manager) seedTOMLFile(ctx context.Context, path string) seedResult {
	var result seedResult

	content, err := os.ReadFile(path)
	if err != nil {
		m.logger.Warn().Err(err).Str("file", path).Msg("Failed to read variable file")
		result.failed++
		return result
	}

	var entries map[string]variableEntry
	if err := toml.Unmarshal(content, &entries); err != nil {
		m.logger.Warn().Err(err).Str("file", path).Msg("Failed to parse variable file")
		result.failed++
		return result
	}

	source := filepath.Base(path)
	for key, entry := range entries {
		if entry.Value == "" {
			m.logger.Warn().Str("file", source).Str("key", key).Msg("Skipping variable with empty value")
			result.skipped++
			continue
		}

		description := entry.Description
		if description == "" {
			description = "Loaded from " + source
		}

		isNew, err := m.kv.Upsert(ctx, key, entry.Value, description)
		if err != nil {
			m.logger.Error().Err(err).Str("key", key).Msg("Failed to store variable")
			result.failed++
			continue
		}

		if isNew {
			m.logger.Debug().Str("key", key).Msg("Loaded new variable")
		} else {
			m.logger.Debug().Str("key", key).Msg("Updated existing variable")
		}
		result.loaded++
	}

	return result
}

// LoadEnvFile seeds the KV store from a .env file. Lines are KEY=value with
// optional single or double quotes around the value; blank lines and #
// comments are ignored. A missing file is not an error.
func (m *Manager) LoadEnvFile(ctx context.Context, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Debug().Str("file", filePath).Msg(".env file does not exist, skipping")
		} else {
			m.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to open .env file")
		}
		return nil
	}
	defer file.Close()

	var result seedResult
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			m.logger.Warn().Str("file", filePath).Int("line", lineNum).Msg("Invalid line format, expected KEY=value")
			result.skipped++
			continue
		}

		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		if key == "" || value == "" {
			m.logger.Warn().Str("file", filePath).Int("line", lineNum).Msg("Skipping variable with empty key or value")
			result.skipped++
			continue
		}

		if _, err := m.kv.Upsert(ctx, key, value, "Loaded from .env file"); err != nil {
			m.logger.Error().Err(err).Str("key", key).Msg("Failed to store variable from .env")
			result.failed++
			continue
		}
		result.loaded++
	}

	if err := scanner.Err(); err != nil {
		m.logger.Warn().Err(err).Str("file", filePath).Msg("Error reading .env file")
	}

	m.logger.Debug().
		Str("file", filePath).
		Int("loaded", result.loaded).
		Int("skipped", result.skipped).
		Int("failed", result.failed).
		Msg("Finished loading variables from .env file")

	return nil
}

// stripQuotes removes one matching pair of surrounding quotes.
func stripQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if first == last && (first == '"' || first == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
