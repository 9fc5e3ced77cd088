package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/interfaces"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	db := newTestDB(t)
	logger := arbor.NewLogger()
	return &Manager{
		db:     db,
		kv:     NewKVStorage(db, logger),
		logger: logger,
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	envFile := filepath.Join(t.TempDir(), ".env")
	writeTestFile(t, envFile, `# API keys
GEMINI_API_KEY=AIza-test-123

CLAUDE_API_KEY="sk-ant-test"
SESSION_SECRET='quoted'
not a pair
EMPTY=
`)

	if err := manager.LoadEnvFile(ctx, envFile); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}

	expected := map[string]string{
		"gemini_api_key": "AIza-test-123",
		"claude_api_key": "sk-ant-test",
		"session_secret": "quoted",
	}
	for key, want := range expected {
		got, err := manager.kv.Get(ctx, key)
		if err != nil {
			t.Fatalf("Expected key %s to be loaded: %v", key, err)
		}
		if got != want {
			t.Errorf("Expected %s=%s, got %s", key, want, got)
		}
	}

	if _, err := manager.kv.Get(ctx, "empty"); err != interfaces.ErrKeyNotFound {
		t.Errorf("Expected empty value to be skipped, got %v", err)
	}
}

func TestLoadEnvFileMissing(t *testing.T) {
	manager := newTestManager(t)

	if err := manager.LoadEnvFile(context.Background(), filepath.Join(t.TempDir(), "no-such.env")); err != nil {
		t.Errorf("Expected missing .env to be skipped, got %v", err)
	}
}

func TestLoadVariablesFromFiles(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeTestFile(t, filepath.Join(dir, "variables.toml"), `[gemini-api-key]
value = "AIza-from-file"
description = "Gemini key"

[blank-key]
value = ""
`)
	writeTestFile(t, filepath.Join(dir, "variables", "extra.toml"), `[claude-api-key]
value = "sk-ant-from-file"
`)
	writeTestFile(t, filepath.Join(dir, "variables", "notes.txt"), "ignored")

	if err := manager.LoadVariablesFromFiles(ctx, dir); err != nil {
		t.Fatalf("LoadVariablesFromFiles failed: %v", err)
	}

	value, err := manager.kv.Get(ctx, "gemini-api-key")
	if err != nil {
		t.Fatalf("Expected gemini-api-key to be loaded: %v", err)
	}
	if value != "AIza-from-file" {
		t.Errorf("Expected AIza-from-file, got %s", value)
	}

	value, err = manager.kv.Get(ctx, "claude-api-key")
	if err != nil {
		t.Fatalf("Expected claude-api-key from subdirectory to be loaded: %v", err)
	}
	if value != "sk-ant-from-file" {
		t.Errorf("Expected sk-ant-from-file, got %s", value)
	}

	if _, err := manager.kv.Get(ctx, "blank-key"); err != interfaces.ErrKeyNotFound {
		t.Errorf("Expected blank-key to be skipped, got %v", err)
	}
}
