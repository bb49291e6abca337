package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cbrunner/golfcities/internal/course"
)

func TestLoadAPIKey(t *testing.T) {
	t.Run("env var wins", func(t *testing.T) {
		t.Setenv(APIKeyEnv, "env-key")

		key, err := LoadAPIKey("nonexistent")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key != "env-key" {
			t.Errorf("expected env-key, got %q", key)
		}
	})

	t.Run("falls back to key file", func(t *testing.T) {
		t.Setenv(APIKeyEnv, "")
		path := filepath.Join(t.TempDir(), "key.txt")
		if err := os.WriteFile(path, []byte("file-key\n"), 0644); err != nil {
			t.Fatalf("writing key file: %v", err)
		}

		key, err := LoadAPIKey(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key != "file-key" {
			t.Errorf("expected file-key, got %q", key)
		}
	})

	t.Run("missing key is a configuration error", func(t *testing.T) {
		t.Setenv(APIKeyEnv, "")

		_, err := LoadAPIKey(filepath.Join(t.TempDir(), "absent.txt"))
		if err == nil {
			t.Fatal("expected error for missing key")
		}
		if !errors.Is(err, course.ErrConfig) {
			t.Errorf("expected ErrConfig, got %v", err)
		}
	})

	t.Run("empty key file is a configuration error", func(t *testing.T) {
		t.Setenv(APIKeyEnv, "")
		path := filepath.Join(t.TempDir(), "key.txt")
		if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
			t.Fatalf("writing key file: %v", err)
		}

		_, err := LoadAPIKey(path)
		if !errors.Is(err, course.ErrConfig) {
			t.Errorf("expected ErrConfig, got %v", err)
		}
	})
}
