package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "captain.log")

	logger, err := New(path, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Info("hello", zap.String("key", "value"))
	logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("expected log record in file, got %q", string(data))
	}
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "captain.log")

	logger, err := New(path, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Debug("debug record")
	logger.Sync()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "debug record") {
		t.Errorf("expected debug record with verbose on, got %q", string(data))
	}

	quiet, err := New(filepath.Join(dir, "quiet.log"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	quiet.Debug("hidden")
	quiet.Sync()

	data, _ = os.ReadFile(filepath.Join(dir, "quiet.log"))
	if strings.Contains(string(data), "hidden") {
		t.Errorf("debug record leaked without verbose, got %q", string(data))
	}
}
