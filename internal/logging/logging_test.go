package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trackshelf/internal/config"

	"github.com/sirupsen/logrus"
)

func TestNewLevels(t *testing.T) {
	cfg := config.DefaultConfig().Logging
	cfg.Level = "debug"

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", logger.GetLevel())
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	cfg := config.DefaultConfig().Logging
	cfg.Level = "chatty"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewWritesToFile(t *testing.T) {
	cfg := config.DefaultConfig().Logging
	cfg.Format = "json"
	cfg.File = filepath.Join(t.TempDir(), "logs", "trackshelf.log")

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	logger.WithField("screen", "list").Info("catalog loaded")

	data, err := os.ReadFile(cfg.File)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"screen":"list"`) {
		t.Errorf("log file missing structured field: %s", data)
	}
}
