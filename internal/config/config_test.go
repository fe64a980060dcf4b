package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Strategy != "hybrid" {
		t.Errorf("expected default strategy hybrid, got %s", cfg.Strategy)
	}
	if cfg.Sensitivity != "medium" {
		t.Errorf("expected default sensitivity medium, got %s", cfg.Sensitivity)
	}
	if cfg.OutlineLevel != 0 {
		t.Errorf("expected default outline_level 0, got %d", cfg.OutlineLevel)
	}
	if cfg.Pattern != "{index}_{title}" {
		t.Errorf("expected default pattern {index}_{title}, got %s", cfg.Pattern)
	}
	if !cfg.PreserveMetadata {
		t.Error("expected preserve_metadata to default to true")
	}
}

func TestNewManagerDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cm, err := NewManager("", "")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	cfg := cm.Get()
	if cfg.Strategy != "hybrid" {
		t.Errorf("expected strategy hybrid, got %s", cfg.Strategy)
	}
	if cfg.Sensitivity != "medium" {
		t.Errorf("expected sensitivity medium, got %s", cfg.Sensitivity)
	}
}

func TestNewManagerFromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("strategy: structural\nsensitivity: high\noutline_level: 2\npreserve_metadata: false\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cm, err := NewManager(path, "")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	cfg := cm.Get()
	if cfg.Strategy != "structural" {
		t.Errorf("expected strategy structural, got %s", cfg.Strategy)
	}
	if cfg.Sensitivity != "high" {
		t.Errorf("expected sensitivity high, got %s", cfg.Sensitivity)
	}
	if cfg.OutlineLevel != 2 {
		t.Errorf("expected outline_level 2, got %d", cfg.OutlineLevel)
	}
	if cfg.PreserveMetadata {
		t.Error("expected preserve_metadata false")
	}
	// Unset keys keep their defaults.
	if cfg.Pattern != "{index}_{title}" {
		t.Errorf("expected default pattern, got %s", cfg.Pattern)
	}
}

func TestNewManagerHomeDirDiscovery(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	content := []byte("sensitivity: low\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cm, err := NewManager("", dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if got := cm.Get().Sensitivity; got != "low" {
		t.Errorf("expected sensitivity low from home dir config, got %s", got)
	}
}

func TestWriteDefault(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	cm, err := NewManager(path, "")
	if err != nil {
		t.Fatalf("NewManager failed on written config: %v", err)
	}

	want := DefaultConfig()
	got := cm.Get()
	if *got != *want {
		t.Errorf("round-tripped config %+v does not match defaults %+v", got, want)
	}
}
