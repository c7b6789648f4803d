package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/specter/internal/testutil/testlog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestTemplateIsValid(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := Check(path)
	if err != nil {
		t.Fatalf("template does not validate: %v", err)
	}
	if !cfg.AutoRespawn || cfg.YawCorrection != 25 || len(cfg.Sessions) != 2 {
		t.Fatalf("unexpected template values: %+v", cfg)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite existing config")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("forced overwrite failed: %v", err)
	}
}

func TestCheckRejectsUnknownKeys(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, "auto_respawn = true\nyaw_corection = 10.0\n")
	_, err := Check(path)
	if !errors.Is(err, ErrInvalidConfig) || !strings.Contains(err.Error(), "yaw_corection") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestCheckRejectsBadValues(t *testing.T) {
	testlog.Start(t)
	tests := []struct {
		name string
		body string
	}{
		{name: "bad tick interval", body: `tick_interval = "soon"`},
		{name: "zero tick interval", body: `tick_interval = "0s"`},
		{name: "negative health", body: `max_health = -1`},
		{name: "unnamed session", body: "[[sessions]]\nport = 1\n"},
		{name: "port out of range", body: "[[sessions]]\nname = \"a\"\nport = 70000\n"},
		{name: "duplicate session", body: "[[sessions]]\nname = \"a\"\n[[sessions]]\nname = \"a\"\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Check(writeConfig(t, tc.body))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected invalid config, got %v", err)
			}
		})
	}
}

func TestCheckMissingFile(t *testing.T) {
	testlog.Start(t)
	if _, err := Check(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
