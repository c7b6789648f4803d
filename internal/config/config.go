package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

var ErrInvalidConfig = errors.New("config: invalid")

// SessionEntry is one phantom session opened at startup.
type SessionEntry struct {
	Name    string `toml:"name"`
	Address string `toml:"address"`
	Port    int    `toml:"port"`
}

// File is the on-disk shape of a specter config.
type File struct {
	AutoRespawn     bool           `toml:"auto_respawn"`
	YawCorrection   float32        `toml:"yaw_correction"`
	TickInterval    string         `toml:"tick_interval"`
	ProtocolVersion int32          `toml:"protocol_version"`
	WorldName       string         `toml:"world_name"`
	MaxHealth       int32          `toml:"max_health"`
	AdminAddr       string         `toml:"admin_addr"`
	AdminToken      string         `toml:"admin_token"`
	CORSOrigins     []string       `toml:"cors_origins"`
	Sessions        []SessionEntry `toml:"sessions"`
}

// Check strictly decodes path, rejecting unknown keys, and validates the result.
func Check(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	defer f.Close()

	var cfg File
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return File{}, fmt.Errorf("%w: unknown keys in %s:\n%s", ErrInvalidConfig, path, strict.String())
		}
		return File{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return File{}, err
	}
	return cfg, nil
}

// Validate checks values that decode cleanly but cannot run.
func Validate(cfg File) error {
	if v := strings.TrimSpace(cfg.TickInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: tick_interval: %v", ErrInvalidConfig, err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: tick_interval must be positive", ErrInvalidConfig)
		}
	}
	if cfg.ProtocolVersion < 0 {
		return fmt.Errorf("%w: protocol_version must not be negative", ErrInvalidConfig)
	}
	if cfg.MaxHealth < 0 {
		return fmt.Errorf("%w: max_health must not be negative", ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(cfg.Sessions))
	for i, s := range cfg.Sessions {
		if err := ValidateSessionEntry(s); err != nil {
			return fmt.Errorf("%w: sessions[%d]: %v", ErrInvalidConfig, i, err)
		}
		name := strings.TrimSpace(s.Name)
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: sessions[%d]: duplicate name %q", ErrInvalidConfig, i, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func ValidateSessionEntry(s SessionEntry) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("port %d out of range", s.Port)
	}
	return nil
}
