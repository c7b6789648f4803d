package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/specter/internal/admin"
	"github.com/danmuck/specter/internal/config"
	"github.com/danmuck/specter/internal/phantom"
	"github.com/danmuck/specter/internal/server"
)

type runtimeConfig struct {
	Phantom  phantom.Config
	Server   server.Config
	Admin    admin.Config
	Sessions []config.SessionEntry
}

func defaultRuntimeConfig() runtimeConfig {
	return runtimeConfig{
		Phantom: phantom.DefaultConfig(),
		Server:  server.DefaultConfig(),
		Admin:   admin.Config{Addr: "127.0.0.1:7020"},
	}
}

// loadRuntimeConfig overlays the keys defined in path onto the defaults.
func loadRuntimeConfig(path string) (runtimeConfig, error) {
	cfg := defaultRuntimeConfig()

	var raw config.File
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return runtimeConfig{}, fmt.Errorf("load specter config: %w", err)
	}
	if err := config.Validate(raw); err != nil {
		return runtimeConfig{}, err
	}

	if meta.IsDefined("auto_respawn") {
		cfg.Phantom.AutoRespawn = raw.AutoRespawn
	}

	if meta.IsDefined("yaw_correction") {
		cfg.Phantom.YawCorrection = raw.YawCorrection
	}

	if meta.IsDefined("tick_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.TickInterval))
		if err != nil {
			return runtimeConfig{}, fmt.Errorf("parse tick_interval: %w", err)
		}
		cfg.Server.TickInterval = d
	}

	if meta.IsDefined("protocol_version") {
		cfg.Server.ProtocolVersion = raw.ProtocolVersion
	}

	if meta.IsDefined("world_name") {
		cfg.Server.WorldName = strings.TrimSpace(raw.WorldName)
	}

	if meta.IsDefined("max_health") {
		cfg.Server.MaxHealth = raw.MaxHealth
	}

	if meta.IsDefined("admin_addr") {
		cfg.Admin.Addr = strings.TrimSpace(raw.AdminAddr)
	}

	if meta.IsDefined("admin_token") {
		cfg.Admin.Token = strings.TrimSpace(raw.AdminToken)
	}

	if meta.IsDefined("cors_origins") {
		cfg.Admin.CORSOrigins = normalizeOrigins(raw.CORSOrigins)
	}

	if meta.IsDefined("sessions") {
		cfg.Sessions = normalizeSessions(raw.Sessions)
	}

	return cfg, nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func normalizeSessions(in []config.SessionEntry) []config.SessionEntry {
	out := make([]config.SessionEntry, 0, len(in))
	for _, s := range in {
		s.Name = strings.TrimSpace(s.Name)
		s.Address = strings.TrimSpace(s.Address)
		if s.Address == "" {
			s.Address = phantom.DefaultAddress
		}
		if s.Port == 0 {
			s.Port = phantom.DefaultPort
		}
		out = append(out, s)
	}
	return out
}
