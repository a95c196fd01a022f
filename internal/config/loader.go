// Package config loads the service configuration from the process
// environment plus an optional YAML file with wake scheduling defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures the startup configuration of the signage service.
type Config struct {
	HTTPPort          int
	SQLiteDSN         string
	SessionTTL        time.Duration
	AdminUsername     string
	AdminPassword     string
	RetentionSchedule string
	Wake              WakeDefaults
}

// Load parses configuration values from the current process environment. The
// optional TABLOHM_CONFIG_FILE points at a YAML file with wake defaults that
// seed the database on first start.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:          8080,
		SQLiteDSN:         "file:tablohm.db?_pragma=busy_timeout(5000)",
		SessionTTL:        24 * time.Hour,
		AdminUsername:     "admin",
		RetentionSchedule: "0 3 * * *",
		Wake:              DefaultWakeDefaults(),
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("TABLOHM_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "TABLOHM_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("TABLOHM_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("TABLOHM_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "TABLOHM_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if username := strings.TrimSpace(os.Getenv("TABLOHM_ADMIN_USERNAME")); username != "" {
		cfg.AdminUsername = username
	}

	if password := strings.TrimSpace(os.Getenv("TABLOHM_ADMIN_PASSWORD")); password == "" {
		missing = append(missing, "TABLOHM_ADMIN_PASSWORD")
	} else {
		cfg.AdminPassword = password
	}

	if schedule := strings.TrimSpace(os.Getenv("TABLOHM_RETENTION_SCHEDULE")); schedule != "" {
		cfg.RetentionSchedule = schedule
	}

	if path := strings.TrimSpace(os.Getenv("TABLOHM_CONFIG_FILE")); path != "" {
		wake, err := LoadWakeDefaults(path)
		if err != nil {
			return Config{}, fmt.Errorf("Konfigurationsdatei konnte nicht gelesen werden: %w", err)
		}
		cfg.Wake = wake
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("erforderliche Umgebungsvariablen fehlen: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("ungültige Umgebungsvariablen: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
