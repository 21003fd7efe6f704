package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/TADI-I/TUT-Labs/internal/labslot"
)

// Config captures environment driven configuration values for the labs service.
type Config struct {
	HTTPPort     int
	SQLiteDSN    string
	SessionTTL   time.Duration
	TempPassword string
	LabNames     []string
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults; invalid values are collected and
// reported together so an operator sees every problem in one pass.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:     8080,
		SQLiteDSN:    "file:tutlabs.db?_pragma=foreign_keys(1)",
		SessionTTL:   24 * time.Hour,
		TempPassword: "Welcome123!",
		LabNames:     labslot.DefaultLabs(),
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("LABS_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "LABS_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("LABS_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("LABS_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "LABS_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if password := strings.TrimSpace(os.Getenv("LABS_TEMP_PASSWORD")); password != "" {
		cfg.TempPassword = password
	}

	if labs := strings.TrimSpace(os.Getenv("LABS_NAMES")); labs != "" {
		names := make([]string, 0, 4)
		for _, name := range strings.Split(labs, ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				names = append(names, trimmed)
			}
		}
		if len(names) == 0 {
			invalid = append(invalid, "LABS_NAMES")
		} else {
			cfg.LabNames = names
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
