package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Role constants. The role names the default side of the table the
// configured actor sits on; any actor can still be either party per
// negotiation.
const (
	RoleBuyer   = "BUYER"
	RoleArtisan = "ARTISAN"
)

// Config represents the flat haggle configuration
type Config struct {
	Version string `json:"version"`
	ActorID string `json:"actor_id"`       // acting party for CLI commands
	Role    string `json:"role,omitempty"` // "BUYER" or "ARTISAN"

	DBPath             string `json:"db_path,omitempty"`              // overrides the default DB location
	DailyProposalLimit int    `json:"daily_proposal_limit,omitempty"` // 0 = service default
	SweepInterval      string `json:"sweep_interval,omitempty"`       // Go duration, e.g. "1m"
}

// LoadConfig reads .haggle/config.json from the specified directory.
// Resolution order: cwd only (no home fallback).
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ".haggle", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	haggleDir := filepath.Join(dir, ".haggle")
	if err := os.MkdirAll(haggleDir, 0755); err != nil {
		return fmt.Errorf("failed to create .haggle dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(haggleDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// SweepIntervalDuration parses the configured sweep interval, falling
// back to zero (caller applies its default) when unset or malformed.
func (c *Config) SweepIntervalDuration() time.Duration {
	if c == nil || c.SweepInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(c.SweepInterval)
	if err != nil {
		return 0
	}
	return d
}

// IsArtisanRole returns true if the role is the artisan side.
func IsArtisanRole(role string) bool {
	return role == RoleArtisan
}
