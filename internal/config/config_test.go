package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()

	in := &Config{
		Version:            "1",
		ActorID:            "ARTISAN-001",
		Role:               RoleArtisan,
		DailyProposalLimit: 5,
		SweepInterval:      "30s",
	}
	if err := SaveConfig(tmpDir, in); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ActorID != "ARTISAN-001" {
		t.Errorf("ActorID = %q, want ARTISAN-001", cfg.ActorID)
	}
	if cfg.Role != RoleArtisan {
		t.Errorf("Role = %q, want %q", cfg.Role, RoleArtisan)
	}
	if cfg.DailyProposalLimit != 5 {
		t.Errorf("DailyProposalLimit = %d, want 5", cfg.DailyProposalLimit)
	}
	if cfg.SweepIntervalDuration() != 30*time.Second {
		t.Errorf("SweepIntervalDuration = %v, want 30s", cfg.SweepIntervalDuration())
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Error("LoadConfig succeeded without a config file, want error")
	}
}

func TestLoadConfig_UnknownFieldsIgnored(t *testing.T) {
	tmpDir := t.TempDir()
	haggleDir := filepath.Join(tmpDir, ".haggle")
	if err := os.MkdirAll(haggleDir, 0755); err != nil {
		t.Fatalf("failed to create .haggle dir: %v", err)
	}

	// Configs written by newer versions may carry fields we don't know.
	raw := `{"version":"2","actor_id":"BUYER-001","future_field":true}`
	if err := os.WriteFile(filepath.Join(haggleDir, "config.json"), []byte(raw), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ActorID != "BUYER-001" {
		t.Errorf("ActorID = %q, want BUYER-001", cfg.ActorID)
	}
}

func TestSweepIntervalDuration(t *testing.T) {
	tests := []struct {
		name     string
		interval string
		want     time.Duration
	}{
		{name: "unset", interval: "", want: 0},
		{name: "valid", interval: "2m", want: 2 * time.Minute},
		{name: "malformed falls back", interval: "soon", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{SweepInterval: tt.interval}
			if got := cfg.SweepIntervalDuration(); got != tt.want {
				t.Errorf("SweepIntervalDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}
