package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.MaxChars != 1200 || cfg.Overlap != 200 || cfg.ContextBudget != 15000 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	payload := strings.Join([]string{
		"data_dir: sources",
		"max_chars: 800",
		"overlap: 100",
		"requirements:",
		"  business: Describe the operating model.",
	}, "\n")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "sources" || cfg.MaxChars != 800 || cfg.Overlap != 100 {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.ContextBudget != 15000 {
		t.Fatalf("untouched default lost: %d", cfg.ContextBudget)
	}
	if got := cfg.Requirement("business"); got != "Describe the operating model." {
		t.Fatalf("unexpected requirement: %q", got)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("data_dir: fromfile\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PROSPECTUS_DATA_DIR", "fromenv")
	t.Setenv("PROSPECTUS_MAX_CHARS", "600")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "fromenv" {
		t.Fatalf("env override missing: %q", cfg.DataDir)
	}
	if cfg.MaxChars != 600 {
		t.Fatalf("env max_chars missing: %d", cfg.MaxChars)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidateRejectsBadGeometry(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max_chars", func(c *Config) { c.MaxChars = 0 }},
		{"overlap equals max", func(c *Config) { c.Overlap = c.MaxChars }},
		{"negative overlap", func(c *Config) { c.Overlap = -1 }},
		{"zero budget", func(c *Config) { c.ContextBudget = 0 }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestRequirementFallsBackToLabel(t *testing.T) {
	cfg := Default()
	if got := cfg.Requirement("risk-factors"); got != "Write the Risk Factors section." {
		t.Fatalf("unexpected fallback: %q", got)
	}
	if got := cfg.Requirement("unknown-section"); got != "Write the unknown-section section." {
		t.Fatalf("unexpected unknown fallback: %q", got)
	}
}
