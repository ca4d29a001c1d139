// Package config loads the pipeline configuration from an optional YAML file
// with environment variable overrides. Chunk geometry is validated here, at
// startup, so a bad overlap/size pair aborts before any output is written.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/GuangzhiSu/Prospectus-AI/internal/taxonomy"
)

type Config struct {
	DataDir     string `yaml:"data_dir"`
	StoreDir    string `yaml:"store_dir"`
	OutputDir   string `yaml:"output_dir"`
	CatalogPath string `yaml:"catalog_path"`

	MaxChars      int `yaml:"max_chars"`
	Overlap       int `yaml:"overlap"`
	ContextBudget int `yaml:"context_budget"`

	// SheetSummaries enables per-sheet table summaries via the LLM provider
	// during ingestion.
	SheetSummaries bool `yaml:"sheet_summaries"`
	// ClassifyContent enables the content-classification fallback for source
	// files the filename heuristic cannot place.
	ClassifyContent bool `yaml:"classify_content"`

	// Requirements holds per-section drafting requirements keyed by output
	// section identifier.
	Requirements map[string]string `yaml:"requirements"`
}

func Default() Config {
	return Config{
		DataDir:       "data",
		StoreDir:      filepath.Join("agent1_output"),
		OutputDir:     filepath.Join("agent2_output"),
		CatalogPath:   filepath.Join("data", "catalog.db"),
		MaxChars:      1200,
		Overlap:       200,
		ContextBudget: 15000,
	}
}

// Load reads the YAML file at path (skipped when path is empty), overlays
// PROSPECTUS_* environment variables and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		payload, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(payload, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PROSPECTUS_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("PROSPECTUS_STORE_DIR"); v != "" {
		cfg.StoreDir = v
	}
	if v := os.Getenv("PROSPECTUS_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("PROSPECTUS_CATALOG_PATH"); v != "" {
		cfg.CatalogPath = v
	}
	if v := os.Getenv("PROSPECTUS_MAX_CHARS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.MaxChars = parsed
		}
	}
	if v := os.Getenv("PROSPECTUS_OVERLAP"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Overlap = parsed
		}
	}
	if v := os.Getenv("PROSPECTUS_CONTEXT_BUDGET"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.ContextBudget = parsed
		}
	}
}

func (c Config) Validate() error {
	if c.MaxChars <= 0 {
		return fmt.Errorf("max_chars must be positive, got %d", c.MaxChars)
	}
	if c.Overlap < 0 || c.Overlap >= c.MaxChars {
		return fmt.Errorf("overlap %d must be in [0, %d)", c.Overlap, c.MaxChars)
	}
	if c.ContextBudget <= 0 {
		return fmt.Errorf("context_budget must be positive, got %d", c.ContextBudget)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir required")
	}
	return nil
}

// Requirement returns the drafting requirements for an output section, or a
// generic instruction when none are configured.
func (c Config) Requirement(sectionID string) string {
	if req, ok := c.Requirements[sectionID]; ok && req != "" {
		return req
	}
	label := sectionID
	if sec, _, ok := taxonomy.SectionByID(sectionID); ok {
		label = sec.Label
	}
	return fmt.Sprintf("Write the %s section.", label)
}
