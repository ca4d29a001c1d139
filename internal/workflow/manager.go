// Package workflow orchestrates the pipeline: ingestion of tabular sources
// into classified fragments, and sequential section generation into the
// incremental draft store.
package workflow

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/GuangzhiSu/Prospectus-AI/internal/catalog"
	"github.com/GuangzhiSu/Prospectus-AI/internal/config"
	"github.com/GuangzhiSu/Prospectus-AI/internal/draft"
	"github.com/GuangzhiSu/Prospectus-AI/internal/extract"
	"github.com/GuangzhiSu/Prospectus-AI/internal/llm"
	"github.com/GuangzhiSu/Prospectus-AI/internal/memory"
)

const compositeFile = "prospectus.md"

type Manager struct {
	cfg       config.Config
	provider  llm.Provider
	fragments *memory.Store
	drafts    *draft.Store
	catalog   *catalog.Store
	extractor extract.Extractor
}

// NewManager wires the pipeline collaborators. The catalog may be nil; it is
// observability only. A nil extractor defaults to the file extractor.
func NewManager(cfg config.Config, provider llm.Provider, fragments *memory.Store, drafts *draft.Store, cat *catalog.Store, extractor extract.Extractor) *Manager {
	if extractor == nil {
		extractor = extract.NewFileExtractor()
	}
	return &Manager{
		cfg:       cfg,
		provider:  provider,
		fragments: fragments,
		drafts:    drafts,
		catalog:   cat,
		extractor: extractor,
	}
}

func (m *Manager) Fragments() *memory.Store {
	return m.fragments
}

func (m *Manager) Drafts() *draft.Store {
	return m.drafts
}

func (m *Manager) Catalog() *catalog.Store {
	return m.catalog
}

// writeComposite replaces the composite document file in the output directory.
func (m *Manager) writeComposite(text string) (string, error) {
	if err := os.MkdirAll(m.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(m.cfg.OutputDir, compositeFile)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write composite: %w", err)
	}
	return path, nil
}
