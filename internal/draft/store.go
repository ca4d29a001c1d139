// Package draft persists generated prospectus sections one file per section
// and rebuilds the composite document from them. A section file is always
// replaced whole, never patched, and the composite is always recomputed from
// the persisted files so the two can never drift apart.
package draft

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/GuangzhiSu/Prospectus-AI/internal/common"
	"github.com/GuangzhiSu/Prospectus-AI/internal/taxonomy"
)

const compositeTitle = "# Prospectus Draft"

// Record describes one persisted generated section.
type Record struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Position int    `json:"position"`
	Chars    int    `json:"chars"`
}

type Store struct {
	root string
	mu   sync.Mutex
}

func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("draft path required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create draft dir: %w", err)
	}
	return &Store{root: root}, nil
}

// WriteSection replaces the persisted record for one output section. The file
// is written to a temporary path and renamed so a failed write can never
// leave a partially updated record behind.
func (s *Store) WriteSection(id, text string) error {
	sec, _, ok := taxonomy.SectionByID(id)
	if !ok {
		return fmt.Errorf("unknown output section %q", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	finalPath := s.sectionPath(id)
	tempPath := finalPath + ".tmp"
	payload := fmt.Sprintf("# %s\n\n%s", sec.Label, strings.TrimSpace(text))
	if err := os.WriteFile(tempPath, []byte(payload), 0o644); err != nil {
		return fmt.Errorf("write section: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("replace section: %w", err)
	}
	return nil
}

// ReadSection returns the body of a persisted section. The bool reports
// whether a readable record exists; unreadable or malformed files count as
// absent.
func (s *Store) ReadSection(id string) (string, bool) {
	if _, _, ok := taxonomy.SectionByID(id); !ok {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readSection(id)
}

// Sections lists every persisted section in canonical order.
func (s *Store) Sections() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []Record
	for pos, sec := range taxonomy.Sections {
		body, ok := s.readSection(sec.ID)
		if !ok {
			continue
		}
		records = append(records, Record{
			ID:       sec.ID,
			Label:    sec.Label,
			Position: pos,
			Chars:    utf8.RuneCountInString(body),
		})
	}
	return records
}

// ComposeFull rebuilds the composite from every persisted section in
// canonical taxonomy order, skipping sections with no record.
func (s *Store) ComposeFull() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compose(len(taxonomy.Sections) - 1)
}

// ComposePrefix rebuilds the composite restricted to sections whose canonical
// position is at or before upTo's. Used by sequential batch generation so a
// run in progress cannot resurrect stale sections from a previous, unrelated
// run beyond the current point.
func (s *Store) ComposePrefix(upTo string) (string, error) {
	_, pos, ok := taxonomy.SectionByID(upTo)
	if !ok {
		return "", fmt.Errorf("unknown output section %q", upTo)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compose(pos), nil
}

func (s *Store) compose(limit int) string {
	var b strings.Builder
	b.WriteString(compositeTitle)
	b.WriteString("\n")
	for pos, sec := range taxonomy.Sections {
		if pos > limit {
			break
		}
		body, ok := s.readSection(sec.ID)
		if !ok {
			continue
		}
		b.WriteString("\n## ")
		b.WriteString(sec.Label)
		b.WriteString("\n\n")
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Store) readSection(id string) (string, bool) {
	payload, err := os.ReadFile(s.sectionPath(id))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			common.Logger().Warn("draft: unreadable section record skipped", "section", id, "error", err)
		}
		return "", false
	}
	content := string(payload)
	if !strings.HasPrefix(content, "# ") {
		common.Logger().Warn("draft: malformed section record skipped", "section", id)
		return "", false
	}
	_, body, found := strings.Cut(content, "\n\n")
	if !found {
		common.Logger().Warn("draft: malformed section record skipped", "section", id)
		return "", false
	}
	return strings.TrimSpace(body), true
}

func (s *Store) sectionPath(id string) string {
	return filepath.Join(s.root, fmt.Sprintf("section_%s.md", id))
}

// Root returns the directory holding the per-section files.
func (s *Store) Root() string {
	return s.root
}
