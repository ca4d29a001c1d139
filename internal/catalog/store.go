// Package catalog records ingestion and generation history in a SQLite
// database. It is observability for operators; catalog failures are logged by
// callers and never interrupt the pipeline.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store wraps a pooled sqlx.DB connection to the SQLite catalog.
type Store struct {
	db *sqlx.DB
}

// Open constructs a Store backed by the SQLite database at the provided path.
// The schema is migrated on first use.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", abs)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS source_units (
    name        TEXT PRIMARY KEY,
    category    TEXT NOT NULL,
    sheets      INTEGER NOT NULL,
    fragments   INTEGER NOT NULL,
    ingested_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS generations (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    section_id  TEXT NOT NULL,
    chars       INTEGER NOT NULL,
    placeholder INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_generations_section ON generations(section_id);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate catalog: %w", err)
	}
	return nil
}

// SourceUnit is one ingested source file.
type SourceUnit struct {
	Name       string    `db:"name" json:"name"`
	Category   string    `db:"category" json:"category"`
	Sheets     int       `db:"sheets" json:"sheets"`
	Fragments  int       `db:"fragments" json:"fragments"`
	IngestedAt time.Time `db:"ingested_at" json:"ingested_at"`
}

// Generation is one persisted section generation event.
type Generation struct {
	ID          int64     `db:"id" json:"id"`
	SectionID   string    `db:"section_id" json:"section_id"`
	Chars       int       `db:"chars" json:"chars"`
	Placeholder bool      `db:"placeholder" json:"placeholder"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// RecordSourceUnit upserts the ingestion record for one source file.
func (s *Store) RecordSourceUnit(ctx context.Context, unit SourceUnit) error {
	if unit.IngestedAt.IsZero() {
		unit.IngestedAt = time.Now().UTC()
	}
	const query = `
INSERT INTO source_units (name, category, sheets, fragments, ingested_at)
VALUES (:name, :category, :sheets, :fragments, :ingested_at)
ON CONFLICT(name) DO UPDATE SET
    category = excluded.category,
    sheets = excluded.sheets,
    fragments = excluded.fragments,
    ingested_at = excluded.ingested_at`
	if _, err := s.db.NamedExecContext(ctx, query, unit); err != nil {
		return fmt.Errorf("record source unit: %w", err)
	}
	return nil
}

// RecordGeneration appends one generation event.
func (s *Store) RecordGeneration(ctx context.Context, gen Generation) error {
	if gen.CreatedAt.IsZero() {
		gen.CreatedAt = time.Now().UTC()
	}
	const query = `
INSERT INTO generations (section_id, chars, placeholder, created_at)
VALUES (:section_id, :chars, :placeholder, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, gen); err != nil {
		return fmt.Errorf("record generation: %w", err)
	}
	return nil
}

// SourceUnits lists every ingested source file by name.
func (s *Store) SourceUnits(ctx context.Context) ([]SourceUnit, error) {
	var units []SourceUnit
	if err := s.db.SelectContext(ctx, &units, `SELECT * FROM source_units ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list source units: %w", err)
	}
	return units, nil
}

// Generations lists generation events, newest first, optionally restricted to
// one output section.
func (s *Store) Generations(ctx context.Context, sectionID string, limit int) ([]Generation, error) {
	if limit <= 0 {
		limit = 50
	}
	var gens []Generation
	var err error
	if sectionID == "" {
		err = s.db.SelectContext(ctx, &gens, `SELECT * FROM generations ORDER BY id DESC LIMIT ?`, limit)
	} else {
		err = s.db.SelectContext(ctx, &gens, `SELECT * FROM generations WHERE section_id = ? ORDER BY id DESC LIMIT ?`, sectionID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	return gens, nil
}
