// Package memory persists ingested fragments as line-delimited JSON records:
// one main file with every fragment plus one shard per fine-grained category,
// and a manifest summarizing the ingestion pass.
package memory

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/GuangzhiSu/Prospectus-AI/internal/kb"
	"github.com/GuangzhiSu/Prospectus-AI/internal/taxonomy"
)

const (
	fragmentsFile = "rag_chunks.jsonl"
	manifestFile  = "manifest.json"
	categoryDir   = "by_category"
)

type Store struct {
	root string
	mu   sync.RWMutex
}

func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("store path required")
	}
	if err := os.MkdirAll(filepath.Join(root, categoryDir), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &Store{root: root}, nil
}

// AppendFragments appends records to the main file and the per-category shards.
func (s *Store) AppendFragments(ctx context.Context, frags []kb.Fragment) error {
	if len(frags) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeFragments(ctx, frags, os.O_APPEND|os.O_WRONLY|os.O_CREATE)
}

// ReplaceFragments discards any previously persisted fragments and writes the
// provided set. Used at the start of a fresh ingestion pass so identifiers
// from stale runs cannot leak into the new pool.
func (s *Store) ReplaceFragments(ctx context.Context, frags []kb.Fragment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.RemoveAll(filepath.Join(s.root, categoryDir)); err != nil {
		return fmt.Errorf("clear category shards: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(s.root, categoryDir), 0o755); err != nil {
		return fmt.Errorf("create category dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.root, fragmentsFile), nil, 0o644); err != nil {
		return fmt.Errorf("truncate store: %w", err)
	}
	if len(frags) == 0 {
		return nil
	}
	return s.writeFragments(ctx, frags, os.O_APPEND|os.O_WRONLY|os.O_CREATE)
}

func (s *Store) writeFragments(ctx context.Context, frags []kb.Fragment, flags int) error {
	main, err := os.OpenFile(filepath.Join(s.root, fragmentsFile), flags, 0o644)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer main.Close()
	shards := make(map[taxonomy.Code]*os.File)
	defer func() {
		for _, f := range shards {
			f.Close()
		}
	}()
	enc := json.NewEncoder(main)
	for _, frag := range frags {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := enc.Encode(frag); err != nil {
			return fmt.Errorf("encode fragment: %w", err)
		}
		shard, ok := shards[frag.Category]
		if !ok {
			name := filepath.Join(s.root, categoryDir, fmt.Sprintf("category_%s.jsonl", frag.Category))
			shard, err = os.OpenFile(name, flags, 0o644)
			if err != nil {
				return fmt.Errorf("open category shard: %w", err)
			}
			shards[frag.Category] = shard
		}
		if err := json.NewEncoder(shard).Encode(frag); err != nil {
			return fmt.Errorf("encode shard fragment: %w", err)
		}
	}
	return nil
}

// AllFragments reads every persisted fragment in insertion order.
func (s *Store) AllFragments(ctx context.Context) ([]kb.Fragment, error) {
	if s == nil {
		return nil, errors.New("store not initialized")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	file, err := os.Open(filepath.Join(s.root, fragmentsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64<<10), 8<<20)
	var frags []kb.Fragment
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var frag kb.Fragment
		if err := json.Unmarshal(line, &frag); err != nil {
			return nil, fmt.Errorf("decode fragment: %w", err)
		}
		frags = append(frags, frag)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan fragments: %w", err)
	}
	return frags, nil
}

// WriteManifest persists the ingestion manifest, replacing any previous one.
func (s *Store) WriteManifest(manifest kb.Manifest) error {
	payload, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.root, manifestFile), payload, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads the manifest of the most recent ingestion pass.
func (s *Store) ReadManifest() (kb.Manifest, error) {
	var manifest kb.Manifest
	payload, err := os.ReadFile(filepath.Join(s.root, manifestFile))
	if err != nil {
		return manifest, fmt.Errorf("read manifest: %w", err)
	}
	if err := json.Unmarshal(payload, &manifest); err != nil {
		return manifest, fmt.Errorf("decode manifest: %w", err)
	}
	return manifest, nil
}

// Root returns the underlying directory used for persistence.
func (s *Store) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}
