package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/GuangzhiSu/Prospectus-AI/internal/catalog"
	"github.com/GuangzhiSu/Prospectus-AI/internal/common"
	"github.com/GuangzhiSu/Prospectus-AI/internal/extract"
	"github.com/GuangzhiSu/Prospectus-AI/internal/kb"
	"github.com/GuangzhiSu/Prospectus-AI/internal/llm"
	"github.com/GuangzhiSu/Prospectus-AI/internal/taxonomy"
)

const summarySampleRunes = 2500

// IngestResult reports one ingestion pass.
type IngestResult struct {
	Sources   int      `json:"sources"`
	Sheets    int      `json:"sheets"`
	Fragments int      `json:"fragments"`
	Skipped   []string `json:"skipped,omitempty"`
}

// Ingest processes every supported file in the data directory: per-sheet
// extraction, classification, optional table summaries, chunking, and a full
// replacement of the fragment store. An empty data directory is a
// configuration error; a source unit yielding no text is skipped silently.
func (m *Manager) Ingest(ctx context.Context) (IngestResult, error) {
	logger := common.Logger()
	var result IngestResult

	files, err := extract.ListSources(m.cfg.DataDir)
	if err != nil {
		return result, err
	}
	if len(files) == 0 {
		return result, fmt.Errorf("no source files found in %s", m.cfg.DataDir)
	}

	var all []kb.Fragment
	counts := make(map[taxonomy.Code]int)
	sheetSummaries := make(map[string]string)
	sourceSet := make(map[string]struct{})

	for _, path := range files {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		name := filepath.Base(path)
		sheets, err := m.extractor.Extract(path)
		if err != nil {
			logger.Warn("workflow: source extraction failed, skipping", "source", name, "error", err)
			result.Skipped = append(result.Skipped, name)
			continue
		}
		if len(sheets) == 0 {
			logger.Debug("workflow: source yielded no text", "source", name)
			continue
		}
		code := m.classifySource(ctx, name, sheets[0].Text)

		unitFragments := 0
		for _, sheet := range sheets {
			summary := ""
			if m.cfg.SheetSummaries && m.provider != nil {
				summary = m.summarizeSheet(ctx, name, sheet)
			}
			chunks, err := kb.Chunk(sheet.Text, m.cfg.MaxChars, m.cfg.Overlap)
			if err != nil {
				return result, err
			}
			if len(chunks) == 0 {
				continue
			}
			frags := kb.BuildFragments(name, sheet.Name, code, summary, chunks)
			all = append(all, frags...)
			counts[code] += len(frags)
			unitFragments += len(frags)
			if summary != "" {
				sheetSummaries[name+":"+sheet.Name] = summary
			}
			result.Sheets++
		}
		if unitFragments == 0 {
			continue
		}
		result.Sources++
		sourceSet[name] = struct{}{}
		logger.Info("workflow: source ingested", "source", name, "category", code, "sheets", len(sheets), "fragments", unitFragments)
		if m.catalog != nil {
			unit := catalog.SourceUnit{Name: name, Category: string(code), Sheets: len(sheets), Fragments: unitFragments}
			if err := m.catalog.RecordSourceUnit(ctx, unit); err != nil {
				logger.Warn("workflow: catalog record failed", "source", name, "error", err)
			}
		}
	}

	if err := m.fragments.ReplaceFragments(ctx, all); err != nil {
		return result, err
	}
	result.Fragments = len(all)

	manifest := buildManifest(counts, len(all), sourceSet, sheetSummaries)
	if err := m.fragments.WriteManifest(manifest); err != nil {
		return result, err
	}
	logger.Info("workflow: ingestion complete", "sources", result.Sources, "fragments", result.Fragments)
	return result, nil
}

// classifySource applies the filename heuristic and, when enabled, falls back
// to content classification for names the heuristic cannot place. Both paths
// always yield a category.
func (m *Manager) classifySource(ctx context.Context, name, sample string) taxonomy.Code {
	code := taxonomy.ClassifyName(name)
	if code != taxonomy.FallbackCategory || !m.cfg.ClassifyContent || m.provider == nil {
		return code
	}
	return taxonomy.ClassifyContent(ctx, sample, func(ctx context.Context, prompt string) (string, error) {
		return m.provider.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
	})
}

// summarizeSheet produces a short table summary for retrieval context. Any
// provider failure degrades to a fixed fallback summary.
func (m *Manager) summarizeSheet(ctx context.Context, source string, sheet extract.Sheet) string {
	fallback := fmt.Sprintf("Table: %s / %s", source, sheet.Name)
	prompt := buildSummaryPrompt(source, sheet.Name, sheet.Text)
	out, err := m.provider.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		common.Logger().Warn("workflow: sheet summary failed", "source", source, "sheet", sheet.Name, "error", err)
		return fallback
	}
	if trimmed := strings.TrimSpace(out); trimmed != "" {
		return trimmed
	}
	return fallback
}

func buildSummaryPrompt(source, sheet, text string) string {
	sample := text
	if runes := []rune(text); len(runes) > summarySampleRunes {
		sample = string(runes[:summarySampleRunes])
	}
	return fmt.Sprintf(`Summarize this table/sheet in 2-4 sentences (English). Capture key metrics, structure, and data scope. Be factual and concise.

File: %s
Sheet: %s

Table excerpt (first %d chars):
---
%s
---

SUMMARY:`, source, sheet, summarySampleRunes, sample)
}

func buildManifest(counts map[taxonomy.Code]int, total int, sources map[string]struct{}, summaries map[string]string) kb.Manifest {
	manifest := kb.Manifest{TotalFragments: total}
	for _, cat := range taxonomy.Categories {
		manifest.Categories = append(manifest.Categories, kb.CategoryCount{
			Code:      cat.Code,
			Label:     cat.Label,
			Fragments: counts[cat.Code],
		})
	}
	for name := range sources {
		manifest.SourceFiles = append(manifest.SourceFiles, name)
	}
	sort.Strings(manifest.SourceFiles)
	if len(summaries) > 0 {
		manifest.SheetSummaries = summaries
	}
	return manifest
}
