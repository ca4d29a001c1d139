package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/GuangzhiSu/Prospectus-AI/internal/catalog"
	"github.com/GuangzhiSu/Prospectus-AI/internal/common"
	ctxassembler "github.com/GuangzhiSu/Prospectus-AI/internal/context"
	"github.com/GuangzhiSu/Prospectus-AI/internal/kb"
	"github.com/GuangzhiSu/Prospectus-AI/internal/llm"
	"github.com/GuangzhiSu/Prospectus-AI/internal/taxonomy"
)

// GenerateSections drafts the requested output sections (all of them when ids
// is empty) in canonical order. After each section the composite is rebuilt
// in prefix mode, so a batch in progress never resurrects stale sections from
// an earlier, unrelated run beyond the current point. Unknown identifiers are
// skipped with a warning.
func (m *Manager) GenerateSections(ctx context.Context, ids []string) (map[string]string, error) {
	logger := common.Logger()
	if len(ids) == 0 {
		ids = taxonomy.SectionIDs()
	}
	type target struct {
		id  string
		pos int
	}
	var targets []target
	for _, id := range ids {
		if _, pos, ok := taxonomy.SectionByID(id); ok {
			targets = append(targets, target{id: id, pos: pos})
		} else {
			logger.Warn("workflow: unknown output section skipped", "section", id)
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].pos < targets[j].pos })

	pool, err := m.fragments.AllFragments(ctx)
	if err != nil {
		return nil, err
	}

	results := make(map[string]string, len(targets))
	for _, tgt := range targets {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}
		text, placeholder, err := m.generateSection(ctx, tgt.id, pool, "")
		if err != nil {
			return results, err
		}
		if err := m.persistSection(ctx, tgt.id, text, placeholder); err != nil {
			return results, err
		}
		results[tgt.id] = text
		composite, err := m.drafts.ComposePrefix(tgt.id)
		if err != nil {
			return results, err
		}
		if _, err := m.writeComposite(composite); err != nil {
			return results, err
		}
	}
	return results, nil
}

// RegenerateSection redrafts a single section, optionally steered by a free
// text modification instruction, and rebuilds the composite in full mode: the
// caller is editing one section of an otherwise complete draft, so every
// persisted section merges into the result.
func (m *Manager) RegenerateSection(ctx context.Context, id, instruction string) (string, error) {
	if _, _, ok := taxonomy.SectionByID(id); !ok {
		return "", fmt.Errorf("unknown output section %q", id)
	}
	pool, err := m.fragments.AllFragments(ctx)
	if err != nil {
		return "", err
	}
	text, placeholder, err := m.generateSection(ctx, id, pool, instruction)
	if err != nil {
		return "", err
	}
	if err := m.persistSection(ctx, id, text, placeholder); err != nil {
		return "", err
	}
	if _, err := m.writeComposite(m.drafts.ComposeFull()); err != nil {
		return "", err
	}
	return text, nil
}

// generateSection assembles the section context and invokes the provider.
// When the assembler yields no fragments the provider is not invoked and a
// fixed placeholder is returned instead; the bool reports that case. A
// provider failure is returned as-is so the caller leaves the draft store
// untouched for that section.
func (m *Manager) generateSection(ctx context.Context, id string, pool []kb.Fragment, instruction string) (string, bool, error) {
	logger := common.Logger()
	sec, _, _ := taxonomy.SectionByID(id)

	selected, rendered := ctxassembler.Assemble(pool, id, m.cfg.ContextBudget)
	if len(selected) == 0 {
		logger.Warn("workflow: no source material for section", "section", id)
		return fmt.Sprintf("[Section: %s]\n\nNo source material is available for this section. Manual draft required.", sec.Label), true, nil
	}
	logger.Info("workflow: generating section", "section", id, "fragments", len(selected))

	messages := []llm.Message{
		{Role: "system", Content: "You are drafting a prospectus section. Use ONLY the provided context. Do not invent data."},
		{Role: "user", Content: buildSectionPrompt(sec, m.cfg.Requirement(id), rendered, instruction)},
	}
	out, err := m.provider.Chat(ctx, messages)
	if err != nil {
		return "", false, fmt.Errorf("generate section %s: %w", id, err)
	}
	return strings.TrimSpace(out), false, nil
}

func (m *Manager) persistSection(ctx context.Context, id, text string, placeholder bool) error {
	if err := m.drafts.WriteSection(id, text); err != nil {
		return err
	}
	if m.catalog != nil {
		gen := catalog.Generation{SectionID: id, Chars: utf8.RuneCountInString(text), Placeholder: placeholder}
		if err := m.catalog.RecordGeneration(ctx, gen); err != nil {
			common.Logger().Warn("workflow: catalog record failed", "section", id, "error", err)
		}
	}
	return nil
}

func buildSectionPrompt(sec taxonomy.Section, requirements, context, instruction string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Section: %s\n\n", sec.Label)
	fmt.Fprintf(&b, "Requirements:\n%s\n\n", requirements)
	if strings.TrimSpace(instruction) != "" {
		fmt.Fprintf(&b, "Modification instruction:\n%s\n\n", strings.TrimSpace(instruction))
	}
	fmt.Fprintf(&b, "Context from company documents:\n---\n%s\n---\n\n", context)
	b.WriteString(`Instructions:
1. Write the section content in a formal, factual tone.
2. Use only information from the context above.
3. If the context is insufficient, state what is missing and provide a brief placeholder.
4. Output in prose/paragraphs; use tables or lists if the data suits it.
5. Do not include meta-commentary like "Based on the context...". Write the section content directly.

Section content:`)
	return b.String()
}
