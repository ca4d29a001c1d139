// Package context assembles the retrieval context for one output section:
// fragments whose category is relevant to the section, accumulated greedily
// under a character budget and rendered as labeled blocks.
package context

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/GuangzhiSu/Prospectus-AI/internal/kb"
	"github.com/GuangzhiSu/Prospectus-AI/internal/taxonomy"
)

// Assemble filters the pool to fragments relevant to the output section and
// accumulates them in insertion order until the next fragment would push the
// running rune total past the budget. Selection stops at that fragment; later
// smaller fragments are never pulled forward. Separator characters do not
// count against the budget.
func Assemble(pool []kb.Fragment, sectionID string, budget int) ([]kb.Fragment, string) {
	relevant := make(map[taxonomy.Code]struct{})
	for _, code := range taxonomy.RelevantCategories(sectionID) {
		relevant[code] = struct{}{}
	}
	var selected []kb.Fragment
	total := 0
	for _, frag := range pool {
		if _, ok := relevant[frag.Category]; !ok {
			continue
		}
		size := utf8.RuneCountInString(frag.Text)
		if total+size > budget {
			break
		}
		selected = append(selected, frag)
		total += size
	}
	return selected, Render(selected)
}

// Render formats the selected fragments as numbered blocks, each labeled with
// its originating source, joined by blank lines.
func Render(frags []kb.Fragment) string {
	if len(frags) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(frags))
	for i, frag := range frags {
		blocks = append(blocks, fmt.Sprintf("[%d] (Source: %s)\n%s", i+1, frag.Source, frag.Text))
	}
	return strings.Join(blocks, "\n\n")
}
