package kb

import "github.com/GuangzhiSu/Prospectus-AI/internal/taxonomy"

// Fragment is one overlapping slice of normalized source text, the unit of
// retrieval context for section generation. Fragments are immutable once
// created and are persisted as single lines of the fragment store.
type Fragment struct {
	ID            string        `json:"chunk_id"`
	Category      taxonomy.Code `json:"category"`
	CategoryLabel string        `json:"category_label"`
	Source        string        `json:"source_file"`
	Sheet         string        `json:"sheet_name"`
	Index         int           `json:"chunk_index"`
	Text          string        `json:"text"`
	Summary       string        `json:"sheet_summary,omitempty"`
}

// CategoryCount summarizes how many fragments carry one fine-grained category.
type CategoryCount struct {
	Code      taxonomy.Code `json:"code"`
	Label     string        `json:"label"`
	Fragments int           `json:"fragments"`
}

// Manifest summarizes one ingestion pass over the source directory.
type Manifest struct {
	Categories     []CategoryCount   `json:"categories"`
	TotalFragments int               `json:"total_fragments"`
	SourceFiles    []string          `json:"source_files"`
	SheetSummaries map[string]string `json:"sheet_summaries,omitempty"`
}
