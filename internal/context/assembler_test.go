package context

import (
	"strings"
	"testing"

	"github.com/GuangzhiSu/Prospectus-AI/internal/kb"
	"github.com/GuangzhiSu/Prospectus-AI/internal/taxonomy"
)

func frag(id string, code taxonomy.Code, source, text string) kb.Fragment {
	return kb.Fragment{ID: id, Category: code, Source: source, Text: text}
}

func TestAssembleFiltersByCategory(t *testing.T) {
	pool := []kb.Fragment{
		frag("1", taxonomy.CategoryRisk, "risks.xlsx", "risk text"),
		frag("2", taxonomy.CategoryFinancial, "balance-sheet.xlsx", "balance text"),
		frag("3", taxonomy.CategoryManagement, "board.xlsx", "board text"),
	}
	selected, _ := Assemble(pool, "financial-information", 1000)
	if len(selected) != 1 || selected[0].ID != "2" {
		t.Fatalf("unexpected selection: %+v", selected)
	}
}

func TestAssemblePreservesInsertionOrder(t *testing.T) {
	pool := []kb.Fragment{
		frag("b", taxonomy.CategoryFinancial, "s", "second"),
		frag("a", taxonomy.CategoryFinancial, "s", "first"),
	}
	selected, _ := Assemble(pool, "financial-information", 1000)
	if len(selected) != 2 || selected[0].ID != "b" || selected[1].ID != "a" {
		t.Fatalf("pool order not preserved: %+v", selected)
	}
}

func TestAssembleStopsAtFirstOverBudgetFragment(t *testing.T) {
	pool := []kb.Fragment{
		frag("1", taxonomy.CategoryFinancial, "s", strings.Repeat("x", 10)),
		frag("2", taxonomy.CategoryFinancial, "s", strings.Repeat("x", 30)),
		frag("3", taxonomy.CategoryFinancial, "s", strings.Repeat("x", 5)),
	}
	selected, _ := Assemble(pool, "financial-information", 20)
	// The second fragment exceeds the budget; the smaller third one must not
	// be pulled forward past it.
	if len(selected) != 1 || selected[0].ID != "1" {
		t.Fatalf("unexpected selection: %+v", selected)
	}
}

func TestAssembleNeverExceedsBudget(t *testing.T) {
	pool := []kb.Fragment{
		frag("1", taxonomy.CategoryFinancial, "s", strings.Repeat("x", 400)),
		frag("2", taxonomy.CategoryFinancial, "s", strings.Repeat("x", 400)),
		frag("3", taxonomy.CategoryFinancial, "s", strings.Repeat("x", 400)),
	}
	selected, _ := Assemble(pool, "financial-information", 900)
	total := 0
	for _, f := range selected {
		total += len(f.Text)
	}
	if total > 900 {
		t.Fatalf("budget exceeded: %d", total)
	}
	if len(selected) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(selected))
	}
}

func TestAssembleEmptyPoolYieldsEmptyResult(t *testing.T) {
	selected, rendered := Assemble(nil, "financial-information", 1000)
	if len(selected) != 0 || rendered != "" {
		t.Fatalf("expected empty result, got %d fragments, %q", len(selected), rendered)
	}
	pool := []kb.Fragment{frag("1", taxonomy.CategoryRisk, "s", "risk")}
	selected, rendered = Assemble(pool, "use-of-proceeds", 1000)
	if len(selected) != 0 || rendered != "" {
		t.Fatalf("expected empty result for irrelevant pool, got %+v", selected)
	}
}

func TestRenderLabelsBlocks(t *testing.T) {
	pool := []kb.Fragment{
		frag("1", taxonomy.CategoryFinancial, "balance-sheet.xlsx", "alpha"),
		frag("2", taxonomy.CategoryFinancial, "cash-flow.xlsx", "beta"),
	}
	_, rendered := Assemble(pool, "financial-information", 1000)
	want := "[1] (Source: balance-sheet.xlsx)\nalpha\n\n[2] (Source: cash-flow.xlsx)\nbeta"
	if rendered != want {
		t.Fatalf("unexpected rendering:\n%q\nwant:\n%q", rendered, want)
	}
}
