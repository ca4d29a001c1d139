package taxonomy

import (
	"context"
	"errors"
	"testing"
)

func TestClassifyNameIgnoresCaseAndPath(t *testing.T) {
	cases := map[string]Code{
		"balance-sheet.xlsx":                 CategoryFinancial,
		"Balance-Sheet.XLSX":                 CategoryFinancial,
		"data/raw/Company-Introduction.xlsx": CategoryBusiness,
		"market-performance-comparison.csv":  CategoryMarket,
		"share-capital-structure.xlsx":       CategoryCapital,
		"board-and-executives.xlsx":          CategoryManagement,
	}
	for name, want := range cases {
		if got := ClassifyName(name); got != want {
			t.Fatalf("classify %q: got %s, want %s", name, got, want)
		}
	}
}

func TestClassifyNameFallsBack(t *testing.T) {
	if got := ClassifyName("completely-unrelated.xlsx"); got != FallbackCategory {
		t.Fatalf("expected fallback %s, got %s", FallbackCategory, got)
	}
}

func TestClassifyContentScansForCode(t *testing.T) {
	got := ClassifyContent(context.Background(), "revenue table", func(ctx context.Context, prompt string) (string, error) {
		return "the category is C", nil
	})
	if got != CategoryRisk {
		t.Fatalf("expected C, got %s", got)
	}
}

func TestClassifyContentAbsorbsFailures(t *testing.T) {
	failing := func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("model unavailable")
	}
	if got := ClassifyContent(context.Background(), "sample", failing); got != FallbackCategory {
		t.Fatalf("expected fallback on error, got %s", got)
	}
	empty := func(ctx context.Context, prompt string) (string, error) {
		return "no idea here", nil
	}
	if got := ClassifyContent(context.Background(), "sample", empty); got != FallbackCategory {
		t.Fatalf("expected fallback on unusable reply, got %s", got)
	}
	if got := ClassifyContent(context.Background(), "sample", nil); got != FallbackCategory {
		t.Fatalf("expected fallback without classifier, got %s", got)
	}
}

func TestRelevantCategoriesForMappedSection(t *testing.T) {
	codes := RelevantCategories("use-of-proceeds")
	if len(codes) != 1 || codes[0] != CategoryCapital {
		t.Fatalf("unexpected codes: %v", codes)
	}
}

func TestRelevantCategoriesFallsBackToAllCodes(t *testing.T) {
	codes := RelevantCategories("future-plans")
	if len(codes) != len(Categories) {
		t.Fatalf("expected every fine-grained code, got %v", codes)
	}
	for i, cat := range Categories {
		if codes[i] != cat.Code {
			t.Fatalf("code %d: got %s, want %s", i, codes[i], cat.Code)
		}
	}
}

func TestSectionByIDPositions(t *testing.T) {
	sec, pos, ok := SectionByID("risk-factors")
	if !ok {
		t.Fatal("risk-factors not found")
	}
	if sec.Label != "Risk Factors" || pos != 3 {
		t.Fatalf("unexpected section: %+v at %d", sec, pos)
	}
	if _, _, ok := SectionByID("nonexistent"); ok {
		t.Fatal("expected lookup miss")
	}
}
