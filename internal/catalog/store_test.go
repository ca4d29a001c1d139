package catalog

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestRecordSourceUnitUpserts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	unit := SourceUnit{Name: "balance-sheet.csv", Category: "D", Sheets: 1, Fragments: 3}
	if err := store.RecordSourceUnit(ctx, unit); err != nil {
		t.Fatalf("record: %v", err)
	}
	unit.Fragments = 5
	if err := store.RecordSourceUnit(ctx, unit); err != nil {
		t.Fatalf("record again: %v", err)
	}

	units, err := store.SourceUnits(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected single upserted row, got %d", len(units))
	}
	if units[0].Fragments != 5 {
		t.Fatalf("upsert did not replace fragments: %d", units[0].Fragments)
	}
	if units[0].IngestedAt.IsZero() {
		t.Fatal("ingested_at not defaulted")
	}
}

func TestSourceUnitsSortedByName(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"cash-flow.csv", "balance-sheet.csv"} {
		if err := store.RecordSourceUnit(ctx, SourceUnit{Name: name, Category: "D", Sheets: 1, Fragments: 1}); err != nil {
			t.Fatalf("record %s: %v", name, err)
		}
	}
	units, err := store.SourceUnits(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(units) != 2 || units[0].Name != "balance-sheet.csv" {
		t.Fatalf("unexpected order: %+v", units)
	}
}

func TestGenerationsFilterAndOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	events := []Generation{
		{SectionID: "business", Chars: 100},
		{SectionID: "risk-factors", Chars: 200, Placeholder: true},
		{SectionID: "business", Chars: 300},
	}
	for _, gen := range events {
		if err := store.RecordGeneration(ctx, gen); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	all, err := store.Generations(ctx, "", 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	if all[0].Chars != 300 {
		t.Fatalf("newest first violated: %+v", all[0])
	}

	business, err := store.Generations(ctx, "business", 10)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(business) != 2 {
		t.Fatalf("expected 2 business events, got %d", len(business))
	}

	limited, err := store.Generations(ctx, "", 1)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Chars != 300 {
		t.Fatalf("limit not applied: %+v", limited)
	}

	flagged, err := store.Generations(ctx, "risk-factors", 10)
	if err != nil {
		t.Fatalf("list risk-factors: %v", err)
	}
	if len(flagged) != 1 || !flagged[0].Placeholder {
		t.Fatalf("placeholder flag lost: %+v", flagged)
	}
}
