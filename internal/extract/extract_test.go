package extract

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestListSourcesFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "x")
	writeFile(t, dir, "a.xlsx", "x")
	writeFile(t, dir, "notes.md", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files, err := ListSources(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 sources, got %v", files)
	}
	if filepath.Base(files[0]) != "a.xlsx" || filepath.Base(files[1]) != "b.csv" {
		t.Fatalf("unexpected order: %v", files)
	}
}

func TestExtractCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "balance-sheet.csv", "item,2023,2024\ncash,10,20\n")
	sheets, err := NewFileExtractor().Extract(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(sheets) != 1 {
		t.Fatalf("expected 1 sheet, got %d", len(sheets))
	}
	if sheets[0].Name != "content" {
		t.Fatalf("unexpected sheet name: %q", sheets[0].Name)
	}
	want := "item\t2023\t2024\ncash\t10\t20"
	if sheets[0].Text != want {
		t.Fatalf("unexpected text: %q, want %q", sheets[0].Text, want)
	}
}

func TestExtractEmptySourceYieldsNoSheets(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.txt", "   \n\n  ")
	sheets, err := NewFileExtractor().Extract(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(sheets) != 0 {
		t.Fatalf("expected no sheets, got %d", len(sheets))
	}
}

func TestExtractPlainText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "company-introduction.txt", "Founded in 2001.")
	sheets, err := NewFileExtractor().Extract(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(sheets) != 1 || sheets[0].Text != "Founded in 2001." {
		t.Fatalf("unexpected sheets: %+v", sheets)
	}
}
