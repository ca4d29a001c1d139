// Package extract turns heterogeneous tabular source files into plain text,
// one string per sheet. The rest of the pipeline treats it as an opaque
// producer of (sheet, text) pairs.
package extract

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is one sub-unit of a source file: a worksheet for spreadsheets, the
// whole content for flat files.
type Sheet struct {
	Name string
	Text string
}

// Extractor produces the textual sheets of one source file.
type Extractor interface {
	Extract(path string) ([]Sheet, error)
}

var supportedExtensions = map[string]struct{}{
	".xlsx": {},
	".xlsm": {},
	".csv":  {},
	".tsv":  {},
	".txt":  {},
}

// ListSources returns the supported source files in dir, sorted by name.
func ListSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := supportedExtensions[ext]; !ok {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// FileExtractor dispatches on the file extension.
type FileExtractor struct{}

func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

func (e *FileExtractor) Extract(path string) ([]Sheet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return extractWorkbook(path)
	case ".csv":
		return extractDelimited(path, ',')
	case ".tsv":
		return extractDelimited(path, '\t')
	default:
		return extractPlain(path)
	}
}

func extractWorkbook(path string) ([]Sheet, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()
	var sheets []Sheet
	for _, name := range book.GetSheetList() {
		rows, err := book.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		text := renderRows(rows)
		if strings.TrimSpace(text) == "" {
			continue
		}
		sheets = append(sheets, Sheet{Name: name, Text: fmt.Sprintf("[Sheet: %s]\n%s", name, text)})
	}
	return sheets, nil
}

func extractDelimited(path string, comma rune) ([]Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer file.Close()
	reader := csv.NewReader(file)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited source: %w", err)
	}
	text := renderRows(rows)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return []Sheet{{Name: "content", Text: text}}, nil
}

func extractPlain(path string) ([]Sheet, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	text := string(payload)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return []Sheet{{Name: "content", Text: text}}, nil
}

func renderRows(rows [][]string) string {
	var b strings.Builder
	for _, row := range rows {
		line := strings.TrimRight(strings.Join(row, "\t"), "\t ")
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
