package kb

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/GuangzhiSu/Prospectus-AI/internal/taxonomy"
)

const idPrefixRunes = 50

var (
	trailingSpaceRe = regexp.MustCompile(`[ \t]+\n`)
	multiNewlineRe  = regexp.MustCompile(`\n{3,}`)
)

// Normalize collapses carriage returns to newlines, strips trailing
// whitespace before newlines, collapses runs of three or more newlines to two
// and trims the surrounding whitespace of the whole text.
func Normalize(text string) string {
	cleaned := strings.ReplaceAll(text, "\r", "\n")
	cleaned = trailingSpaceRe.ReplaceAllString(cleaned, "\n")
	cleaned = multiNewlineRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// Chunk splits normalized text into overlapping slices of at most maxChars
// runes. The cursor advances by maxChars minus overlap each step, so
// consecutive fragments share their boundary regions. Empty or
// whitespace-only input yields no fragments.
//
// overlap must be smaller than maxChars; otherwise the cursor could not
// advance and the call is rejected as a configuration error.
func Chunk(text string, maxChars, overlap int) ([]string, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", maxChars)
	}
	if overlap < 0 || overlap >= maxChars {
		return nil, fmt.Errorf("overlap %d must be in [0, %d)", overlap, maxChars)
	}
	cleaned := []rune(Normalize(text))
	if len(cleaned) == 0 {
		return nil, nil
	}
	var chunks []string
	i := 0
	for i < len(cleaned) {
		end := i + maxChars
		if end > len(cleaned) {
			end = len(cleaned)
		}
		if slice := strings.TrimSpace(string(cleaned[i:end])); slice != "" {
			chunks = append(chunks, slice)
		}
		if end >= len(cleaned) {
			break
		}
		i = end - overlap
		if i < 0 {
			i = 0
		}
	}
	return chunks, nil
}

// FragmentID derives the stable identifier of a fragment from its source
// identity, position and a prefix of its text. Identical inputs always yield
// the identical identifier; the hash is traceability, not security.
func FragmentID(source, sheet string, index int, text string) string {
	prefix := text
	if runes := []rune(text); len(runes) > idPrefixRunes {
		prefix = string(runes[:idPrefixRunes])
	}
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%s:%d:%s", source, sheet, index, prefix)))
	return hex.EncodeToString(sum[:])[:12]
}

// BuildFragments turns the chunks of one sub-unit into persisted fragment
// records. When a sheet summary is present it is prepended to each chunk so
// the retrieval text carries the table's context.
func BuildFragments(source, sheet string, code taxonomy.Code, summary string, chunks []string) []Fragment {
	frags := make([]Fragment, 0, len(chunks))
	for i, chunk := range chunks {
		text := chunk
		if summary != "" {
			text = summary + "\n\n[Data]\n" + chunk
		}
		frags = append(frags, Fragment{
			ID:            FragmentID(source, sheet, i, chunk),
			Category:      code,
			CategoryLabel: taxonomy.Label(code),
			Source:        source,
			Sheet:         sheet,
			Index:         i,
			Text:          text,
			Summary:       summary,
		})
	}
	return frags
}
