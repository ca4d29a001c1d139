package taxonomy

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/GuangzhiSu/Prospectus-AI/internal/common"
)

// ClassifyFunc invokes an external model with a prompt and returns its reply.
// It is the narrow collaborator boundary used for content classification so
// callers can substitute a deterministic stub.
type ClassifyFunc func(ctx context.Context, prompt string) (string, error)

const classifySampleRunes = 2500

type nameRule struct {
	substring string
	code      Code
}

// nameRules are tested in declaration order; the first match wins.
var nameRules = []nameRule{
	{"company-introduction", CategoryBusiness},
	{"business-data", CategoryBusiness},
	{"market-performance-comparison", CategoryMarket},
	{"comprehensive-comparison", CategoryMarket},
	{"balance-sheet", CategoryFinancial},
	{"financial-ratios-comparison", CategoryFinancial},
	{"financial-data-comparison", CategoryFinancial},
	{"cash-flow", CategoryFinancial},
	{"growth-capability", CategoryFinancial},
	{"operating-capability", CategoryFinancial},
	{"profit-forecast-comparison", CategoryFinancial},
	{"share-capital-structure", CategoryCapital},
	{"holdings-or-equity", CategoryCapital},
	{"mainland-fund-holdings", CategoryCapital},
	{"board-and-executives", CategoryManagement},
}

// ClassifyName maps a source file name to a fine-grained category using the
// static substring rules. Path components and the file extension are ignored.
// Unrecognized names receive the fallback category.
func ClassifyName(name string) Code {
	base := filepath.Base(name)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	for _, rule := range nameRules {
		if strings.Contains(stem, rule.substring) {
			return rule.code
		}
	}
	return FallbackCategory
}

// ClassifyContent asks an external model to place a content sample in the
// fine-grained taxonomy. Any failure, including an unusable reply, degrades
// to the fallback category; this path never surfaces an error to the caller.
func ClassifyContent(ctx context.Context, sample string, classify ClassifyFunc) Code {
	if classify == nil {
		return FallbackCategory
	}
	reply, err := classify(ctx, buildClassifyPrompt(sample))
	if err != nil {
		common.Logger().Warn("taxonomy: content classification failed", "error", err)
		return FallbackCategory
	}
	for _, r := range reply {
		if code := Code(r); code.Valid() {
			return code
		}
	}
	common.Logger().Warn("taxonomy: no category code in classification reply")
	return FallbackCategory
}

func buildClassifyPrompt(sample string) string {
	var b strings.Builder
	b.WriteString("Classify the following table excerpt into exactly one category. Reply with the single category letter only.\n\nCategories:\n")
	for _, cat := range Categories {
		fmt.Fprintf(&b, "%s: %s\n", cat.Code, cat.Label)
	}
	b.WriteString("\nExcerpt:\n---\n")
	b.WriteString(truncateRunes(sample, classifySampleRunes))
	b.WriteString("\n---\n\nCategory letter:")
	return b.String()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
