// Package taxonomy defines the two-level section taxonomy used across the
// pipeline: the fine-grained categories assigned to ingested source material
// and the canonical output sections of the generated prospectus, together
// with the static mapping between the two.
package taxonomy

// Code identifies a fine-grained source material category.
type Code string

const (
	CategoryBusiness   Code = "A"
	CategoryMarket     Code = "B"
	CategoryRisk       Code = "C"
	CategoryFinancial  Code = "D"
	CategoryCapital    Code = "E"
	CategoryManagement Code = "F"
	CategoryLegal      Code = "G"
	CategoryOffering   Code = "H"
)

// FallbackCategory is assigned when no classification rule matches. Most
// unrecognized tabular source material is financial data.
const FallbackCategory = CategoryFinancial

// Category pairs a fine-grained code with its human-readable label.
type Category struct {
	Code  Code
	Label string
}

// Categories is the closed, ordered set of fine-grained categories.
var Categories = []Category{
	{CategoryBusiness, "Business & Strategy"},
	{CategoryMarket, "Industry & Market"},
	{CategoryRisk, "Risk Factors"},
	{CategoryFinancial, "Financial Performance & Condition"},
	{CategoryCapital, "Use of Proceeds & Capital Structure"},
	{CategoryManagement, "Management, Governance & Incentives"},
	{CategoryLegal, "Legal, Regulatory & Compliance"},
	{CategoryOffering, "Offering Mechanics & Share Structure"},
}

// Valid reports whether the code belongs to the fine-grained taxonomy.
func (c Code) Valid() bool {
	for _, cat := range Categories {
		if cat.Code == c {
			return true
		}
	}
	return false
}

// Label returns the human-readable label for a fine-grained code, or an empty
// string for an unknown code.
func Label(c Code) string {
	for _, cat := range Categories {
		if cat.Code == c {
			return cat.Label
		}
	}
	return ""
}

// Codes returns every fine-grained code in declaration order.
func Codes() []Code {
	out := make([]Code, 0, len(Categories))
	for _, cat := range Categories {
		out = append(out, cat.Code)
	}
	return out
}

// Section is one entry of the output-document taxonomy. Its position in
// Sections is the canonical ordering of the composite document.
type Section struct {
	ID    string
	Label string
}

// Sections is the canonical output taxonomy. The slice order is the only
// source of truth for composite-document ordering.
var Sections = []Section{
	{"summary", "Summary"},
	{"industry-overview", "Industry Overview"},
	{"business", "Business"},
	{"risk-factors", "Risk Factors"},
	{"financial-information", "Financial Information"},
	{"capitalization", "Capitalization and Indebtedness"},
	{"use-of-proceeds", "Use of Proceeds"},
	{"dividend-policy", "Dividend Policy"},
	{"directors-management", "Directors and Senior Management"},
	{"substantial-shareholders", "Substantial Shareholders"},
	{"share-capital", "Share Capital"},
	{"regulatory-overview", "Regulatory Overview"},
	{"legal-matters", "Legal and Compliance Matters"},
	{"offering-structure", "Structure of the Offering"},
	{"underwriting", "Underwriting"},
	{"future-plans", "Future Plans and Prospects"},
}

// sectionCategories maps an output section to the fine-grained categories
// considered relevant context for it, in priority order. Sections absent from
// this map fall back to the full fine-grained taxonomy: an unmapped section
// is broadly relevant, not irrelevant.
var sectionCategories = map[string][]Code{
	"summary":                  {CategoryBusiness, CategoryMarket, CategoryFinancial},
	"industry-overview":        {CategoryMarket},
	"business":                 {CategoryBusiness, CategoryMarket},
	"risk-factors":             {CategoryRisk, CategoryFinancial, CategoryLegal},
	"financial-information":    {CategoryFinancial},
	"capitalization":           {CategoryFinancial, CategoryCapital},
	"use-of-proceeds":          {CategoryCapital},
	"dividend-policy":          {CategoryFinancial, CategoryCapital},
	"directors-management":     {CategoryManagement},
	"substantial-shareholders": {CategoryCapital, CategoryManagement},
	"share-capital":            {CategoryCapital, CategoryOffering},
	"regulatory-overview":      {CategoryLegal},
	"legal-matters":            {CategoryLegal},
	"offering-structure":       {CategoryOffering},
	"underwriting":             {CategoryOffering},
}

// SectionByID resolves an output section and its canonical position.
func SectionByID(id string) (Section, int, bool) {
	for i, sec := range Sections {
		if sec.ID == id {
			return sec, i, true
		}
	}
	return Section{}, -1, false
}

// SectionIDs returns every output section identifier in canonical order.
func SectionIDs() []string {
	out := make([]string, 0, len(Sections))
	for _, sec := range Sections {
		out = append(out, sec.ID)
	}
	return out
}

// RelevantCategories returns the fine-grained categories mapped to the output
// section, or the full taxonomy when the section has no explicit mapping.
func RelevantCategories(sectionID string) []Code {
	if codes, ok := sectionCategories[sectionID]; ok {
		return append([]Code(nil), codes...)
	}
	return Codes()
}
