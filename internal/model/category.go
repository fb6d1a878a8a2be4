package model

import "strings"

// Category is the kind of need a requester describes.
type Category string

// Known categories.
const (
	CategorySafety         Category = "SAFETY"
	CategoryHealthcare     Category = "HEALTHCARE"
	CategoryHousing        Category = "HOUSING"
	CategoryUtilities      Category = "UTILITIES"
	CategoryEmployment     Category = "EMPLOYMENT"
	CategoryTransportation Category = "TRANSPORTATION"
	CategoryFood           Category = "FOOD"
	CategoryEducation      Category = "EDUCATION"
	CategoryFamily         Category = "FAMILY"
	CategoryOther          Category = "OTHER"
)

// CategoryPriority is the severity order used to break evidence ties.
// Earlier entries win.
var CategoryPriority = []Category{
	CategorySafety,
	CategoryHealthcare,
	CategoryHousing,
	CategoryUtilities,
	CategoryEmployment,
	CategoryTransportation,
	CategoryFood,
	CategoryEducation,
	CategoryFamily,
	CategoryOther,
}

// Rank returns the tie-break rank of c (lower is more severe).
// Unknown categories rank after OTHER.
func (c Category) Rank() int {
	for i, p := range CategoryPriority {
		if p == c {
			return i
		}
	}
	return len(CategoryPriority)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c.Rank() < len(CategoryPriority)
}

// ParseCategory converts s to a known category, case-insensitively.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", false
	}
	return c, true
}

// CategoryScore is the classifier's evidence summary for one category.
type CategoryScore struct {
	Category      Category `json:"category"`
	EvidenceCount int      `json:"evidence_count"`
	Score         float64  `json:"score"`
	Confidence    float64  `json:"confidence"`
	Reasons       []string `json:"reasons,omitempty"`
}
