package models

import "fmt"

// Category partitions the cache by kind of finding.
type Category string

const (
	CategoryDefect         Category = "defect"
	CategoryVulnerability  Category = "vulnerability"
	CategoryRecommendation Category = "recommendation"
	CategoryRequirement    Category = "requirement"
)

// Categories returns every category in a fixed order.
func Categories() []Category {
	return []Category{
		CategoryDefect,
		CategoryVulnerability,
		CategoryRecommendation,
		CategoryRequirement,
	}
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryDefect, CategoryVulnerability, CategoryRecommendation, CategoryRequirement:
		return true
	}
	return false
}

// IDPrefix is prepended to entry ids of this category.
func (c Category) IDPrefix() string {
	switch c {
	case CategoryDefect:
		return "bug"
	case CategoryVulnerability:
		return "vuln"
	case CategoryRecommendation:
		return "rec"
	case CategoryRequirement:
		return "req"
	}
	return string(c)
}

// DirName is the on-disk directory used by file-backed stores.
func (c Category) DirName() string {
	switch c {
	case CategoryDefect:
		return "defects"
	case CategoryVulnerability:
		return "vulnerabilities"
	case CategoryRecommendation:
		return "recommendations"
	case CategoryRequirement:
		return "requirements"
	}
	return string(c)
}
