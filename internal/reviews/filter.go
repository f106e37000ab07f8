package reviews

import "regexp"

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// Filter selects which secondary index a lookup runs against. It is either a
// YearFilter or a ReviewerFilter.
type Filter interface {
	// Label names the filter kind, "year" or "reviewer".
	Label() string
	isFilter()
}

// YearFilter matches reviews whose reviewDate starts with Year.
type YearFilter struct {
	Year string
}

func (YearFilter) Label() string { return "year" }
func (YearFilter) isFilter()     {}

// ReviewerFilter matches reviews written by Name.
type ReviewerFilter struct {
	Name string
}

func (ReviewerFilter) Label() string { return "reviewer" }
func (ReviewerFilter) isFilter()     {}

// Classify turns the second path segment of a lookup into a filter. Exactly
// four ASCII digits is a year, anything else is a reviewer name, so a
// reviewer literally named "2023" can't be looked up this way.
func Classify(key string) Filter {
	if yearPattern.MatchString(key) {
		return YearFilter{Year: key}
	}
	return ReviewerFilter{Name: key}
}
