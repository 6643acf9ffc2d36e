package media

import "fmt"

// Result is the outcome of Validate. Valid is true iff Issues is empty.
type Result struct {
	Valid  bool     `json:"isValid"`
	Issues []string `json:"issues,omitempty"`
}

// Validate checks the role pointers against the collection. Each check runs
// independently and contributes at most one issue.
func Validate(r Record) Result {
	n := r.Len()
	cover := r.Collection.CoverIndex
	logo := r.Collection.LogoIndex

	var issues []string
	if cover != nil && !inBounds(cover, n) {
		issues = append(issues, fmt.Sprintf("coverIndex %d out of range for %d assets", *cover, n))
	}
	if logo != nil && !inBounds(logo, n) {
		issues = append(issues, fmt.Sprintf("logoIndex %d out of range for %d assets", *logo, n))
	}
	if cover != nil && logo != nil && *cover == *logo {
		issues = append(issues, fmt.Sprintf("coverIndex and logoIndex both point to position %d", *cover))
	}
	return Result{Valid: len(issues) == 0, Issues: issues}
}
