package framework

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter decides whether a test (or test group) identified by id should run.
type Filter func(id TestID) bool

// RegexList accumulates regular expressions from repeated command-line flags.
// It implements flag.Value so it can be bound directly with flag.Var.
type RegexList struct {
	patterns []*regexp.Regexp
}

func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex %q: %w", value, err)
	}
	r.patterns = append(r.patterns, rx)
	return nil
}

func (r RegexList) String() string {
	quoted := make([]string, 0, len(r.patterns))
	for _, p := range r.patterns {
		quoted = append(quoted, `"`+p.String()+`"`)
	}
	return strings.Join(quoted, " or ")
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

func (r RegexList) AnyMatch(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// RegexFilters selects tests by name: a test runs if it matches at least one
// MustMatch pattern (or none are defined) and no MustNotMatch pattern.
//
// Tests are discovered by running their parent groups, so a MustMatch pattern
// is applied at every level of the path. To select a single leaf, anchor the
// pattern at its group ("users/duplicate"), not at the leaf name alone.
type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id TestID) bool {
	name := id.String()
	if r.MustMatch.IsDefined() && !r.MustMatch.AnyMatch(name) {
		return false
	}
	return !r.MustNotMatch.AnyMatch(name)
}
