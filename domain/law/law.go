// Package law holds the vocabulary shared by every lawkit layer: law
// identifiers, risk levels, datasets and the result union returned by the
// analyzers.
package law

import "strings"

// ID identifies an analysis subcommand.
type ID string

const (
	Benford     ID = "benf"
	Pareto      ID = "pareto"
	Zipf        ID = "zipf"
	Normal      ID = "normal"
	Poisson     ID = "poisson"
	Integration ID = "analyze"
	Validation  ID = "validate"
	Diagnostic  ID = "diagnose"
	Generation  ID = "generate"
)

// All lists every recognized identifier in dispatch order.
var All = []ID{Benford, Pareto, Zipf, Normal, Poisson, Integration, Validation, Diagnostic, Generation}

// SingleLaws lists the five statistical laws in canonical order. Integration
// output is always ordered this way regardless of how the subset was requested.
var SingleLaws = []ID{Benford, Pareto, Zipf, Normal, Poisson}

// Parse maps an identifier string to an ID. Matching is exact.
func Parse(s string) (ID, bool) {
	for _, id := range All {
		if string(id) == s {
			return id, true
		}
	}
	return "", false
}

// ParseSingle accepts a single-law identifier; "benford" is accepted as an
// alias for "benf".
func ParseSingle(s string) (ID, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "benford" {
		return Benford, true
	}
	for _, id := range SingleLaws {
		if string(id) == s {
			return id, true
		}
	}
	return "", false
}

// IsSingle reports whether id is one of the five statistical laws.
func (id ID) IsSingle() bool {
	for _, s := range SingleLaws {
		if s == id {
			return true
		}
	}
	return false
}

// Rank returns the canonical position of a single law, or len(SingleLaws).
func (id ID) Rank() int {
	for i, s := range SingleLaws {
		if s == id {
			return i
		}
	}
	return len(SingleLaws)
}

func (id ID) String() string { return string(id) }
