// Package casefold provides the case-insensitive string comparison used
// for caveinfo aliases and query entity/unit names (spec §4.5, §6). It
// uses golang.org/x/text/cases instead of ad-hoc strings.ToLower so that
// folding follows Unicode case-folding rules rather than byte-wise ASCII
// lowercasing, the one place in this module where that distinction is
// observable (non-ASCII internal names in community-authored caveinfo).
package casefold

import "golang.org/x/text/cases"

var folder = cases.Fold()

// Fold returns s case-folded for comparison or use as a map key.
func Fold(s string) string {
	return folder.String(s)
}

// Equal reports whether a and b are equal under case folding.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}
