package query

import "fmt"

// ParseError reports a malformed query string, with the byte offset into
// the input where parsing failed.
type ParseError struct {
	Input  string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("query parse error at offset %d: %s (in %q)", e.Offset, e.Reason, e.Input)
}

// ReferenceError reports a query clause that names an entity or unit not
// present anywhere on the sublevel it's evaluated against. Non-fatal for
// compare (the clause simply evaluates its count as zero); fatal for
// carry_dist/straight_dist/gated, which have nothing to measure.
type ReferenceError struct {
	Sublevel string
	Name     string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%q does not appear on sublevel %s", e.Name, e.Sublevel)
}
