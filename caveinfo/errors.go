package caveinfo

import "fmt"

// ParseError is a structured parse error carrying the filename, line
// number, column, and offending token fragment, per spec §7's ConfigParse
// error kind.
type ParseError struct {
	File    string
	LineNo  int
	Column  int    // 1-based byte offset of Excerpt within the line; 0 if unknown
	Excerpt string // the offending token/fragment, if any
	Reason  string
}

func (e *ParseError) Error() string {
	switch {
	case e.File == "":
		return fmt.Sprintf("caveinfo: %s", e.Reason)
	case e.Column > 0 && e.Excerpt != "":
		return fmt.Sprintf("caveinfo: %s:%d:%d: %s (near %q)", e.File, e.LineNo, e.Column, e.Reason, e.Excerpt)
	case e.Excerpt != "":
		return fmt.Sprintf("caveinfo: %s:%d: %s (near %q)", e.File, e.LineNo, e.Reason, e.Excerpt)
	default:
		return fmt.Sprintf("caveinfo: %s:%d: %s", e.File, e.LineNo, e.Reason)
	}
}

// UnknownSublevelError is returned when a sublevel shortcode does not
// resolve against any known alias.
type UnknownSublevelError struct {
	Shortcode string
}

func (e *UnknownSublevelError) Error() string {
	return fmt.Sprintf("caveinfo: unknown sublevel %q", e.Shortcode)
}
