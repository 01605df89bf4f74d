package caveinfo

import (
	"strings"
	"unicode"
)

// ParseSections tokenizes the brace-delimited format used by both caveinfo
// files and map-unit text files. A file is a sequence of
// sections; each section is an optional leading number, zero or more stray
// closing braces, an opening brace, one or more lines, and a closing
// brace.
//
// When strict is false (the default used for game variants like "newyear"
// and "216"), stray braces and trailing junk after the final section are
// silently tolerated rather than treated as errors, matching the known
// malformations in those corpora.
func ParseSections(filename, text string, strict bool) ([]Section, error) {
	var sections []Section
	var current *Section
	depth := 0

	rawLines := strings.Split(text, "\n")
	for i, raw := range rawLines {
		lineNo := i + 1
		line := stripComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch depth {
		case 0:
			switch {
			case line == "{":
				current = &Section{}
				depth = 1
			case strings.HasPrefix(line, "{"):
				current = &Section{}
				depth = 1
				rest := strings.TrimSpace(line[1:])
				if rest != "" {
					current.Lines = append(current.Lines, tokenize(filename, lineNo, rest))
				}
			case line == "}":
				// Stray closing brace with nothing open; tolerated.
				if strict {
					return nil, &ParseError{File: filename, LineNo: lineNo, Reason: "stray closing brace"}
				}
			case isAllDigits(line):
				// Leading section-count marker; informational only.
			default:
				if strict {
					return nil, &ParseError{File: filename, LineNo: lineNo, Reason: "trailing junk outside any section: " + line}
				}
				// Tolerated trailing/leading junk.
			}
		case 1:
			switch {
			case line == "}":
				sections = append(sections, *current)
				current = nil
				depth = 0
			case strings.HasSuffix(line, "}"):
				body := strings.TrimSpace(strings.TrimSuffix(line, "}"))
				if body != "" {
					current.Lines = append(current.Lines, tokenize(filename, lineNo, body))
				}
				sections = append(sections, *current)
				current = nil
				depth = 0
			default:
				current.Lines = append(current.Lines, tokenize(filename, lineNo, line))
			}
		}
	}

	if depth != 0 {
		return nil, &ParseError{File: filename, LineNo: len(rawLines), Reason: "unclosed section at end of file"}
	}

	return sections, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func tokenize(filename string, lineNo int, line string) InfoLine {
	tokens, columns := fieldsWithColumns(line)
	return InfoLine{Tokens: tokens, Columns: columns, File: filename, Line: lineNo}
}

// fieldsWithColumns is strings.Fields, but also returns the 1-based byte
// column each returned token starts at within line, so parse errors can
// point at the exact offending fragment instead of just the line.
func fieldsWithColumns(line string) (tokens []string, columns []int) {
	inField := false
	start := 0
	for i, r := range line {
		if unicode.IsSpace(r) {
			if inField {
				tokens = append(tokens, line[start:i])
				columns = append(columns, start+1)
				inField = false
			}
			continue
		}
		if !inField {
			start = i
			inField = true
		}
	}
	if inField {
		tokens = append(tokens, line[start:])
		columns = append(columns, start+1)
	}
	return tokens, columns
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
