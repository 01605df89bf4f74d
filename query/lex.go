package query

import "strings"

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokOp              // < = >
	tokAmp             // &
	tokArrow           // ->
	tokPlus            // +
	tokEOF
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

// lex splits a clause-group string (everything after the sublevel prefix,
// up to but not including a top-level "&") into tokens. Idents may contain
// "/", "-", and "_" per the query grammar's entity/unit-name rules; "->"
// is recognized greedily so a trailing "-" on an ident never collides with
// an arrow that immediately follows.
func lex(input string) []token {
	var toks []token
	i := 0
	n := len(input)
	for i < n {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '-' && i+1 < n && input[i+1] == '>':
			toks = append(toks, token{kind: tokArrow, text: "->", offset: i})
			i += 2
		case c == '+':
			toks = append(toks, token{kind: tokPlus, text: "+", offset: i})
			i++
		case c == '<' || c == '=' || c == '>':
			toks = append(toks, token{kind: tokOp, text: string(c), offset: i})
			i++
		case c == '&':
			toks = append(toks, token{kind: tokAmp, text: "&", offset: i})
			i++
		default:
			start := i
			for i < n && !isDelim(input, i) {
				i++
			}
			word := strings.TrimSpace(input[start:i])
			if word != "" {
				toks = append(toks, token{kind: tokIdent, text: word, offset: start})
			}
		}
	}
	toks = append(toks, token{kind: tokEOF, text: "", offset: n})
	return toks
}

func isDelim(s string, i int) bool {
	c := s[i]
	if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '+' || c == '<' || c == '=' || c == '>' || c == '&' {
		return true
	}
	return c == '-' && i+1 < len(s) && s[i+1] == '>'
}

// splitTopLevel splits a full query string on "&" clause-group separators,
// the only place "&" is meaningful in the grammar.
func splitTopLevel(input string) []string {
	return strings.Split(input, "&")
}
