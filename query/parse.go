package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mayabyte/caveripper/caveinfo"
)

// Try parses a full query string against the given cave configs, used to
// resolve sublevel shortcodes to Sublevel values.
//
// Disambiguation note: the original engine this grammar is modeled on
// decides compare's entity-vs-room reading by checking the bare name
// against a global catalog of every known teki/treasure/room name. This
// port instead follows spec.md's simpler rule directly: the literal
// keywords "room", "hallway"/"hall", and "alcove"/"cap" always parse as
// CountRoom; every other identifier (including "hole"/"geyser"/"ship"/
// "gate") parses as CountEntity. See DESIGN.md.
func Try(input string, cfgs []caveinfo.CaveConfig) (StructuralQuery, error) {
	groups := splitTopLevel(input)
	var clauses []Clause
	var current caveinfo.Sublevel
	haveSublevel := false

	for gi, group := range groups {
		toks := lex(group)
		if len(toks) == 1 && toks[0].kind == tokEOF {
			return StructuralQuery{}, &ParseError{Input: input, Offset: 0, Reason: "empty clause group"}
		}

		pos := 0
		if toks[pos].kind == tokIdent {
			if sl, err := caveinfo.ResolveSublevel(cfgs, toks[pos].text); err == nil {
				current = sl
				haveSublevel = true
				pos++
			} else if gi == 0 {
				return StructuralQuery{}, &ParseError{Input: input, Offset: toks[pos].offset, Reason: "expected a sublevel shortcode at the start of the query"}
			}
		}
		if !haveSublevel {
			return StructuralQuery{}, &ParseError{Input: input, Offset: 0, Reason: "clause has no sublevel and none was stated previously"}
		}

		kind, err := parseClause(toks[pos:], input)
		if err != nil {
			return StructuralQuery{}, err
		}
		clauses = append(clauses, Clause{Sublevel: current, Kind: kind})
	}

	return StructuralQuery{Clauses: clauses}, nil
}

// parseClause parses one `clause` production from the remaining tokens of
// a clause group (after any leading sublevel_ident has been consumed).
func parseClause(toks []token, input string) (QueryKind, error) {
	if len(toks) == 0 || toks[0].kind == tokEOF {
		return nil, &ParseError{Input: input, Offset: 0, Reason: "expected a clause"}
	}

	// not_gated via "!gated" glued to the entity, e.g. "bombrock!gated".
	if toks[0].kind == tokIdent && strings.HasSuffix(strings.ToLower(toks[0].text), "!gated") {
		name := toks[0].text[:len(toks[0].text)-len("!gated")]
		return NotGated{Entity: ParseEntityMatcher(name)}, nil
	}

	first := toks[0]
	if first.kind != tokIdent {
		return nil, &ParseError{Input: input, Offset: first.offset, Reason: "expected an identifier"}
	}

	rest := toks[1:]

	switch {
	case len(rest) >= 2 && eqIdent(rest[0], "carry") && (eqIdent(rest[1], "dist") || eqIdent(rest[1], "distance") || eqIdent(rest[1], "path")):
		return parseCarryDist(first, rest[2:], input)
	case len(rest) >= 2 && eqIdent(rest[0], "straight") && eqIdent(rest[1], "dist"):
		return parseStraightDist(first, rest[2:], input)
	case len(rest) >= 1 && eqIdent(rest[0], "gated"):
		return Gated{Entity: ParseEntityMatcher(first.text)}, nil
	case len(rest) >= 2 && eqIdent(rest[0], "not") && eqIdent(rest[1], "gated"):
		return NotGated{Entity: ParseEntityMatcher(first.text)}, nil
	case len(rest) >= 1 && rest[0].kind == tokOp:
		return parseCompare(first, rest, input)
	case len(rest) >= 1 && (rest[0].kind == tokPlus || rest[0].kind == tokArrow || rest[0].kind == tokEOF):
		// Either a multi-component room path, or a lone component with no
		// constraints, e.g. "room".
		return parseRoomPath(toks, input)
	default:
		return nil, &ParseError{Input: input, Offset: first.offset, Reason: "could not parse clause"}
	}
}

func eqIdent(t token, s string) bool {
	return t.kind == tokIdent && strings.EqualFold(t.text, s)
}

func parseCompare(entityTok token, rest []token, input string) (QueryKind, error) {
	op, err := parseOrdering(rest[0].text)
	if err != nil {
		return nil, &ParseError{Input: input, Offset: rest[0].offset, Reason: err.Error()}
	}
	if len(rest) < 2 || rest[1].kind != tokIdent {
		return nil, &ParseError{Input: input, Offset: rest[0].offset, Reason: "expected a number after comparator"}
	}
	amount, err := strconv.Atoi(rest[1].text)
	if err != nil {
		return nil, &ParseError{Input: input, Offset: rest[1].offset, Reason: "expected an integer amount"}
	}

	lower := strings.ToLower(entityTok.text)
	if _, ok := caveinfo.ParseRoomType(lower); ok {
		return CountRoom{Unit: ParseUnitMatcher(entityTok.text), Relationship: op, Amount: amount}, nil
	}
	return CountEntity{Entity: ParseEntityMatcher(entityTok.text), Relationship: op, Amount: amount}, nil
}

func parseCarryDist(entityTok token, rest []token, input string) (QueryKind, error) {
	if len(rest) < 2 || rest[0].kind != tokOp {
		return nil, &ParseError{Input: input, Offset: entityTok.offset, Reason: "expected a comparator after carry dist"}
	}
	op, err := parseOrdering(rest[0].text)
	if err != nil {
		return nil, &ParseError{Input: input, Offset: rest[0].offset, Reason: err.Error()}
	}
	dist, err := strconv.ParseFloat(rest[1].text, 32)
	if err != nil {
		return nil, &ParseError{Input: input, Offset: rest[1].offset, Reason: "expected a numeric distance"}
	}
	return CarryDist{Entity: ParseEntityMatcher(entityTok.text), Relationship: op, ReqDist: float32(dist)}, nil
}

func parseStraightDist(entity1 token, rest []token, input string) (QueryKind, error) {
	if len(rest) < 3 || rest[0].kind != tokIdent || rest[1].kind != tokOp {
		return nil, &ParseError{Input: input, Offset: entity1.offset, Reason: "expected a second entity, comparator, and distance after straight dist"}
	}
	op, err := parseOrdering(rest[1].text)
	if err != nil {
		return nil, &ParseError{Input: input, Offset: rest[1].offset, Reason: err.Error()}
	}
	dist, err := strconv.ParseFloat(rest[2].text, 32)
	if err != nil {
		return nil, &ParseError{Input: input, Offset: rest[2].offset, Reason: "expected a numeric distance"}
	}
	return StraightLineDist{
		Entity1:      ParseEntityMatcher(entity1.text),
		Entity2:      ParseEntityMatcher(rest[0].text),
		Relationship: op,
		ReqDist:      float32(dist),
	}, nil
}

// parseRoomPath parses `path_component ("->" path_component)*` from the
// full remaining token stream of the clause.
func parseRoomPath(toks []token, input string) (QueryKind, error) {
	var components []PathComponent
	i := 0
	for {
		if i >= len(toks) || toks[i].kind != tokIdent {
			return nil, &ParseError{Input: input, Offset: 0, Reason: "expected a unit in room path"}
		}
		comp := PathComponent{Unit: ParseUnitMatcher(toks[i].text)}
		i++
		for i+1 < len(toks) && toks[i].kind == tokPlus {
			if toks[i+1].kind != tokIdent {
				return nil, &ParseError{Input: input, Offset: toks[i].offset, Reason: "expected an entity after '+'"}
			}
			comp.Entities = append(comp.Entities, ParseEntityMatcher(toks[i+1].text))
			i += 2
		}
		components = append(components, comp)

		if i < len(toks) && toks[i].kind == tokArrow {
			i++
			continue
		}
		break
	}
	if i != len(toks) && toks[i].kind != tokEOF {
		return nil, &ParseError{Input: input, Offset: toks[i].offset, Reason: fmt.Sprintf("unexpected token %q", toks[i].text)}
	}
	return RoomPath{Components: components}, nil
}
