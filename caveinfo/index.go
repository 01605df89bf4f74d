package caveinfo

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mayabyte/caveripper/internal/casefold"
)

// LoadCaveConfigs parses a caveinfo_config.txt index file: one cave per
// line, comma-separated fields `game_tag, human_name, is_challenge_mode,
// caveinfo_filename, alias...`. Every field after the fourth is an alias;
// the first alias is the cave's normalized short name (e.g. "SCx" for
// "Shower Room").
func LoadCaveConfigs(game, text string) ([]CaveConfig, error) {
	var cfgs []CaveConfig
	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if len(fields) < 5 {
			return nil, &ParseError{File: "caveinfo_config.txt", LineNo: lineNo + 1, Reason: "expected at least 5 comma-separated fields"}
		}
		challenge, err := strconv.ParseBool(fields[2])
		if err != nil {
			return nil, &ParseError{File: "caveinfo_config.txt", LineNo: lineNo + 1, Reason: "is_challenge_mode field is not a bool: " + fields[2]}
		}
		cfgs = append(cfgs, CaveConfig{
			GameTag:          fields[0],
			HumanName:        fields[1],
			IsChallengeMode:  challenge,
			CaveinfoFilename: fields[3],
			Aliases:          append([]string(nil), fields[4:]...),
			Game:             game,
		})
	}
	return cfgs, nil
}

// Sublevel identifies one floor of one cave: the cave's config plus a
// 1-indexed floor number.
type Sublevel struct {
	Cfg   CaveConfig
	Floor int
}

// NormalizedName renders e.g. "SCx-4", the canonical form used to key
// caches and match query clauses.
func (s Sublevel) NormalizedName() string {
	return s.Cfg.Aliases[0] + "-" + strconv.Itoa(s.Floor)
}

// ShortName renders e.g. "SCx4", the compact shortcode form users type.
func (s Sublevel) ShortName() string {
	return s.Cfg.Aliases[0] + strconv.Itoa(s.Floor)
}

// LongName renders e.g. "Shower Room 4", for display.
func (s Sublevel) LongName() string {
	return s.Cfg.HumanName + " " + strconv.Itoa(s.Floor)
}

var (
	shortcodeAlphaRe  = regexp.MustCompile(`^[A-Za-z_]+`)
	shortcodeDigitsRe = regexp.MustCompile(`[0-9]+$`)
)

// ResolveSublevel parses a shortcode like "scx7" or "SCx-7" into a
// Sublevel, matching the alphabetic prefix case-insensitively against
// every cave's aliases and the trailing digits against the floor number.
func ResolveSublevel(cfgs []CaveConfig, shortcode string) (Sublevel, error) {
	code := strings.ReplaceAll(strings.TrimSpace(shortcode), "-", "")
	alpha := shortcodeAlphaRe.FindString(code)
	digits := shortcodeDigitsRe.FindString(code)
	if alpha == "" || digits == "" {
		return Sublevel{}, &UnknownSublevelError{Shortcode: shortcode}
	}
	floor, err := strconv.Atoi(digits)
	if err != nil || floor < 1 {
		return Sublevel{}, &UnknownSublevelError{Shortcode: shortcode}
	}

	for _, cfg := range cfgs {
		for _, alias := range cfg.Aliases {
			if casefold.Equal(alias, alpha) {
				return Sublevel{Cfg: cfg, Floor: floor}, nil
			}
		}
	}
	return Sublevel{}, &UnknownSublevelError{Shortcode: shortcode}
}
