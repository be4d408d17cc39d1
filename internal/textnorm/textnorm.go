// Package textnorm normalizes spreadsheet labels and builds restaurant identifiers.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxIDLength is the rune limit applied to identifiers produced by Slug.
const MaxIDLength = 80

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	disallowedRune = regexp.MustCompile(`[^a-z0-9\-áéíóúüñ]`)
)

// foldedVowels maps the Spanish accented letters found in sheet headers to plain ASCII.
var foldedVowels = map[rune]rune{
	'á': 'a',
	'é': 'e',
	'í': 'i',
	'ó': 'o',
	'ú': 'u',
	'ü': 'u',
	'ñ': 'n',
}

// lower composes decomposed accents before lowercasing so "Zo\u0301na" and
// "Zóna" yield the same runes.
func lower(value string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(value))
}

// Label lowercases, trims, collapses whitespace and folds accented letters so
// that "ZÓNA", " zona " and "Zona" compare equal.
func Label(value string) string {
	collapsed := strings.Join(strings.Fields(lower(value)), " ")
	folder := runes.Map(func(r rune) rune {
		if folded, ok := foldedVowels[r]; ok {
			return folded
		}
		return r
	})
	out, _, err := transform.String(folder, collapsed)
	if err != nil {
		return collapsed
	}
	return out
}

// Slug joins the parts with "-", lowercases the result, turns whitespace runs
// into "-", strips anything outside [a-z0-9-] and the supported accented
// letters, and truncates to MaxIDLength runes.
func Slug(parts ...string) string {
	trimmed := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed = append(trimmed, strings.TrimSpace(part))
	}
	base := lower(strings.Join(trimmed, "-"))
	base = whitespaceRun.ReplaceAllString(base, "-")
	base = disallowedRune.ReplaceAllString(base, "")
	return truncateRunes(base, MaxIDLength)
}

func truncateRunes(value string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range value {
		if count == limit {
			return value[:i]
		}
		count++
	}
	return value
}
