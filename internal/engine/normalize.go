package engine

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptyInput is returned by Normalize when nothing is left to interpret.
var ErrEmptyInput = errors.New("empty command")

var typographic = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"‐", "-",
	"‑", "-",
)

// foldCompat maps compatibility forms (full-width letters, non-breaking
// spaces, ligatures) to their plain equivalents and turns control characters
// into spaces so line breaks still separate words. Non-ASCII digits are left
// alone: numeric captures only accept ASCII digits.
var foldCompat = transform.Chain(
	runes.If(runes.Predicate(foldable), norm.NFKC, nil),
	runes.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}),
)

func foldable(r rune) bool {
	return r < utf8.RuneSelf || !unicode.IsDigit(r)
}

// Normalize trims and lower-cases a raw command. Typographic quotes and
// hyphens that speech recognisers emit are folded to ASCII first.
func Normalize(raw string) (string, error) {
	folded, _, err := transform.String(foldCompat, raw)
	if err != nil {
		folded = raw
	}
	folded = typographic.Replace(folded)
	normalized := strings.ToLower(strings.TrimSpace(folded))
	if normalized == "" {
		return "", ErrEmptyInput
	}
	return normalized, nil
}
