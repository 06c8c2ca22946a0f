package classify

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds free text (window titles, domains, URLs) into the form the
// keyword tables are written in: accents removed, everything that is not a
// letter, digit, underscore or whitespace dropped, lowercased.
//
// "Café São Paulo!" becomes "cafe sao paulo".
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// NormalizeProcess lowercases an executable name and strips its periods, so
// "WINWORD.EXE" becomes "winwordexe". Other punctuation is kept.
func NormalizeProcess(process string) string {
	return strings.ReplaceAll(strings.ToLower(process), ".", "")
}
