package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// quoteDashReplacer maps visually-equivalent quote, apostrophe and dash
// glyphs that survive NFKC folding onto one representative each, so that
// titles copied from different venue sites hash identically.
var quoteDashReplacer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‟", `"`,
	"〝", `"`,
	"〞", `"`,
	"‘", "'",
	"’", "'",
	"＇", "'",
	"–", "-",
	"—", "-",
	"―", "-",
	"〜", "~",
)

// waveDashReplacer unifies the wave dash and dash variants used as range
// separators in scraped date cells.
var waveDashReplacer = strings.NewReplacer(
	"〜", "～",
	"－", "-",
	"—", "–",
)

// Canonicalize normalizes a raw scraped string for parsing and hashing:
// NFKC compatibility folding, quote/apostrophe/dash unification, and
// whitespace-run collapse with leading/trailing trim. It is total and
// never fails; an empty input yields an empty output.
func Canonicalize(s string) string {
	if s == "" {
		return ""
	}
	x := norm.NFKC.String(s)
	x = quoteDashReplacer.Replace(x)
	return strings.Join(strings.Fields(x), " ")
}

// normalizeSeparators applies the light separator normalization used
// before date parsing: wave dash and dash variants to one canonical
// range separator each. Unlike Canonicalize it leaves width and quotes
// alone so that the date grammar sees the text as scraped.
func normalizeSeparators(s string) string {
	return waveDashReplacer.Replace(s)
}
