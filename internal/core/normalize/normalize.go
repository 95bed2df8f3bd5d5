// Package normalize folds book text into a comparable form for indexing and matching
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFD so accents split from their letters
// 3 Remove combining marks and format chars (zero widths, BOM)
// 4 NFC recompose then width fold fullwidth to ASCII
// 5 Case folding
// Tokens additionally maps every non word rune to a space and drops one rune tokens
package normalize

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// pool of fresh transformer chains, a chain is not safe for concurrent use
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.In(unicode.Cf)),
			norm.NFC,
			width.Fold,
			cases.Fold(),
		)
	},
}

// Fold returns the folded form of s with whitespace runs collapsed
func Fold(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")
	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		// a chain error leaves the best effort lower cased input
		out = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(out), " ")
}

// Tokens folds s and splits it into word tokens
// punctuation becomes a separator and tokens shorter than two runes are dropped
func Tokens(s string) []string {
	f := Fold(s)
	if f == "" {
		return nil
	}
	words := strings.FieldsFunc(f, func(r rune) bool { return !isWord(r) })
	out := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) > 1 {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Words is Tokens joined by single spaces, the searchable text form
func Words(s string) string { return strings.Join(Tokens(s), " ") }

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
