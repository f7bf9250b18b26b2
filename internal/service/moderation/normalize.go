// internal/service/moderation/normalize.go

package moderation

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer is the pure text-normalization pipeline shared by every
// moderation stage. All Fold variants are idempotent: folding an already
// folded string returns it unchanged.
type Normalizer struct {
	homoglyphs map[rune]rune
}

// NewNormalizer builds a normalizer from a homoglyph table. Table keys and
// values longer than one rune are ignored.
func NewNormalizer(table map[string]string) *Normalizer {
	homoglyphs := make(map[rune]rune, len(table))
	for from, to := range table {
		f := []rune(from)
		t := []rune(to)
		if len(f) == 1 && len(t) == 1 {
			homoglyphs[f[0]] = t[0]
		}
	}
	return &Normalizer{homoglyphs: homoglyphs}
}

// decompose applies Unicode compatibility decomposition and strips combining
// marks. NFKD also folds enclosed and fullwidth forms, so circled-letter
// evasion (ⓐⓑⓒ) collapses to plain letters here.
var decomposer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

func decompose(s string) string {
	out, _, err := transform.String(decomposer, s)
	if err != nil {
		return s
	}
	return out
}

// Fold produces the letters view: decomposed, lowercased, homoglyphs mapped
// to their plain-letter equivalents, everything but ASCII letters and digits
// removed. Phrase and explicit-term matching run on this view.
func (n *Normalizer) Fold(s string) string {
	s = strings.ToLower(decompose(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if mapped, ok := n.homoglyphs[r]; ok {
			r = mapped
		}
		if isAlnum(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FoldDigits produces the digits view: decomposed, lowercased, alphanumerics
// only, with no homoglyph mapping so digit runs survive intact. Phone-number
// detection runs on this view; letters break runs, separators do not.
func (n *Normalizer) FoldDigits(s string) string {
	s = strings.ToLower(decompose(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isAlnum(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FoldDomains keeps letters, digits and periods so domain-shaped tokens
// survive with their dots. Link detection runs on this view.
func (n *Normalizer) FoldDomains(s string) string {
	s = strings.ToLower(decompose(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isAlnum(r) || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
