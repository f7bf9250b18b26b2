package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(DefaultRuleSet().Homoglyphs)
}

func TestFold(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "Hello World", "helloworld"},
		{"diacritics stripped", "Llámame mañana", "llamamemanana"},
		{"leet digits to letters", "c4ll m3", "callme"},
		{"symbols to letters", "c@ll me l@ter", "callmelater"},
		{"circled letters", "ⓒⓐⓛⓛ ⓜⓔ", "callme"},
		{"punctuation removed", "call, me... now?", "callmenow"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Fold(tt.input))
		})
	}
}

func TestFoldIsIdempotent(t *testing.T) {
	n := newTestNormalizer()

	inputs := []string{
		"Llámame al 809-555-1234",
		"c4ll m3 @ home",
		"ⓥⓘⓥⓞ en la calle 5",
		"already folded text",
	}

	for _, input := range inputs {
		once := n.Fold(input)
		assert.Equal(t, once, n.Fold(once), "fold of %q not idempotent", input)
	}
}

func TestFoldDigitsPreservesRuns(t *testing.T) {
	n := newTestNormalizer()

	// Separators collapse, letters break runs, homoglyph mapping is skipped
	assert.Equal(t, "llamameal8095551234", n.FoldDigits("Llámame al 809-555-1234"))
	assert.Equal(t, "c4llm3at8095551234", n.FoldDigits("c4ll m3 at 809 555 1234"))
}

func TestFoldDomainsKeepsPeriods(t *testing.T) {
	n := newTestNormalizer()

	assert.Equal(t, "checkoutmysite.com", n.FoldDomains("Check out my-site.com!"))
	assert.Equal(t, "sub.example.org", n.FoldDomains("sub.example.org"))
}
