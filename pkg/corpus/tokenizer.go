package corpus

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// tokenize splits text into comparison terms: Unicode-normalized (NFKC),
// case-folded, split on anything that is not a letter or digit. Single-rune
// terms are dropped; they carry no discriminative weight and inflate the
// vocabulary.
func tokenize(text string) []string {
	// cases.Caser is stateful; one per call keeps tokenize goroutine-safe.
	folded := cases.Fold().String(norm.NFKC.String(text))
	terms := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := terms[:0]
	for _, t := range terms {
		if len([]rune(t)) > 1 {
			out = append(out, t)
		}
	}
	return out
}
