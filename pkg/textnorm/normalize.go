// Package textnorm normalizes vocabulary terms and scores how similar two
// terms are.
//
// Normalization folds case, drops punctuation and symbols, collapses
// whitespace and strips leading articles so that "der Apfel" and "Apfel!"
// compare equal. Similarity blends edit distance with Jaro-Winkler
// alignment.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// leadingArticles are German definite and indefinite articles and Bulgarian
// indefinite articles. Bulgarian definite articles are suffixes and are
// handled by the suffix tables.
var leadingArticles = map[string]struct{}{
	"der": {}, "die": {}, "das": {}, "dem": {}, "den": {}, "des": {},
	"ein": {}, "eine": {}, "einer": {}, "eines": {}, "einem": {}, "einen": {},
	"един": {}, "една": {}, "едно": {}, "едни": {},
}

// Normalize lowercases text, removes punctuation and symbols, collapses
// whitespace and strips leading articles. An article is kept when it is the
// only token left. The result is NFC composed and Normalize is idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	s := cases.Lower(language.Und).String(norm.NFC.String(text))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			continue
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}

	// Dropping a mark between a letter and its combining accent leaves a
	// composable pair, so compose again after filtering.
	tokens := strings.Fields(norm.NFC.String(b.String()))
	for len(tokens) > 1 {
		if _, ok := leadingArticles[tokens[0]]; !ok {
			break
		}
		tokens = tokens[1:]
	}
	return strings.Join(tokens, " ")
}

// Tokenize splits normalized text into words.
func Tokenize(text string) []string {
	return strings.Fields(Normalize(text))
}

// WordOverlap returns the Jaccard similarity of the token sets of a and b.
func WordOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	shared := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	return float64(shared) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokenize(s) {
		set[tok] = struct{}{}
	}
	return set
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
