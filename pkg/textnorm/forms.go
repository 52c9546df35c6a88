package textnorm

import (
	"slices"
	"strings"
)

// Language selects the suffix table used for grammatical forms.
type Language int

// Languages of a record.
const (
	German Language = iota
	Bulgarian
)

// minStem is the shortest stem left after stripping a suffix.
const minStem = 4

// suffixes holds inflectional endings per language, longest first.
var suffixes = map[Language][]string{
	German: {
		"en", "er", "es", "em", "st", "et",
		"e", "n", "s", "t",
	},
	Bulgarian: {
		"ове", "еве", "аме", "ате",
		"ът", "ят", "та", "то", "те", "ам", "аш", "ат",
		"а", "я", "и", "о",
	},
}

// stripSuffix removes suffix from word when a stem of at least minStem runes
// remains.
func stripSuffix(word, suffix string) string {
	if !strings.HasSuffix(word, suffix) || runeLen(word)-runeLen(suffix) < minStem {
		return word
	}
	return strings.TrimSuffix(word, suffix)
}

// BaseForm normalizes word and strips its longest known inflectional
// suffix.
func BaseForm(word string, lang Language) string {
	w := Normalize(word)
	for _, suf := range suffixes[lang] {
		if stripped := stripSuffix(w, suf); stripped != w {
			return stripped
		}
	}
	return w
}

// GrammaticalVariants reports whether a and b are inflections of the same
// word: equal after normalization, equal after stripping the same suffix
// from both, or sharing a base form. Terms shorter than three runes never
// match and the shared form must be at least four runes long.
func GrammaticalVariants(a, b string, lang Language) bool {
	na, nb := Normalize(a), Normalize(b)
	if runeLen(na) < minScoredLength || runeLen(nb) < minScoredLength {
		return false
	}
	if na == nb {
		return runeLen(na) >= minStem
	}
	for _, suf := range suffixes[lang] {
		sa, sb := stripSuffix(na, suf), stripSuffix(nb, suf)
		if sa == sb && runeLen(sa) >= minStem {
			return true
		}
	}
	ba, bb := BaseForm(na, lang), BaseForm(nb, lang)
	return ba == bb && runeLen(ba) >= minStem
}

// ContainsWordForm reports whether text contains word or an inflection of
// it.
func ContainsWordForm(text, word string, lang Language) bool {
	nw := Normalize(word)
	if nw == "" {
		return false
	}
	nt := Normalize(text)
	if strings.Contains(nt, nw) {
		return true
	}

	base := BaseForm(nw, lang)
	if runeLen(base) < minStem {
		return false
	}
	return slices.ContainsFunc(strings.Fields(nt), func(tok string) bool {
		return strings.HasPrefix(tok, base) || BaseForm(tok, lang) == base
	})
}
