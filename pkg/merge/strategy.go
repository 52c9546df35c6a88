package merge

import (
	"strings"
	"unicode/utf8"

	"github.com/agentstation/vocab/pkg/vocabulary"
)

// StrategyType selects how a field is reconciled across group members.
type StrategyType string

// String returns the string representation of a strategy type.
func (s StrategyType) String() string {
	return string(s)
}

// Name returns the strategy type in title case, e.g. "Best Quality".
func (s StrategyType) Name() string {
	words := strings.Split(s.String(), "_")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// IsValid reports whether s is a known strategy.
func (s StrategyType) IsValid() bool {
	switch s {
	case StrategyBestQuality, StrategyMergeAll, StrategyPrioritySource, StrategyLongest, StrategyMostRecent:
		return true
	}
	return false
}

const (
	// StrategyBestQuality applies a field-specific heuristic.
	StrategyBestQuality StrategyType = "best_quality"
	// StrategyMergeAll unions values across members.
	StrategyMergeAll StrategyType = "merge_all"
	// StrategyPrioritySource takes the first value in source priority order.
	StrategyPrioritySource StrategyType = "priority_source"
	// StrategyLongest takes the longest string or list.
	StrategyLongest StrategyType = "longest"
	// StrategyMostRecent takes the value of the most recently updated member.
	StrategyMostRecent StrategyType = "most_recent"
)

// Field names a mergeable record field. Names match the wire format.
type Field string

// Mergeable fields.
const (
	FieldSourceTerm      Field = "german"
	FieldTargetTerm      Field = "bulgarian"
	FieldPartOfSpeech    Field = "partOfSpeech"
	FieldDifficulty      Field = "difficulty"
	FieldCategories      Field = "categories"
	FieldTransliteration Field = "transliteration"
	FieldEmoji           Field = "emoji"
	FieldAudio           Field = "audio"
	FieldGrammar         Field = "grammar"
	FieldExamples        Field = "examples"
	FieldNotes           Field = "notes"
	FieldEtymology       Field = "etymology"
	FieldCulturalNotes   Field = "culturalNotes"
	FieldMnemonics       Field = "mnemonics"
	FieldSynonyms        Field = "synonyms"
	FieldAntonyms        Field = "antonyms"
	FieldRelatedWords    Field = "relatedWords"
	FieldMetadata        Field = "metadata"
)

// Fields lists every mergeable field in merge order.
var Fields = []Field{
	FieldSourceTerm, FieldTargetTerm, FieldPartOfSpeech, FieldDifficulty,
	FieldCategories, FieldTransliteration, FieldEmoji, FieldAudio, FieldGrammar,
	FieldExamples, FieldNotes, FieldEtymology, FieldCulturalNotes, FieldMnemonics,
	FieldSynonyms, FieldAntonyms, FieldRelatedWords, FieldMetadata,
}

// DefaultFieldStrategies returns the default strategy for every field.
func DefaultFieldStrategies() map[Field]StrategyType {
	return map[Field]StrategyType{
		FieldSourceTerm:      StrategyBestQuality,
		FieldTargetTerm:      StrategyBestQuality,
		FieldPartOfSpeech:    StrategyBestQuality,
		FieldDifficulty:      StrategyBestQuality,
		FieldCategories:      StrategyMergeAll,
		FieldTransliteration: StrategyMergeAll,
		FieldEmoji:           StrategyBestQuality,
		FieldAudio:           StrategyBestQuality,
		FieldGrammar:         StrategyBestQuality,
		FieldExamples:        StrategyMergeAll,
		FieldNotes:           StrategyMergeAll,
		FieldEtymology:       StrategyLongest,
		FieldCulturalNotes:   StrategyMergeAll,
		FieldMnemonics:       StrategyMergeAll,
		FieldSynonyms:        StrategyMergeAll,
		FieldAntonyms:        StrategyMergeAll,
		FieldRelatedWords:    StrategyMergeAll,
		FieldMetadata:        StrategyMergeAll,
	}
}

// posSpecificity orders parts of speech from most to least specific. Noun
// comes last because it is the fallback when a legacy record names none.
var posSpecificity = []vocabulary.PartOfSpeech{
	vocabulary.Verb, vocabulary.Adjective, vocabulary.Adverb, vocabulary.Pronoun,
	vocabulary.Preposition, vocabulary.Conjunction, vocabulary.Interjection,
	vocabulary.Article, vocabulary.Number, vocabulary.Expression, vocabulary.Phrase,
	vocabulary.Noun,
}

func posRank(p vocabulary.PartOfSpeech) int {
	for i, q := range posSpecificity {
		if p == q {
			return i
		}
	}
	return len(posSpecificity)
}

// accessor reads and writes one field generically.
type accessor struct {
	// isSet reports whether r carries a usable value.
	isSet func(r *vocabulary.Record) bool
	// size is compared by the longest strategy.
	size func(r *vocabulary.Record) int
	// take copies the field from src into dst.
	take func(dst, src *vocabulary.Record)
	// value is recorded in provenance. Nil for composite fields.
	value func(r *vocabulary.Record) any
	// better reports whether a beats b under best_quality. Nil takes the
	// first member that has the field.
	better func(a, b *vocabulary.Record) bool
	// union merges every member into dst under merge_all. Nil takes the
	// first member that has the field.
	union func(dst *vocabulary.Record, srcs []*vocabulary.Record)
}

func resolvedTerm(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != vocabulary.Unresolved
}

// betterTerm prefers the longer term, then the member with more examples.
func betterTerm(term func(r *vocabulary.Record) string) func(a, b *vocabulary.Record) bool {
	return func(a, b *vocabulary.Record) bool {
		la, lb := utf8.RuneCountInString(term(a)), utf8.RuneCountInString(term(b))
		if la != lb {
			return la > lb
		}
		return len(a.Examples) > len(b.Examples)
	}
}

func stringsField(get func(r *vocabulary.Record) *[]string) accessor {
	return accessor{
		isSet: func(r *vocabulary.Record) bool { return len(*get(r)) > 0 },
		size:  func(r *vocabulary.Record) int { return len(*get(r)) },
		take:  func(dst, src *vocabulary.Record) { *get(dst) = cloneStrings(*get(src)) },
		union: func(dst *vocabulary.Record, srcs []*vocabulary.Record) {
			var lists [][]string
			for _, s := range srcs {
				lists = append(lists, *get(s))
			}
			*get(dst) = unionStrings(lists...)
		},
	}
}

var accessors = map[Field]accessor{
	FieldSourceTerm: {
		isSet:  func(r *vocabulary.Record) bool { return resolvedTerm(r.SourceTerm) },
		size:   func(r *vocabulary.Record) int { return utf8.RuneCountInString(r.SourceTerm) },
		take:   func(dst, src *vocabulary.Record) { dst.SourceTerm = src.SourceTerm },
		value:  func(r *vocabulary.Record) any { return r.SourceTerm },
		better: betterTerm(func(r *vocabulary.Record) string { return r.SourceTerm }),
	},
	FieldTargetTerm: {
		isSet:  func(r *vocabulary.Record) bool { return resolvedTerm(r.TargetTerm) },
		size:   func(r *vocabulary.Record) int { return utf8.RuneCountInString(r.TargetTerm) },
		take:   func(dst, src *vocabulary.Record) { dst.TargetTerm = src.TargetTerm },
		value:  func(r *vocabulary.Record) any { return r.TargetTerm },
		better: betterTerm(func(r *vocabulary.Record) string { return r.TargetTerm }),
	},
	FieldPartOfSpeech: {
		isSet:  func(r *vocabulary.Record) bool { return r.PartOfSpeech != "" },
		size:   func(r *vocabulary.Record) int { return len(r.PartOfSpeech) },
		take:   func(dst, src *vocabulary.Record) { dst.PartOfSpeech = src.PartOfSpeech },
		value:  func(r *vocabulary.Record) any { return string(r.PartOfSpeech) },
		better: func(a, b *vocabulary.Record) bool { return posRank(a.PartOfSpeech) < posRank(b.PartOfSpeech) },
	},
	FieldDifficulty: {
		isSet:  func(r *vocabulary.Record) bool { return r.Difficulty > 0 },
		size:   func(r *vocabulary.Record) int { return r.Difficulty },
		take:   func(dst, src *vocabulary.Record) { dst.Difficulty = src.Difficulty },
		value:  func(r *vocabulary.Record) any { return r.Difficulty },
		better: func(a, b *vocabulary.Record) bool { return a.Difficulty > b.Difficulty },
	},
	FieldCategories: {
		isSet: func(r *vocabulary.Record) bool { return len(r.Categories) > 0 },
		size:  func(r *vocabulary.Record) int { return len(r.Categories) },
		take: func(dst, src *vocabulary.Record) {
			dst.Categories = append([]vocabulary.Category(nil), src.Categories...)
		},
		union: func(dst *vocabulary.Record, srcs []*vocabulary.Record) {
			var out []vocabulary.Category
			seen := make(map[vocabulary.Category]bool)
			for _, s := range srcs {
				for _, c := range s.Categories {
					if !seen[c] {
						seen[c] = true
						out = append(out, c)
					}
				}
			}
			dst.Categories = out
		},
	},
	FieldTransliteration: {
		isSet: func(r *vocabulary.Record) bool { return r.Transliteration != nil },
		size:  func(r *vocabulary.Record) int { return transliterationCount(r.Transliteration) },
		take: func(dst, src *vocabulary.Record) {
			t := *src.Transliteration
			dst.Transliteration = &t
		},
		better: func(a, b *vocabulary.Record) bool {
			return transliterationCount(a.Transliteration) > transliterationCount(b.Transliteration)
		},
		union: func(dst *vocabulary.Record, srcs []*vocabulary.Record) {
			var t vocabulary.Transliteration
			for _, s := range srcs {
				t.SourceTerm = firstNonEmpty(t.SourceTerm, s.Transliteration.SourceTerm)
				t.TargetTerm = firstNonEmpty(t.TargetTerm, s.Transliteration.TargetTerm)
			}
			dst.Transliteration = &t
		},
	},
	FieldEmoji: {
		isSet: func(r *vocabulary.Record) bool { return r.Emoji != "" },
		size:  func(r *vocabulary.Record) int { return utf8.RuneCountInString(r.Emoji) },
		take:  func(dst, src *vocabulary.Record) { dst.Emoji = src.Emoji },
		value: func(r *vocabulary.Record) any { return r.Emoji },
	},
	FieldAudio: {
		isSet: func(r *vocabulary.Record) bool { return r.Audio.FieldCount() > 0 },
		size:  func(r *vocabulary.Record) int { return r.Audio.FieldCount() },
		take: func(dst, src *vocabulary.Record) {
			a := *src.Audio
			dst.Audio = &a
		},
		better: func(a, b *vocabulary.Record) bool { return a.Audio.FieldCount() > b.Audio.FieldCount() },
		union: func(dst *vocabulary.Record, srcs []*vocabulary.Record) {
			var a vocabulary.Audio
			for _, s := range srcs {
				a.SourceTerm = firstNonEmpty(a.SourceTerm, s.Audio.SourceTerm)
				a.TargetTerm = firstNonEmpty(a.TargetTerm, s.Audio.TargetTerm)
			}
			dst.Audio = &a
		},
	},
	FieldGrammar: {
		isSet: func(r *vocabulary.Record) bool { return !r.Grammar.IsEmpty() },
		size:  func(r *vocabulary.Record) int { return r.Grammar.FieldCount() },
		take: func(dst, src *vocabulary.Record) {
			dst.Grammar = src.Clone().Grammar
		},
		better: func(a, b *vocabulary.Record) bool { return a.Grammar.FieldCount() > b.Grammar.FieldCount() },
		union:  unionGrammar,
	},
	FieldExamples: {
		isSet: func(r *vocabulary.Record) bool { return len(r.Examples) > 0 },
		size:  func(r *vocabulary.Record) int { return len(r.Examples) },
		take: func(dst, src *vocabulary.Record) {
			dst.Examples = append([]vocabulary.Example(nil), src.Examples...)
		},
		union: unionExamples,
	},
	FieldNotes: {
		isSet: func(r *vocabulary.Record) bool { return !r.Notes.IsEmpty() },
		size:  func(r *vocabulary.Record) int { return len(strings.Join(r.Notes.Texts(), "")) },
		take: func(dst, src *vocabulary.Record) {
			n := *src.Notes
			dst.Notes = &n
		},
		union: unionNotes,
	},
	FieldEtymology: {
		isSet: func(r *vocabulary.Record) bool { return r.Etymology != "" },
		size:  func(r *vocabulary.Record) int { return utf8.RuneCountInString(r.Etymology) },
		take:  func(dst, src *vocabulary.Record) { dst.Etymology = src.Etymology },
		value: func(r *vocabulary.Record) any { return r.Etymology },
		better: func(a, b *vocabulary.Record) bool {
			return utf8.RuneCountInString(a.Etymology) > utf8.RuneCountInString(b.Etymology)
		},
	},
	FieldCulturalNotes: stringsField(func(r *vocabulary.Record) *[]string { return &r.CulturalNotes }),
	FieldMnemonics:     stringsField(func(r *vocabulary.Record) *[]string { return &r.Mnemonics }),
	FieldSynonyms:      stringsField(func(r *vocabulary.Record) *[]string { return &r.Synonyms }),
	FieldAntonyms:      stringsField(func(r *vocabulary.Record) *[]string { return &r.Antonyms }),
	FieldRelatedWords:  stringsField(func(r *vocabulary.Record) *[]string { return &r.RelatedWords }),
	FieldMetadata: {
		isSet: func(*vocabulary.Record) bool { return true },
		size:  func(r *vocabulary.Record) int { return len(r.Metadata.SourceFiles) + len(r.Metadata.MergeSources) },
		take: func(dst, src *vocabulary.Record) {
			dst.Metadata = src.Clone().Metadata
		},
		union: unionMetadata,
	},
}

func transliterationCount(t *vocabulary.Transliteration) int {
	if t == nil {
		return 0
	}
	n := 0
	if t.SourceTerm != "" {
		n++
	}
	if t.TargetTerm != "" {
		n++
	}
	return n
}
