package unify

import (
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/vocab/pkg/vocabulary"
)

// Field aliases by role.
var (
	sourceAliases   = []string{"german", "de", "germanText", "deText"}
	targetAliases   = []string{"bulgarian", "bg", "bul", "bulgarianText", "bgText"}
	fallbackSources = append(slices.Clone(sourceAliases), "translation", "source_text", "sourceText")
	fallbackTargets = append(slices.Clone(targetAliases), "word", "target_text", "targetText")
)

// bands converts proficiency band labels to difficulty.
var bands = map[string]int{
	"A1": 1, "A2": 2, "B1": 3, "B2": 4, "C1": 5, "C2": 5,
}

// posAliases maps common abbreviations and German or Bulgarian names to a
// part of speech.
var posAliases = map[string]vocabulary.PartOfSpeech{
	"word": vocabulary.Noun, "n": vocabulary.Noun, "substantiv": vocabulary.Noun, "nomen": vocabulary.Noun, "съществително": vocabulary.Noun,
	"v": vocabulary.Verb, "глагол": vocabulary.Verb,
	"adj": vocabulary.Adjective, "adjektiv": vocabulary.Adjective, "прилагателно": vocabulary.Adjective,
	"adv": vocabulary.Adverb, "adverb": vocabulary.Adverb, "наречие": vocabulary.Adverb,
	"pron": vocabulary.Pronoun, "prep": vocabulary.Preposition, "präposition": vocabulary.Preposition,
	"conj": vocabulary.Conjunction, "konjunktion": vocabulary.Conjunction,
	"interj": vocabulary.Interjection, "num": vocabulary.Number, "numeral": vocabulary.Number, "zahl": vocabulary.Number,
	"expr": vocabulary.Expression, "idiom": vocabulary.Expression, "redewendung": vocabulary.Expression,
}

// categoryPOS infers a part of speech from category labels. Adverb is
// checked before verb because it contains it.
var categoryPOS = []struct {
	needle string
	pos    vocabulary.PartOfSpeech
}{
	{"adverb", vocabulary.Adverb},
	{"adjective", vocabulary.Adjective}, {"adjektiv", vocabulary.Adjective},
	{"pronoun", vocabulary.Pronoun},
	{"preposition", vocabulary.Preposition},
	{"conjunction", vocabulary.Conjunction},
	{"interjection", vocabulary.Interjection},
	{"verb", vocabulary.Verb}, {"глагол", vocabulary.Verb},
	{"number", vocabulary.Number}, {"zahl", vocabulary.Number}, {"числ", vocabulary.Number},
	{"phrase", vocabulary.Phrase},
	{"expression", vocabulary.Expression},
}

// exampleString matches the inline "German: '...', Bulgarian: '...'" form.
var exampleString = regexp.MustCompile(`(?is)german:\s*['"]?(.*?)['"]?\s*,\s*bulgarian:\s*['"]?(.*?)['"]?\s*$`)

// convert builds a canonical record from a non-canonical variant. The ID
// is left empty when the input has none.
func (u *Unifier) convert(v Variant) vocabulary.Record {
	var raw Raw
	var source, target string
	origin := vocabulary.SourceLegacy

	switch t := v.(type) {
	case Canonical:
		return t.Record
	case NamedLanguage:
		raw = t.Raw
		source = raw.str(sourceAliases...)
		target = raw.str(targetAliases...)
		origin = vocabulary.SourceCurrent
	case Directional:
		raw = t.Raw
		if t.WordIsSource {
			source = raw.str("word", "de", "german")
			target = raw.str("translation", "bg", "bulgarian")
		} else {
			source = raw.str("translation", "de", "german")
			target = raw.str("word", "bg", "bulgarian")
		}
	case Fallback:
		raw = t.Raw
		source = raw.str(fallbackSources...)
		target = raw.str(fallbackTargets...)
	}

	if source == "" {
		source = vocabulary.Unresolved
	}
	if target == "" {
		target = vocabulary.Unresolved
	}

	labels := categoryLabels(raw)
	now := u.clock()

	r := vocabulary.Record{
		ID:              raw.str("id", "_id", "uuid"),
		SourceTerm:      source,
		TargetTerm:      target,
		PartOfSpeech:    partOfSpeech(raw, labels),
		Difficulty:      difficulty(raw),
		Categories:      labels,
		Transliteration: transliteration(raw),
		Emoji:           raw.str("emoji"),
		Audio:           audio(raw),
		Grammar:         grammar(raw),
		Examples:        examples(raw, origin),
		Notes:           notes(raw, origin),
		Etymology:       raw.str("etymology"),
		CulturalNotes:   raw.strings("culturalNotes", "cultural_notes", "cultural_note", "culturalNote"),
		Mnemonics:       raw.strings("mnemonics", "mnemonic"),
		Synonyms:        raw.strings("synonyms"),
		Antonyms:        raw.strings("antonyms"),
		RelatedWords:    raw.strings("relatedWords", "related_words"),
		Metadata:        metadata(raw),
		CreatedAt:       timestamp(raw, now, "createdAt", "created_at"),
		UpdatedAt:       timestamp(raw, now, "updatedAt", "updated_at"),
		Version:         vocabulary.CanonicalVersion,
	}
	if len(r.Categories) == 0 {
		r.Categories = []vocabulary.Category{vocabulary.Uncategorized}
	}
	return r
}

func categoryLabels(raw Raw) []vocabulary.Category {
	var labels []vocabulary.Category
	seen := make(map[string]bool)
	add := func(s string) {
		if seen[s] {
			return
		}
		seen[s] = true
		labels = append(labels, vocabulary.Category(s))
	}
	for _, s := range raw.strings("categories", "category") {
		add(s)
	}
	for _, tag := range raw.strings("tags") {
		if _, isPOS := parsePOS(tag); isPOS {
			continue
		}
		if _, isBand := bands[strings.ToUpper(tag)]; isBand {
			continue
		}
		add(tag)
	}
	return labels
}

func parsePOS(s string) (vocabulary.PartOfSpeech, bool) {
	if p, ok := vocabulary.ParsePartOfSpeech(s); ok {
		return p, true
	}
	p, ok := posAliases[strings.ToLower(strings.TrimSpace(s))]
	return p, ok
}

// partOfSpeech prefers explicit fields, then tags, then category names,
// and defaults to noun.
func partOfSpeech(raw Raw, labels []vocabulary.Category) vocabulary.PartOfSpeech {
	if p, ok := parsePOS(raw.str("partOfSpeech", "part_of_speech", "pos", "type")); ok {
		return p
	}
	for _, tag := range raw.strings("tags") {
		if p, ok := parsePOS(tag); ok {
			return p
		}
	}
	for _, label := range labels {
		l := strings.ToLower(string(label))
		for _, c := range categoryPOS {
			if strings.Contains(l, c.needle) {
				return c.pos
			}
		}
	}
	return vocabulary.Noun
}

// difficulty reads a numeric difficulty clamped to [1,5] or converts a
// band label. Anything else yields 1.
func difficulty(raw Raw) int {
	if n, ok := raw.int("difficulty"); ok {
		return clamp(n, vocabulary.MinDifficulty, vocabulary.MaxDifficulty)
	}
	for _, key := range []string{"difficulty", "level", "cefr", "cefr_level"} {
		if d, ok := bands[strings.ToUpper(raw.str(key))]; ok {
			return d
		}
	}
	return vocabulary.MinDifficulty
}

func level(raw Raw) vocabulary.LanguageLevel {
	band := strings.ToUpper(raw.str("level", "cefr", "cefr_level"))
	if band == "C2" {
		return vocabulary.LevelC1
	}
	if slices.Contains(vocabulary.Levels, vocabulary.LanguageLevel(band)) {
		return vocabulary.LanguageLevel(band)
	}
	return ""
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}

func examples(raw Raw, origin vocabulary.ContentSource) []vocabulary.Example {
	var items []any
	switch v := raw["examples"].(type) {
	case []any:
		items = v
	case nil:
	default:
		items = []any{v}
	}
	if v, ok := raw["example"]; ok && v != nil {
		items = append(items, v)
	}

	var out []vocabulary.Example
	for _, item := range items {
		if ex, ok := example(item); ok {
			ex.Source = origin
			out = append(out, ex)
		}
	}
	return out
}

// example accepts {sentence, translation}, {de, bg}, {german, bulgarian}
// and the inline string form. A sentence without a language tag is taken
// to be Bulgarian, matching the legacy exports.
func example(v any) (vocabulary.Example, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return vocabulary.Example{}, false
		}
		if m := exampleString.FindStringSubmatch(s); m != nil {
			return vocabulary.Example{SourceTerm: strings.TrimSpace(m[1]), TargetTerm: strings.TrimSpace(m[2])}, true
		}
		return vocabulary.Example{SourceTerm: s}, true
	case map[string]any:
		o := Raw(t)
		ex := vocabulary.Example{
			SourceTerm: o.str("german", "de", "translation", "source"),
			TargetTerm: o.str("bulgarian", "bg", "sentence", "target"),
			Context:    o.str("context", "note"),
		}
		return ex, ex.SourceTerm != "" || ex.TargetTerm != ""
	}
	return vocabulary.Example{}, false
}

func notes(raw Raw, origin vocabulary.ContentSource) *vocabulary.Notes {
	n := vocabulary.Notes{Source: origin}
	if o := raw.object("notes"); o != nil {
		n.General = o.str("general")
		n.ForSourceSpeakers = o.str("forGermanSpeakers", "for_german_speakers", "forSourceSpeakers")
		n.ForTargetSpeakers = o.str("forBulgarianSpeakers", "for_bulgarian_speakers", "forTargetSpeakers")
		n.Linguistic = o.str("linguistic")
		n.LinguisticForSource = o.str("linguisticForGermans", "linguisticForSource")
		n.LinguisticForTarget = o.str("linguisticForBulgarians", "linguisticForTarget")
	} else {
		n.General = raw.str("notes")
	}

	n.General = joinNotes(n.General, raw.str("contextual_nuance", "contextualNuance"))
	n.ForSourceSpeakers = joinNotes(n.ForSourceSpeakers, raw.str("notes_de_to_bg"))
	n.ForTargetSpeakers = joinNotes(n.ForTargetSpeakers, raw.str("notes_bg_to_de"))
	n.Linguistic = joinNotes(n.Linguistic, raw.str("linguistic_note"))
	n.LinguisticForSource = joinNotes(n.LinguisticForSource, raw.str("linguistic_note_de_to_bg"))
	n.LinguisticForTarget = joinNotes(n.LinguisticForTarget, raw.str("linguistic_note_bg_to_de"))

	if n.IsEmpty() {
		return nil
	}
	return &n
}

// NoteSeparator joins note texts from different fields.
const NoteSeparator = "\n\n"

func joinNotes(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "" || a == b:
		return a
	}
	return a + NoteSeparator + b
}

func grammar(raw Raw) *vocabulary.Grammar {
	var g vocabulary.Grammar
	for _, o := range []Raw{raw.object("grammar", "grammar_details", "grammarDetails"), raw} {
		if o == nil {
			continue
		}
		if g.Gender == "" {
			g.Gender = parseGender(o.str("gender", "noun_gender", "nounGender"))
		}
		if g.PluralForm == "" {
			g.PluralForm = o.str("pluralForm", "plural_form", "plural")
		}
		if g.VerbAspect == "" {
			g.VerbAspect = vocabulary.VerbAspect(strings.ToLower(o.str("verbAspect", "verb_aspect", "aspect")))
		}
		if g.VerbPartnerID == "" {
			g.VerbPartnerID = o.str("verbPartnerId", "verb_partner_id", "verbPartnerID")
		}
		if g.Conjugation == nil {
			if c := o.object("conjugation"); c != nil {
				g.Conjugation = make(map[string]string, len(c))
				for _, k := range slices.Sorted(maps.Keys(c)) {
					if s := c.str(k); s != "" {
						g.Conjugation[k] = s
					}
				}
			}
		}
	}
	if g.IsEmpty() {
		return nil
	}
	return &g
}

// parseGender accepts canonical names, articles and common abbreviations.
// Unrecognized values are kept lowercased so validation can report them.
func parseGender(s string) vocabulary.Gender {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "":
		return ""
	case "m", "masc", "der", "männlich", "мъжки", "мъжки род":
		return vocabulary.Masculine
	case "f", "fem", "die", "weiblich", "женски", "женски род":
		return vocabulary.Feminine
	case "n", "neut", "das", "sächlich", "среден", "среден род":
		return vocabulary.Neuter
	default:
		return vocabulary.Gender(v)
	}
}

func audio(raw Raw) *vocabulary.Audio {
	a := vocabulary.Audio{
		SourceTerm: raw.str("audio_german", "audio_de", "audioGerman"),
		TargetTerm: raw.str("audio_bulgarian", "audio_bg", "audioBulgarian"),
	}
	if o := raw.object("audio"); o != nil {
		a.SourceTerm = firstNonEmpty(o.str("german", "de"), a.SourceTerm)
		a.TargetTerm = firstNonEmpty(o.str("bulgarian", "bg"), a.TargetTerm)
	}
	if a.FieldCount() == 0 {
		return nil
	}
	return &a
}

func transliteration(raw Raw) *vocabulary.Transliteration {
	var t vocabulary.Transliteration
	if o := raw.object("transliteration"); o != nil {
		t.SourceTerm = o.str("german", "de")
		t.TargetTerm = o.str("bulgarian", "bg")
	} else {
		t.TargetTerm = raw.str("transliteration")
	}
	if t.SourceTerm == "" && t.TargetTerm == "" {
		return nil
	}
	return &t
}

func metadata(raw Raw) vocabulary.Metadata {
	src := raw
	if o := raw.object("metadata"); o != nil {
		src = o
	}
	m := vocabulary.Metadata{
		Level:        level(raw),
		IsCommon:     src.bool("isCommon", "is_common"),
		IsVerified:   src.bool("isVerified", "is_verified"),
		SourceFiles:  dedupeStrings(append(src.strings("sourceFiles", "source_files"), raw.strings("source", "source_file")...)),
		MergeSources: dedupeStrings(src.strings("mergeSources", "merge_sources")),
	}
	if n, ok := src.int("frequency"); ok {
		m.Frequency = n
	} else if n, ok := raw.int("frequency"); ok {
		m.Frequency = n
	}
	if n, ok := src.int("learningPhase", "learning_phase"); ok {
		m.LearningPhase = n
	}
	if n, ok := src.int("xpValue", "xp_value"); ok {
		m.XPValue = n
	} else if n, ok := raw.int("xp_value", "xpValue"); ok {
		m.XPValue = n
	}
	if m.Level == "" && src.has("level") {
		m.Level = level(src)
	}
	return m
}

func timestamp(raw Raw, fallback utc.Time, keys ...string) utc.Time {
	s := raw.str(keys...)
	if s == "" {
		return fallback
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return utc.New(t)
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func dedupeStrings(in []string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
