// Package vocabulary defines the canonical vocabulary record and collection
// shared by every stage of the reconciliation pipeline.
//
// Wire names follow the exported canonical format, so the source language
// term is serialized as "german" and the target language term as "bulgarian".
package vocabulary

import (
	"maps"
	"slices"
	"strings"

	"github.com/agentstation/utc"
)

// Unresolved is the placeholder written into a term that could not be
// recovered from a legacy record.
const Unresolved = "unknown"

// CanonicalVersion marks records already in the canonical shape.
const CanonicalVersion = 1

// Difficulty bounds.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Metadata bounds.
const (
	MinFrequency     = 1
	MaxFrequency     = 100
	MinLearningPhase = 0
	MaxLearningPhase = 6
)

// PartOfSpeech is the grammatical class of a record.
type PartOfSpeech string

// Parts of speech.
const (
	Noun         PartOfSpeech = "noun"
	Verb         PartOfSpeech = "verb"
	Adjective    PartOfSpeech = "adjective"
	Adverb       PartOfSpeech = "adverb"
	Pronoun      PartOfSpeech = "pronoun"
	Preposition  PartOfSpeech = "preposition"
	Conjunction  PartOfSpeech = "conjunction"
	Interjection PartOfSpeech = "interjection"
	Article      PartOfSpeech = "article"
	Number       PartOfSpeech = "number"
	Phrase       PartOfSpeech = "phrase"
	Expression   PartOfSpeech = "expression"
)

// PartsOfSpeech lists every valid part of speech in declaration order.
var PartsOfSpeech = []PartOfSpeech{
	Noun, Verb, Adjective, Adverb, Pronoun, Preposition,
	Conjunction, Interjection, Article, Number, Phrase, Expression,
}

// IsValid reports whether p is one of the known parts of speech.
func (p PartOfSpeech) IsValid() bool {
	return slices.Contains(PartsOfSpeech, p)
}

// ParsePartOfSpeech matches s case-insensitively against the known parts of
// speech.
func ParsePartOfSpeech(s string) (PartOfSpeech, bool) {
	p := PartOfSpeech(strings.ToLower(strings.TrimSpace(s)))
	if p.IsValid() {
		return p, true
	}
	return "", false
}

// LanguageLevel is a CEFR proficiency band.
type LanguageLevel string

// Language levels.
const (
	LevelA1 LanguageLevel = "A1"
	LevelA2 LanguageLevel = "A2"
	LevelB1 LanguageLevel = "B1"
	LevelB2 LanguageLevel = "B2"
	LevelC1 LanguageLevel = "C1"
)

// Levels lists the proficiency bands from easiest to hardest.
var Levels = []LanguageLevel{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1}

// Gender of a noun.
type Gender string

// Genders.
const (
	Masculine Gender = "masculine"
	Feminine  Gender = "feminine"
	Neuter    Gender = "neuter"
)

// IsValid reports whether g is a known gender.
func (g Gender) IsValid() bool {
	return g == Masculine || g == Feminine || g == Neuter
}

// VerbAspect of a verb.
type VerbAspect string

// Verb aspects.
const (
	Perfective   VerbAspect = "perfective"
	Imperfective VerbAspect = "imperfective"
)

// IsValid reports whether a is a known verb aspect.
func (a VerbAspect) IsValid() bool {
	return a == Perfective || a == Imperfective
}

// ContentSource records where an example or note came from.
type ContentSource string

// Content sources.
const (
	SourceCurrent   ContentSource = "current"
	SourceLegacy    ContentSource = "legacy"
	SourceMerged    ContentSource = "merged"
	SourceGenerated ContentSource = "generated"
)

// Category is a canonical category tag.
type Category string

// Uncategorized is always a valid category and has no children.
const Uncategorized Category = "uncategorized"

// Example is a usage sentence in both languages.
type Example struct {
	SourceTerm string        `json:"german" yaml:"german"`
	TargetTerm string        `json:"bulgarian" yaml:"bulgarian"`
	Context    string        `json:"context,omitempty" yaml:"context,omitempty"`
	Source     ContentSource `json:"source,omitempty" yaml:"source,omitempty"`
}

// Notes is the structured note bundle of a record.
type Notes struct {
	General             string        `json:"general,omitempty" yaml:"general,omitempty"`
	ForSourceSpeakers   string        `json:"forGermanSpeakers,omitempty" yaml:"forGermanSpeakers,omitempty"`
	ForTargetSpeakers   string        `json:"forBulgarianSpeakers,omitempty" yaml:"forBulgarianSpeakers,omitempty"`
	Linguistic          string        `json:"linguistic,omitempty" yaml:"linguistic,omitempty"`
	LinguisticForSource string        `json:"linguisticForGermans,omitempty" yaml:"linguisticForGermans,omitempty"`
	LinguisticForTarget string        `json:"linguisticForBulgarians,omitempty" yaml:"linguisticForBulgarians,omitempty"`
	Source              ContentSource `json:"source,omitempty" yaml:"source,omitempty"`
}

// Texts returns the non-empty note texts in field order.
func (n *Notes) Texts() []string {
	if n == nil {
		return nil
	}
	var out []string
	for _, s := range []string{n.General, n.ForSourceSpeakers, n.ForTargetSpeakers, n.Linguistic, n.LinguisticForSource, n.LinguisticForTarget} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// IsEmpty reports whether the bundle carries no text.
func (n *Notes) IsEmpty() bool {
	return len(n.Texts()) == 0
}

// Grammar holds the grammatical details of a record.
type Grammar struct {
	Gender        Gender            `json:"gender,omitempty" yaml:"gender,omitempty"`
	PluralForm    string            `json:"pluralForm,omitempty" yaml:"pluralForm,omitempty"`
	VerbAspect    VerbAspect        `json:"verbAspect,omitempty" yaml:"verbAspect,omitempty"`
	VerbPartnerID string            `json:"verbPartnerId,omitempty" yaml:"verbPartnerId,omitempty"`
	Conjugation   map[string]string `json:"conjugation,omitempty" yaml:"conjugation,omitempty"`
}

// IsEmpty reports whether no grammatical detail is set.
func (g *Grammar) IsEmpty() bool {
	return g == nil || g.FieldCount() == 0
}

// FieldCount returns how many grammar fields are set.
func (g *Grammar) FieldCount() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, set := range []bool{g.Gender != "", g.PluralForm != "", g.VerbAspect != "", g.VerbPartnerID != "", len(g.Conjugation) > 0} {
		if set {
			n++
		}
	}
	return n
}

// Audio references per language.
type Audio struct {
	SourceTerm string `json:"german,omitempty" yaml:"german,omitempty"`
	TargetTerm string `json:"bulgarian,omitempty" yaml:"bulgarian,omitempty"`
}

// FieldCount returns how many languages have audio.
func (a *Audio) FieldCount() int {
	if a == nil {
		return 0
	}
	n := 0
	if a.SourceTerm != "" {
		n++
	}
	if a.TargetTerm != "" {
		n++
	}
	return n
}

// Transliteration of each term into Latin script.
type Transliteration struct {
	SourceTerm string `json:"german,omitempty" yaml:"german,omitempty"`
	TargetTerm string `json:"bulgarian,omitempty" yaml:"bulgarian,omitempty"`
}

// Metadata is the learning and provenance metadata of a record.
type Metadata struct {
	Frequency     int           `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	Level         LanguageLevel `json:"level,omitempty" yaml:"level,omitempty"`
	IsCommon      bool          `json:"isCommon" yaml:"isCommon"`
	IsVerified    bool          `json:"isVerified" yaml:"isVerified"`
	LearningPhase int           `json:"learningPhase" yaml:"learningPhase"`
	XPValue       int           `json:"xpValue,omitempty" yaml:"xpValue,omitempty"`
	SourceFiles   []string      `json:"sourceFiles,omitempty" yaml:"sourceFiles,omitempty"`
	MergeSources  []string      `json:"mergeSources,omitempty" yaml:"mergeSources,omitempty"`
}

// Record is the canonical vocabulary entry.
type Record struct {
	ID              string           `json:"id" yaml:"id"`
	SourceTerm      string           `json:"german" yaml:"german"`
	TargetTerm      string           `json:"bulgarian" yaml:"bulgarian"`
	PartOfSpeech    PartOfSpeech     `json:"partOfSpeech" yaml:"partOfSpeech"`
	Difficulty      int              `json:"difficulty" yaml:"difficulty"`
	Categories      []Category       `json:"categories" yaml:"categories"`
	Transliteration *Transliteration `json:"transliteration,omitempty" yaml:"transliteration,omitempty"`
	Emoji           string           `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Audio           *Audio           `json:"audio,omitempty" yaml:"audio,omitempty"`
	Grammar         *Grammar         `json:"grammar,omitempty" yaml:"grammar,omitempty"`
	Examples        []Example        `json:"examples,omitempty" yaml:"examples,omitempty"`
	Notes           *Notes           `json:"notes,omitempty" yaml:"notes,omitempty"`
	Etymology       string           `json:"etymology,omitempty" yaml:"etymology,omitempty"`
	CulturalNotes   []string         `json:"culturalNotes,omitempty" yaml:"culturalNotes,omitempty"`
	Mnemonics       []string         `json:"mnemonics,omitempty" yaml:"mnemonics,omitempty"`
	Synonyms        []string         `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
	Antonyms        []string         `json:"antonyms,omitempty" yaml:"antonyms,omitempty"`
	RelatedWords    []string         `json:"relatedWords,omitempty" yaml:"relatedWords,omitempty"`
	Metadata        Metadata         `json:"metadata" yaml:"metadata"`
	CreatedAt       utc.Time         `json:"createdAt" yaml:"createdAt"`
	UpdatedAt       utc.Time         `json:"updatedAt" yaml:"updatedAt"`
	Version         int              `json:"version" yaml:"version"`
}

// IsUnresolved reports whether either term is the unresolved placeholder or
// empty.
func (r *Record) IsUnresolved() bool {
	return isUnresolvedTerm(r.SourceTerm) || isUnresolvedTerm(r.TargetTerm)
}

// HasRequiredFields reports whether both terms are resolved and a part of
// speech is set.
func (r *Record) HasRequiredFields() bool {
	return !r.IsUnresolved() && r.PartOfSpeech != ""
}

func isUnresolvedTerm(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == Unresolved
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	out.Categories = slices.Clone(r.Categories)
	out.Examples = slices.Clone(r.Examples)
	out.CulturalNotes = slices.Clone(r.CulturalNotes)
	out.Mnemonics = slices.Clone(r.Mnemonics)
	out.Synonyms = slices.Clone(r.Synonyms)
	out.Antonyms = slices.Clone(r.Antonyms)
	out.RelatedWords = slices.Clone(r.RelatedWords)
	out.Metadata.SourceFiles = slices.Clone(r.Metadata.SourceFiles)
	out.Metadata.MergeSources = slices.Clone(r.Metadata.MergeSources)
	if r.Transliteration != nil {
		t := *r.Transliteration
		out.Transliteration = &t
	}
	if r.Audio != nil {
		a := *r.Audio
		out.Audio = &a
	}
	if r.Notes != nil {
		n := *r.Notes
		out.Notes = &n
	}
	if r.Grammar != nil {
		g := *r.Grammar
		g.Conjugation = maps.Clone(r.Grammar.Conjugation)
		out.Grammar = &g
	}
	return out
}
