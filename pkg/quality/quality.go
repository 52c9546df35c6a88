// Package quality scores how complete a vocabulary record is.
package quality

import (
	"unicode/utf8"

	"github.com/agentstation/vocab/pkg/vocabulary"
)

// MaxScore is the highest possible score.
const MaxScore = 10.0

// Rubric weights.
const (
	maxExamplePoints   = 3
	fullNotePoints     = 2.0
	partialNotePoints  = 1.0
	grammarPoints      = 2.0
	audioPoints        = 1.0
	etymologyPoints    = 1.0
	culturalNotePoints = 0.5
	mnemonicPoints     = 0.5
)

// Config tunes the rubric.
type Config struct {
	// MinNotesLength is the general note length that earns full note points.
	MinNotesLength int `yaml:"minNotesLength" mapstructure:"min_notes_length"`
}

// DefaultConfig returns the default rubric configuration.
func DefaultConfig() Config {
	return Config{MinNotesLength: 50}
}

// Assessment is the result of scoring a record.
type Assessment struct {
	Score        float64 `json:"score" yaml:"score"`
	Completeness float64 `json:"completeness" yaml:"completeness"`

	HasExamples      bool `json:"hasExamples" yaml:"hasExamples"`
	HasNotes         bool `json:"hasNotes" yaml:"hasNotes"`
	HasGrammar       bool `json:"hasGrammar" yaml:"hasGrammar"`
	HasAudio         bool `json:"hasAudio" yaml:"hasAudio"`
	HasEtymology     bool `json:"hasEtymology" yaml:"hasEtymology"`
	HasCulturalNotes bool `json:"hasCulturalNotes" yaml:"hasCulturalNotes"`
	HasMnemonics     bool `json:"hasMnemonics" yaml:"hasMnemonics"`
}

// Assess scores r on a 0 to 10 rubric: up to 3 points for examples, 2 for a
// substantial general note (1 for any note), 2 for grammatical detail, 1 for
// audio, 1 for etymology and half a point each for cultural notes and
// mnemonics.
func Assess(r vocabulary.Record, cfg Config) Assessment {
	var a Assessment

	if n := len(r.Examples); n > 0 {
		a.HasExamples = true
		a.Score += float64(min(n, maxExamplePoints))
	}

	if r.Notes != nil {
		switch {
		case r.Notes.General != "" && utf8.RuneCountInString(r.Notes.General) >= cfg.MinNotesLength:
			a.HasNotes = true
			a.Score += fullNotePoints
		case !r.Notes.IsEmpty():
			a.HasNotes = true
			a.Score += partialNotePoints
		}
	}

	if g := r.Grammar; g != nil && (g.Gender != "" || g.PluralForm != "" || g.VerbAspect != "") {
		a.HasGrammar = true
		a.Score += grammarPoints
	}

	if r.Audio.FieldCount() > 0 {
		a.HasAudio = true
		a.Score += audioPoints
	}

	if r.Etymology != "" {
		a.HasEtymology = true
		a.Score += etymologyPoints
	}

	if len(r.CulturalNotes) > 0 {
		a.HasCulturalNotes = true
		a.Score += culturalNotePoints
	}

	if len(r.Mnemonics) > 0 {
		a.HasMnemonics = true
		a.Score += mnemonicPoints
	}

	a.Completeness = a.Score / MaxScore
	return a
}
