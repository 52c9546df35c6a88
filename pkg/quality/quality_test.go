package quality_test

import (
	"strings"
	"testing"

	"github.com/agentstation/vocab/pkg/quality"
	"github.com/agentstation/vocab/pkg/vocabulary"
	"github.com/stretchr/testify/assert"
)

func TestAssess(t *testing.T) {
	cfg := quality.DefaultConfig()
	longNote := strings.Repeat("x", cfg.MinNotesLength)

	tests := []struct {
		name   string
		record vocabulary.Record
		score  float64
	}{
		{
			name:   "bare record",
			record: vocabulary.Record{SourceTerm: "Apfel", TargetTerm: "ябълка"},
			score:  0,
		},
		{
			name: "examples are capped at three",
			record: vocabulary.Record{Examples: []vocabulary.Example{
				{SourceTerm: "a"}, {SourceTerm: "b"}, {SourceTerm: "c"}, {SourceTerm: "d"}, {SourceTerm: "e"},
			}},
			score: 3,
		},
		{
			name:   "short general note",
			record: vocabulary.Record{Notes: &vocabulary.Notes{General: "short"}},
			score:  1,
		},
		{
			name:   "only a speaker note",
			record: vocabulary.Record{Notes: &vocabulary.Notes{ForTargetSpeakers: "falscher Freund"}},
			score:  1,
		},
		{
			name:   "long general note",
			record: vocabulary.Record{Notes: &vocabulary.Notes{General: longNote}},
			score:  2,
		},
		{
			name:   "verb partner alone is not grammar",
			record: vocabulary.Record{Grammar: &vocabulary.Grammar{VerbPartnerID: "v2"}},
			score:  0,
		},
		{
			name: "fully populated",
			record: vocabulary.Record{
				Examples:      []vocabulary.Example{{SourceTerm: "a"}, {SourceTerm: "b"}, {SourceTerm: "c"}},
				Notes:         &vocabulary.Notes{General: longNote},
				Grammar:       &vocabulary.Grammar{Gender: vocabulary.Masculine},
				Audio:         &vocabulary.Audio{TargetTerm: "apfel.mp3"},
				Etymology:     "Old High German apful",
				CulturalNotes: []string{"Apples are a common gift."},
				Mnemonics:     []string{"Apfel sounds like apple."},
			},
			score: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quality.Assess(tt.record, cfg)
			assert.InDelta(t, tt.score, got.Score, 1e-9)
			assert.InDelta(t, tt.score/10, got.Completeness, 1e-9)
		})
	}
}

func TestAssessFlags(t *testing.T) {
	got := quality.Assess(vocabulary.Record{
		Examples:  []vocabulary.Example{{SourceTerm: "Ich esse einen Apfel."}},
		Etymology: "Old High German apful",
		Mnemonics: []string{"apple"},
	}, quality.DefaultConfig())

	assert.True(t, got.HasExamples)
	assert.True(t, got.HasEtymology)
	assert.True(t, got.HasMnemonics)
	assert.False(t, got.HasNotes)
	assert.False(t, got.HasGrammar)
	assert.False(t, got.HasAudio)
	assert.False(t, got.HasCulturalNotes)
	assert.InDelta(t, 2.5, got.Score, 1e-9)
}
