package dedupe_test

import (
	"context"
	"testing"

	"github.com/agentstation/vocab/pkg/dedupe"
	pkgerrors "github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func noun(id, source, target string) vocabulary.Record {
	return vocabulary.Record{ID: id, SourceTerm: source, TargetTerm: target, PartOfSpeech: vocabulary.Noun}
}

func TestIsDuplicate(t *testing.T) {
	cfg := dedupe.DefaultConfig()

	tests := []struct {
		name  string
		a, b  vocabulary.Record
		dup   bool
		class dedupe.Class
	}{
		{
			name:  "identical terms",
			a:     noun("a1", "Apfel", "ябълка"),
			b:     noun("a9", "Apfel", "ябълка"),
			dup:   true,
			class: dedupe.ClassExact,
		},
		{
			name:  "equal after normalization",
			a:     noun("a1", "Apfel!", "Ябълка"),
			b:     noun("a2", "apfel", "ябълка"),
			dup:   true,
			class: dedupe.ClassExact,
		},
		{
			name:  "article and definite suffix",
			a:     noun("a1", "Apfel", "ябълка"),
			b:     noun("a2", "der Apfel", "ябълката"),
			dup:   true,
			class: dedupe.ClassGrammatical,
		},
		{
			name:  "typo in a long term",
			a:     noun("s1", "Schmetterling", "пеперуда"),
			b:     noun("s2", "Schmeterling", "пеперуда"),
			dup:   true,
			class: dedupe.ClassSimilar,
		},
		{
			name:  "different short words",
			a:     noun("h1", "Haus", "къща"),
			b:     noun("m1", "Maus", "мишка"),
			dup:   false,
			class: dedupe.ClassNone,
		},
		{
			name:  "different part of speech",
			a:     vocabulary.Record{ID: "e1", SourceTerm: "essen", TargetTerm: "ям", PartOfSpeech: vocabulary.Verb},
			b:     noun("e2", "Essen", "храна"),
			dup:   false,
			class: dedupe.ClassNone,
		},
		{
			name:  "missing part of speech",
			a:     vocabulary.Record{ID: "a1", SourceTerm: "Apfel", TargetTerm: "ябълка"},
			b:     vocabulary.Record{ID: "a2", SourceTerm: "Apfel", TargetTerm: "ябълка"},
			dup:   false,
			class: dedupe.ClassNone,
		},
		{
			name:  "unresolved placeholder",
			a:     noun("u1", vocabulary.Unresolved, "ябълка"),
			b:     noun("u2", vocabulary.Unresolved, "ябълка"),
			dup:   false,
			class: dedupe.ClassNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := dedupe.IsDuplicate(tt.a, tt.b, cfg)
			assert.Equal(t, tt.dup, m.IsDuplicate)
			assert.Equal(t, tt.class, m.Class)
			if tt.class == dedupe.ClassExact {
				assert.Equal(t, 1.0, m.Score)
			}
		})
	}
}

func TestIsDuplicateContentClass(t *testing.T) {
	cfg := dedupe.DefaultConfig()
	cfg.MaxLevenshteinDistance = 0

	a := noun("s1", "Schmetterling", "пеперуда")
	b := noun("s2", "Schmeterling", "пеперуда")

	m := dedupe.IsDuplicate(a, b, cfg)
	assert.True(t, m.IsDuplicate)
	assert.Equal(t, dedupe.ClassContent, m.Class)
	assert.InDelta(t, 0.9817, m.Score, 0.001)

	t.Run("examples on one side only", func(t *testing.T) {
		withExample := a
		withExample.Examples = []vocabulary.Example{{SourceTerm: "Der Schmetterling fliegt.", TargetTerm: "Пеперудата лети."}}
		assert.False(t, dedupe.IsDuplicate(withExample, b, cfg).IsDuplicate)
	})
}

func TestIsDuplicateReflexive(t *testing.T) {
	cfg := dedupe.DefaultConfig()
	for _, r := range []vocabulary.Record{
		noun("a1", "Apfel", "ябълка"),
		noun("h1", "Haus", "къща"),
		{ID: "v1", SourceTerm: "gehen", TargetTerm: "отивам", PartOfSpeech: vocabulary.Verb},
	} {
		m := dedupe.IsDuplicate(r, r, cfg)
		assert.True(t, m.IsDuplicate, r.ID)
		assert.Equal(t, 1.0, m.Score, r.ID)
	}
}

func TestIsDuplicateSymmetric(t *testing.T) {
	records := []vocabulary.Record{
		noun("a1", "Apfel", "ябълка"),
		noun("a2", "der Apfel", "ябълката"),
		noun("a3", "Äpfel", "ябълки"),
		noun("h1", "Haus", "къща"),
		noun("h2", "Häuser", "къщи"),
		noun("s1", "Schmetterling", "пеперуда"),
		noun("s2", "Schmeterling", "пеперудата"),
		{ID: "v1", SourceTerm: "spielen", TargetTerm: "играя", PartOfSpeech: vocabulary.Verb,
			Examples: []vocabulary.Example{{SourceTerm: "Wir spielen.", TargetTerm: "Ние играем."}}},
		{ID: "v2", SourceTerm: "spielt", TargetTerm: "играе", PartOfSpeech: vocabulary.Verb},
	}

	cfgs := map[string]dedupe.Config{"default": dedupe.DefaultConfig()}
	noBoost := dedupe.DefaultConfig()
	noBoost.MaxLevenshteinDistance = 0
	cfgs["no boost"] = noBoost

	for name, cfg := range cfgs {
		t.Run(name, func(t *testing.T) {
			for _, a := range records {
				for _, b := range records {
					assert.Equal(t, dedupe.IsDuplicate(a, b, cfg), dedupe.IsDuplicate(b, a, cfg), "%s vs %s", a.ID, b.ID)
				}
			}
		})
	}
}

func TestFindGroups(t *testing.T) {
	a1 := noun("a1", "Apfel", "ябълка")
	a1.Metadata.SourceFiles = []string{"vocabulary.json"}
	a1.Examples = []vocabulary.Example{{SourceTerm: "Der Apfel ist rot.", TargetTerm: "Ябълката е червена."}}
	records := []vocabulary.Record{
		a1,
		noun("b1", "Hund", "куче"),
		noun("a2", "der Apfel", "ябълката"),
	}

	groups, err := dedupe.FindGroups(context.Background(), records, dedupe.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "group-0001", g.ID)
	assert.Equal(t, []string{"a1", "a2"}, g.IDs())
	assert.Equal(t, 2, g.Members[1].Index)
	assert.Equal(t, dedupe.ClassGrammatical, g.Class)
	assert.Equal(t, "vocabulary.json", g.Members[0].SourceLabel)
	assert.Equal(t, "unknown", g.Members[1].SourceLabel)
	assert.Equal(t, 1.0, g.Members[0].QualityScore)
	assert.Equal(t, 0.0, g.Members[1].QualityScore)
	assert.Len(t, g.Records(), 2)
}

func TestFindGroupsClaimsOnce(t *testing.T) {
	records := []vocabulary.Record{
		noun("", "Apfel", "ябълка"),
		noun("", "Apfel", "ябълка"),
		noun("", "apfel", "ябълка"),
		noun("", "Birne", "круша"),
		noun("", "Birne", "круша"),
	}

	groups, err := dedupe.FindGroups(context.Background(), records, dedupe.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"temp-0", "temp-1", "temp-2"}, groups[0].IDs())
	assert.Equal(t, dedupe.ClassExact, groups[0].Class)
	assert.Equal(t, []string{"temp-3", "temp-4"}, groups[1].IDs())
	assert.Equal(t, "group-0002", groups[1].ID)

	seen := map[string]bool{}
	for _, g := range groups {
		for _, id := range g.IDs() {
			assert.False(t, seen[id], "id %s grouped twice", id)
			seen[id] = true
		}
	}
}

func TestFindGroupsEmpty(t *testing.T) {
	groups, err := dedupe.FindGroups(context.Background(), nil, dedupe.DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestFindGroupsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dedupe.FindGroups(ctx, []vocabulary.Record{noun("a1", "Apfel", "ябълка")}, dedupe.DefaultConfig())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCanceled(err))
}

func TestClassWeaker(t *testing.T) {
	assert.Equal(t, dedupe.ClassGrammatical, dedupe.ClassExact.Weaker(dedupe.ClassGrammatical))
	assert.Equal(t, dedupe.ClassContent, dedupe.ClassContent.Weaker(dedupe.ClassSimilar))
	assert.Equal(t, dedupe.ClassSimilar, dedupe.ClassSimilar.Weaker(dedupe.ClassExact))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, dedupe.DefaultConfig().Validate())

	bad := dedupe.DefaultConfig()
	bad.SimilarityThreshold = 1.5
	err := bad.Validate()
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConfigError(err))

	bad = dedupe.DefaultConfig()
	bad.Workers = -1
	assert.Error(t, bad.Validate())
}
