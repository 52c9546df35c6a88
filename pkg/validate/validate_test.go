package validate_test

import (
	"context"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/agentstation/vocab/internal/idgen"
	pkgerrors "github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/validate"
	"github.com/agentstation/vocab/pkg/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const collectionID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

var (
	created = utc.New(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	now     = utc.New(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
)

func newValidator(t *testing.T, cfg validate.Config) *validate.Validator {
	t.Helper()
	v, err := validate.New(cfg,
		validate.WithClock(func() utc.Time { return now }),
		validate.WithIDGenerator(idgen.NewSequence()),
	)
	require.NoError(t, err)
	return v
}

func item(id, de, bg, exDE, exBG string) vocabulary.Record {
	return vocabulary.Record{
		ID:           id,
		SourceTerm:   de,
		TargetTerm:   bg,
		PartOfSpeech: vocabulary.Noun,
		Difficulty:   1,
		Categories:   []vocabulary.Category{"food"},
		Grammar:      &vocabulary.Grammar{Gender: vocabulary.Masculine},
		Examples:     []vocabulary.Example{{SourceTerm: exDE, TargetTerm: exBG}},
		Notes:        &vocabulary.Notes{General: "A very common word in everyday speech."},
		Etymology:    "Old High German",
		Metadata:     vocabulary.Metadata{Frequency: 50},
		CreatedAt:    created,
		UpdatedAt:    created,
		Version:      vocabulary.CanonicalVersion,
	}
}

func apple() vocabulary.Record {
	return item("a1", "Apfel", "ябълка", "Der Apfel ist rot.", "Ябълката е червена.")
}

func bread() vocabulary.Record {
	return item("b1", "Brot", "хляб", "Das Brot ist frisch.", "Хлябът е пресен.")
}

func collection(items ...vocabulary.Record) *vocabulary.Collection {
	return vocabulary.NewCollection(vocabulary.CollectionInfo{
		ID:          collectionID,
		Name:        "German-Bulgarian",
		Description: "Collection used by the validator tests",
		Now:         created,
	}, items)
}

func rules(issues []validate.Issue) []validate.Rule {
	out := make([]validate.Rule, len(issues))
	for i, issue := range issues {
		out[i] = issue.Rule
	}
	return out
}

func TestValidateCleanCollection(t *testing.T) {
	v := newValidator(t, validate.DefaultConfig())

	res, err := v.Validate(context.Background(), collection(apple(), bread()))
	require.NoError(t, err)

	assert.True(t, res.IsValid)
	assert.Empty(t, res.Issues)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 2, res.ValidatedItems)
	assert.Zero(t, res.InvalidItems)
}

func TestVerbWithGender(t *testing.T) {
	v := newValidator(t, validate.DefaultConfig())
	eat := item("e1", "essen", "ям", "Wir essen Brot.", "Ние ядем хляб.")
	eat.PartOfSpeech = vocabulary.Verb
	c := collection(apple(), eat)

	res, err := v.Validate(context.Background(), c)
	require.NoError(t, err)
	require.False(t, res.IsValid)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, validate.TypeLogic, res.Issues[0].Type)
	assert.Equal(t, validate.RuleVerbGender, res.Issues[0].Rule)
	assert.Equal(t, "e1", res.Issues[0].ID)
	assert.Equal(t, 1, res.Issues[0].Index)

	out, err := v.ValidateAndFix(context.Background(), c)
	require.NoError(t, err)
	assert.True(t, out.After.IsValid)
	assert.Equal(t, 1, out.Fixed)
	assert.Nil(t, c.Items[1].Grammar)
	assert.Equal(t, vocabulary.Verb, c.Items[1].PartOfSpeech)
	assert.True(t, c.UpdatedAt.Time.Equal(now.Time))
}

func TestGrammarSubfieldDropped(t *testing.T) {
	v := newValidator(t, validate.DefaultConfig())
	house := item("h1", "Haus", "къща", "Das Haus ist groß.", "Къщата е голяма.")
	house.Grammar = &vocabulary.Grammar{Gender: vocabulary.Neuter, VerbAspect: vocabulary.Perfective}
	c := collection(house)

	out, err := v.ValidateAndFix(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, []validate.Rule{validate.RuleAspectWithoutVerb}, rules(out.Before.Issues))
	require.NotNil(t, c.Items[0].Grammar)
	assert.Equal(t, vocabulary.Neuter, c.Items[0].Grammar.Gender)
	assert.Empty(t, c.Items[0].Grammar.VerbAspect)
}

func TestDifficultyClamp(t *testing.T) {
	v := newValidator(t, validate.DefaultConfig())
	hard := apple()
	hard.Difficulty = 7
	easy := bread()
	easy.Difficulty = 0
	c := collection(hard, easy)

	out, err := v.ValidateAndFix(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, []validate.Rule{validate.RuleDifficultyRange, validate.RuleDifficultyRange}, rules(out.Before.Issues))
	assert.Equal(t, 5, c.Items[0].Difficulty)
	assert.Equal(t, 1, c.Items[1].Difficulty)
	assert.Equal(t, [2]int{1, 5}, c.DifficultyRange)
	assert.True(t, out.After.IsValid)
}

func TestDuplicateIDs(t *testing.T) {
	v := newValidator(t, validate.DefaultConfig())
	second := bread()
	second.ID = "a1"
	c := collection(apple(), second)

	out, err := v.ValidateAndFix(context.Background(), c)
	require.NoError(t, err)

	require.Len(t, out.Before.Issues, 1)
	issue := out.Before.Issues[0]
	assert.Equal(t, validate.TypeDuplicateID, issue.Type)
	assert.Equal(t, validate.SeverityCritical, issue.Severity)
	assert.Equal(t, 1, issue.Index)

	assert.Equal(t, "a1", c.Items[0].ID)
	assert.Equal(t, "fixed-1", c.Items[1].ID)
	assert.True(t, out.After.IsValid)
}

func TestDuplicateIDWithDanglingPartner(t *testing.T) {
	v := newValidator(t, validate.DefaultConfig())
	second := bread()
	second.ID = "a1"
	second.Grammar = &vocabulary.Grammar{Gender: vocabulary.Masculine, VerbPartnerID: "missing"}
	c := collection(apple(), second)

	out, err := v.ValidateAndFix(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, []validate.Rule{validate.RuleDuplicateID, validate.RuleVerbPartner}, rules(out.Before.Issues))
	assert.Equal(t, 2, out.Fixed)
	assert.Equal(t, "fixed-1", c.Items[1].ID)
	require.NotNil(t, c.Items[1].Grammar)
	assert.Empty(t, c.Items[1].Grammar.VerbPartnerID)
	assert.Equal(t, vocabulary.Masculine, c.Items[1].Grammar.Gender)
	assert.True(t, out.After.IsValid)
	assert.Empty(t, out.After.Issues)
}

func TestNounGrammarOnOtherParts(t *testing.T) {
	tests := []struct {
		pos vocabulary.PartOfSpeech
	}{
		{vocabulary.Adverb},
		{vocabulary.Adjective},
		{vocabulary.Pronoun},
		{vocabulary.Preposition},
	}

	for _, tt := range tests {
		t.Run(string(tt.pos), func(t *testing.T) {
			v := newValidator(t, validate.DefaultConfig())
			r := item("x1", "heute", "днес", "Heute ist es kalt.", "Днес е студено.")
			r.PartOfSpeech = tt.pos
			r.Grammar = &vocabulary.Grammar{Gender: vocabulary.Feminine, PluralForm: "Äpfel"}
			c := collection(r)

			out, err := v.ValidateAndFix(context.Background(), c)
			require.NoError(t, err)

			assert.False(t, out.Before.IsValid)
			assert.Equal(t, []validate.Rule{validate.RuleGenderWithoutNoun, validate.RulePluralWithoutNoun}, rules(out.Before.Issues))
			assert.Equal(t, validate.TypeLogic, out.Before.Issues[0].Type)
			assert.Equal(t, 2, out.Fixed)
			assert.Nil(t, c.Items[0].Grammar)
			assert.Equal(t, tt.pos, c.Items[0].PartOfSpeech)
			assert.True(t, out.After.IsValid)
		})
	}
}

func TestDanglingVerbPartner(t *testing.T) {
	v := newValidator(t, validate.DefaultConfig())
	buy := item("v1", "kaufen", "купувам", "Ich kaufe Brot.", "Купувам хляб.")
	buy.PartOfSpeech = vocabulary.Verb
	buy.Grammar = &vocabulary.Grammar{VerbAspect: vocabulary.Imperfective, VerbPartnerID: "v2"}
	sell := item("v3", "verkaufen", "продавам", "Sie verkaufen Obst.", "Те продават плодове.")
	sell.PartOfSpeech = vocabulary.Verb
	sell.Grammar = &vocabulary.Grammar{VerbPartnerID: "v4"}
	c := collection(buy, sell)

	out, err := v.ValidateAndFix(context.Background(), c)
	require.NoError(t, err)

	require.Len(t, out.Before.Issues, 2)
	assert.Equal(t, validate.TypeBrokenReference, out.Before.Issues[0].Type)
	assert.Equal(t, validate.SeverityHigh, out.Before.Issues[0].Severity)

	require.NotNil(t, c.Items[0].Grammar)
	assert.Empty(t, c.Items[0].Grammar.VerbPartnerID)
	assert.Equal(t, vocabulary.Imperfective, c.Items[0].Grammar.VerbAspect)
	assert.Nil(t, c.Items[1].Grammar)
	assert.True(t, out.After.IsValid)
}

func TestVerbPartnerResolves(t *testing.T) {
	v := newValidator(t, validate.DefaultConfig())
	buy := item("v1", "kaufen", "купувам", "Ich kaufe Brot.", "Купувам хляб.")
	buy.PartOfSpeech = vocabulary.Verb
	buy.Grammar = &vocabulary.Grammar{VerbAspect: vocabulary.Imperfective, VerbPartnerID: "v2"}
	bought := item("v2", "kaufen", "купя", "Ich will Brot kaufen.", "Искам да купя хляб.")
	bought.PartOfSpeech = vocabulary.Verb
	bought.Grammar = &vocabulary.Grammar{VerbAspect: vocabulary.Perfective, VerbPartnerID: "v1"}

	res, err := v.Validate(context.Background(), collection(buy, bought))
	require.NoError(t, err)
	assert.True(t, res.IsValid)
}

func TestTimestampsAndMetadata(t *testing.T) {
	v := newValidator(t, validate.DefaultConfig())
	r := apple()
	r.CreatedAt = utc.New(created.Time.Add(time.Hour))
	r.Metadata.Frequency = 250
	r.Metadata.LearningPhase = -1
	c := collection(r)

	out, err := v.ValidateAndFix(context.Background(), c)
	require.NoError(t, err)

	assert.ElementsMatch(t, []validate.Rule{
		validate.RuleFrequencyRange, validate.RuleLearningPhaseRange, validate.RuleCreatedAfterUpdate,
	}, rules(out.Before.Issues))
	assert.True(t, c.Items[0].CreatedAt.Time.Equal(c.Items[0].UpdatedAt.Time))
	assert.Equal(t, vocabulary.MaxFrequency, c.Items[0].Metadata.Frequency)
	assert.Equal(t, vocabulary.MinLearningPhase, c.Items[0].Metadata.LearningPhase)
	assert.True(t, out.After.IsValid)
}

func TestCreatedInFutureIsWarning(t *testing.T) {
	v := newValidator(t, validate.DefaultConfig())
	r := apple()
	r.CreatedAt = utc.New(now.Time.Add(24 * time.Hour))
	r.UpdatedAt = r.CreatedAt

	res, err := v.Validate(context.Background(), collection(r))
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.Contains(t, rules(res.Warnings), validate.RuleCreatedInFuture)
}

func TestMissingOptional(t *testing.T) {
	r := apple()
	r.CreatedAt = utc.Time{}
	r.Version = 0

	strict := newValidator(t, validate.DefaultConfig())
	out, err := strict.ValidateAndFix(context.Background(), collection(r))
	require.NoError(t, err)
	assert.ElementsMatch(t, []validate.Rule{validate.RuleMissingTimestamps, validate.RuleInvalidVersion}, rules(out.Before.Issues))
	assert.True(t, out.After.IsValid)
	fixed := out.Collection.Items[0]
	assert.True(t, fixed.CreatedAt.Time.Equal(created.Time))
	assert.Equal(t, vocabulary.CanonicalVersion, fixed.Version)

	cfg := validate.DefaultConfig()
	cfg.AllowMissingOptional = true
	res, err := newValidator(t, cfg).Validate(context.Background(), collection(r))
	require.NoError(t, err)
	assert.True(t, res.IsValid)
}

func TestSchemaIssues(t *testing.T) {
	v := newValidator(t, validate.DefaultConfig())
	r := apple()
	r.PartOfSpeech = "Noun "
	r.Metadata.Level = "a2"
	r.Examples = append(r.Examples, vocabulary.Example{SourceTerm: "Ein Apfel."})
	c := collection(r)

	out, err := v.ValidateAndFix(context.Background(), c)
	require.NoError(t, err)

	assert.ElementsMatch(t, []validate.Rule{
		validate.RuleInvalidPOS, validate.RuleInvalidLevel, validate.RuleIncompleteExample,
	}, rules(out.Before.Issues))
	assert.Equal(t, vocabulary.Noun, c.Items[0].PartOfSpeech)
	assert.Equal(t, vocabulary.LevelA2, c.Items[0].Metadata.Level)
	assert.Len(t, c.Items[0].Examples, 1)
	assert.True(t, out.After.IsValid)
}

func TestContentWarnings(t *testing.T) {
	bare := vocabulary.Record{
		ID: "w1", SourceTerm: "Wasser", TargetTerm: "вода", PartOfSpeech: vocabulary.Noun,
		Difficulty: 1, Categories: []vocabulary.Category{"food"},
		CreatedAt: created, UpdatedAt: created, Version: 1,
	}

	res, err := newValidator(t, validate.DefaultConfig()).Validate(context.Background(), collection(bare))
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.ElementsMatch(t, []validate.Rule{
		validate.RuleFewExamples, validate.RuleNoNotes, validate.RuleNoEtymology, validate.RuleNoGrammar,
	}, rules(res.Warnings))

	cfg := validate.DefaultConfig()
	cfg.ValidateContentQuality = false
	res, err = newValidator(t, cfg).Validate(context.Background(), collection(bare))
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
}

func TestShortNotesAndIrrelevantExample(t *testing.T) {
	r := apple()
	r.Notes = &vocabulary.Notes{General: "fruit"}
	r.Examples = []vocabulary.Example{{SourceTerm: "Der Hund bellt.", TargetTerm: "Кучето лае."}}

	res, err := newValidator(t, validate.DefaultConfig()).Validate(context.Background(), collection(r))
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.ElementsMatch(t, []validate.Rule{validate.RuleShortNotes, validate.RuleIrrelevantExample}, rules(res.Warnings))
}

func TestUnresolvedTermIsWarning(t *testing.T) {
	r := apple()
	r.SourceTerm = vocabulary.Unresolved

	res, err := newValidator(t, validate.DefaultConfig()).Validate(context.Background(), collection(r))
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.Equal(t, []validate.Rule{validate.RuleUnresolvedTerm}, rules(res.Warnings))
}

func TestCategoryChecks(t *testing.T) {
	v := newValidator(t, validate.DefaultConfig())

	fruit := apple()
	fruit.Categories = []vocabulary.Category{"Fruit"}
	none := bread()
	none.Categories = nil
	orphan := item("o1", "Birne", "круша", "Die Birne ist süß.", "Крушата е сладка.")
	orphan.Categories = []vocabulary.Category{"fruits", vocabulary.Uncategorized}
	c := collection(fruit, none, orphan)

	out, err := v.ValidateAndFix(context.Background(), c)
	require.NoError(t, err)

	assert.ElementsMatch(t, []validate.Rule{validate.RuleUnknownCategory, validate.RuleNoCategories}, rules(out.Before.Issues))
	assert.ElementsMatch(t, []validate.Rule{validate.RuleMixedUncategorized, validate.RuleMissingParent}, rules(out.Before.Warnings))
	assert.Equal(t, []vocabulary.Category{"food", "fruits"}, c.Items[0].Categories)
	assert.Equal(t, []vocabulary.Category{vocabulary.Uncategorized}, c.Items[1].Categories)
	assert.True(t, out.After.IsValid)
}

func TestCollectionChecks(t *testing.T) {
	v := newValidator(t, validate.DefaultConfig())
	c := collection(apple(), bread())
	c.ID = "not-a-uuid"
	c.LanguagePair = "de-en"
	c.ItemCount = 5
	c.DifficultyRange = [2]int{1, 4}
	c.Categories = []vocabulary.Category{"food", "colors"}
	c.Statistics.ByPartOfSpeech[vocabulary.Noun] = 7

	res, err := v.Validate(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Zero(t, res.InvalidItems)
	assert.ElementsMatch(t, []validate.Rule{
		validate.RuleCollectionID, validate.RuleLanguagePair, validate.RuleItemCount,
	}, rules(res.Issues))
	assert.ElementsMatch(t, []validate.Rule{
		validate.RuleDifficultyBounds, validate.RuleUnusedCategory, validate.RulePOSStatistics,
	}, rules(res.Warnings))

	out, err := v.ValidateAndFix(context.Background(), c)
	require.NoError(t, err)
	assert.True(t, out.After.IsValid)
	assert.Empty(t, out.After.Warnings)
	assert.NotEqual(t, "not-a-uuid", c.ID)
	assert.Equal(t, vocabulary.GermanBulgarian, c.LanguagePair)
	assert.Equal(t, 2, c.ItemCount)
}

func TestCollectionNameIsNotFixable(t *testing.T) {
	v := newValidator(t, validate.DefaultConfig())
	c := collection(apple())
	c.Name = "ab"

	out, err := v.ValidateAndFix(context.Background(), c)
	require.NoError(t, err)
	assert.Zero(t, out.Fixed)
	assert.False(t, out.After.IsValid)
	assert.Equal(t, []validate.Rule{validate.RuleCollectionName}, rules(out.After.Issues))
	assert.Equal(t, validate.SeverityCritical, out.After.Issues[0].Severity)
}

func TestValidCollectionIsUntouched(t *testing.T) {
	v := newValidator(t, validate.DefaultConfig())
	c := collection(apple())

	out, err := v.ValidateAndFix(context.Background(), c)
	require.NoError(t, err)
	assert.Zero(t, out.Fixed)
	assert.Same(t, out.Before, out.After)
	assert.True(t, c.UpdatedAt.Time.Equal(created.Time))
}

func TestFixSkipsStaleIssues(t *testing.T) {
	v := newValidator(t, validate.DefaultConfig())
	c := collection(apple())

	fixed, err := v.Fix(context.Background(), c, []validate.Issue{
		{ID: "other", Index: 0, Rule: validate.RuleDifficultyRange},
		{ID: "a1", Index: 3, Rule: validate.RuleDifficultyRange},
		{ID: "a1", Index: 0, Rule: validate.RuleEmptyGrammar},
	})
	require.NoError(t, err)
	assert.Zero(t, fixed)
}

func TestReport(t *testing.T) {
	res := &validate.Result{
		ValidatedItems: 4,
		InvalidItems:   1,
		Issues: []validate.Issue{
			{Severity: validate.SeverityCritical},
			{Severity: validate.SeverityHigh},
			{Severity: validate.SeverityHigh},
		},
		Warnings: []validate.Issue{
			{Severity: validate.SeverityMedium},
			{Severity: validate.SeverityLow},
		},
	}

	report := validate.NewReport(res, "German-Bulgarian", now)

	assert.Equal(t, 75.0, report.PassRate)
	assert.Equal(t, 3, report.VerifiedItems)
	assert.Equal(t, 1, report.Summary.CriticalIssues)
	assert.Equal(t, 2, report.Summary.HighIssues)
	assert.Equal(t, 1, report.Summary.MediumWarnings)
	assert.Equal(t, 1, report.Summary.LowWarnings)
	assert.Equal(t, "German-Bulgarian", report.Summary.CollectionName)
	assert.Contains(t, report.String(), "3 verified of 4 (75.00%)")

	empty := validate.NewReport(&validate.Result{}, "", now)
	assert.Equal(t, 100.0, empty.PassRate)

	third := validate.NewReport(&validate.Result{ValidatedItems: 3, InvalidItems: 1}, "", now)
	assert.Equal(t, 66.67, third.PassRate)
}

func TestErrors(t *testing.T) {
	v := newValidator(t, validate.DefaultConfig())

	_, err := v.Validate(context.Background(), nil)
	assert.True(t, pkgerrors.IsValidationError(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = v.Validate(ctx, collection(apple()))
	assert.True(t, pkgerrors.IsCanceled(err))

	cfg := validate.DefaultConfig()
	cfg.MinExamples = -1
	_, err = validate.New(cfg)
	assert.True(t, pkgerrors.IsConfigError(err))

	_, err = validate.New(validate.DefaultConfig(), validate.WithClock(nil))
	assert.True(t, pkgerrors.IsValidationError(err))
}
