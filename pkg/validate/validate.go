// Package validate checks a unified collection against its structural and
// logical invariants and repairs what can be repaired deterministically.
package validate

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agentstation/utc"
	"github.com/sourcegraph/conc/iter"

	"github.com/agentstation/vocab/internal/idgen"
	"github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/logging"
	"github.com/agentstation/vocab/pkg/textnorm"
	"github.com/agentstation/vocab/pkg/vocabulary"
)

// minExampleLength is the shortest example text not flagged as incomplete.
const minExampleLength = 3

// Result is the outcome of a validation run. Issues make the collection
// invalid; warnings do not.
type Result struct {
	IsValid        bool    `json:"isValid" yaml:"isValid"`
	Issues         []Issue `json:"issues" yaml:"issues"`
	Warnings       []Issue `json:"warnings" yaml:"warnings"`
	ValidatedItems int     `json:"validatedItems" yaml:"validatedItems"`
	InvalidItems   int     `json:"invalidItems" yaml:"invalidItems"`
}

// Validator validates and repairs collections.
type Validator struct {
	cfg   Config
	ids   vocabulary.IDGenerator
	clock vocabulary.Clock
}

type options struct {
	ids   vocabulary.IDGenerator
	clock vocabulary.Clock
}

// Option configures a Validator.
type Option func(*options) error

func defaultOptions() *options {
	return &options{
		ids:   idgen.UUID{},
		clock: vocabulary.SystemClock,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithIDGenerator sets the generator used for replacement ids.
func WithIDGenerator(ids vocabulary.IDGenerator) Option {
	return func(o *options) error {
		if ids == nil {
			return &errors.ValidationError{Field: "ids", Message: "cannot be nil"}
		}
		o.ids = ids
		return nil
	}
}

// WithClock sets the clock used for future-timestamp checks and repairs.
func WithClock(clock vocabulary.Clock) Option {
	return func(o *options) error {
		if clock == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		o.clock = clock
		return nil
	}
}

// New creates a Validator. The configuration is validated first.
func New(cfg Config, opts ...Option) (*Validator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &Validator{cfg: cfg, ids: o.ids, clock: o.clock}, nil
}

// Validate runs every item and collection check against c.
func (v *Validator) Validate(ctx context.Context, c *vocabulary.Collection) (*Result, error) {
	if c == nil {
		return nil, &errors.ValidationError{Field: "collection", Message: "cannot be nil"}
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapCanceled("validate", err)
	}
	ctx = logging.WithStage(ctx, "validate")
	logger := logging.FromContext(ctx)
	start := time.Now()
	now := v.clock()

	idx := make([]int, len(c.Items))
	for i := range idx {
		idx[i] = i
	}
	perItem := iter.Map(idx, func(i *int) []Issue {
		return v.checkItem(*i, &c.Items[*i], now)
	})

	var all []Issue
	for _, list := range perItem {
		all = append(all, list...)
	}
	all = append(all, v.checkCollection(c)...)

	res := &Result{ValidatedItems: len(c.Items)}
	invalid := make(map[int]bool)
	for _, issue := range all {
		if !issue.Blocking() {
			res.Warnings = append(res.Warnings, issue)
			continue
		}
		res.Issues = append(res.Issues, issue)
		if issue.Index != CollectionIndex {
			invalid[issue.Index] = true
		}
	}
	res.InvalidItems = len(invalid)
	res.IsValid = len(res.Issues) == 0

	logger.Info().
		Int("items", res.ValidatedItems).
		Int("issues", len(res.Issues)).
		Int("warnings", len(res.Warnings)).
		Bool("valid", res.IsValid).
		Dur("duration", time.Since(start)).
		Msg("Validated collection")

	return res, nil
}

// checkItem runs the schema, content and logic checks for one record.
func (v *Validator) checkItem(i int, r *vocabulary.Record, now utc.Time) []Issue {
	f := &findings{id: r.ID, index: i}
	v.checkSchema(f, r)
	if v.cfg.ValidateContentQuality {
		v.checkContent(f, r)
	}
	v.checkLogic(f, r, now)
	return f.list
}

func (v *Validator) checkSchema(f *findings, r *vocabulary.Record) {
	if strings.TrimSpace(r.ID) == "" {
		f.add(TypeSchema, RuleMissingID, SeverityHigh, "Item has no id", nil)
	}
	for _, term := range []struct{ field, value string }{
		{"german", r.SourceTerm},
		{"bulgarian", r.TargetTerm},
	} {
		if strings.TrimSpace(term.value) == "" {
			f.add(TypeSchema, RuleMissingTerm, SeverityHigh,
				fmt.Sprintf("Schema validation failed: %s - required", term.field),
				map[string]any{"field": term.field})
		}
	}
	if !r.PartOfSpeech.IsValid() {
		f.add(TypeSchema, RuleInvalidPOS, SeverityHigh,
			fmt.Sprintf("Schema validation failed: partOfSpeech - invalid value %q", r.PartOfSpeech),
			map[string]any{"partOfSpeech": string(r.PartOfSpeech)})
	}
	if g := r.Grammar; g != nil {
		if g.Gender != "" && !g.Gender.IsValid() {
			f.add(TypeSchema, RuleInvalidGender, SeverityHigh,
				fmt.Sprintf("Schema validation failed: grammar.gender - invalid value %q", g.Gender),
				map[string]any{"gender": string(g.Gender)})
		}
		if g.VerbAspect != "" && !g.VerbAspect.IsValid() {
			f.add(TypeSchema, RuleInvalidAspect, SeverityHigh,
				fmt.Sprintf("Schema validation failed: grammar.verbAspect - invalid value %q", g.VerbAspect),
				map[string]any{"verbAspect": string(g.VerbAspect)})
		}
	}
	if l := r.Metadata.Level; l != "" && !slices.Contains(vocabulary.Levels, l) {
		f.add(TypeSchema, RuleInvalidLevel, SeverityHigh,
			fmt.Sprintf("Schema validation failed: metadata.level - invalid value %q", l),
			map[string]any{"level": string(l)})
	}
	for n, ex := range r.Examples {
		if strings.TrimSpace(ex.SourceTerm) == "" || strings.TrimSpace(ex.TargetTerm) == "" {
			f.add(TypeSchema, RuleIncompleteExample, SeverityHigh,
				fmt.Sprintf("Schema validation failed: examples.%d - both languages are required", n),
				map[string]any{"exampleIndex": n})
		}
	}
	if v.cfg.AllowMissingOptional {
		return
	}
	if r.CreatedAt.Time.IsZero() || r.UpdatedAt.Time.IsZero() {
		f.add(TypeSchema, RuleMissingTimestamps, SeverityHigh, "Schema validation failed: createdAt/updatedAt - required", nil)
	}
	if r.Version < vocabulary.CanonicalVersion {
		f.add(TypeSchema, RuleInvalidVersion, SeverityHigh,
			fmt.Sprintf("Schema validation failed: version - expected at least %d", vocabulary.CanonicalVersion),
			map[string]any{"version": r.Version})
	}
}

func (v *Validator) checkContent(f *findings, r *vocabulary.Record) {
	if n := len(r.Examples); n < v.cfg.MinExamples {
		f.add(TypeContentQuality, RuleFewExamples, SeverityMedium,
			fmt.Sprintf("Item has only %d examples, minimum recommended is %d", n, v.cfg.MinExamples),
			map[string]any{"exampleCount": n, "minExamples": v.cfg.MinExamples})
	}
	for n, ex := range r.Examples {
		if ex.SourceTerm != "" && utf8.RuneCountInString(strings.TrimSpace(ex.SourceTerm)) < minExampleLength {
			f.add(TypeExampleQuality, RuleShortExample, SeverityLow,
				fmt.Sprintf("Example %d has incomplete or very short German text", n+1),
				map[string]any{"exampleIndex": n, "language": "german"})
		}
		if ex.TargetTerm != "" && utf8.RuneCountInString(strings.TrimSpace(ex.TargetTerm)) < minExampleLength {
			f.add(TypeExampleQuality, RuleShortExample, SeverityLow,
				fmt.Sprintf("Example %d has incomplete or very short Bulgarian text", n+1),
				map[string]any{"exampleIndex": n, "language": "bulgarian"})
		}
	}

	if r.Notes.IsEmpty() {
		f.add(TypeContentQuality, RuleNoNotes, SeverityMedium, "Item has no notes at all", nil)
	} else {
		length := 0
		for _, t := range r.Notes.Texts() {
			length += utf8.RuneCountInString(t)
		}
		if length < v.cfg.MinNotesLength {
			f.add(TypeContentQuality, RuleShortNotes, SeverityMedium,
				fmt.Sprintf("Item has only %d characters of notes, minimum recommended is %d", length, v.cfg.MinNotesLength),
				map[string]any{"notesLength": length, "minNotesLength": v.cfg.MinNotesLength})
		}
	}

	if r.Etymology == "" {
		f.add(TypeContentQuality, RuleNoEtymology, SeverityLow, "Item has no etymology information", nil)
	}
	switch {
	case r.Grammar == nil:
		f.add(TypeContentQuality, RuleNoGrammar, SeverityMedium, "Item has no grammar information", nil)
	case r.Grammar.IsEmpty():
		f.add(TypeGrammarQuality, RuleEmptyGrammar, SeverityMedium, "Grammar information exists but contains no specific details", nil)
	}
}

func (v *Validator) checkLogic(f *findings, r *vocabulary.Record, now utc.Time) {
	if g := r.Grammar; g != nil {
		pos := string(r.PartOfSpeech)
		switch {
		case r.PartOfSpeech == vocabulary.Noun:
		case r.PartOfSpeech == vocabulary.Verb:
			if g.Gender != "" {
				f.add(TypeLogic, RuleVerbGender, SeverityHigh, "Verb has noun gender information in grammar",
					map[string]any{"partOfSpeech": pos, "gender": string(g.Gender)})
			}
			if g.PluralForm != "" {
				f.add(TypeLogic, RuleVerbPlural, SeverityHigh, "Verb has a plural form in grammar",
					map[string]any{"partOfSpeech": pos, "pluralForm": g.PluralForm})
			}
		default:
			if g.Gender != "" {
				f.add(TypeLogic, RuleGenderWithoutNoun, SeverityHigh,
					fmt.Sprintf("%s has noun gender information in grammar", titleCase(pos)),
					map[string]any{"partOfSpeech": pos, "gender": string(g.Gender)})
			}
			if g.PluralForm != "" {
				f.add(TypeLogic, RulePluralWithoutNoun, SeverityHigh,
					fmt.Sprintf("%s has a plural form in grammar", titleCase(pos)),
					map[string]any{"partOfSpeech": pos, "pluralForm": g.PluralForm})
			}
		}
		if r.PartOfSpeech != vocabulary.Verb && g.VerbAspect != "" {
			f.add(TypeLogic, RuleAspectWithoutVerb, SeverityHigh,
				fmt.Sprintf("%s has verb aspect information in grammar", titleCase(pos)),
				map[string]any{"partOfSpeech": pos, "verbAspect": string(g.VerbAspect)})
		}
	}

	if r.Difficulty < vocabulary.MinDifficulty || r.Difficulty > vocabulary.MaxDifficulty {
		f.add(TypeLogic, RuleDifficultyRange, SeverityHigh,
			fmt.Sprintf("Difficulty level %d is out of range (%d-%d)", r.Difficulty, vocabulary.MinDifficulty, vocabulary.MaxDifficulty),
			map[string]any{"difficulty": r.Difficulty})
	}

	v.checkCategories(f, r)

	if !r.IsUnresolved() {
		for n, ex := range r.Examples {
			inSource := textnorm.ContainsWordForm(ex.SourceTerm, r.SourceTerm, textnorm.German)
			inTarget := textnorm.ContainsWordForm(ex.TargetTerm, r.TargetTerm, textnorm.Bulgarian)
			if !inSource && !inTarget {
				f.add(TypeExampleRelevance, RuleIrrelevantExample, SeverityMedium,
					fmt.Sprintf("Example %d doesn't contain the vocabulary word in either language", n+1),
					map[string]any{"exampleIndex": n})
			}
		}
	} else {
		f.add(TypeUnresolvedTerm, RuleUnresolvedTerm, SeverityMedium,
			"Item has an unresolved term and needs manual review",
			map[string]any{"german": r.SourceTerm, "bulgarian": r.TargetTerm})
	}

	m := r.Metadata
	if m.Frequency != 0 && (m.Frequency < vocabulary.MinFrequency || m.Frequency > vocabulary.MaxFrequency) {
		f.add(TypeMetadata, RuleFrequencyRange, SeverityHigh,
			fmt.Sprintf("Frequency %d is out of range (%d-%d)", m.Frequency, vocabulary.MinFrequency, vocabulary.MaxFrequency),
			map[string]any{"frequency": m.Frequency})
	}
	if m.LearningPhase < vocabulary.MinLearningPhase || m.LearningPhase > vocabulary.MaxLearningPhase {
		f.add(TypeMetadata, RuleLearningPhaseRange, SeverityHigh,
			fmt.Sprintf("Learning phase %d is out of range (%d-%d)", m.LearningPhase, vocabulary.MinLearningPhase, vocabulary.MaxLearningPhase),
			map[string]any{"learningPhase": m.LearningPhase})
	}

	created, updated := r.CreatedAt.Time, r.UpdatedAt.Time
	if !created.IsZero() && !updated.IsZero() && created.After(updated) {
		f.add(TypeTimestamp, RuleCreatedAfterUpdate, SeverityHigh, "CreatedAt is after updatedAt",
			map[string]any{"createdAt": r.CreatedAt.String(), "updatedAt": r.UpdatedAt.String()})
	}
	if created.After(now.Time) {
		f.add(TypeTimestampWarning, RuleCreatedInFuture, SeverityMedium, "CreatedAt is in the future",
			map[string]any{"createdAt": r.CreatedAt.String()})
	}
}

func (v *Validator) checkCategories(f *findings, r *vocabulary.Record) {
	if len(r.Categories) == 0 {
		f.add(TypeLogic, RuleNoCategories, SeverityHigh, "Item has no categories", nil)
		return
	}

	tax := v.cfg.Categories.Taxonomy()
	var unknown []string
	for _, c := range r.Categories {
		if !tax.Known(c) {
			unknown = append(unknown, string(c))
		}
	}
	if len(unknown) > 0 {
		f.add(TypeLogic, RuleUnknownCategory, SeverityHigh,
			fmt.Sprintf("Item has categories outside the taxonomy: %s", strings.Join(unknown, ", ")),
			map[string]any{"categories": unknown})
	}

	if len(r.Categories) > 1 && slices.Contains(r.Categories, vocabulary.Uncategorized) {
		f.add(TypeCategoryWarning, RuleMixedUncategorized, SeverityMedium,
			`Item is categorized as "uncategorized" but has other categories too`, nil)
	}

	if !v.cfg.Categories.CreateParentCategories {
		return
	}
	var missing []string
	for _, c := range r.Categories {
		for _, p := range tax.Parents(c) {
			if !slices.Contains(r.Categories, p) && !slices.Contains(missing, string(p)) {
				missing = append(missing, string(p))
			}
		}
	}
	if len(missing) > 0 {
		f.add(TypeCategoryWarning, RuleMissingParent, SeverityMedium,
			fmt.Sprintf("Item is missing parent categories: %s", strings.Join(missing, ", ")),
			map[string]any{"missing": missing})
	}
}

func titleCase(s string) string {
	if s == "" {
		return "Item"
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + s[size:]
}
