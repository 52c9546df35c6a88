package validate

import (
	"context"
	"slices"
	"strings"

	"github.com/agentstation/vocab/pkg/categories"
	"github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/logging"
	"github.com/agentstation/vocab/pkg/vocabulary"
)

// FixedPrefix starts ids assigned to records whose id was missing or
// duplicated.
const FixedPrefix = "fixed"

// Outcome is the result of ValidateAndFix.
type Outcome struct {
	Collection *vocabulary.Collection `json:"collection" yaml:"collection"`
	// Before is the first validation pass. After equals Before when no
	// repair was needed.
	Before *Result `json:"before" yaml:"before"`
	After  *Result `json:"after" yaml:"after"`
	// Fixed counts the issues repaired.
	Fixed  int    `json:"fixed" yaml:"fixed"`
	Report Report `json:"report" yaml:"report"`
}

// ValidateAndFix validates c, repairs it in place when invalid, recomputes
// its declared fields and validates it again.
func (v *Validator) ValidateAndFix(ctx context.Context, c *vocabulary.Collection) (*Outcome, error) {
	before, err := v.Validate(ctx, c)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Collection: c, Before: before, After: before}

	if !before.IsValid {
		fixed, err := v.Fix(ctx, c, before.Issues)
		if err != nil {
			return nil, err
		}
		c.Recompute()
		after, err := v.Validate(ctx, c)
		if err != nil {
			return nil, err
		}
		out.Fixed, out.After = fixed, after
	}

	out.Report = NewReport(out.After, c.Name, v.clock())
	return out, nil
}

// Fix repairs c in place for every issue it knows a rule for and returns
// how many were repaired. Item issues whose id does not match the item at
// their index, as it was before any repair, are skipped.
func (v *Validator) Fix(ctx context.Context, c *vocabulary.Collection, issues []Issue) (int, error) {
	if c == nil {
		return 0, &errors.ValidationError{Field: "collection", Message: "cannot be nil"}
	}
	if err := ctx.Err(); err != nil {
		return 0, errors.WrapCanceled("validate", err)
	}
	logger := logging.FromContext(logging.WithStage(ctx, "fix"))

	ids := make(map[string]bool, len(c.Items))
	validated := make([]string, len(c.Items))
	for i, r := range c.Items {
		ids[r.ID] = true
		validated[i] = r.ID
	}

	fixed := 0
	for _, issue := range issues {
		var ok bool
		if issue.Index == CollectionIndex {
			ok = v.fixCollection(c, issue)
		} else {
			ok = v.fixItem(c, issue, validated, ids)
		}
		if ok {
			fixed++
			continue
		}
		logger.Debug().
			Str("id", issue.ID).
			Str("rule", string(issue.Rule)).
			Msg("No automatic fix")
	}
	if fixed > 0 {
		c.UpdatedAt = v.clock()
	}

	logger.Info().
		Int("issues", len(issues)).
		Int("fixed", fixed).
		Msg("Applied fixes")
	return fixed, nil
}

// fixItem repairs the item at issue.Index. validated holds the item ids
// the issues were reported against, so a renamed item still receives the
// rest of its fixes.
func (v *Validator) fixItem(c *vocabulary.Collection, issue Issue, validated []string, ids map[string]bool) bool {
	if issue.Index < 0 || issue.Index >= len(c.Items) {
		return false
	}
	if validated[issue.Index] != issue.ID {
		return false
	}
	r := &c.Items[issue.Index]

	switch issue.Rule {
	case RuleMissingID, RuleDuplicateID:
		r.ID = v.freshID(ids)
	case RuleVerbPartner:
		return clearGrammar(r, func(g *vocabulary.Grammar) { g.VerbPartnerID = "" })
	case RuleVerbGender, RuleGenderWithoutNoun, RuleInvalidGender:
		return clearGrammar(r, func(g *vocabulary.Grammar) { g.Gender = "" })
	case RuleVerbPlural, RulePluralWithoutNoun:
		return clearGrammar(r, func(g *vocabulary.Grammar) { g.PluralForm = "" })
	case RuleAspectWithoutVerb, RuleInvalidAspect:
		return clearGrammar(r, func(g *vocabulary.Grammar) { g.VerbAspect = "" })
	case RuleInvalidPOS:
		p, ok := vocabulary.ParsePartOfSpeech(string(r.PartOfSpeech))
		if !ok {
			p = vocabulary.Noun
		}
		r.PartOfSpeech = p
	case RuleInvalidLevel:
		r.Metadata.Level = vocabulary.LanguageLevel(strings.ToUpper(strings.TrimSpace(string(r.Metadata.Level))))
		if !slices.Contains(vocabulary.Levels, r.Metadata.Level) {
			r.Metadata.Level = ""
		}
	case RuleIncompleteExample:
		r.Examples = slices.DeleteFunc(r.Examples, func(ex vocabulary.Example) bool {
			return strings.TrimSpace(ex.SourceTerm) == "" || strings.TrimSpace(ex.TargetTerm) == ""
		})
	case RuleDifficultyRange:
		r.Difficulty = clamp(r.Difficulty, vocabulary.MinDifficulty, vocabulary.MaxDifficulty)
	case RuleNoCategories, RuleUnknownCategory:
		r.Categories = categories.ConsolidateLabels(r.Categories, v.cfg.Categories)
	case RuleFrequencyRange:
		r.Metadata.Frequency = clamp(r.Metadata.Frequency, vocabulary.MinFrequency, vocabulary.MaxFrequency)
	case RuleLearningPhaseRange:
		r.Metadata.LearningPhase = clamp(r.Metadata.LearningPhase, vocabulary.MinLearningPhase, vocabulary.MaxLearningPhase)
	case RuleCreatedAfterUpdate:
		r.CreatedAt = r.UpdatedAt
	case RuleMissingTimestamps:
		if r.UpdatedAt.Time.IsZero() {
			r.UpdatedAt = v.clock()
		}
		if r.CreatedAt.Time.IsZero() {
			r.CreatedAt = r.UpdatedAt
		}
	case RuleInvalidVersion:
		r.Version = vocabulary.CanonicalVersion
	default:
		return false
	}
	return true
}

func (v *Validator) fixCollection(c *vocabulary.Collection, issue Issue) bool {
	switch issue.Rule {
	case RuleItemCount:
		c.ItemCount = len(c.Items)
	case RuleCollectionID:
		c.ID = v.ids.NewID("")
	case RuleLanguagePair:
		c.LanguagePair = vocabulary.GermanBulgarian
	default:
		return false
	}
	return true
}

// freshID returns an id not in ids and records it.
func (v *Validator) freshID(ids map[string]bool) string {
	for {
		id := v.ids.NewID(FixedPrefix)
		if !ids[id] {
			ids[id] = true
			return id
		}
	}
}

// clearGrammar applies drop to r's grammar and removes the bundle when
// nothing is left.
func clearGrammar(r *vocabulary.Record, drop func(g *vocabulary.Grammar)) bool {
	if r.Grammar == nil {
		return false
	}
	drop(r.Grammar)
	if r.Grammar.IsEmpty() {
		r.Grammar = nil
	}
	return true
}

func clamp(n, lo, hi int) int {
	return min(max(n, lo), hi)
}
