package validate

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/agentstation/vocab/pkg/vocabulary"
)

// Collection name and description bounds, in runes.
const (
	MinNameLength        = 3
	MaxNameLength        = 100
	MinDescriptionLength = 10
	MaxDescriptionLength = 1000
)

// checkCollection runs the checks that span items or concern the
// collection envelope.
func (v *Validator) checkCollection(c *vocabulary.Collection) []Issue {
	f := &findings{id: c.ID, index: CollectionIndex}
	v.checkEnvelope(f, c)

	var itemIssues []Issue
	if v.cfg.ValidateIDUniqueness {
		itemIssues = append(itemIssues, duplicateIDs(c.Items)...)
	}
	if v.cfg.ValidateReferences {
		itemIssues = append(itemIssues, brokenReferences(c.Items)...)
	}

	checkDeclared(f, c)
	return append(itemIssues, f.list...)
}

func (v *Validator) checkEnvelope(f *findings, c *vocabulary.Collection) {
	if _, err := uuid.Parse(c.ID); err != nil {
		f.add(TypeCollectionSchema, RuleCollectionID, SeverityCritical,
			"Collection schema validation failed: id - must be a UUID",
			map[string]any{"id": c.ID})
	}
	if n := utf8.RuneCountInString(c.Name); n < MinNameLength || n > MaxNameLength {
		f.add(TypeCollectionSchema, RuleCollectionName, SeverityCritical,
			fmt.Sprintf("Collection schema validation failed: name - length must be %d-%d", MinNameLength, MaxNameLength),
			map[string]any{"length": n})
	}
	if n := utf8.RuneCountInString(c.Description); n < MinDescriptionLength || n > MaxDescriptionLength {
		f.add(TypeCollectionSchema, RuleDescription, SeverityCritical,
			fmt.Sprintf("Collection schema validation failed: description - length must be %d-%d", MinDescriptionLength, MaxDescriptionLength),
			map[string]any{"length": n})
	}
	if !c.LanguagePair.IsValid() {
		f.add(TypeCollectionSchema, RuleLanguagePair, SeverityCritical,
			fmt.Sprintf("Collection schema validation failed: languagePair - invalid value %q", c.LanguagePair),
			map[string]any{"languagePair": string(c.LanguagePair)})
	}
}

// duplicateIDs reports every occurrence of an id after its first.
func duplicateIDs(items []vocabulary.Record) []Issue {
	counts := make(map[string]int, len(items))
	for _, r := range items {
		counts[r.ID]++
	}

	var out []Issue
	seen := make(map[string]bool, len(items))
	for i, r := range items {
		if r.ID == "" {
			continue
		}
		if !seen[r.ID] {
			seen[r.ID] = true
			continue
		}
		out = append(out, Issue{
			ID:       r.ID,
			Index:    i,
			Type:     TypeDuplicateID,
			Rule:     RuleDuplicateID,
			Message:  fmt.Sprintf("ID %q appears %d times in the collection", r.ID, counts[r.ID]),
			Severity: SeverityCritical,
			Data:     map[string]any{"occurrences": counts[r.ID]},
		})
	}
	return out
}

// brokenReferences reports verb partner ids that match no item.
func brokenReferences(items []vocabulary.Record) []Issue {
	ids := make(map[string]bool, len(items))
	for _, r := range items {
		ids[r.ID] = true
	}

	var out []Issue
	for i, r := range items {
		if r.Grammar == nil || r.Grammar.VerbPartnerID == "" || ids[r.Grammar.VerbPartnerID] {
			continue
		}
		out = append(out, Issue{
			ID:       r.ID,
			Index:    i,
			Type:     TypeBrokenReference,
			Rule:     RuleVerbPartner,
			Message:  fmt.Sprintf("Verb partner reference %q does not exist", r.Grammar.VerbPartnerID),
			Severity: SeverityHigh,
			Data:     map[string]any{"referenceType": "verbPartnerId", "referenceId": r.Grammar.VerbPartnerID},
		})
	}
	return out
}

// checkDeclared compares the declared counts, range, categories and
// statistics with the items. Only the item count blocks validity.
func checkDeclared(f *findings, c *vocabulary.Collection) {
	if c.ItemCount != len(c.Items) {
		f.add(TypeCollection, RuleItemCount, SeverityHigh,
			fmt.Sprintf("Item count mismatch: declared %d, actual %d", c.ItemCount, len(c.Items)),
			map[string]any{"declared": c.ItemCount, "actual": len(c.Items)})
	}

	if len(c.Items) > 0 {
		actual := vocabulary.DifficultyBounds(c.Items)
		if actual != c.DifficultyRange {
			f.add(TypeCollectionWarning, RuleDifficultyBounds, SeverityMedium,
				fmt.Sprintf("Difficulty range mismatch: declared [%d, %d], actual [%d, %d]",
					c.DifficultyRange[0], c.DifficultyRange[1], actual[0], actual[1]),
				map[string]any{"declared": c.DifficultyRange, "actual": actual})
		}
	}

	used := vocabulary.UsedCategories(c.Items)
	var missing, extra []string
	for _, cat := range used {
		if !slices.Contains(c.Categories, cat) {
			missing = append(missing, string(cat))
		}
	}
	for _, cat := range c.Categories {
		if !slices.Contains(used, cat) {
			extra = append(extra, string(cat))
		}
	}
	if len(missing) > 0 {
		f.add(TypeCollectionWarning, RuleUndeclaredCategory, SeverityMedium,
			fmt.Sprintf("Collection is missing %d categories in declaration: %s", len(missing), strings.Join(missing, ", ")),
			map[string]any{"categories": missing})
	}
	if len(extra) > 0 {
		f.add(TypeCollectionWarning, RuleUnusedCategory, SeverityLow,
			fmt.Sprintf("Collection declares %d categories not used in items: %s", len(extra), strings.Join(extra, ", ")),
			map[string]any{"categories": extra})
	}

	stats := vocabulary.ComputeStatistics(c.Items)
	for _, pos := range vocabulary.PartsOfSpeech {
		declared, ok := c.Statistics.ByPartOfSpeech[pos]
		if ok && declared != stats.ByPartOfSpeech[pos] {
			f.add(TypeStatisticsWarning, RulePOSStatistics, SeverityMedium,
				fmt.Sprintf("Part of speech statistics mismatch for %q: declared %d, actual %d", pos, declared, stats.ByPartOfSpeech[pos]),
				map[string]any{"partOfSpeech": string(pos), "declared": declared, "actual": stats.ByPartOfSpeech[pos]})
		}
	}
	for d := vocabulary.MinDifficulty; d <= vocabulary.MaxDifficulty; d++ {
		declared, ok := c.Statistics.ByDifficulty[d]
		if ok && declared != stats.ByDifficulty[d] {
			f.add(TypeStatisticsWarning, RuleDifficultyStats, SeverityMedium,
				fmt.Sprintf("Difficulty statistics mismatch for level %d: declared %d, actual %d", d, declared, stats.ByDifficulty[d]),
				map[string]any{"difficulty": d, "declared": declared, "actual": stats.ByDifficulty[d]})
		}
	}
}
