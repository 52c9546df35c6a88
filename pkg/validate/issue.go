package validate

// Severity ranks an issue. Critical and high findings make a collection
// invalid; medium and low findings are reported as warnings.
type Severity string

// Severities.
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Severities lists every severity from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// IssueType groups issues by the check that raised them.
type IssueType string

// Issue types.
const (
	TypeSchema            IssueType = "schema_validation"
	TypeCollectionSchema  IssueType = "collection_schema_validation"
	TypeContentQuality    IssueType = "content_quality"
	TypeExampleQuality    IssueType = "example_quality"
	TypeGrammarQuality    IssueType = "grammar_quality"
	TypeLogic             IssueType = "logic_error"
	TypeCategoryWarning   IssueType = "category_warning"
	TypeExampleRelevance  IssueType = "example_relevance"
	TypeMetadata          IssueType = "metadata_error"
	TypeTimestamp         IssueType = "timestamp_error"
	TypeTimestampWarning  IssueType = "timestamp_warning"
	TypeUnresolvedTerm    IssueType = "unresolved_term"
	TypeDuplicateID       IssueType = "duplicate_id"
	TypeBrokenReference   IssueType = "broken_reference"
	TypeCollection        IssueType = "collection_error"
	TypeCollectionWarning IssueType = "collection_warning"
	TypeStatisticsWarning IssueType = "statistics_warning"
)

// Rule identifies the exact check within an issue type. Fix dispatches on
// it.
type Rule string

// Rules.
const (
	RuleMissingID          Rule = "missing_id"
	RuleMissingTerm        Rule = "missing_term"
	RuleInvalidPOS         Rule = "invalid_part_of_speech"
	RuleInvalidGender      Rule = "invalid_gender"
	RuleInvalidAspect      Rule = "invalid_verb_aspect"
	RuleInvalidLevel       Rule = "invalid_level"
	RuleIncompleteExample  Rule = "incomplete_example"
	RuleMissingTimestamps  Rule = "missing_timestamps"
	RuleInvalidVersion     Rule = "invalid_version"
	RuleVerbGender         Rule = "verb_gender"
	RuleVerbPlural         Rule = "verb_plural"
	RuleAspectWithoutVerb  Rule = "aspect_without_verb"
	RuleGenderWithoutNoun  Rule = "gender_without_noun"
	RulePluralWithoutNoun  Rule = "plural_without_noun"
	RuleDifficultyRange    Rule = "difficulty_range"
	RuleNoCategories       Rule = "no_categories"
	RuleUnknownCategory    Rule = "unknown_category"
	RuleMixedUncategorized Rule = "mixed_uncategorized"
	RuleMissingParent      Rule = "missing_parent_category"
	RuleFrequencyRange     Rule = "frequency_range"
	RuleLearningPhaseRange Rule = "learning_phase_range"
	RuleCreatedAfterUpdate Rule = "created_after_updated"
	RuleCreatedInFuture    Rule = "created_in_future"
	RuleFewExamples        Rule = "few_examples"
	RuleShortExample       Rule = "short_example"
	RuleNoNotes            Rule = "no_notes"
	RuleShortNotes         Rule = "short_notes"
	RuleNoEtymology        Rule = "no_etymology"
	RuleNoGrammar          Rule = "no_grammar"
	RuleEmptyGrammar       Rule = "empty_grammar"
	RuleIrrelevantExample  Rule = "irrelevant_example"
	RuleUnresolvedTerm     Rule = "unresolved_term"
	RuleDuplicateID        Rule = "duplicate_id"
	RuleVerbPartner        Rule = "verb_partner"
	RuleItemCount          Rule = "item_count"
	RuleDifficultyBounds   Rule = "difficulty_bounds"
	RuleUndeclaredCategory Rule = "undeclared_category"
	RuleUnusedCategory     Rule = "unused_category"
	RulePOSStatistics      Rule = "part_of_speech_statistics"
	RuleDifficultyStats    Rule = "difficulty_statistics"
	RuleCollectionID       Rule = "collection_id"
	RuleCollectionName     Rule = "collection_name"
	RuleDescription        Rule = "collection_description"
	RuleLanguagePair       Rule = "language_pair"
)

// CollectionIndex is the Index of issues about the collection itself.
const CollectionIndex = -1

// Issue is a single validation finding.
type Issue struct {
	// ID is the record id, or the collection id for collection issues.
	ID string `json:"id" yaml:"id"`
	// Index is the item position, or CollectionIndex.
	Index    int            `json:"index" yaml:"index"`
	Type     IssueType      `json:"type" yaml:"type"`
	Rule     Rule           `json:"rule" yaml:"rule"`
	Message  string         `json:"message" yaml:"message"`
	Severity Severity       `json:"severity" yaml:"severity"`
	Data     map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// Blocking reports whether the issue makes a collection invalid.
func (i Issue) Blocking() bool {
	return i.Severity == SeverityCritical || i.Severity == SeverityHigh
}

// findings collects issues for one item or the collection.
type findings struct {
	id    string
	index int
	list  []Issue
}

func (f *findings) add(t IssueType, rule Rule, sev Severity, msg string, data map[string]any) {
	f.list = append(f.list, Issue{
		ID:       f.id,
		Index:    f.index,
		Type:     t,
		Rule:     rule,
		Message:  msg,
		Severity: sev,
		Data:     data,
	})
}
