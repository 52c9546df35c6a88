// Package dedupe detects duplicate vocabulary records and clusters them
// into groups for merging.
package dedupe

import (
	"unicode/utf8"

	"github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/quality"
	"github.com/agentstation/vocab/pkg/textnorm"
	"github.com/agentstation/vocab/pkg/vocabulary"
)

// Class describes how two records matched.
type Class string

// Match classes from strongest to weakest.
const (
	ClassNone        Class = "none"
	ClassExact       Class = "exact"
	ClassGrammatical Class = "grammatical"
	ClassSimilar     Class = "similar"
	ClassContent     Class = "content"
)

// strength orders classes so a group can report its weakest link.
func (c Class) strength() int {
	switch c {
	case ClassExact:
		return 4
	case ClassGrammatical:
		return 3
	case ClassSimilar:
		return 2
	case ClassContent:
		return 1
	}
	return 0
}

// Weaker returns the weaker of c and other.
func (c Class) Weaker(other Class) Class {
	if other.strength() < c.strength() {
		return other
	}
	return c
}

// Blend weights of the content score.
const (
	termWeight    = 0.7
	exampleWeight = 0.3
)

// grammaticalScore is reported for grammatical variants.
const grammaticalScore = 0.95

// Config tunes duplicate detection.
type Config struct {
	// SimilarityThreshold is the blended score a content match must reach.
	SimilarityThreshold float64 `yaml:"similarityThreshold" mapstructure:"similarity_threshold"`
	// MaxLevenshteinDistance is the edit distance that still earns the
	// near-match boost.
	MaxLevenshteinDistance int `yaml:"maxLevenshteinDistance" mapstructure:"max_levenshtein_distance"`
	// ConsiderGrammaticalForms enables the grammatical variant check.
	ConsiderGrammaticalForms bool `yaml:"considerGrammaticalForms" mapstructure:"consider_grammatical_forms"`
	// ShortTermLength is the rune length at or below which a term is short.
	ShortTermLength int `yaml:"shortTermLength" mapstructure:"short_term_length"`
	// ShortTermThreshold is the per-field score short terms need, and the
	// per-field score that makes a content match "similar".
	ShortTermThreshold float64 `yaml:"shortTermThreshold" mapstructure:"short_term_threshold"`
	// ContentFieldFloor is the per-field score both terms must exceed for a
	// content match.
	ContentFieldFloor float64 `yaml:"contentFieldFloor" mapstructure:"content_field_floor"`
	// Quality scores group members.
	Quality quality.Config `yaml:"quality" mapstructure:"quality"`
	// Workers bounds concurrent comparisons. Zero uses GOMAXPROCS.
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// DefaultConfig returns the default detection settings.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold:      0.85,
		MaxLevenshteinDistance:   3,
		ConsiderGrammaticalForms: true,
		ShortTermLength:          5,
		ShortTermThreshold:       0.95,
		ContentFieldFloor:        0.85,
		Quality:                  quality.DefaultConfig(),
	}
}

// Validate checks that thresholds are within [0,1] and counts are not
// negative.
func (c Config) Validate() error {
	ratios := []struct {
		field string
		value float64
	}{
		{"similarityThreshold", c.SimilarityThreshold},
		{"shortTermThreshold", c.ShortTermThreshold},
		{"contentFieldFloor", c.ContentFieldFloor},
	}
	for _, r := range ratios {
		if r.value < 0 || r.value > 1 {
			return errors.NewConfigError("dedupe", r.field+" must be within [0,1]",
				errors.NewValidationError(r.field, r.value, "out of range"))
		}
	}

	counts := []struct {
		field string
		value int
	}{
		{"maxLevenshteinDistance", c.MaxLevenshteinDistance},
		{"shortTermLength", c.ShortTermLength},
		{"workers", c.Workers},
	}
	for _, n := range counts {
		if n.value < 0 {
			return errors.NewConfigError("dedupe", n.field+" cannot be negative",
				errors.NewValidationError(n.field, n.value, "negative"))
		}
	}
	return nil
}

func (c Config) scorer() textnorm.Scorer {
	return textnorm.Scorer{MaxDistance: c.MaxLevenshteinDistance, Boost: textnorm.DefaultScorer.Boost}
}

// Match is the outcome of comparing two records.
type Match struct {
	IsDuplicate bool    `json:"isDuplicate" yaml:"isDuplicate"`
	Score       float64 `json:"score" yaml:"score"`
	Class       Class   `json:"class" yaml:"class"`
}

var noMatch = Match{Class: ClassNone}

// IsDuplicate compares a and b. The checks run in order and the first
// that matches decides: a missing or unresolved required field never
// matches; identical terms are exact; terms equal after normalization are
// exact; inflections of each other in both languages are grammatical;
// otherwise the blended similarity decides between similar and content.
// The result does not depend on argument order.
func IsDuplicate(a, b vocabulary.Record, cfg Config) Match {
	if !a.HasRequiredFields() || !b.HasRequiredFields() {
		return noMatch
	}

	if a.SourceTerm == b.SourceTerm && a.TargetTerm == b.TargetTerm && a.PartOfSpeech == b.PartOfSpeech {
		return Match{IsDuplicate: true, Score: 1, Class: ClassExact}
	}

	na, nb := normalized(a), normalized(b)
	if na == nb {
		return Match{IsDuplicate: true, Score: 1, Class: ClassExact}
	}

	if a.PartOfSpeech != b.PartOfSpeech {
		return noMatch
	}

	if cfg.ConsiderGrammaticalForms &&
		textnorm.GrammaticalVariants(a.SourceTerm, b.SourceTerm, textnorm.German) &&
		textnorm.GrammaticalVariants(a.TargetTerm, b.TargetTerm, textnorm.Bulgarian) {
		return Match{IsDuplicate: true, Score: grammaticalScore, Class: ClassGrammatical}
	}

	return contentMatch(a, b, na, nb, cfg)
}

type terms struct {
	source, target string
	pos            vocabulary.PartOfSpeech
}

func normalized(r vocabulary.Record) terms {
	return terms{
		source: textnorm.Normalize(r.SourceTerm),
		target: textnorm.Normalize(r.TargetTerm),
		pos:    r.PartOfSpeech,
	}
}

func contentMatch(a, b vocabulary.Record, na, nb terms, cfg Config) Match {
	// Fixed operand order keeps floating point sums identical under swap.
	if b.SourceTerm < a.SourceTerm || (b.SourceTerm == a.SourceTerm && b.TargetTerm < a.TargetTerm) {
		a, b = b, a
		na, nb = nb, na
	}
	scorer := cfg.scorer()
	src := scorer.Similarity(a.SourceTerm, b.SourceTerm)
	dst := scorer.Similarity(a.TargetTerm, b.TargetTerm)
	avg := (src + dst) / 2

	if isShort(cfg.ShortTermLength, na.source, na.target, nb.source, nb.target) {
		if src >= cfg.ShortTermThreshold && dst >= cfg.ShortTermThreshold {
			return Match{IsDuplicate: true, Score: avg, Class: ClassSimilar}
		}
		return noMatch
	}

	overall := termWeight*avg + exampleWeight*exampleSimilarity(scorer, a.Examples, b.Examples)
	if overall < cfg.SimilarityThreshold {
		return noMatch
	}
	switch {
	case src >= cfg.ShortTermThreshold && dst >= cfg.ShortTermThreshold:
		return Match{IsDuplicate: true, Score: overall, Class: ClassSimilar}
	case src > cfg.ContentFieldFloor && dst > cfg.ContentFieldFloor:
		return Match{IsDuplicate: true, Score: overall, Class: ClassContent}
	}
	return noMatch
}

func isShort(limit int, terms ...string) bool {
	for _, t := range terms {
		if utf8.RuneCountInString(t) <= limit {
			return true
		}
	}
	return false
}

// exampleSimilarity averages the similarity of every example pair. Two
// empty sets are identical and one empty set shares nothing.
func exampleSimilarity(scorer textnorm.Scorer, xs, ys []vocabulary.Example) float64 {
	if len(xs) == 0 && len(ys) == 0 {
		return 1
	}
	if len(xs) == 0 || len(ys) == 0 {
		return 0
	}
	var total float64
	for _, x := range xs {
		for _, y := range ys {
			total += (scorer.Similarity(x.SourceTerm, y.SourceTerm) + scorer.Similarity(x.TargetTerm, y.TargetTerm)) / 2
		}
	}
	return total / float64(len(xs)*len(ys))
}
