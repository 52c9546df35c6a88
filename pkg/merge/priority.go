package merge

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/agentstation/vocab/pkg/vocabulary"
)

// SourcePriority orders source file patterns from most to least
// authoritative. Patterns match a source file's full path or base name
// exactly, by a trailing * prefix wildcard, or as a filepath.Match glob.
type SourcePriority []string

// DefaultSourcePriority ranks the current export above the legacy exports.
func DefaultSourcePriority() SourcePriority {
	return SourcePriority{
		"vocabulary.json",
		"vocabulary-fixed.json",
		"vocabulary-batch-*",
		"vocabulary-merged.json",
		"vocabulary-original-broken.json",
	}
}

// MatchesPattern checks if a source file matches a pattern (supports *
// wildcards).
func MatchesPattern(source, pattern string) bool {
	if source == "" || pattern == "" {
		return false
	}
	for _, s := range []string{source, filepath.Base(source)} {
		if s == pattern {
			return true
		}

		if prefix, ok := strings.CutSuffix(pattern, "*"); ok && !strings.ContainsAny(prefix, "*?[") {
			if strings.HasPrefix(s, prefix) {
				return true
			}
			continue
		}

		if matched, err := filepath.Match(pattern, s); err == nil && matched {
			return true
		}
	}
	return false
}

// Rank returns the index of the first pattern matching any of r's source
// files. Records with no matching source rank after every pattern.
func (p SourcePriority) Rank(r vocabulary.Record) int {
	for i, pattern := range p {
		for _, src := range r.Metadata.SourceFiles {
			if MatchesPattern(src, pattern) {
				return i
			}
		}
	}
	return len(p)
}

// Order returns the indices of records sorted by rank. Equal ranks keep
// their input order.
func (p SourcePriority) Order(records []*vocabulary.Record) []int {
	idx := make([]int, len(records))
	ranks := make([]int, len(records))
	for i, r := range records {
		idx[i] = i
		ranks[i] = p.Rank(*r)
	}
	slices.SortStableFunc(idx, func(a, b int) int { return ranks[a] - ranks[b] })
	return idx
}
