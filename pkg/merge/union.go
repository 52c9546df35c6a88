package merge

import (
	"slices"
	"strings"

	"github.com/agentstation/vocab/pkg/vocabulary"
)

// NoteSeparator joins note texts contributed by different members.
const NoteSeparator = "\n\n"

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// unionStrings concatenates lists, trimming entries and dropping blanks
// and repeats.
func unionStrings(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// unionExamples keeps the first occurrence of every distinct example and
// marks them as merged.
func unionExamples(dst *vocabulary.Record, srcs []*vocabulary.Record) {
	type key struct{ source, target, context string }
	var out []vocabulary.Example
	seen := make(map[key]bool)
	for _, s := range srcs {
		for _, ex := range s.Examples {
			k := key{ex.SourceTerm, ex.TargetTerm, ex.Context}
			if seen[k] {
				continue
			}
			seen[k] = true
			ex.Source = vocabulary.SourceMerged
			out = append(out, ex)
		}
	}
	dst.Examples = out
}

// unionNotes joins every distinct text per note field.
func unionNotes(dst *vocabulary.Record, srcs []*vocabulary.Record) {
	fields := []func(n *vocabulary.Notes) *string{
		func(n *vocabulary.Notes) *string { return &n.General },
		func(n *vocabulary.Notes) *string { return &n.ForSourceSpeakers },
		func(n *vocabulary.Notes) *string { return &n.ForTargetSpeakers },
		func(n *vocabulary.Notes) *string { return &n.Linguistic },
		func(n *vocabulary.Notes) *string { return &n.LinguisticForSource },
		func(n *vocabulary.Notes) *string { return &n.LinguisticForTarget },
	}

	merged := vocabulary.Notes{Source: vocabulary.SourceMerged}
	for _, field := range fields {
		var texts []string
		for _, s := range srcs {
			if s.Notes == nil {
				continue
			}
			if t := strings.TrimSpace(*field(s.Notes)); t != "" && !slices.Contains(texts, t) {
				texts = append(texts, t)
			}
		}
		*field(&merged) = strings.Join(texts, NoteSeparator)
	}
	if merged.IsEmpty() {
		dst.Notes = nil
		return
	}
	dst.Notes = &merged
}

// unionGrammar takes each grammar sub-field from the first member that has
// it. Conjugation tables are merged key by key.
func unionGrammar(dst *vocabulary.Record, srcs []*vocabulary.Record) {
	var g vocabulary.Grammar
	for _, s := range srcs {
		if s.Grammar == nil {
			continue
		}
		if g.Gender == "" {
			g.Gender = s.Grammar.Gender
		}
		g.PluralForm = firstNonEmpty(g.PluralForm, s.Grammar.PluralForm)
		if g.VerbAspect == "" {
			g.VerbAspect = s.Grammar.VerbAspect
		}
		g.VerbPartnerID = firstNonEmpty(g.VerbPartnerID, s.Grammar.VerbPartnerID)
		for k, v := range s.Grammar.Conjugation {
			if g.Conjugation == nil {
				g.Conjugation = make(map[string]string)
			}
			if _, ok := g.Conjugation[k]; !ok {
				g.Conjugation[k] = v
			}
		}
	}
	if g.IsEmpty() {
		dst.Grammar = nil
		return
	}
	dst.Grammar = &g
}

// unionMetadata unions file and merge lists, keeps the highest frequency
// and XP value, ORs the flags and takes other scalars from the first
// member.
func unionMetadata(dst *vocabulary.Record, srcs []*vocabulary.Record) {
	var m vocabulary.Metadata
	var sourceFiles, mergeSources [][]string
	for i, s := range srcs {
		sm := s.Metadata
		if i == 0 {
			m.Level = sm.Level
			m.LearningPhase = sm.LearningPhase
		}
		if m.Level == "" {
			m.Level = sm.Level
		}
		m.Frequency = max(m.Frequency, sm.Frequency)
		m.XPValue = max(m.XPValue, sm.XPValue)
		m.IsCommon = m.IsCommon || sm.IsCommon
		m.IsVerified = m.IsVerified || sm.IsVerified
		sourceFiles = append(sourceFiles, sm.SourceFiles)
		mergeSources = append(mergeSources, sm.MergeSources)
	}
	m.SourceFiles = unionStrings(sourceFiles...)
	m.MergeSources = unionStrings(mergeSources...)
	dst.Metadata = m
}
