package categories

import (
	"slices"

	"github.com/sourcegraph/conc/iter"

	"github.com/agentstation/vocab/pkg/vocabulary"
)

// Consolidate standardizes every category of r, removes duplicates and,
// when CreateParentCategories is set, adds every ancestor. The result is
// sorted and never empty. Uncategorized is dropped when any other category
// is present.
func Consolidate(r vocabulary.Record, cfg Config) []vocabulary.Category {
	return ConsolidateLabels(r.Categories, cfg)
}

// ConsolidateLabels is Consolidate over bare labels.
func ConsolidateLabels(labels []vocabulary.Category, cfg Config) []vocabulary.Category {
	tax := cfg.taxonomy()
	set := make(map[vocabulary.Category]struct{})

	for _, label := range labels {
		c := Standardize(string(label), cfg)
		set[c] = struct{}{}
		if cfg.CreateParentCategories {
			for _, a := range tax.Ancestors(c) {
				set[a] = struct{}{}
			}
		}
	}

	if len(set) > 1 {
		delete(set, vocabulary.Uncategorized)
	}
	if len(set) == 0 {
		set[cfg.defaultCategory(tax)] = struct{}{}
	}
	return sortedKeys(set)
}

// ConsolidateAll consolidates the categories of every record and counts how
// many records carry each category. Records are processed concurrently and
// returned in input order.
func ConsolidateAll(records []vocabulary.Record, cfg Config) ([]vocabulary.Record, map[vocabulary.Category]int) {
	out := iter.Map(records, func(r *vocabulary.Record) vocabulary.Record {
		c := r.Clone()
		c.Categories = Consolidate(*r, cfg)
		return c
	})

	counts := make(map[vocabulary.Category]int)
	for _, r := range out {
		for _, c := range r.Categories {
			counts[c]++
		}
	}
	return out, counts
}

// MappingReport summarizes how a set of legacy labels resolves.
type MappingReport struct {
	Resolutions []Resolution                `json:"resolutions" yaml:"resolutions"`
	Counts      map[vocabulary.Category]int `json:"counts" yaml:"counts"`
	// Unmapped lists labels that fell through to the default category.
	Unmapped []string `json:"unmapped,omitempty" yaml:"unmapped,omitempty"`
}

// Report resolves each distinct label once, in sorted order.
func Report(labels []string, cfg Config) MappingReport {
	distinct := slices.Clone(labels)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	report := MappingReport{Counts: make(map[vocabulary.Category]int)}
	for _, label := range distinct {
		res := Resolve(label, cfg)
		report.Resolutions = append(report.Resolutions, res)
		report.Counts[res.Category]++
		if res.Method == MethodDefault {
			report.Unmapped = append(report.Unmapped, label)
		}
	}
	return report
}
