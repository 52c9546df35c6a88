package merge

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/agentstation/vocab/pkg/dedupe"
	"github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/logging"
	"github.com/agentstation/vocab/pkg/vocabulary"
)

// Collection defaults.
const (
	DefaultCollectionName        = "German-Bulgarian Vocabulary"
	DefaultCollectionDescription = "Comprehensive German-Bulgarian vocabulary collection with unified schema"
)

// Result is the outcome of MergeItems.
type Result struct {
	Records []vocabulary.Record `json:"records" yaml:"records"`
	// Groups holds every group merged, across all passes.
	Groups []dedupe.Group `json:"groups" yaml:"groups"`
	// Passes counts the grouping passes that merged at least one group.
	Passes int `json:"passes" yaml:"passes"`
}

// MergeItems groups records and collapses every group into one record,
// repeating until a pass finds no more duplicates. Merged records take the
// position of their group's first member and records outside any group are
// kept as they are.
func (e *Engine) MergeItems(ctx context.Context, records []vocabulary.Record) (*Result, error) {
	ctx = logging.WithStage(ctx, "merge")
	logger := logging.FromContext(ctx)
	start := time.Now()

	res := &Result{}
	current := records
	for {
		groups, err := dedupe.FindGroups(ctx, current, e.cfg.Dedupe)
		if err != nil {
			return nil, errors.WrapStage("merge", err)
		}
		if len(groups) == 0 {
			break
		}

		res.Passes++
		if res.Passes > 1 {
			for i := range groups {
				groups[i].ID = fmt.Sprintf("%s-p%d", groups[i].ID, res.Passes)
			}
		}

		next, err := e.mergePass(current, groups)
		if err != nil {
			return nil, errors.WrapStage("merge", err)
		}
		res.Groups = append(res.Groups, groups...)

		logger.Debug().
			Int("pass", res.Passes).
			Int("groups", len(groups)).
			Int("before", len(current)).
			Int("after", len(next)).
			Msg("Merge pass complete")

		current = next
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapCanceled("merge", err)
		}
	}
	res.Records = current

	logger.Info().
		Int("input", len(records)).
		Int("output", len(res.Records)).
		Int("groups", len(res.Groups)).
		Int("passes", res.Passes).
		Dur("duration", time.Since(start)).
		Msg("Merged duplicate records")

	return res, nil
}

// mergePass merges groups concurrently and rebuilds the record list.
func (e *Engine) mergePass(records []vocabulary.Record, groups []dedupe.Group) ([]vocabulary.Record, error) {
	type merged struct {
		record vocabulary.Record
		err    error
	}
	results := iter.Map(groups, func(g *dedupe.Group) merged {
		r, err := e.MergeGroup(*g)
		return merged{record: r, err: err}
	})

	lead := make(map[int]int, len(groups))
	absorbed := make(map[int]bool)
	for gi, g := range groups {
		if results[gi].err != nil {
			return nil, results[gi].err
		}
		lead[g.Members[0].Index] = gi
		for _, m := range g.Members[1:] {
			absorbed[m.Index] = true
		}
	}

	out := make([]vocabulary.Record, 0, len(records))
	for i, r := range records {
		if gi, ok := lead[i]; ok {
			out = append(out, results[gi].record)
			continue
		}
		if absorbed[i] {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Assemble wraps items in a collection. Unset info fields are filled with
// a fresh id, the engine clock and the default name and description.
func (e *Engine) Assemble(items []vocabulary.Record, info vocabulary.CollectionInfo) *vocabulary.Collection {
	if info.ID == "" {
		info.ID = e.ids.NewID("")
	}
	if info.Name == "" {
		info.Name = DefaultCollectionName
	}
	if info.Description == "" {
		info.Description = DefaultCollectionDescription
	}
	if info.Now.Time.IsZero() {
		info.Now = e.clock()
	}
	return vocabulary.NewCollection(info, items)
}
