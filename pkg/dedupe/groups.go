package dedupe

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/logging"
	"github.com/agentstation/vocab/pkg/quality"
	"github.com/agentstation/vocab/pkg/vocabulary"
)

// TempPrefix starts the ids given to records that have none while grouping.
const TempPrefix = "temp-"

// unknownSource labels members without a source file.
const unknownSource = "unknown"

// Member is a record claimed by a group.
type Member struct {
	// Index is the position of the record in the FindGroups input.
	Index        int               `json:"index" yaml:"index"`
	ID           string            `json:"id" yaml:"id"`
	Record       vocabulary.Record `json:"record" yaml:"record"`
	QualityScore float64           `json:"qualityScore" yaml:"qualityScore"`
	SourceLabel  string            `json:"sourceLabel" yaml:"sourceLabel"`
}

// Group is a cluster of records that describe the same entry.
type Group struct {
	ID      string   `json:"groupId" yaml:"groupId"`
	Members []Member `json:"members" yaml:"members"`
	// Class is the weakest match that admitted a member.
	Class Class `json:"similarityClass" yaml:"similarityClass"`
}

// IDs returns the member ids in group order.
func (g Group) IDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// Records returns the member records in group order.
func (g Group) Records() []vocabulary.Record {
	out := make([]vocabulary.Record, len(g.Members))
	for i, m := range g.Members {
		out[i] = m.Record
	}
	return out
}

// FindGroups clusters records in a single pass. Each unclaimed record in
// input order anchors a group and claims every later unclaimed record that
// duplicates it. A record belongs to at most one group and groups with a
// single member are dropped. Comparisons for one anchor run concurrently;
// claiming is sequential, so the result depends only on input order.
func FindGroups(ctx context.Context, records []vocabulary.Record, cfg Config) ([]Group, error) {
	ctx = logging.WithStage(ctx, "dedupe")
	logger := logging.FromContext(ctx)
	start := time.Now()

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	members := iter.Mapper[vocabulary.Record, Member]{MaxGoroutines: workers}.Map(records, func(r *vocabulary.Record) Member {
		return Member{
			ID:           r.ID,
			Record:       *r,
			QualityScore: quality.Assess(*r, cfg.Quality).Score,
			SourceLabel:  sourceLabel(*r),
		}
	})
	for i := range members {
		members[i].Index = i
		if members[i].ID == "" {
			members[i].ID = fmt.Sprintf("%s%d", TempPrefix, i)
		}
	}

	compare := iter.Mapper[int, Match]{MaxGoroutines: workers}
	claimed := make([]bool, len(records))
	var groups []Group

	for i := range records {
		if claimed[i] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapCanceled("dedupe", err)
		}
		claimed[i] = true

		var candidates []int
		for j := i + 1; j < len(records); j++ {
			if !claimed[j] {
				candidates = append(candidates, j)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		anchor := records[i]
		matches := compare.Map(candidates, func(j *int) Match {
			return IsDuplicate(anchor, records[*j], cfg)
		})

		group := Group{Members: []Member{members[i]}, Class: ClassExact}
		for k, m := range matches {
			if !m.IsDuplicate {
				continue
			}
			j := candidates[k]
			claimed[j] = true
			group.Members = append(group.Members, members[j])
			group.Class = group.Class.Weaker(m.Class)
		}
		if len(group.Members) < 2 {
			continue
		}

		group.ID = fmt.Sprintf("group-%04d", len(groups)+1)
		groups = append(groups, group)
		logger.Debug().
			Str("group", group.ID).
			Strs("members", group.IDs()).
			Str("class", string(group.Class)).
			Msg("found duplicate group")
	}

	logger.Info().
		Int("records", len(records)).
		Int("groups", len(groups)).
		Dur("duration", time.Since(start)).
		Msg("duplicate detection complete")

	return groups, nil
}

func sourceLabel(r vocabulary.Record) string {
	if len(r.Metadata.SourceFiles) > 0 {
		return r.Metadata.SourceFiles[0]
	}
	return unknownSource
}
