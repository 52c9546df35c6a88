// Package merge collapses duplicate groups into single canonical records
// and assembles the unified collection.
//
// Each field of a merged record is reconciled by a configurable strategy
// (best_quality, merge_all, priority_source, longest or most_recent) and
// the member that supplied it is recorded in a provenance tracker.
package merge

import (
	"slices"
	"strings"

	"github.com/agentstation/utc"

	"github.com/agentstation/vocab/internal/idgen"
	"github.com/agentstation/vocab/pkg/categories"
	"github.com/agentstation/vocab/pkg/dedupe"
	"github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/provenance"
	"github.com/agentstation/vocab/pkg/vocabulary"
)

// MergedPrefix starts composite ids built from several member ids.
const MergedPrefix = "merged-"

// SyntheticPrefixes mark ids invented during processing rather than
// carried by the source data.
var SyntheticPrefixes = []string{dedupe.TempPrefix, "fallback-", "generated-"}

// IsSynthetic reports whether id was invented during processing.
func IsSynthetic(id string) bool {
	return slices.ContainsFunc(SyntheticPrefixes, func(p string) bool {
		return strings.HasPrefix(id, p)
	})
}

// MergedID builds a deterministic id for a record merged from ids.
// Synthetic ids are dropped when at least one permanent id exists, and a
// single remaining id is used as is. Otherwise the ids are sorted and
// joined behind MergedPrefix.
func MergedID(ids []string) string {
	ids = unionStrings(ids)
	slices.Sort(ids)

	switch len(ids) {
	case 0:
		return ""
	case 1:
		return ids[0]
	}

	permanent := slices.DeleteFunc(slices.Clone(ids), IsSynthetic)
	switch len(permanent) {
	case 0:
		return MergedPrefix + strings.Join(ids, "-")
	case 1:
		return permanent[0]
	}
	return MergedPrefix + strings.Join(permanent, "-")
}

// Engine merges duplicate groups.
type Engine struct {
	cfg     Config
	ids     vocabulary.IDGenerator
	clock   vocabulary.Clock
	tracker provenance.Tracker
}

type options struct {
	ids     vocabulary.IDGenerator
	clock   vocabulary.Clock
	tracker provenance.Tracker
}

// Option configures an Engine.
type Option func(*options) error

func defaultOptions() *options {
	return &options{
		ids:     idgen.UUID{},
		clock:   vocabulary.SystemClock,
		tracker: provenance.NewTracker(true),
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

// newOptions returns engine options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithIDGenerator sets the generator used for collection ids and for
// merged records whose members carry no id.
func WithIDGenerator(ids vocabulary.IDGenerator) Option {
	return func(o *options) error {
		if ids == nil {
			return &errors.ValidationError{Field: "ids", Message: "cannot be nil"}
		}
		o.ids = ids
		return nil
	}
}

// WithClock sets the clock used for updatedAt and collection timestamps.
func WithClock(clock vocabulary.Clock) Option {
	return func(o *options) error {
		if clock == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		o.clock = clock
		return nil
	}
}

// WithTracker sets the provenance tracker.
func WithTracker(tracker provenance.Tracker) Option {
	return func(o *options) error {
		if tracker == nil {
			return &errors.ValidationError{Field: "tracker", Message: "cannot be nil"}
		}
		o.tracker = tracker
		return nil
	}
}

// New creates an Engine. The configuration is validated first.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, ids: o.ids, clock: o.clock, tracker: o.tracker}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Provenance returns a copy of everything tracked so far.
func (e *Engine) Provenance() provenance.Map {
	return e.tracker.Map()
}

// MergeGroup collapses g into one record. A single-member group yields its
// record unchanged. Otherwise the base is the highest-quality member whose
// terms and part of speech are all resolved, and each field is reconciled
// by its configured strategy.
func (e *Engine) MergeGroup(g dedupe.Group) (vocabulary.Record, error) {
	switch len(g.Members) {
	case 0:
		return vocabulary.Record{}, errors.NewMergeError(g.ID, nil, "group has no members", nil)
	case 1:
		return g.Members[0].Record, nil
	}

	members := orderMembers(g.Members)
	recs := make([]*vocabulary.Record, len(members))
	for i := range members {
		r := members[i].Record.Clone()
		recs[i] = &r
	}

	ids := g.IDs()
	id := MergedID(ids)
	if id == "" {
		id = e.ids.NewID("merged")
	}

	merged := recs[0].Clone()
	for _, f := range Fields {
		e.mergeField(id, f, &merged, members, recs)
	}

	merged.ID = id
	absorbed := [][]string{ids}
	var files [][]string
	for _, r := range recs {
		absorbed = append(absorbed, r.Metadata.MergeSources)
		files = append(files, r.Metadata.SourceFiles)
	}
	merged.Metadata.MergeSources = slices.DeleteFunc(unionStrings(absorbed...), IsSynthetic)
	merged.Metadata.SourceFiles = unionStrings(files...)
	merged.CreatedAt = earliest(recs)
	merged.UpdatedAt = e.clock()
	merged.Version = vocabulary.CanonicalVersion
	merged.Categories = categories.ConsolidateLabels(merged.Categories, e.cfg.Categories)
	e.applyDefaults(&merged)

	return merged, nil
}

// orderMembers sorts members by descending quality and moves the first
// member with all required fields to the front.
func orderMembers(in []dedupe.Member) []dedupe.Member {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b dedupe.Member) int {
		switch {
		case a.QualityScore > b.QualityScore:
			return -1
		case a.QualityScore < b.QualityScore:
			return 1
		}
		return 0
	})
	if i := slices.IndexFunc(out, func(m dedupe.Member) bool { return m.Record.HasRequiredFields() }); i > 0 {
		base := out[i]
		copy(out[1:i+1], out[:i])
		out[0] = base
	}
	return out
}

var reasons = map[StrategyType]string{
	StrategyBestQuality:    "best value by field heuristic",
	StrategyMergeAll:       "union of all members",
	StrategyPrioritySource: "highest priority source",
	StrategyLongest:        "longest value",
	StrategyMostRecent:     "most recently updated member",
}

func (e *Engine) mergeField(id string, f Field, dst *vocabulary.Record, members []dedupe.Member, recs []*vocabulary.Record) {
	acc := accessors[f]
	strategy := e.cfg.strategy(f)

	var have []int
	for i, r := range recs {
		if acc.isSet(r) {
			have = append(have, i)
		}
	}
	if len(have) == 0 {
		return
	}

	pick := have[0]
	switch strategy {
	case StrategyMergeAll:
		if acc.union != nil {
			srcs := make([]*vocabulary.Record, len(have))
			for k, i := range have {
				srcs[k] = recs[i]
			}
			acc.union(dst, srcs)
			for _, i := range have {
				e.track(id, f, strategy, members[i], nil)
			}
			return
		}
	case StrategyBestQuality:
		if acc.better != nil {
			for _, i := range have[1:] {
				if acc.better(recs[i], recs[pick]) {
					pick = i
				}
			}
		}
	case StrategyPrioritySource:
		for _, i := range e.cfg.SourcePriority.Order(recs) {
			if acc.isSet(recs[i]) {
				pick = i
				break
			}
		}
	case StrategyLongest:
		for _, i := range have[1:] {
			if acc.size(recs[i]) > acc.size(recs[pick]) {
				pick = i
			}
		}
	case StrategyMostRecent:
		for _, i := range have[1:] {
			if recs[i].UpdatedAt.Time.After(recs[pick].UpdatedAt.Time) {
				pick = i
			}
		}
	}

	acc.take(dst, recs[pick])
	var value any
	if acc.value != nil {
		value = acc.value(recs[pick])
	}
	e.track(id, f, strategy, members[pick], value)
}

func (e *Engine) track(id string, f Field, strategy StrategyType, m dedupe.Member, value any) {
	e.tracker.Track(id, string(f), provenance.Provenance{
		Source:    m.ID,
		Field:     string(f),
		Value:     value,
		Timestamp: e.clock(),
		Strategy:  strategy.String(),
		Quality:   m.QualityScore,
		Reason:    reasons[strategy],
	})
}

func (e *Engine) applyDefaults(r *vocabulary.Record) {
	d := e.cfg.Defaults
	if r.PartOfSpeech == "" {
		r.PartOfSpeech = vocabulary.Noun
	}
	if r.Difficulty < vocabulary.MinDifficulty {
		r.Difficulty = d.Difficulty
	}
	if r.Metadata.LearningPhase < vocabulary.MinLearningPhase {
		r.Metadata.LearningPhase = d.LearningPhase
	}
	r.Metadata.IsCommon = r.Metadata.IsCommon || d.IsCommon
	r.Metadata.IsVerified = r.Metadata.IsVerified || d.IsVerified
}

// earliest returns the oldest non-zero createdAt.
func earliest(recs []*vocabulary.Record) utc.Time {
	var t utc.Time
	for _, r := range recs {
		if r.CreatedAt.Time.IsZero() {
			continue
		}
		if t.Time.IsZero() || r.CreatedAt.Time.Before(t.Time) {
			t = r.CreatedAt
		}
	}
	return t
}
