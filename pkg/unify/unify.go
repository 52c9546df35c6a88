// Package unify converts heterogeneous legacy vocabulary records into the
// canonical record shape.
//
// Each input is classified into one of a closed set of variants and then
// converted. Conversion never fails: terms that cannot be recovered are
// set to vocabulary.Unresolved so later stages can quarantine them.
package unify

import (
	"context"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/agentstation/vocab/internal/idgen"
	"github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/logging"
	"github.com/agentstation/vocab/pkg/vocabulary"
)

// GeneratedPrefix starts identifiers assigned to inputs that had none.
const GeneratedPrefix = "generated"

// Unifier converts raw records into canonical records.
type Unifier struct {
	ids     vocabulary.IDGenerator
	clock   vocabulary.Clock
	workers int
}

// Stats summarizes one UnifyAll call.
type Stats struct {
	ByShape    map[Shape]int `json:"byShape" yaml:"byShape"`
	Generated  int           `json:"generatedIds" yaml:"generatedIds"`
	Unresolved int           `json:"unresolved" yaml:"unresolved"`
}

type options struct {
	ids     vocabulary.IDGenerator
	clock   vocabulary.Clock
	workers int
}

// Option configures a Unifier.
type Option func(*options) error

func defaultOptions() *options {
	return &options{
		ids:     idgen.UUID{},
		clock:   vocabulary.SystemClock,
		workers: runtime.GOMAXPROCS(0),
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

// newOptions returns unifier options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithIDGenerator sets the generator used for records without an id.
func WithIDGenerator(ids vocabulary.IDGenerator) Option {
	return func(o *options) error {
		if ids == nil {
			return &errors.ValidationError{Field: "ids", Message: "cannot be nil"}
		}
		o.ids = ids
		return nil
	}
}

// WithClock sets the clock used for missing timestamps.
func WithClock(clock vocabulary.Clock) Option {
	return func(o *options) error {
		if clock == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		o.clock = clock
		return nil
	}
}

// WithWorkers bounds the number of goroutines used by UnifyAll.
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return &errors.ValidationError{Field: "workers", Value: n, Message: "must be at least 1"}
		}
		o.workers = n
		return nil
	}
}

// New creates a Unifier.
func New(opts ...Option) (*Unifier, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Unifier{ids: o.ids, clock: o.clock, workers: o.workers}, nil
}

// Unify classifies and converts a single record. Canonical records are
// returned unchanged. A missing id is filled from the generator.
func (u *Unifier) Unify(raw Raw) vocabulary.Record {
	r := u.convert(Classify(raw))
	if r.ID == "" {
		r.ID = u.ids.NewID(GeneratedPrefix)
	}
	return r
}

// UnifyAll converts raws in parallel, preserving order. Generated ids are
// assigned afterwards in input order so a deterministic generator yields
// deterministic output.
func (u *Unifier) UnifyAll(ctx context.Context, raws []Raw) ([]vocabulary.Record, Stats, error) {
	ctx = logging.WithStage(ctx, "unify")
	logger := logging.FromContext(ctx)
	start := time.Now()

	stats := Stats{ByShape: map[Shape]int{
		ShapeCanonical: 0, ShapeNamedLanguage: 0, ShapeDirectional: 0, ShapeFallback: 0,
	}}
	if err := ctx.Err(); err != nil {
		return nil, stats, errors.WrapCanceled("unify", err)
	}

	type converted struct {
		shape  Shape
		record vocabulary.Record
	}
	mapper := iter.Mapper[Raw, converted]{MaxGoroutines: u.workers}
	results := mapper.Map(raws, func(raw *Raw) converted {
		v := Classify(*raw)
		return converted{shape: v.Shape(), record: u.convert(v)}
	})

	if err := ctx.Err(); err != nil {
		return nil, stats, errors.WrapCanceled("unify", err)
	}

	records := make([]vocabulary.Record, len(results))
	for i, res := range results {
		stats.ByShape[res.shape]++
		if res.record.ID == "" {
			res.record.ID = u.ids.NewID(GeneratedPrefix)
			stats.Generated++
		}
		if res.record.IsUnresolved() {
			stats.Unresolved++
			logger.Debug().Str("id", res.record.ID).Int("index", i).Msg("record has unresolved terms")
		}
		records[i] = res.record
	}

	logger.Info().
		Int("records", len(records)).
		Int("canonical", stats.ByShape[ShapeCanonical]).
		Int("named_language", stats.ByShape[ShapeNamedLanguage]).
		Int("directional", stats.ByShape[ShapeDirectional]).
		Int("fallback", stats.ByShape[ShapeFallback]).
		Int("unresolved", stats.Unresolved).
		Dur("duration", time.Since(start)).
		Msg("unified records")

	return records, stats, nil
}
