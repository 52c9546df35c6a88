package vocab

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agentstation/vocab/internal/idgen"
	"github.com/agentstation/vocab/pkg/categories"
	"github.com/agentstation/vocab/pkg/dedupe"
	"github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/merge"
	"github.com/agentstation/vocab/pkg/validate"
	"github.com/agentstation/vocab/pkg/vocabulary"
)

// options holds the Pipeline configuration.
type options struct {
	categories *categories.Config
	dedupe     *dedupe.Config
	merge      merge.Config
	validate   validate.Config

	quarantine bool
	provenance bool
	workers    int

	ids        vocabulary.IDGenerator
	clock      vocabulary.Clock
	registerer prometheus.Registerer
	logger     *zerolog.Logger

	name        string
	description string
}

// Option is a function that configures a Pipeline.
type Option func(*options) error

func defaultOptions() *options {
	return &options{
		merge:      merge.DefaultConfig(),
		validate:   validate.DefaultConfig(),
		quarantine: true,
		provenance: true,
		ids:        idgen.UUID{},
		clock:      vocabulary.SystemClock,
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

// mergeConfig returns the merge configuration with the category and
// dedupe overrides applied.
func (o *options) mergeConfig() merge.Config {
	cfg := o.merge
	if o.categories != nil {
		cfg.Categories = *o.categories
	}
	if o.dedupe != nil {
		cfg.Dedupe = *o.dedupe
	}
	return cfg
}

// WithCategoryConfig sets the category taxonomy, custom mappings and
// default category used by every stage.
func WithCategoryConfig(cfg categories.Config) Option {
	return func(o *options) error {
		o.categories = &cfg
		return nil
	}
}

// WithDedupeConfig sets the duplicate detection thresholds.
func WithDedupeConfig(cfg dedupe.Config) Option {
	return func(o *options) error {
		o.dedupe = &cfg
		return nil
	}
}

// WithMergeConfig sets the merge strategies, source priority and defaults.
// WithCategoryConfig and WithDedupeConfig take precedence over the
// matching parts of cfg.
func WithMergeConfig(cfg merge.Config) Option {
	return func(o *options) error {
		o.merge = cfg
		return nil
	}
}

// WithValidateConfig sets which validation checks run.
func WithValidateConfig(cfg validate.Config) Option {
	return func(o *options) error {
		o.validate = cfg
		return nil
	}
}

// WithQuarantine configures whether records with unresolved terms are set
// aside before grouping. Enabled by default.
func WithQuarantine(enabled bool) Option {
	return func(o *options) error {
		o.quarantine = enabled
		return nil
	}
}

// WithProvenance configures whether merge provenance is tracked. Enabled
// by default.
func WithProvenance(enabled bool) Option {
	return func(o *options) error {
		o.provenance = enabled
		return nil
	}
}

// WithWorkers bounds the goroutines used to unify records.
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return errors.NewValidationError("workers", n, "must be at least 1")
		}
		o.workers = n
		return nil
	}
}

// WithIDGenerator sets the generator for record, group and collection ids.
func WithIDGenerator(ids vocabulary.IDGenerator) Option {
	return func(o *options) error {
		if ids == nil {
			return &errors.ValidationError{Field: "ids", Message: "cannot be nil"}
		}
		o.ids = ids
		return nil
	}
}

// WithClock sets the time source for timestamps.
func WithClock(clock vocabulary.Clock) Option {
	return func(o *options) error {
		if clock == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		o.clock = clock
		return nil
	}
}

// WithMetrics registers pipeline metrics with registerer.
func WithMetrics(registerer prometheus.Registerer) Option {
	return func(o *options) error {
		if registerer == nil {
			return &errors.ValidationError{Field: "registerer", Message: "cannot be nil"}
		}
		o.registerer = registerer
		return nil
	}
}

// WithLogger sets the logger used when the run context carries none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithCollectionInfo sets the name and description of the assembled
// collection. Empty values keep the defaults.
func WithCollectionInfo(name, description string) Option {
	return func(o *options) error {
		o.name = name
		o.description = description
		return nil
	}
}
