package merge

import (
	"errors"
	"fmt"

	"github.com/agentstation/vocab/pkg/categories"
	"github.com/agentstation/vocab/pkg/dedupe"
	pkgerrors "github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/vocabulary"
)

// Defaults fill values no group member supplies.
type Defaults struct {
	Difficulty    int  `yaml:"difficulty" mapstructure:"difficulty"`
	IsCommon      bool `yaml:"isCommon" mapstructure:"is_common"`
	IsVerified    bool `yaml:"isVerified" mapstructure:"is_verified"`
	LearningPhase int  `yaml:"learningPhase" mapstructure:"learning_phase"`
}

// Config controls grouping and field reconciliation.
type Config struct {
	Dedupe          dedupe.Config          `yaml:"dedupe" mapstructure:"dedupe"`
	Categories      categories.Config      `yaml:"-" mapstructure:"-"`
	SourcePriority  SourcePriority         `yaml:"sourcePriority" mapstructure:"source_priority"`
	Defaults        Defaults               `yaml:"defaults" mapstructure:"defaults"`
	FieldStrategies map[Field]StrategyType `yaml:"fieldStrategies" mapstructure:"field_strategies"`
}

// DefaultConfig returns the default merge configuration.
func DefaultConfig() Config {
	return Config{
		Dedupe:         dedupe.DefaultConfig(),
		Categories:     categories.DefaultConfig(),
		SourcePriority: DefaultSourcePriority(),
		Defaults: Defaults{
			Difficulty:    vocabulary.MinDifficulty,
			LearningPhase: vocabulary.MinLearningPhase,
		},
		FieldStrategies: DefaultFieldStrategies(),
	}
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if err := c.Dedupe.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := categories.ValidateConfig(c.Categories); err != nil {
		errs = append(errs, err)
	}
	for _, f := range Fields {
		s, ok := c.FieldStrategies[f]
		if ok && !s.IsValid() {
			errs = append(errs, pkgerrors.NewValidationError(string(f), s, fmt.Sprintf("unknown merge strategy %q", s)))
		}
	}
	for f := range c.FieldStrategies {
		if _, known := accessors[f]; !known {
			errs = append(errs, pkgerrors.NewValidationError("fieldStrategies", f, fmt.Sprintf("unknown field %q", f)))
		}
	}
	if d := c.Defaults.Difficulty; d < vocabulary.MinDifficulty || d > vocabulary.MaxDifficulty {
		errs = append(errs, pkgerrors.NewValidationError("defaults.difficulty", d,
			fmt.Sprintf("must be within [%d,%d]", vocabulary.MinDifficulty, vocabulary.MaxDifficulty)))
	}
	if len(errs) == 0 {
		return nil
	}
	return pkgerrors.NewConfigError("merge", "invalid merge configuration", errors.Join(errs...))
}

// strategy returns the configured strategy for f, falling back to the
// default table.
func (c Config) strategy(f Field) StrategyType {
	if s, ok := c.FieldStrategies[f]; ok {
		return s
	}
	return DefaultFieldStrategies()[f]
}
