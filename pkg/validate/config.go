package validate

import (
	"errors"

	"github.com/agentstation/vocab/pkg/categories"
	pkgerrors "github.com/agentstation/vocab/pkg/errors"
)

// Config controls which checks run.
type Config struct {
	// AllowMissingOptional skips the schema check for unset timestamps and
	// version.
	AllowMissingOptional bool `yaml:"allowMissingOptional" mapstructure:"allow_missing_optional"`
	// ValidateContentQuality enables the example, notes, etymology and
	// grammar warnings.
	ValidateContentQuality bool `yaml:"validateContentQuality" mapstructure:"validate_content_quality"`
	MinExamples            int  `yaml:"minExamples" mapstructure:"min_examples"`
	MinNotesLength         int  `yaml:"minNotesLength" mapstructure:"min_notes_length"`
	ValidateIDUniqueness   bool `yaml:"validateIdUniqueness" mapstructure:"validate_id_uniqueness"`
	ValidateReferences     bool `yaml:"validateReferences" mapstructure:"validate_references"`
	// Categories supplies the taxonomy categories are checked against.
	Categories categories.Config `yaml:"-" mapstructure:"-"`
}

// DefaultConfig returns the default validation configuration.
func DefaultConfig() Config {
	return Config{
		ValidateContentQuality: true,
		MinExamples:            1,
		MinNotesLength:         20,
		ValidateIDUniqueness:   true,
		ValidateReferences:     true,
		Categories:             categories.DefaultConfig(),
	}
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.MinExamples < 0 {
		errs = append(errs, pkgerrors.NewValidationError("minExamples", c.MinExamples, "cannot be negative"))
	}
	if c.MinNotesLength < 0 {
		errs = append(errs, pkgerrors.NewValidationError("minNotesLength", c.MinNotesLength, "cannot be negative"))
	}
	if err := categories.ValidateConfig(c.Categories); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return pkgerrors.NewConfigError("validate", "invalid validation configuration", errors.Join(errs...))
}
