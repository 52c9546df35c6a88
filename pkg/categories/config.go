package categories

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	pkgerrors "github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/vocabulary"
)

// fileConfig is the YAML shape of category overrides. Unset fields keep
// their defaults.
type fileConfig struct {
	CustomMappings         map[string]string   `yaml:"customMappings"`
	Hierarchy              map[string][]string `yaml:"hierarchy"`
	ReplaceHierarchy       bool                `yaml:"replaceHierarchy"`
	DefaultCategory        string              `yaml:"defaultCategory"`
	CreateParentCategories *bool               `yaml:"createParentCategories"`
}

// ParseConfig reads category overrides from YAML on top of DefaultConfig.
// Hierarchy entries replace the matching default entry unless
// replaceHierarchy is set, in which case they replace the whole taxonomy.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, pkgerrors.WrapParse("yaml", "", err)
	}

	for label, target := range fc.CustomMappings {
		cfg.CustomMappings[label] = vocabulary.Category(target)
	}

	if fc.ReplaceHierarchy {
		cfg.Hierarchy = Taxonomy{}
	}
	for parent, children := range fc.Hierarchy {
		kids := make([]vocabulary.Category, 0, len(children))
		for _, c := range children {
			kids = append(kids, vocabulary.Category(c))
		}
		cfg.Hierarchy[vocabulary.Category(parent)] = kids
	}

	if fc.DefaultCategory != "" {
		cfg.DefaultCategory = vocabulary.Category(fc.DefaultCategory)
	}
	if fc.CreateParentCategories != nil {
		cfg.CreateParentCategories = *fc.CreateParentCategories
	}

	if err := ValidateConfig(cfg); err != nil {
		return cfg, pkgerrors.NewConfigError("categories", "invalid category configuration", err)
	}
	return cfg, nil
}

// ValidateConfig reports mappings or defaults that point outside the
// taxonomy, children declared under uncategorized, custom mapping chains
// that loop, and cycles in the hierarchy.
func ValidateConfig(cfg Config) error {
	tax := cfg.taxonomy()
	var errs []error

	if cfg.DefaultCategory != "" && !tax.Known(cfg.DefaultCategory) {
		errs = append(errs, pkgerrors.NewValidationError("defaultCategory", cfg.DefaultCategory, "not declared in the hierarchy"))
	}

	labels := make([]string, 0, len(cfg.CustomMappings))
	for label := range cfg.CustomMappings {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	for _, label := range labels {
		target := cfg.CustomMappings[label]
		if !tax.Known(target) {
			errs = append(errs, pkgerrors.NewValidationError("customMappings."+label, target, "maps to an undeclared category"))
		}
		if mappingLoops(label, cfg.CustomMappings) {
			errs = append(errs, pkgerrors.NewValidationError("customMappings."+label, target, "mapping chain leads back to "+label))
		}
	}

	if len(tax[vocabulary.Uncategorized]) > 0 {
		errs = append(errs, pkgerrors.NewValidationError("hierarchy.uncategorized", tax[vocabulary.Uncategorized], "uncategorized cannot have children"))
	}

	for _, c := range tax.Categories() {
		if slices.Contains(tax.Descendants(c), c) {
			errs = append(errs, pkgerrors.NewValidationError("hierarchy."+string(c), nil, fmt.Sprintf("category %s is its own ancestor", c)))
		}
	}

	return errors.Join(errs...)
}

// mappingLoops reports whether following custom mappings from label comes
// back to label. A label mapped to itself is a fixed point, not a loop.
func mappingLoops(label string, mappings map[string]vocabulary.Category) bool {
	lookup := mappingLookup(mappings)
	c, ok := lookup(label)
	if !ok || sameLabel(string(c), label) {
		return false
	}
	for range len(mappings) {
		next, ok := lookup(string(c))
		if !ok || next == c {
			return false
		}
		if sameLabel(string(next), label) {
			return true
		}
		c = next
	}
	return false
}

func sameLabel(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
