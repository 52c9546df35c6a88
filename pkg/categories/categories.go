// Package categories maps free-form legacy category labels onto the
// canonical category taxonomy.
//
// Resolution tries, in order: the caller's override table, an exact match
// against the canonical names, a substring match in either direction, a
// German, Bulgarian and English synonym table, a few word-root heuristics,
// and finally the configured default category.
package categories

import (
	"slices"
	"strings"
	"unicode"

	"github.com/agentstation/vocab/pkg/textnorm"
	"github.com/agentstation/vocab/pkg/vocabulary"
)

// Config controls category standardization.
type Config struct {
	// CustomMappings maps raw labels to canonical categories and wins over
	// every other rule.
	CustomMappings map[string]vocabulary.Category `yaml:"customMappings"`
	// Hierarchy declares the canonical categories and their children.
	Hierarchy Taxonomy `yaml:"hierarchy"`
	// DefaultCategory is used when no rule matches.
	DefaultCategory vocabulary.Category `yaml:"defaultCategory"`
	// CreateParentCategories adds every ancestor of a resolved category.
	CreateParentCategories bool `yaml:"createParentCategories"`
}

// DefaultConfig returns the default standardization configuration.
func DefaultConfig() Config {
	return Config{
		CustomMappings:         map[string]vocabulary.Category{},
		Hierarchy:              DefaultTaxonomy(),
		DefaultCategory:        vocabulary.Uncategorized,
		CreateParentCategories: true,
	}
}

// Method names the rule that resolved a label.
type Method string

// Resolution methods in the order they are tried.
const (
	MethodCustom    Method = "custom"
	MethodExact     Method = "exact"
	MethodSubstring Method = "substring"
	MethodSynonym   Method = "synonym"
	MethodHeuristic Method = "heuristic"
	MethodDefault   Method = "default"
)

// Resolution is the outcome of resolving one label.
type Resolution struct {
	Label    string              `json:"label" yaml:"label"`
	Category vocabulary.Category `json:"category" yaml:"category"`
	Method   Method              `json:"method" yaml:"method"`
}

// minReverseSubstring is the shortest label that may match as a substring
// of a canonical name.
const minReverseSubstring = 3

// synonyms maps category names in English, German and Bulgarian to
// canonical categories. Keys are normalized at init.
var synonyms = normalizeKeys(map[string]vocabulary.Category{
	"food": "food", "household": "house", "verbs": "verbs", "adjectives": "adjectives",
	"greetings": "greetings", "numbers": "numbers", "family": "family", "colors": "colors",
	"colours": "colors", "animals": "animals", "body": "body", "clothing": "clothing",
	"nature": "nature", "transport": "transport", "technology": "technology", "time": "time",
	"weather": "weather", "professions": "professions", "jobs": "professions", "places": "places",
	"grammar": "grammar", "culture": "culture", "common phrases": "common_phrases",
	"phrases": "common_phrases", "expressions": "common_phrases",

	"zahlen": "numbers", "familie": "family", "farben": "colors", "begrüßung": "greetings",
	"ausdruck": "common_phrases", "ausdrücke": "common_phrases", "lebensmittel": "food",
	"gesundheit": "body", "natur": "nature", "einkauf": vocabulary.Uncategorized,
	"tag": "time", "zeit": "time", "tiere": "animals", "kleidung": "clothing",
	"berufe": "professions", "orte": "places", "kultur": "culture", "wetter": "weather",

	"храна": "food", "дом": "house", "глаголи": "verbs", "прилагателни": "adjectives",
	"поздрави": "greetings", "числа": "numbers", "семейство": "family", "цветове": "colors",
	"животни": "animals", "тяло": "body", "облекло": "clothing", "природа": "nature",
	"транспорт": "transport", "технологии": "technology", "време": "time", "времето": "weather",
	"професии": "professions", "места": "places", "граматика": "grammar", "култура": "culture",
	"фрази": "common_phrases", "изрази": "common_phrases",
})

// rootHeuristics matches common word roots in either language. Order
// matters: the first matching root wins.
var rootHeuristics = []struct {
	root     string
	category vocabulary.Category
}{
	{"verb", "verbs"}, {"глагол", "verbs"},
	{"adjektiv", "adjectives"}, {"прилагател", "adjectives"},
	{"zahl", "numbers"}, {"числ", "numbers"},
	{"farb", "colors"}, {"цвет", "colors"},
	{"famil", "family"}, {"семей", "family"},
	{"begrüß", "greetings"}, {"gruß", "greetings"}, {"поздрав", "greetings"},
	{"haus", "house"}, {"дом", "house"},
	{"essen", "food"}, {"хран", "food"},
}

// Standardize resolves label to a canonical category. It never fails and
// is idempotent for any configuration ValidateConfig accepts.
func Standardize(label string, cfg Config) vocabulary.Category {
	return Resolve(label, cfg).Category
}

// Resolve resolves label and reports which rule matched.
func Resolve(label string, cfg Config) Resolution {
	res := Resolution{Label: label}
	tax := cfg.taxonomy()

	if c, ok := customMapping(label, cfg, tax); ok {
		res.Category, res.Method = c, MethodCustom
		return res
	}

	key := normalizeName(label)
	if key == "" {
		res.Category, res.Method = cfg.defaultCategory(tax), MethodDefault
		return res
	}

	index := canonicalIndex(tax)
	if c, ok := index[key]; ok {
		res.Category, res.Method = c, MethodExact
		return res
	}

	if c, ok := substringMatch(key, index); ok {
		res.Category, res.Method = c, MethodSubstring
		return res
	}

	if c, ok := synonyms[key]; ok && tax.Known(c) {
		res.Category, res.Method = c, MethodSynonym
		return res
	}

	for _, h := range rootHeuristics {
		if strings.Contains(key, h.root) && tax.Known(h.category) {
			res.Category, res.Method = h.category, MethodHeuristic
			return res
		}
	}

	res.Category, res.Method = cfg.defaultCategory(tax), MethodDefault
	return res
}

// customMapping follows override chains until a label no longer maps,
// ignoring targets the taxonomy does not declare.
func customMapping(label string, cfg Config, tax Taxonomy) (vocabulary.Category, bool) {
	if len(cfg.CustomMappings) == 0 {
		return "", false
	}
	lookup := mappingLookup(cfg.CustomMappings)

	c, ok := lookup(label)
	if !ok || !tax.Known(c) {
		return "", false
	}
	for range len(cfg.CustomMappings) {
		next, ok := lookup(string(c))
		if !ok || next == c || !tax.Known(next) {
			break
		}
		c = next
	}
	return c, true
}

// mappingLookup finds the target of a label, matching exactly first and
// then case-insensitively in sorted key order.
func mappingLookup(mappings map[string]vocabulary.Category) func(string) (vocabulary.Category, bool) {
	keys := make([]string, 0, len(mappings))
	for k := range mappings {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return func(s string) (vocabulary.Category, bool) {
		if c, ok := mappings[s]; ok {
			return c, true
		}
		s = strings.TrimSpace(s)
		for _, k := range keys {
			if strings.EqualFold(strings.TrimSpace(k), s) {
				return mappings[k], true
			}
		}
		return "", false
	}
}

// substringMatch prefers the longest canonical name found inside key, then
// the shortest canonical name containing key.
func substringMatch(key string, index map[string]vocabulary.Category) (vocabulary.Category, bool) {
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if la, lb := len([]rune(a)), len([]rune(b)); la != lb {
			return lb - la
		}
		return strings.Compare(a, b)
	})

	for _, name := range names {
		if strings.Contains(key, name) {
			return index[name], true
		}
	}

	if len([]rune(key)) < minReverseSubstring {
		return "", false
	}
	for i := len(names) - 1; i >= 0; i-- {
		if strings.Contains(names[i], key) {
			return index[names[i]], true
		}
	}
	return "", false
}

func canonicalIndex(tax Taxonomy) map[string]vocabulary.Category {
	index := make(map[string]vocabulary.Category)
	for _, c := range tax.Categories() {
		index[normalizeName(string(c))] = c
	}
	return index
}

// normalizeName folds a label to lowercase letters and digits.
func normalizeName(label string) string {
	var b strings.Builder
	for _, r := range textnorm.Normalize(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeKeys(in map[string]vocabulary.Category) map[string]vocabulary.Category {
	out := make(map[string]vocabulary.Category, len(in))
	for k, v := range in {
		out[normalizeName(k)] = v
	}
	return out
}

// Taxonomy returns the hierarchy in effect, the default taxonomy when none
// is configured.
func (cfg Config) Taxonomy() Taxonomy {
	return cfg.taxonomy()
}

// Default returns the category used when nothing else applies.
func (cfg Config) Default() vocabulary.Category {
	return cfg.defaultCategory(cfg.taxonomy())
}

func (cfg Config) taxonomy() Taxonomy {
	if len(cfg.Hierarchy) == 0 {
		return DefaultTaxonomy()
	}
	return cfg.Hierarchy
}

func (cfg Config) defaultCategory(tax Taxonomy) vocabulary.Category {
	if cfg.DefaultCategory != "" && tax.Known(cfg.DefaultCategory) {
		return cfg.DefaultCategory
	}
	return vocabulary.Uncategorized
}
