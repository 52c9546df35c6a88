package categories_test

import (
	"testing"

	"github.com/agentstation/vocab/pkg/categories"
	pkgerrors "github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardize(t *testing.T) {
	cfg := categories.DefaultConfig()

	tests := []struct {
		label  string
		want   vocabulary.Category
		method categories.Method
	}{
		{"food", "food", categories.MethodExact},
		{"Common Phrases", "common_phrases", categories.MethodExact},
		{"time_expressions", "time_expressions", categories.MethodExact},
		{"Fruit", "fruits", categories.MethodSubstring},
		{"Natur", "nature", categories.MethodSubstring},
		{"basic greetings", "greetings", categories.MethodSubstring},
		{"Lebensmittel", "food", categories.MethodSynonym},
		{"Familie", "family", categories.MethodSynonym},
		{"Begrüßung", "greetings", categories.MethodSynonym},
		{"Храна", "food", categories.MethodSynonym},
		{"Цветове", "colors", categories.MethodSynonym},
		{"Tag", "time", categories.MethodSynonym},
		{"Einkauf", vocabulary.Uncategorized, categories.MethodSynonym},
		{"Verben", "verbs", categories.MethodHeuristic},
		{"Haushalt", "house", categories.MethodHeuristic},
		{"Essen und Trinken", "food", categories.MethodHeuristic},
		{"числителни", "numbers", categories.MethodHeuristic},
		{"Obst", vocabulary.Uncategorized, categories.MethodDefault},
		{"", vocabulary.Uncategorized, categories.MethodDefault},
		{"!!!", vocabulary.Uncategorized, categories.MethodDefault},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			res := categories.Resolve(tt.label, cfg)
			assert.Equal(t, tt.want, res.Category)
			assert.Equal(t, tt.method, res.Method)
			assert.Equal(t, tt.want, categories.Standardize(tt.label, cfg))
		})
	}
}

func TestStandardizeIsIdempotentAndTotal(t *testing.T) {
	cfg := categories.DefaultConfig()
	labels := []string{
		"Lebensmittel", "Obst", "Fruit", "Verben", "Храна", "времето", "dom",
		"nobody knows", "a", "12", "Common Phrases", "Einkauf",
	}
	for _, c := range cfg.Hierarchy.Categories() {
		labels = append(labels, string(c))
	}

	for _, label := range labels {
		once := categories.Standardize(label, cfg)
		assert.True(t, cfg.Hierarchy.Known(once), "label %q resolved to undeclared %q", label, once)
		assert.Equal(t, once, categories.Standardize(string(once), cfg), "label %q", label)
	}
}

func TestStandardizeCustomMappings(t *testing.T) {
	cfg := categories.DefaultConfig()
	cfg.CustomMappings = map[string]vocabulary.Category{
		"Obst":    "fruits",
		"Sprache": "not-a-category",
		"snacks":  "food",
		"food":    "food",
	}

	assert.Equal(t, vocabulary.Category("fruits"), categories.Standardize("Obst", cfg))
	assert.Equal(t, vocabulary.Category("fruits"), categories.Standardize("obst", cfg))
	assert.Equal(t, vocabulary.Category("food"), categories.Standardize("snacks", cfg))
	assert.Equal(t, vocabulary.Uncategorized, categories.Standardize("Sprache", cfg), "undeclared targets are ignored")
}

func TestStandardizeUnknownDefaultFallsBack(t *testing.T) {
	cfg := categories.DefaultConfig()
	cfg.DefaultCategory = "misc"

	assert.Equal(t, vocabulary.Uncategorized, categories.Standardize("Obst", cfg))
}

func TestConsolidate(t *testing.T) {
	cfg := categories.DefaultConfig()

	t.Run("adds ancestors and dedupes", func(t *testing.T) {
		r := vocabulary.Record{Categories: []vocabulary.Category{"Fruit", "fruits", "Lebensmittel"}}
		assert.Equal(t, []vocabulary.Category{"food", "fruits"}, categories.Consolidate(r, cfg))
	})

	t.Run("without parents", func(t *testing.T) {
		noParents := cfg
		noParents.CreateParentCategories = false
		r := vocabulary.Record{Categories: []vocabulary.Category{"verbs"}}
		assert.Equal(t, []vocabulary.Category{"verbs"}, categories.Consolidate(r, noParents))
	})

	t.Run("empty falls back to default", func(t *testing.T) {
		assert.Equal(t, []vocabulary.Category{vocabulary.Uncategorized}, categories.Consolidate(vocabulary.Record{}, cfg))
	})

	t.Run("uncategorized dropped next to real categories", func(t *testing.T) {
		r := vocabulary.Record{Categories: []vocabulary.Category{"Obst", "Farben"}}
		assert.Equal(t, []vocabulary.Category{"colors"}, categories.Consolidate(r, cfg))
	})

	t.Run("result is closed under parent", func(t *testing.T) {
		r := vocabulary.Record{Categories: []vocabulary.Category{"weather", "days", "verbs"}}
		got := categories.Consolidate(r, cfg)
		for _, c := range got {
			for _, p := range cfg.Hierarchy.Parents(c) {
				assert.Contains(t, got, p)
			}
		}
	})
}

func TestConsolidateAll(t *testing.T) {
	records := []vocabulary.Record{
		{ID: "1", Categories: []vocabulary.Category{"Farben"}},
		{ID: "2", Categories: []vocabulary.Category{"Fruit"}},
		{ID: "3"},
	}

	out, counts := categories.ConsolidateAll(records, categories.DefaultConfig())

	require.Len(t, out, 3)
	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, []vocabulary.Category{"colors"}, out[0].Categories)
	assert.Equal(t, []vocabulary.Category{"food", "fruits"}, out[1].Categories)
	assert.Equal(t, []vocabulary.Category{vocabulary.Uncategorized}, out[2].Categories)
	assert.Equal(t, 1, counts["food"])
	assert.Equal(t, 1, counts[vocabulary.Uncategorized])
	assert.Equal(t, []vocabulary.Category{"Farben"}, records[0].Categories, "input is not modified")
}

func TestReport(t *testing.T) {
	report := categories.Report([]string{"Obst", "Farben", "Farben", "food"}, categories.DefaultConfig())

	require.Len(t, report.Resolutions, 3)
	assert.Equal(t, "Farben", report.Resolutions[0].Label)
	assert.Equal(t, []string{"Obst"}, report.Unmapped)
	assert.Equal(t, 1, report.Counts["colors"])
}

func TestParseConfig(t *testing.T) {
	t.Run("overrides on top of defaults", func(t *testing.T) {
		cfg, err := categories.ParseConfig([]byte(`
customMappings:
  Obst: fruits
hierarchy:
  food: [fruits, vegetables, sweets]
createParentCategories: false
`))
		require.NoError(t, err)
		assert.Equal(t, vocabulary.Category("fruits"), cfg.CustomMappings["Obst"])
		assert.True(t, cfg.Hierarchy.Known("sweets"))
		assert.True(t, cfg.Hierarchy.Known("greetings"))
		assert.False(t, cfg.CreateParentCategories)
		assert.Equal(t, vocabulary.Uncategorized, cfg.DefaultCategory)
	})

	t.Run("replace hierarchy", func(t *testing.T) {
		cfg, err := categories.ParseConfig([]byte(`
replaceHierarchy: true
hierarchy:
  food: [fruits]
`))
		require.NoError(t, err)
		assert.False(t, cfg.Hierarchy.Known("greetings"))
		assert.True(t, cfg.Hierarchy.Known(vocabulary.Uncategorized))
	})

	t.Run("invalid mapping target", func(t *testing.T) {
		_, err := categories.ParseConfig([]byte(`
customMappings:
  Obst: fruit_salad
`))
		require.Error(t, err)
		assert.True(t, pkgerrors.IsConfigError(err))
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := categories.ParseConfig([]byte("customMappings: [unclosed"))
		require.Error(t, err)
	})
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, categories.ValidateConfig(categories.DefaultConfig()))

	cyclic := categories.DefaultConfig()
	cyclic.Hierarchy["fruits"] = []vocabulary.Category{"food"}
	assert.Error(t, categories.ValidateConfig(cyclic))

	withChildren := categories.DefaultConfig()
	withChildren.Hierarchy[vocabulary.Uncategorized] = []vocabulary.Category{"misc"}
	assert.Error(t, categories.ValidateConfig(withChildren))

	badDefault := categories.DefaultConfig()
	badDefault.DefaultCategory = "misc"
	assert.Error(t, categories.ValidateConfig(badDefault))
}

func TestValidateConfigMappingChains(t *testing.T) {
	t.Run("chain and fixed point accepted", func(t *testing.T) {
		cfg := categories.DefaultConfig()
		cfg.CustomMappings = map[string]vocabulary.Category{
			"Obst":   "fruits",
			"fruits": "food",
			"food":   "food",
		}
		require.NoError(t, categories.ValidateConfig(cfg))
		assert.Equal(t, vocabulary.Category("food"), categories.Standardize("Obst", cfg))
		assert.Equal(t, vocabulary.Category("food"), categories.Standardize("food", cfg))
	})

	t.Run("loop rejected", func(t *testing.T) {
		cfg := categories.DefaultConfig()
		cfg.CustomMappings = map[string]vocabulary.Category{
			"Obst":   "fruits",
			"fruits": "food",
			"Food":   "fruits",
		}
		err := categories.ValidateConfig(cfg)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidationError(err))
		assert.Contains(t, err.Error(), "customMappings.fruits")
		assert.Contains(t, err.Error(), "customMappings.Food")
		assert.NotContains(t, err.Error(), "customMappings.Obst")
	})

	t.Run("loop in file rejected", func(t *testing.T) {
		_, err := categories.ParseConfig([]byte(`
customMappings:
  colors: nature
  nature: colors
`))
		require.Error(t, err)
		assert.True(t, pkgerrors.IsConfigError(err))
	})
}

func TestTaxonomy(t *testing.T) {
	tax := categories.DefaultTaxonomy()

	assert.Equal(t, []vocabulary.Category{"grammar"}, tax.Parents("verbs"))
	assert.Equal(t, []vocabulary.Category{"food"}, tax.Ancestors("fruits"))
	assert.Equal(t, []vocabulary.Category{"food", "fruits"}, tax.Path("fruits"))
	assert.Contains(t, tax.Descendants("time"), vocabulary.Category("months"))
	assert.Empty(t, tax.Descendants(vocabulary.Uncategorized))
	assert.Contains(t, tax.Roots(), vocabulary.Category("food"))
	assert.NotContains(t, tax.Roots(), vocabulary.Category("fruits"))
	assert.True(t, tax.Known(vocabulary.Uncategorized))
	assert.False(t, tax.Known("sweets"))

	multi := tax.Clone()
	multi["weather"] = nil
	multi["seasons"] = []vocabulary.Category{"weather"}
	assert.Equal(t, []vocabulary.Category{"nature", "seasons"}, multi.Parents("weather"))
	assert.Equal(t, []vocabulary.Category{"nature", "weather"}, multi.Path("weather"))
	assert.False(t, tax.Known("seasons"), "clone does not alias")

	tree := tax.Tree()
	var food *categories.Node
	for i := range tree {
		if tree[i].Category == "food" {
			food = &tree[i]
		}
	}
	require.NotNil(t, food)
	assert.Len(t, food.Children, 5)
}
