package categories

import (
	"slices"

	"github.com/agentstation/vocab/pkg/vocabulary"
)

// Taxonomy maps a category to its child categories. A category may appear
// under several parents. Categories without children are listed with a nil
// slice so the taxonomy also serves as the canonical enumeration.
type Taxonomy map[vocabulary.Category][]vocabulary.Category

// DefaultTaxonomy returns the built-in category hierarchy.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		"food":    {"fruits", "vegetables", "meats", "dairy", "beverages"},
		"body":    {"anatomy", "health"},
		"house":   {"furniture", "appliances", "rooms"},
		"nature":  {"weather", "geography", "plants"},
		"time":    {"days", "months", "time_expressions"},
		"grammar": {"verbs", "nouns", "adjectives", "adverbs", "pronouns", "prepositions", "conjunctions", "interjections"},

		"greetings":              nil,
		"numbers":                nil,
		"family":                 nil,
		"colors":                 nil,
		"animals":                nil,
		"clothing":               nil,
		"transport":              nil,
		"technology":             nil,
		"professions":            nil,
		"places":                 nil,
		"culture":                nil,
		"common_phrases":         nil,
		vocabulary.Uncategorized: nil,
	}
}

// Known reports whether c is declared by the taxonomy. Uncategorized is
// always known.
func (t Taxonomy) Known(c vocabulary.Category) bool {
	if c == vocabulary.Uncategorized {
		return true
	}
	if _, ok := t[c]; ok {
		return true
	}
	for _, children := range t {
		if slices.Contains(children, c) {
			return true
		}
	}
	return false
}

// Categories returns every declared category in sorted order.
func (t Taxonomy) Categories() []vocabulary.Category {
	set := map[vocabulary.Category]struct{}{vocabulary.Uncategorized: {}}
	for parent, children := range t {
		set[parent] = struct{}{}
		for _, c := range children {
			set[c] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// Parents returns the direct parents of c.
func (t Taxonomy) Parents(c vocabulary.Category) []vocabulary.Category {
	var out []vocabulary.Category
	for parent, children := range t {
		if slices.Contains(children, c) {
			out = append(out, parent)
		}
	}
	slices.Sort(out)
	return out
}

// Ancestors returns every category reachable from c through parent links.
func (t Taxonomy) Ancestors(c vocabulary.Category) []vocabulary.Category {
	return t.walk(c, t.Parents)
}

// Descendants returns every category reachable from c through child links.
func (t Taxonomy) Descendants(c vocabulary.Category) []vocabulary.Category {
	return t.walk(c, func(c vocabulary.Category) []vocabulary.Category { return t[c] })
}

func (t Taxonomy) walk(start vocabulary.Category, next func(vocabulary.Category) []vocabulary.Category) []vocabulary.Category {
	seen := map[vocabulary.Category]struct{}{}
	queue := next(start)
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		queue = append(queue, next(c)...)
	}
	return sortedKeys(seen)
}

// Path returns the chain from a root to c following the first parent at
// each level.
func (t Taxonomy) Path(c vocabulary.Category) []vocabulary.Category {
	path := []vocabulary.Category{c}
	seen := map[vocabulary.Category]struct{}{c: {}}
	for {
		parents := t.Parents(path[0])
		if len(parents) == 0 {
			return path
		}
		p := parents[0]
		if _, ok := seen[p]; ok {
			return path
		}
		seen[p] = struct{}{}
		path = append([]vocabulary.Category{p}, path...)
	}
}

// Roots returns the declared categories that have no parent.
func (t Taxonomy) Roots() []vocabulary.Category {
	var out []vocabulary.Category
	for _, c := range t.Categories() {
		if len(t.Parents(c)) == 0 {
			out = append(out, c)
		}
	}
	return out
}

// Node is one category of a rendered tree.
type Node struct {
	Category vocabulary.Category `json:"category" yaml:"category"`
	Children []Node              `json:"children,omitempty" yaml:"children,omitempty"`
}

// Tree renders the taxonomy from its roots. A category with several
// parents appears under each of them.
func (t Taxonomy) Tree() []Node {
	var build func(c vocabulary.Category, onPath map[vocabulary.Category]bool) Node
	build = func(c vocabulary.Category, onPath map[vocabulary.Category]bool) Node {
		n := Node{Category: c}
		onPath[c] = true
		children := slices.Clone(t[c])
		slices.Sort(children)
		for _, child := range children {
			if onPath[child] {
				continue
			}
			n.Children = append(n.Children, build(child, onPath))
		}
		delete(onPath, c)
		return n
	}

	var out []Node
	for _, root := range t.Roots() {
		out = append(out, build(root, map[vocabulary.Category]bool{}))
	}
	return out
}

// Clone returns a deep copy of t.
func (t Taxonomy) Clone() Taxonomy {
	out := make(Taxonomy, len(t))
	for k, v := range t {
		out[k] = slices.Clone(v)
	}
	return out
}

func sortedKeys(set map[vocabulary.Category]struct{}) []vocabulary.Category {
	out := make([]vocabulary.Category, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}
