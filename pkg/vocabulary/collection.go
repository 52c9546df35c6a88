package vocabulary

import (
	"slices"

	"github.com/agentstation/utc"
)

// LanguagePair names the direction of a collection.
type LanguagePair string

// Supported language pairs.
const (
	GermanBulgarian LanguagePair = "de-bg"
	BulgarianGerman LanguagePair = "bg-de"
)

// IsValid reports whether p is a supported pair.
func (p LanguagePair) IsValid() bool {
	return p == GermanBulgarian || p == BulgarianGerman
}

// Collection is the unified output of a pipeline run.
type Collection struct {
	ID              string       `json:"id" yaml:"id"`
	Name            string       `json:"name" yaml:"name"`
	Description     string       `json:"description" yaml:"description"`
	LanguagePair    LanguagePair `json:"languagePair" yaml:"languagePair"`
	DifficultyRange [2]int       `json:"difficultyRange" yaml:"difficultyRange"`
	Categories      []Category   `json:"categories" yaml:"categories"`
	ItemCount       int          `json:"itemCount" yaml:"itemCount"`
	Items           []Record     `json:"items" yaml:"items"`
	Statistics      Statistics   `json:"statistics" yaml:"statistics"`
	CreatedAt       utc.Time     `json:"createdAt" yaml:"createdAt"`
	UpdatedAt       utc.Time     `json:"updatedAt" yaml:"updatedAt"`
}

// Statistics are per-dimension item counts.
type Statistics struct {
	ByPartOfSpeech map[PartOfSpeech]int  `json:"byPartOfSpeech" yaml:"byPartOfSpeech"`
	ByDifficulty   map[int]int           `json:"byDifficulty" yaml:"byDifficulty"`
	ByCategory     map[Category]int      `json:"byCategory" yaml:"byCategory"`
	ByLevel        map[LanguageLevel]int `json:"byLevel" yaml:"byLevel"`
}

// CollectionInfo describes a collection being assembled.
type CollectionInfo struct {
	ID           string
	Name         string
	Description  string
	LanguagePair LanguagePair
	Now          utc.Time
}

// NewCollection assembles a collection around items and computes its
// declared fields.
func NewCollection(info CollectionInfo, items []Record) *Collection {
	pair := info.LanguagePair
	if pair == "" {
		pair = GermanBulgarian
	}
	c := &Collection{
		ID:           info.ID,
		Name:         info.Name,
		Description:  info.Description,
		LanguagePair: pair,
		Items:        items,
		CreatedAt:    info.Now,
		UpdatedAt:    info.Now,
	}
	c.Recompute()
	return c
}

// Recompute refreshes itemCount, categories, difficulty range and statistics
// from the current items.
func (c *Collection) Recompute() {
	c.ItemCount = len(c.Items)
	c.Categories = UsedCategories(c.Items)
	c.DifficultyRange = DifficultyBounds(c.Items)
	c.Statistics = ComputeStatistics(c.Items)
}

// ComputeStatistics counts items by part of speech, difficulty, category and
// level. Every part of speech, difficulty and level key is present.
func ComputeStatistics(items []Record) Statistics {
	stats := Statistics{
		ByPartOfSpeech: make(map[PartOfSpeech]int, len(PartsOfSpeech)),
		ByDifficulty:   make(map[int]int, MaxDifficulty),
		ByCategory:     make(map[Category]int),
		ByLevel:        make(map[LanguageLevel]int, len(Levels)),
	}
	for _, p := range PartsOfSpeech {
		stats.ByPartOfSpeech[p] = 0
	}
	for d := MinDifficulty; d <= MaxDifficulty; d++ {
		stats.ByDifficulty[d] = 0
	}
	for _, l := range Levels {
		stats.ByLevel[l] = 0
	}

	for _, item := range items {
		stats.ByPartOfSpeech[item.PartOfSpeech]++
		stats.ByDifficulty[item.Difficulty]++
		for _, c := range item.Categories {
			stats.ByCategory[c]++
		}
		if item.Metadata.Level != "" {
			stats.ByLevel[item.Metadata.Level]++
		}
	}
	return stats
}

// DifficultyBounds returns the min and max difficulty over items. An empty
// slice yields the lowest difficulty for both bounds.
func DifficultyBounds(items []Record) [2]int {
	if len(items) == 0 {
		return [2]int{MinDifficulty, MinDifficulty}
	}
	lo, hi := items[0].Difficulty, items[0].Difficulty
	for _, item := range items[1:] {
		lo = min(lo, item.Difficulty)
		hi = max(hi, item.Difficulty)
	}
	return [2]int{lo, hi}
}

// UsedCategories returns the sorted set of categories referenced by items.
func UsedCategories(items []Record) []Category {
	seen := make(map[Category]struct{})
	var out []Category
	for _, item := range items {
		for _, c := range item.Categories {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}
