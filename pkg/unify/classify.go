package unify

import (
	"encoding/json"
	"strings"

	"github.com/agentstation/vocab/pkg/vocabulary"
)

// Shape names a detected input format.
type Shape string

// Input shapes in detection priority order.
const (
	ShapeCanonical     Shape = "canonical"
	ShapeNamedLanguage Shape = "named_language"
	ShapeDirectional   Shape = "directional"
	ShapeFallback      Shape = "fallback"
)

// Variant is a classified input record. The set of variants is closed:
// Canonical, NamedLanguage, Directional and Fallback.
type Variant interface {
	Shape() Shape
	variant()
}

// Canonical is a record already in the canonical shape.
type Canonical struct {
	Record vocabulary.Record
}

// NamedLanguage carries terms under language-named fields such as
// german/bulgarian or de/bg.
type NamedLanguage struct {
	Raw Raw
}

// Directional carries a word and its translation with an optional
// language direction.
type Directional struct {
	Raw Raw
	// WordIsSource is true when the word field holds the German term.
	WordIsSource bool
}

// Fallback is any record no other variant recognized.
type Fallback struct {
	Raw Raw
}

// Shape implements Variant.
func (Canonical) Shape() Shape { return ShapeCanonical }

// Shape implements Variant.
func (NamedLanguage) Shape() Shape { return ShapeNamedLanguage }

// Shape implements Variant.
func (Directional) Shape() Shape { return ShapeDirectional }

// Shape implements Variant.
func (Fallback) Shape() Shape { return ShapeFallback }

func (Canonical) variant()     {}
func (NamedLanguage) variant() {}
func (Directional) variant()   {}
func (Fallback) variant()      {}

var (
	germanCodes    = map[string]bool{"de": true, "ger": true, "deu": true, "german": true, "deutsch": true}
	bulgarianCodes = map[string]bool{"bg": true, "bul": true, "bulgarian": true, "български": true}
)

// Classify detects the shape of raw. It is pure and never fails.
func Classify(raw Raw) Variant {
	if rec, ok := decodeCanonical(raw); ok {
		return Canonical{Record: rec}
	}

	switch {
	case raw.has("german") && raw.has("bulgarian"),
		raw.has("de") && raw.has("bg"),
		raw.has("de") && raw.has("bul"),
		raw.has("german") && (raw.has("bg") || raw.has("bul")),
		raw.has("bulgarian") && (raw.has("de") || raw.has("germanText")):
		return NamedLanguage{Raw: raw}
	}

	switch {
	case raw.has("word") && raw.has("translation"),
		raw.has("word") && raw.has("de"),
		raw.has("bg") && raw.has("translation"),
		raw.has("word") && raw.has("target_lang"),
		raw.has("word") && raw.has("source_lang"):
		return Directional{Raw: raw, WordIsSource: wordIsSource(raw)}
	}

	return Fallback{Raw: raw}
}

// wordIsSource reads the direction tags. source_lang names the language of
// the word field and target_lang the language of the translation. Without
// tags the word is the Bulgarian term.
func wordIsSource(raw Raw) bool {
	src := strings.ToLower(raw.str("source_lang", "sourceLang"))
	dst := strings.ToLower(raw.str("target_lang", "targetLang"))
	switch {
	case germanCodes[src] || bulgarianCodes[dst]:
		return true
	case bulgarianCodes[src] || germanCodes[dst]:
		return false
	}
	return false
}

// decodeCanonical accepts raw as canonical when it carries a version marker
// and decodes cleanly into a Record with both terms.
func decodeCanonical(raw Raw) (vocabulary.Record, bool) {
	version, ok := raw.int("version")
	if !ok || version < vocabulary.CanonicalVersion {
		return vocabulary.Record{}, false
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return vocabulary.Record{}, false
	}
	var rec vocabulary.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return vocabulary.Record{}, false
	}
	if rec.SourceTerm == "" || rec.TargetTerm == "" {
		return vocabulary.Record{}, false
	}
	return rec, true
}
