package unify

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Raw is an untyped legacy record as decoded from JSON.
type Raw map[string]any

// has reports whether key holds a non-empty value.
func (r Raw) has(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// str returns the first non-empty string value among keys. Numbers are
// formatted without a trailing fraction.
func (r Raw) str(keys ...string) string {
	for _, k := range keys {
		if s := asString(r[k]); s != "" {
			return s
		}
	}
	return ""
}

// int returns the first integral value among keys.
func (r Raw) int(keys ...string) (int, bool) {
	for _, k := range keys {
		if n, ok := asInt(r[k]); ok {
			return n, true
		}
	}
	return 0, false
}

// bool returns the first boolean value among keys.
func (r Raw) bool(keys ...string) bool {
	for _, k := range keys {
		switch v := r[k].(type) {
		case bool:
			return v
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return b
			}
		}
	}
	return false
}

// strings collects string values of keys, accepting a list or a single
// string per key.
func (r Raw) strings(keys ...string) []string {
	var out []string
	for _, k := range keys {
		out = append(out, asStrings(r[k])...)
	}
	return out
}

// object returns the first nested object among keys.
func (r Raw) object(keys ...string) Raw {
	for _, k := range keys {
		switch v := r[k].(type) {
		case map[string]any:
			return Raw(v)
		case Raw:
			return v
		}
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	}
	return ""
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int(math.Round(t)), true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		if f, err := t.Float64(); err == nil {
			return int(math.Round(f)), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func asStrings(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []string:
		var out []string
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		var out []string
		for _, item := range t {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
