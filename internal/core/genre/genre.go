// Package genre parses loosely typed upstream genre fields into a comparable set
package genre

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"shelfsync/internal/core/normalize"
)

// Set is a set of folded, lower case genre names
type Set map[string]struct{}

// Parse accepts a string, a comma list, a bracket list ("['a', 'b']") or an array
// it never fails; anything unrecognized yields an empty set
func Parse(raw any) Set {
	out := Set{}
	for _, g := range parseList(raw) {
		if f := normalize.Fold(g); f != "" {
			out[f] = struct{}{}
		}
	}
	return out
}

// List returns the raw, trimmed genre names in upstream order without folding
func List(raw any) []string {
	items := parseList(raw)
	out := make([]string, 0, len(items))
	for _, g := range items {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

func parseList(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if x == nil {
				continue
			}
			out = append(out, fmt.Sprint(x))
		}
		return out
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return nil
		}
		return parseList(decoded)
	case string:
		return parseString(v)
	default:
		return nil
	}
}

func parseString(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		var arr []any
		// python style lists use single quotes
		if err := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), &arr); err == nil {
			return parseList(arr)
		}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FromFilters extracts the desired genres from a filter map ("genres" or "genre")
func FromFilters(filters map[string][]string) Set {
	out := Set{}
	for _, key := range []string{"genres", "genre"} {
		for _, v := range filters[key] {
			for g := range Parse(v) {
				out[g] = struct{}{}
			}
		}
	}
	return out
}

// Has reports membership of an already folded name
func (s Set) Has(g string) bool {
	_, ok := s[g]
	return ok
}

// Intersects reports whether s and o share a genre
func (s Set) Intersects(o Set) bool {
	a, b := s, o
	if len(a) > len(b) {
		a, b = b, a
	}
	for g := range a {
		if _, ok := b[g]; ok {
			return true
		}
	}
	return false
}

// Sorted returns the members in lexical order
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for g := range s {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
