package bookapi

import (
	"encoding/json"
	"math"

	"shelfsync/internal/core/book"
	perr "shelfsync/internal/platform/errors"
)

// Shape names which envelope a list response arrived in
type Shape string

// Known shapes
const (
	ShapeArray Shape = "array" // bare [...]
	ShapeItems Shape = "items" // {items: [...]}
	ShapeBooks Shape = "books" // {books: [...]}
	ShapeData  Shape = "data"  // {data: [...]}
	ShapeEmpty Shape = "empty" // null, {} or anything without a list
)

// Page is a normalized list response
// Total nil means unknown; more pages may exist
type Page struct {
	Items   []book.Record `json:"items"`
	Total   *int          `json:"total"`
	HasMore *bool         `json:"hasMore,omitempty"`
	Shape   Shape         `json:"shape"`
	// Ambiguous is set when a count field was dropped because its meaning was unclear
	Ambiguous bool `json:"ambiguous,omitempty"`
}

// DecodePage resolves the envelope of a list body and normalizes its records
func DecodePage(body []byte) (Page, error) {
	var v any
	if err := decode(body, &v); err != nil {
		return Page{}, err
	}
	return PageFrom(v), nil
}

// PageFrom normalizes an already decoded body; it never fails
func PageFrom(v any) Page {
	var (
		p     Page
		items []any
		obj   map[string]any
	)
	switch x := v.(type) {
	case []any:
		p.Shape, items = ShapeArray, x
	case map[string]any:
		obj = x
		p.Shape = ShapeEmpty
		for _, cand := range []struct {
			key   string
			shape Shape
		}{{"items", ShapeItems}, {"books", ShapeBooks}, {"data", ShapeData}} {
			if arr, ok := x[cand.key].([]any); ok {
				p.Shape, items = cand.shape, arr
				break
			}
		}
	default:
		p.Shape = ShapeEmpty
	}

	p.Items = book.FromRawList(items)
	if hm, ok := obj["hasMore"].(bool); ok {
		p.HasMore = &hm
	}
	p.Total, p.Ambiguous = resolveTotal(obj, p.HasMore, len(p.Items))
	return p
}

// resolveTotal applies the conservative rule
// an explicit total wins; totalReturned only counts when hasMore is false;
// without count fields the page length is the total unless the server says more exist
func resolveTotal(obj map[string]any, hasMore *bool, n int) (*int, bool) {
	more := hasMore != nil && *hasMore
	if t, ok := number(obj["total"]); ok {
		return &t, false
	}
	if t, ok := number(obj["totalReturned"]); ok {
		if more {
			return nil, true
		}
		return &t, false
	}
	if more {
		return nil, false
	}
	return &n, false
}

func number(v any) (int, bool) {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i), true
		}
		if f, err := x.Float64(); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int(f), true
		}
	case float64:
		return int(x), true
	case int:
		return x, true
	}
	return 0, false
}

// More reports whether another page is expected after page
func (p Page) More(page, size int) bool {
	if p.Total == nil {
		return true
	}
	return page*size < *p.Total
}

// firstRecord pulls the first object out of a lookup response, or nil
func firstRecord(v any) map[string]any {
	switch x := v.(type) {
	case []any:
		for _, it := range x {
			if m, ok := it.(map[string]any); ok {
				return m
			}
		}
	case map[string]any:
		for _, k := range []string{"items", "books", "data"} {
			if arr, ok := x[k].([]any); ok {
				return firstRecord(arr)
			}
		}
		if len(x) > 0 {
			return x
		}
	}
	return nil
}

// unwrapBook strips {book: {...}} and {data: {...}} wrappers
func unwrapBook(v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, perr.JSONErrf("book payload is not an object")
	}
	if inner, ok := m["book"].(map[string]any); ok {
		return inner, nil
	}
	if inner, ok := m["data"].(map[string]any); ok {
		return inner, nil
	}
	return m, nil
}
