// Package domain defines the types and ports of the catalog service
package domain

import (
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"shelfsync/internal/core/book"
)

// PageKey identifies one logical page request
type PageKey struct {
	Page    int
	Size    int
	Query   string
	Filters map[string][]string
}

// String serializes the key with a fixed field order; filter keys and values are
// sorted and values deduplicated so logically equal filter sets produce the same key
func (k PageKey) String() string {
	var b strings.Builder
	b.WriteString("p=")
	b.WriteString(strconv.Itoa(k.Page))
	b.WriteString("|s=")
	b.WriteString(strconv.Itoa(k.Size))
	b.WriteString("|q=")
	b.WriteString(strings.TrimSpace(k.Query))
	b.WriteString("|f=")

	names := make([]string, 0, len(k.Filters))
	for n, vals := range k.Filters {
		if len(vals) > 0 {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	for i, n := range names {
		if i > 0 {
			b.WriteByte(';')
		}
		vals := slices.Compact(slices.Sorted(slices.Values(k.Filters[n])))
		b.WriteString(n)
		b.WriteByte(':')
		b.WriteString(strings.Join(vals, ","))
	}
	return b.String()
}

// IsSearch reports whether the key targets the search endpoint
func (k PageKey) IsSearch() bool { return strings.TrimSpace(k.Query) != "" }

// PageResult is one normalized page; Total nil means unknown
type PageResult struct {
	Items []book.Record `json:"items"`
	Total *int          `json:"total"`
}

// LastFetch describes the most recent network fetch
type LastFetch struct {
	Page      int       `json:"page"`
	ItemCount int       `json:"itemCount"`
	Hash      string    `json:"hash,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Phase is the view state machine position
type Phase string

// Phases
const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// State is the observable view
type State struct {
	Phase         Phase               `json:"phase"`
	Page          int                 `json:"page"`
	PageSize      int                 `json:"pageSize"`
	Query         string              `json:"query,omitempty"`
	Filters       map[string][]string `json:"filters,omitempty"`
	Books         []book.Record       `json:"books"`
	Total         *int                `json:"total"`
	Loading       bool                `json:"loading"`
	Error         string              `json:"error,omitempty"`
	HasMore       bool                `json:"hasMore"`
	IsFiltering   bool                `json:"isFiltering"`
	IsRateLimited bool                `json:"isRateLimited"`
	ServerWarning bool                `json:"serverWarning"`
	Fallback      bool                `json:"fallback,omitempty"`
	LastFetch     LastFetch           `json:"lastFetch"`
}

// LoadInput selects what a load operation targets
type LoadInput struct {
	Page    int                 `json:"page" validate:"omitempty,min=1"`
	Query   string              `json:"q,omitempty" validate:"omitempty,max=200"`
	Filters map[string][]string `json:"filters,omitempty"`
}

// Stats is a diagnostic snapshot of the orchestrator
type Stats struct {
	CachedPages int   `json:"cachedPages"`
	InFlight    int   `json:"inFlight"`
	Fetches     int64 `json:"fetches"`
	CacheHits   int64 `json:"cacheHits"`
	Deduped     int64 `json:"deduped"`
	Prefetches  int64 `json:"prefetches"`
	Cooldowns   int64 `json:"cooldowns"`
}

// HasMore follows the page arithmetic when the total is known; unknown means more
func HasMore(page, size int, total *int) bool {
	if total == nil {
		return true
	}
	return page*size < *total
}
