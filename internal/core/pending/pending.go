// Package pending merges locally created, unconfirmed records into server lists
//
// Local records carry a synthetic id that never matches a server id, so a pending
// record counts as confirmed when some server record has the same content.
package pending

import (
	"strings"

	"github.com/google/uuid"
)

// LocalPrefix marks synthetic ids
const LocalPrefix = "local-"

// NewID returns a fresh synthetic id
func NewID() string { return LocalPrefix + uuid.NewString() }

// IsLocal reports whether id was minted by NewID
func IsLocal(id string) bool { return strings.HasPrefix(id, LocalPrefix) }

// Merge drops every pending record confirmed by a server record and returns
// the still pending ones followed by the server list, plus the still pending set alone
func Merge[T any](local, server []T, confirmed func(local, server T) bool) (merged, still []T) {
	still = make([]T, 0, len(local))
	for _, p := range local {
		dup := false
		for _, s := range server {
			if confirmed(p, s) {
				dup = true
				break
			}
		}
		if !dup {
			still = append(still, p)
		}
	}
	merged = make([]T, 0, len(still)+len(server))
	merged = append(merged, still...)
	merged = append(merged, server...)
	return merged, still
}

// Prepend puts item in front of list without aliasing list's backing array
func Prepend[T any](list []T, item T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, item)
	return append(out, list...)
}

// Identity is who wrote a record; either field may be empty
type Identity struct {
	Email string `json:"userEmail,omitempty"`
	Name  string `json:"userName,omitempty"`
}

// Matches reports whether two identities name the same person
// email is compared first, name only when both sides carry one
func (i Identity) Matches(o Identity) bool {
	if i.Email != "" && o.Email != "" && strings.EqualFold(strings.TrimSpace(i.Email), strings.TrimSpace(o.Email)) {
		return true
	}
	return i.Name != "" && o.Name != "" && strings.TrimSpace(i.Name) == strings.TrimSpace(o.Name)
}

// SameText compares comment bodies exactly, ignoring surrounding whitespace
func SameText(a, b string) bool { return strings.TrimSpace(a) == strings.TrimSpace(b) }
