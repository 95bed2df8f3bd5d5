package http

import (
	stdhttp "net/http"
	"strconv"

	"shelfsync/internal/services/discovery/domain"
)

// fromQuery lets GET callers pass q, limit and remote as URL parameters
func fromQuery(r *stdhttp.Request, in domain.SearchInput) domain.SearchInput {
	v := r.URL.Query()
	if q := v.Get("q"); q != "" {
		in.Query = q
	}
	if n, err := strconv.Atoi(v.Get("limit")); err == nil && n > 0 {
		in.Limit = n
	}
	if b, err := strconv.ParseBool(v.Get("remote")); err == nil {
		in.Remote = b
	}
	return in
}
