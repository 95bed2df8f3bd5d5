// Package http provides http transport for discovery
package http

import (
	stdhttp "net/http"

	"shelfsync/internal/modkit/httpkit"
	"shelfsync/internal/services/discovery/domain"
)

// Register mounts discovery endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.GetJSON[domain.SearchInput](r, "/search", h.search)
	httpkit.PostJSON[domain.SearchInput](r, "/search", h.search)
	httpkit.GetJSON[domain.SuggestInput](r, "/suggest", h.suggest)
	httpkit.Get(r, "/stats", h.stats)
	httpkit.Post(r, "/seed", h.seed)
	httpkit.Delete(r, "/history", h.clearHistory)
}

type handlers struct{ svc domain.ServicePort }

// search backs both GET and POST; query parameters override the body
// @Summary Search, local index first
// @Tags Discovery
// @Param q query string false "query"
// @Param limit query int false "max results"
// @Param remote query bool false "skip the local index"
// @Produce json
// @Router /discovery/search [post]
// @Router /discovery/search [get]
func (h *handlers) search(r *stdhttp.Request, in domain.SearchInput) (any, error) {
	return h.svc.Search(r.Context(), fromQuery(r, in))
}

// @Summary Prefix suggestions
// @Tags Discovery
// @Param prefix query string true "prefix"
// @Produce json
// @Router /discovery/suggest [get]
func (h *handlers) suggest(r *stdhttp.Request, in domain.SuggestInput) (any, error) {
	if p := r.URL.Query().Get("prefix"); p != "" {
		in.Prefix = p
	}
	out := h.svc.Suggest(in)
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// @Summary Index and search counters
// @Tags Discovery
// @Produce json
// @Router /discovery/stats [get]
func (h *handlers) stats(*stdhttp.Request) (any, error) { return h.svc.Stats(), nil }

// @Summary Index persisted pages
// @Tags Discovery
// @Produce json
// @Router /discovery/seed [post]
func (h *handlers) seed(r *stdhttp.Request) (any, error) {
	n, err := h.svc.Seed(r.Context())
	if err != nil {
		return nil, err
	}
	return map[string]int{"indexed": n}, nil
}

// @Summary Forget recent queries
// @Tags Discovery
// @Produce json
// @Router /discovery/history [delete]
func (h *handlers) clearHistory(*stdhttp.Request) (any, error) {
	return map[string]int{"cleared": h.svc.ClearHistory()}, nil
}
