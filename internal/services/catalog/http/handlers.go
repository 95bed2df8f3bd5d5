// Package http provides http transport for the catalog
package http

import (
	"context"
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"shelfsync/internal/modkit/httpkit"
	perr "shelfsync/internal/platform/errors"
	"shelfsync/internal/services/catalog/domain"
)

// Register mounts catalog endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/state", h.state)
	httpkit.Get(r, "/stats", h.stats)
	httpkit.PostJSON[domain.LoadInput](r, "/load", h.load)
	httpkit.PostJSON[domain.LoadInput](r, "/append", h.append)
	httpkit.PostJSON[GotoInput](r, "/goto", h.goTo)
	httpkit.PostJSON[domain.LoadInput](r, "/search", h.search)
	httpkit.Post(r, "/next", h.nav((domain.ServicePort).NextPage))
	httpkit.Post(r, "/prev", h.nav((domain.ServicePort).PrevPage))
	httpkit.Post(r, "/refresh", h.nav((domain.ServicePort).Refresh))
	httpkit.PostJSON[CountInput](r, "/count", h.count)
	httpkit.Get(r, "/books/{id}", h.book)
}

// GotoInput selects an absolute page
type GotoInput struct {
	Page int `json:"page"`
}

// CountInput carries the filters to count under
type CountInput struct {
	Filters map[string][]string `json:"filters,omitempty"`
}

// View is what navigation endpoints return, the page plus the resulting state
type View struct {
	Result domain.PageResult `json:"result"`
	State  domain.State      `json:"state"`
}

type handlers struct{ svc domain.ServicePort }

func (h *handlers) view(res domain.PageResult, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return View{Result: res, State: h.svc.State()}, nil
}

// @Summary Current view state
// @Tags Catalog
// @Success 200 {object} domain.State
// @Produce json
// @Router /catalog/state [get]
func (h *handlers) state(*stdhttp.Request) (any, error) { return h.svc.State(), nil }

// @Summary Cache, batch and cooldown counters
// @Tags Catalog
// @Success 200 {object} domain.Stats
// @Produce json
// @Router /catalog/stats [get]
func (h *handlers) stats(*stdhttp.Request) (any, error) { return h.svc.Stats(), nil }

// @Summary Replace the view with a page
// @Tags Catalog
// @Param body body domain.LoadInput true "page, query and filters"
// @Success 200 {object} View
// @Produce json
// @Router /catalog/load [post]
func (h *handlers) load(r *stdhttp.Request, in domain.LoadInput) (any, error) {
	return h.view(h.svc.LoadPage(r.Context(), in))
}

// @Summary Append a page to the view
// @Tags Catalog
// @Param body body domain.LoadInput true "page, query and filters"
// @Success 200 {object} View
// @Produce json
// @Router /catalog/append [post]
func (h *handlers) append(r *stdhttp.Request, in domain.LoadInput) (any, error) {
	return h.view(h.svc.AppendPage(r.Context(), in))
}

// @Summary Jump to an absolute page
// @Tags Catalog
// @Param body body GotoInput true "page"
// @Success 200 {object} View
// @Produce json
// @Router /catalog/goto [post]
func (h *handlers) goTo(r *stdhttp.Request, in GotoInput) (any, error) {
	return h.view(h.svc.GoToPage(r.Context(), in.Page))
}

// @Summary Start a new query from page one
// @Tags Catalog
// @Param body body domain.LoadInput true "query and filters"
// @Success 200 {object} View
// @Produce json
// @Router /catalog/search [post]
func (h *handlers) search(r *stdhttp.Request, in domain.LoadInput) (any, error) {
	return h.view(h.svc.Search(r.Context(), in.Query, in.Filters))
}

// nav backs /catalog/next, /catalog/prev and /catalog/refresh
// @Summary Step or reload the view
// @Tags Catalog
// @Success 200 {object} View
// @Produce json
// @Router /catalog/prev [post]
// @Router /catalog/refresh [post]
// @Router /catalog/next [post]
func (h *handlers) nav(fn func(domain.ServicePort, context.Context) (domain.PageResult, error)) func(*stdhttp.Request) (any, error) {
	return func(r *stdhttp.Request) (any, error) {
		return h.view(fn(h.svc, r.Context()))
	}
}

// @Summary Count books under filters
// @Tags Catalog
// @Param body body CountInput false "filters"
// @Produce json
// @Router /catalog/count [post]
func (h *handlers) count(r *stdhttp.Request, in CountInput) (any, error) {
	n, err := h.svc.Count(r.Context(), in.Filters)
	if err != nil {
		return nil, err
	}
	return map[string]int{"count": n}, nil
}

// @Summary Book detail
// @Tags Catalog
// @Param id path string true "book id"
// @Produce json
// @Router /catalog/books/{id} [get]
func (h *handlers) book(r *stdhttp.Request) (any, error) {
	id := chi.URLParam(r, "id")
	if id == "" {
		return nil, perr.InvalidArgf("book id is required")
	}
	return h.svc.Book(r.Context(), id)
}
