// Package http provides http transport for the to be read list
package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"shelfsync/internal/modkit/httpkit"
	"shelfsync/internal/services/tbr/domain"
)

// Register mounts list endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/", h.list)
	httpkit.PostJSON[domain.AddInput](r, "/", h.add)
	httpkit.Delete(r, "/", h.clear)
	httpkit.Delete(r, "/{id}", h.remove)
	httpkit.Post(r, "/{id}/restore", h.restore)
}

type handlers struct{ svc domain.ServicePort }

// @Summary List entries
// @Tags TBR
// @Success 200 {array} domain.Entry
// @Produce json
// @Router /tbr [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) { return h.svc.List(r.Context()) }

// @Summary Add a book
// @Tags TBR
// @Accept json
// @Param body body domain.AddInput true "entry"
// @Produce json
// @Router /tbr [post]
func (h *handlers) add(r *stdhttp.Request, in domain.AddInput) (any, error) {
	added, err := h.svc.Add(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return map[string]bool{"added": added}, nil
}

// @Summary Remove a book
// @Tags TBR
// @Param id path string true "book id"
// @Success 200 {object} domain.Removal
// @Produce json
// @Router /tbr/{id} [delete]
func (h *handlers) remove(r *stdhttp.Request) (any, error) {
	return h.svc.Remove(r.Context(), chi.URLParam(r, "id"))
}

// @Summary Undo the last removal of a book
// @Tags TBR
// @Param id path string true "book id"
// @Produce json
// @Router /tbr/{id}/restore [post]
func (h *handlers) restore(r *stdhttp.Request) (any, error) {
	ok, err := h.svc.Restore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	return map[string]bool{"restored": ok}, nil
}

// @Summary Clear the list
// @Tags TBR
// @Produce json
// @Router /tbr [delete]
func (h *handlers) clear(r *stdhttp.Request) (any, error) {
	n, err := h.svc.Clear(r.Context())
	if err != nil {
		return nil, err
	}
	return map[string]int{"cleared": n}, nil
}
