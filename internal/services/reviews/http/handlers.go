// Package http provides http transport for reviews
package http

import (
	stdhttp "net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shelfsync/internal/modkit/httpkit"
	"shelfsync/internal/services/reviews/domain"
)

// Register mounts review endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/{bookId}", h.load)
	httpkit.Get(r, "/{bookId}/pending", h.pending)
	httpkit.PostJSON[domain.SubmitInput](r, "/", h.submit)
}

type handlers struct{ svc domain.ServicePort }

// @Summary Reviews of a book, pending first
// @Tags Reviews
// @Param bookId path string true "book id"
// @Param refresh query bool false "bypass the cache"
// @Success 200 {object} domain.Listing
// @Produce json
// @Router /reviews/{bookId} [get]
func (h *handlers) load(r *stdhttp.Request) (any, error) {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return h.svc.Load(r.Context(), chi.URLParam(r, "bookId"), refresh)
}

// @Summary Submissions not yet confirmed
// @Tags Reviews
// @Param bookId path string true "book id"
// @Produce json
// @Router /reviews/{bookId}/pending [get]
func (h *handlers) pending(r *stdhttp.Request) (any, error) {
	list, err := h.svc.Pending(r.Context(), chi.URLParam(r, "bookId"))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Review{}
	}
	return list, nil
}

// @Summary Submit a review
// @Tags Reviews
// @Accept json
// @Param body body domain.SubmitInput true "review"
// @Success 201 {object} domain.Review
// @Success 202 {object} domain.Review
// @Produce json
// @Router /reviews [post]
// submit signs anonymous reviews with the bearer identity when the route is protected
func (h *handlers) submit(r *stdhttp.Request, in domain.SubmitInput) (any, error) {
	if in.UserName == "" && in.UserEmail == "" {
		if uid, err := httpkit.User(r); err == nil {
			in.UserName = uid
		}
	}
	rev, err := h.svc.Submit(r.Context(), in)
	if err != nil {
		return nil, err
	}
	if rev.Pending {
		return httpkit.Response{Status: stdhttp.StatusAccepted, Body: rev}, nil
	}
	return httpkit.Created(rev), nil
}
