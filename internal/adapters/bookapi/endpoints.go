package bookapi

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"shelfsync/internal/core/book"
	perr "shelfsync/internal/platform/errors"
)

// Books fetches one listing page: GET /api/books?page&limit&<filters>
func (c *Client) Books(ctx context.Context, pq PageQuery) (Page, error) {
	q := pageParams(pq.Page, pq.Limit)
	keys := make([]string, 0, len(pq.Filters))
	for k := range pq.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		vals := pq.Filters[k]
		if len(vals) == 0 {
			continue
		}
		q.Set(k, strings.Join(vals, ","))
	}
	var v any
	if err := c.getJSON(ctx, "/api/books", q, &v); err != nil {
		return Page{}, err
	}
	return PageFrom(v), nil
}

// Search runs a server search: GET /api/books/search?q&page&limit
func (c *Client) Search(ctx context.Context, query string, page, limit int) (Page, error) {
	q := pageParams(page, limit)
	if s := strings.TrimSpace(query); s != "" {
		q.Set("q", s)
	}
	var v any
	if err := c.getJSON(ctx, "/api/books/search", q, &v); err != nil {
		return Page{}, err
	}
	return PageFrom(v), nil
}

// BookByID fetches GET /api/books/{id}
// On 400, 404 or 405 it retries as a search and then as a title listing, since
// routes may carry a title or slug instead of a numeric id
func (c *Client) BookByID(ctx context.Context, id string) (book.Detail, error) {
	var v any
	err := c.getJSON(ctx, "/api/books/"+url.PathEscape(id), nil, &v)
	if err == nil {
		m, uerr := unwrapBook(v)
		if uerr != nil {
			return book.Detail{}, uerr
		}
		return book.DetailFromRaw(m), nil
	}
	if !statusIn(err, http.StatusBadRequest, http.StatusNotFound, http.StatusMethodNotAllowed) {
		return book.Detail{}, err
	}

	c.log.Debug().Err(err).Str("id", id).Msg("bookapi book lookup falling back to search")
	var sv any
	serr := c.getJSON(ctx, "/api/books/search", url.Values{"q": {id}, "query": {id}, "title": {id}}, &sv)
	if serr != nil {
		return book.Detail{}, perr.Wrapf(err, perr.CodeOf(err), "book %q not found directly and search failed: %v", id, serr)
	}
	if m := firstRecord(sv); m != nil {
		return book.DetailFromRaw(m), nil
	}

	var lv any
	if lerr := c.getJSON(ctx, "/api/books", url.Values{"title": {id}}, &lv); lerr != nil {
		c.log.Debug().Err(lerr).Str("id", id).Msg("bookapi title listing fallback failed")
		return book.Detail{}, err
	}
	if m := firstRecord(lv); m != nil {
		return book.DetailFromRaw(m), nil
	}
	return book.Detail{}, err
}

// Reviews fetches GET /api/reviews/{bookId}, falling back to ?bookId= on 400, 403 or 404
func (c *Client) Reviews(ctx context.Context, bookID string) ([]Review, error) {
	var v any
	err := c.getJSON(ctx, "/api/reviews/"+url.PathEscape(bookID), nil, &v)
	if err == nil {
		return reviewsFrom(v), nil
	}
	if !statusIn(err, http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound) {
		return nil, err
	}
	var fv any
	if ferr := c.getJSON(ctx, "/api/reviews", url.Values{"bookId": {bookID}, "q": {bookID}}, &fv); ferr != nil {
		return nil, perr.Wrapf(err, perr.CodeOf(err), "reviews for %q failed directly and via query: %v", bookID, ferr)
	}
	return reviewsFrom(fv), nil
}

// PostReview submits a review; the returned Review has an empty ID when the server did not assign one
func (c *Client) PostReview(ctx context.Context, in ReviewInput) (Review, error) {
	b, err := c.Do(ctx, http.MethodPost, "/api/reviews", nil, in)
	if err != nil {
		return Review{}, err
	}
	var v any
	if err := decode(b, &v); err != nil {
		return Review{}, err
	}
	m, _ := v.(map[string]any)
	if inner, ok := m["review"].(map[string]any); ok {
		m = inner
	}
	r := reviewFromRaw(m)
	if r.BookID == "" {
		r.BookID = in.BookID
	}
	if r.Comment == "" {
		r.Comment = in.Comment
	}
	if r.Rating == 0 {
		r.Rating = in.Rating
	}
	return r, nil
}

// Count fetches GET /api/books/count; the body may be a bare number or {count|total}
func (c *Client) Count(ctx context.Context, filters map[string][]string) (int, error) {
	q := url.Values{}
	for k, vals := range filters {
		if len(vals) > 0 {
			q.Set(k, strings.Join(vals, ","))
		}
	}
	var v any
	if err := c.getJSON(ctx, "/api/books/count", q, &v); err != nil {
		return 0, err
	}
	if n, ok := number(v); ok {
		return n, nil
	}
	if m, ok := v.(map[string]any); ok {
		for _, k := range []string{"count", "total"} {
			if n, ok := number(m[k]); ok {
				return n, nil
			}
		}
	}
	return 0, perr.JSONErrf("count response has no number")
}

func pageParams(page, limit int) url.Values {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

// Ping asks for a one item listing to check the API answers
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Do(ctx, http.MethodGet, "/api/books", pageParams(1, 1), nil)
	return err
}
