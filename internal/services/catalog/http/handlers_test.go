package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"shelfsync/internal/core/book"
	perr "shelfsync/internal/platform/errors"
	phttp "shelfsync/internal/platform/net/http"
	"shelfsync/internal/services/catalog/domain"
)

type stubPort struct {
	last   string
	in     domain.LoadInput
	page   int
	navErr error
}

func (s *stubPort) res() domain.PageResult {
	return domain.PageResult{Items: []book.Record{{ID: "1", Title: "One"}}}
}

func (s *stubPort) FetchPage(context.Context, domain.PageKey) (domain.PageResult, error) {
	return s.res(), nil
}
func (s *stubPort) LoadPage(_ context.Context, in domain.LoadInput) (domain.PageResult, error) {
	s.last, s.in = "load", in
	return s.res(), nil
}
func (s *stubPort) AppendPage(_ context.Context, in domain.LoadInput) (domain.PageResult, error) {
	s.last, s.in = "append", in
	return s.res(), nil
}
func (s *stubPort) NextPage(context.Context) (domain.PageResult, error) {
	s.last = "next"
	return s.res(), s.navErr
}
func (s *stubPort) PrevPage(context.Context) (domain.PageResult, error) {
	s.last = "prev"
	return s.res(), nil
}
func (s *stubPort) GoToPage(_ context.Context, p int) (domain.PageResult, error) {
	s.last, s.page = "goto", p
	if p < 1 {
		return domain.PageResult{}, perr.InvalidArgf("page must be >= 1")
	}
	return s.res(), nil
}
func (s *stubPort) Search(_ context.Context, q string, f map[string][]string) (domain.PageResult, error) {
	s.last, s.in = "search", domain.LoadInput{Query: q, Filters: f}
	return s.res(), nil
}
func (s *stubPort) Refresh(context.Context) (domain.PageResult, error) {
	s.last = "refresh"
	return s.res(), nil
}
func (s *stubPort) Book(_ context.Context, id string) (book.Detail, error) {
	if id == "missing" {
		return book.Detail{}, perr.NotFoundf("book %s", id)
	}
	return book.Detail{Record: book.Record{ID: id}, Language: "English"}, nil
}
func (s *stubPort) Count(context.Context, map[string][]string) (int, error) { return 7, nil }
func (s *stubPort) State() domain.State                                     { return domain.State{Phase: domain.PhaseSuccess, Page: 1} }
func (s *stubPort) Stats() domain.Stats                                     { return domain.Stats{Fetches: 3} }

func mount(t *testing.T, s domain.ServicePort) stdhttp.Handler {
	t.Helper()
	r := phttp.AdaptChi(chi.NewRouter())
	r.Route("/catalog", func(sub phttp.Router) { Register(sub, s) })
	return r.Mux()
}

func do(t *testing.T, h stdhttp.Handler, method, path, body string) (*httptest.ResponseRecorder, phttp.Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal %s %s: %v (%s)", method, path, err, rec.Body.String())
	}
	return rec, env
}

func TestLoadAndSearchBindBody(t *testing.T) {
	s := &stubPort{}
	h := mount(t, s)

	rec, env := do(t, h, "POST", "/catalog/load", `{"page":3,"q":"dune","filters":{"genre":["scifi"]}}`)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("code %d", rec.Code)
	}
	if s.last != "load" || s.in.Page != 3 || s.in.Query != "dune" || s.in.Filters["genre"][0] != "scifi" {
		t.Fatalf("bad bind: %s %+v", s.last, s.in)
	}
	data, ok := env.Data.(map[string]any)
	if !ok || data["state"] == nil || data["result"] == nil {
		t.Fatalf("expected view with state and result, got %#v", env.Data)
	}

	_, _ = do(t, h, "POST", "/catalog/search", `{"q":"tolkien"}`)
	if s.last != "search" || s.in.Query != "tolkien" {
		t.Fatalf("search not routed: %s %+v", s.last, s.in)
	}

	_, _ = do(t, h, "POST", "/catalog/append", `{"page":2}`)
	if s.last != "append" || s.in.Page != 2 {
		t.Fatalf("append not routed: %s %+v", s.last, s.in)
	}
}

func TestNavigationEndpoints(t *testing.T) {
	s := &stubPort{}
	h := mount(t, s)
	for _, p := range []string{"next", "prev", "refresh"} {
		rec, _ := do(t, h, "POST", "/catalog/"+p, "")
		if rec.Code != stdhttp.StatusOK || s.last != p {
			t.Fatalf("%s: code %d last %s", p, rec.Code, s.last)
		}
	}

	s.navErr = perr.Conflictf("duplicate pages")
	rec, env := do(t, h, "POST", "/catalog/next", "")
	if rec.Code != stdhttp.StatusConflict || env.Code != perr.ErrorCodeConflict {
		t.Fatalf("expected conflict, got %d %+v", rec.Code, env)
	}
}

func TestGotoRejectsBadPage(t *testing.T) {
	s := &stubPort{}
	h := mount(t, s)
	rec, _ := do(t, h, "POST", "/catalog/goto", `{"page":0}`)
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	rec, _ = do(t, h, "POST", "/catalog/goto", `{"page":4}`)
	if rec.Code != stdhttp.StatusOK || s.page != 4 {
		t.Fatalf("goto: %d page %d", rec.Code, s.page)
	}
}

func TestBookByPathParam(t *testing.T) {
	h := mount(t, &stubPort{})
	rec, env := do(t, h, "GET", "/catalog/books/b-42", "")
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("code %d", rec.Code)
	}
	if m, _ := env.Data.(map[string]any); m["id"] != "b-42" {
		t.Fatalf("wrong book: %#v", env.Data)
	}
	rec, _ = do(t, h, "GET", "/catalog/books/missing", "")
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestStateStatsCount(t *testing.T) {
	h := mount(t, &stubPort{})
	if rec, env := do(t, h, "GET", "/catalog/state", ""); rec.Code != 200 || env.Data.(map[string]any)["page"] != float64(1) {
		t.Fatalf("state: %d %#v", rec.Code, env.Data)
	}
	if rec, _ := do(t, h, "GET", "/catalog/stats", ""); rec.Code != 200 {
		t.Fatalf("stats: %d", rec.Code)
	}
	rec, env := do(t, h, "POST", "/catalog/count", `{"filters":{"genre":["horror"]}}`)
	if rec.Code != 200 || env.Data.(map[string]any)["count"] != float64(7) {
		t.Fatalf("count: %d %#v", rec.Code, env.Data)
	}
}
