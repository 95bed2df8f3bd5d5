package httpkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	perrs "shelfsync/internal/platform/errors"
	phttp "shelfsync/internal/platform/net/http"
)

type addBook struct {
	BookID string `json:"bookId" validate:"required"`
	Title  string `json:"title"`
}

func do(t *testing.T, h http.Handler, method, path, body, token string) (int, phttp.Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env phttp.Envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, env
}

func mountShelf(r Router) {
	r.Route("/tbr", func(rr Router) {
		Get(rr, "/", func(*http.Request) (any, error) { return []string{"b1"}, nil })
		PostJSON(rr, "/", func(_ *http.Request, in addBook) (any, error) { return Created(in), nil })
		Delete(rr, "/{id}", func(r *http.Request) (any, error) {
			if chi.URLParam(r, "id") == "missing" {
				return nil, perrs.NotFoundf("book %s not on the list", "missing")
			}
			return map[string]bool{"removed": true}, nil
		})
		Post(rr, "/whoami", func(r *http.Request) (any, error) { return User(r) })
	})
	GetJSON(r, "/search", func(r *http.Request, in addBook) (any, error) {
		return r.URL.Query().Get("q"), nil
	})
}

func TestSugarEnvelopes(t *testing.T) {
	r := phttp.AdaptChi(chi.NewRouter())
	MountAPIV1(r, CommonStack(), mountShelf)
	h := r.Mux()

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		code   int
		data   string
	}{
		{"list", http.MethodGet, "/api/v1/tbr", "", http.StatusOK, `["b1"]`},
		{"add passes Created through", http.MethodPost, "/api/v1/tbr", `{"bookId":"b1","title":"Dune"}`, http.StatusCreated, `{"bookId":"b1","title":"Dune"}`},
		{"add without id fails validation", http.MethodPost, "/api/v1/tbr", `{"title":"Dune"}`, http.StatusBadRequest, ""},
		{"add with broken json", http.MethodPost, "/api/v1/tbr", `{"bookId":`, http.StatusBadRequest, ""},
		{"remove", http.MethodDelete, "/api/v1/tbr/b1", "", http.StatusOK, `{"removed":true}`},
		{"remove maps domain errors", http.MethodDelete, "/api/v1/tbr/missing", "", http.StatusNotFound, ""},
		{"get json reads the query", http.MethodGet, "/api/v1/search?q=dune", "", http.StatusOK, `"dune"`},
		{"anonymous whoami", http.MethodPost, "/api/v1/tbr/whoami", "", http.StatusUnauthorized, ""},
		{"unversioned path", http.MethodGet, "/tbr", "", http.StatusNotFound, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := do(t, h, tc.method, tc.path, tc.body, "")
			if code != tc.code {
				t.Fatalf("code = %d, want %d (%+v)", code, tc.code, env)
			}
			if tc.data != "" {
				b, _ := json.Marshal(env.Data)
				if string(b) != tc.data {
					t.Fatalf("data = %s, want %s", b, tc.data)
				}
			}
			if code >= 400 && code != http.StatusNotFound && env.Error == "" {
				t.Fatalf("error envelope missing message: %+v", env)
			}
		})
	}
}

func TestProtectedGroup(t *testing.T) {
	r := phttp.AdaptChi(chi.NewRouter())
	MountAPIV1(r, CommonStack(), func(api Router) {
		Get(api, "/open", func(*http.Request) (any, error) { return "ok", nil })
		Protected(api, StaticToken("s3cret", "reader"), mountShelf)
	})
	h := r.Mux()

	if code, _ := do(t, h, http.MethodGet, "/api/v1/open", "", ""); code != http.StatusOK {
		t.Fatalf("routes outside the group stay open, got %d", code)
	}
	if code, _ := do(t, h, http.MethodGet, "/api/v1/tbr", "", ""); code != http.StatusUnauthorized {
		t.Fatalf("want 401 without token, got %d", code)
	}
	code, env := do(t, h, http.MethodPost, "/api/v1/tbr/whoami", "", "s3cret")
	if code != http.StatusOK || env.Data != "reader" {
		t.Fatalf("whoami = %d %+v", code, env)
	}
}

func TestCommonStackRedirectsTrailingSlash(t *testing.T) {
	r := phttp.AdaptChi(chi.NewRouter())
	MountAPIV1(r, CommonStack("http://localhost:5173"), mountShelf)
	h := r.Mux()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tbr/", nil))
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("trailing slash = %d, want redirect", rec.Code)
	}
}
