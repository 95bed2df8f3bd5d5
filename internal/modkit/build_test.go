package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func tag(v string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Order", v)
			next.ServeHTTP(w, r)
		})
	}
}

func TestBuild(t *testing.T) {
	type needs struct{ Shelf string }

	cases := []struct {
		name   string
		opts   []Option
		want   Built
		order  []string
		shelfs string
	}{
		{name: "defaults", want: Built{}},
		{
			name: "catalog",
			opts: []Option{
				WithName("catalog"),
				WithPrefix("/catalog"),
				WithMiddlewares(tag("throttle")),
				WithMiddlewares(tag("json")),
				WithPorts(needs{Shelf: "fantasy"}),
			},
			want:   Built{Name: "catalog", Prefix: "/catalog"},
			order:  []string{"throttle", "json"},
			shelfs: "fantasy",
		},
		{
			name:  "later options win",
			opts:  []Option{WithName("tbr"), WithName("reviews"), WithPrefix("/a"), WithPrefix("/reviews")},
			want:  Built{Name: "reviews", Prefix: "/reviews"},
			order: nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := Build(tc.opts...)
			if b.Name != tc.want.Name || b.Prefix != tc.want.Prefix {
				t.Fatalf("name/prefix = %q %q", b.Name, b.Prefix)
			}
			if len(b.Mw) != len(tc.order) {
				t.Fatalf("middlewares = %d, want %d", len(b.Mw), len(tc.order))
			}
			var h http.Handler = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
			for i := len(b.Mw) - 1; i >= 0; i-- {
				h = b.Mw[i](h)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
			got := rec.Header().Values("X-Order")
			for i, v := range tc.order {
				if got[i] != v {
					t.Fatalf("middleware order = %v, want %v", got, tc.order)
				}
			}
			if tc.shelfs == "" {
				if b.Ports != nil {
					t.Fatalf("ports = %v, want nil", b.Ports)
				}
				return
			}
			if n, ok := b.Ports.(needs); !ok || n.Shelf != tc.shelfs {
				t.Fatalf("ports = %#v", b.Ports)
			}
		})
	}
}

func TestBuildCopiesMiddlewares(t *testing.T) {
	mws := []func(http.Handler) http.Handler{tag("a"), tag("b")}
	b := Build(WithMiddlewares(mws...))
	mws[0] = tag("z")

	h := b.Mw[0](http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if got := rec.Header().Get("X-Order"); got != "a" {
		t.Fatalf("built middleware changed with caller slice: %q", got)
	}
}
