package module

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"shelfsync/internal/adapters/bookapi"
	"shelfsync/internal/core/book"
	modkit "shelfsync/internal/modkit"
	"shelfsync/internal/platform/config"
	phttp "shelfsync/internal/platform/net/http"
	"shelfsync/internal/platform/store/storetest"
	kit "shelfsync/internal/platform/testkit"
)

func TestFromConfigDefaultsAndOverrides(t *testing.T) {
	o := FromConfig(config.New())
	if o.PageSize != 24 || o.PageTTL != 2*time.Minute || o.PageCap != 50 || o.PrefetchPages != 1 {
		t.Fatalf("bad defaults: %+v", o)
	}
	if o.BatchSize != 3 || o.BatchDelay != 200*time.Millisecond || o.BatchMaxWait != 1500*time.Millisecond {
		t.Fatalf("bad batch defaults: %+v", o)
	}

	t.Setenv("CATALOG_PAGE_SIZE", "12")
	t.Setenv("CATALOG_COOLDOWN", "5s")
	t.Setenv("CATALOG_SAMPLE_FALLBACK", "false")
	o = FromConfig(config.New())
	if o.PageSize != 12 || o.Cooldown != 5*time.Second || o.SampleFallback {
		t.Fatalf("overrides not applied: %+v", o)
	}
	c := o.Config()
	if c.Batch.Name != "books" || c.Rate.Max != 8 || c.PageSize != 12 {
		t.Fatalf("bad service config: %+v", c)
	}
}

func TestModuleServesCatalogOverAPI(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/books":
			_, _ = w.Write([]byte(`{"books":[{"id":"1","title":"Dune","author":"Frank Herbert"}],"total":1}`))
		case "/api/books/search":
			if r.URL.Query().Get("q") != "dune" {
				t.Errorf("search query: %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`[{"id":"1","title":"Dune"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer api.Close()

	deps := modkit.Deps{
		Cfg: config.New(),
		KV:  storetest.Open(t, kit.NewClock(time.Now())),
		API: bookapi.New(bookapi.Options{BaseURL: api.URL}),
	}
	o := FromConfig(deps.Cfg)
	o.BatchDelay = time.Millisecond
	o.PrefetchPages = 0
	idx := &recordingIndexer{}
	m := NewWithOptions(deps, o, modkit.WithPorts(Needs{Indexer: idx}))
	defer m.Close()

	if m.Name() != "catalog" || m.Prefix() != "/catalog" {
		t.Fatalf("name/prefix: %s %s", m.Name(), m.Prefix())
	}
	if _, ok := m.Ports().(Ports); !ok {
		t.Fatalf("ports type %T", m.Ports())
	}

	r := phttp.AdaptChi(chi.NewRouter())
	m.MountRoutes(r)

	for _, tc := range []struct{ path, body string }{
		{"/catalog/load", `{"page":1}`},
		{"/catalog/search", `{"q":"dune"}`},
	} {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest("POST", tc.path, strings.NewReader(tc.body)))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: %d %s", tc.path, rec.Code, rec.Body.String())
		}
		var env struct {
			Data struct {
				Result struct {
					Items []struct{ ID, Title string } `json:"items"`
				} `json:"result"`
			} `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(env.Data.Result.Items) != 1 || env.Data.Result.Items[0].Title != "Dune" {
			t.Fatalf("%s items: %+v", tc.path, env.Data.Result.Items)
		}
	}
	if idx.n.Load() != 2 {
		t.Fatalf("each network page should reach the indexer, got %d", idx.n.Load())
	}
}

type recordingIndexer struct{ n atomic.Int32 }

func (r *recordingIndexer) Add(recs []book.Record) int {
	r.n.Add(1)
	return len(recs)
}
