package module

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"shelfsync/internal/adapters/bookapi"
	modkit "shelfsync/internal/modkit"
	"shelfsync/internal/platform/config"
	phttp "shelfsync/internal/platform/net/http"
	"shelfsync/internal/platform/store/storetest"
	kit "shelfsync/internal/platform/testkit"
)

func TestReviewsOverHTTP(t *testing.T) {
	var posted map[string]any
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/reviews":
			b, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(b, &posted)
			_, _ = w.Write([]byte(`{"message":"queued"}`))
		case r.URL.Path == "/api/reviews/b1":
			_, _ = w.Write([]byte(`[{"id":"1","comment":"fine","rating":"4","user":{"name":"other"}}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer api.Close()

	m := New(modkit.Deps{
		Cfg: config.New(),
		KV:  storetest.Open(t, kit.NewClock(time.Now())),
		API: bookapi.New(bookapi.Options{BaseURL: api.URL}),
	})
	r := phttp.AdaptChi(chi.NewRouter())
	m.MountRoutes(r)
	h := r.Mux()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/reviews/", strings.NewReader(`{"bookId":"b1","comment":"mine","rating":5,"userName":"me"}`)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 for pending review, got %d %s", rec.Code, rec.Body.String())
	}
	if posted["bookId"] != "b1" || posted["rating"] != float64(5) {
		t.Fatalf("upstream body: %v", posted)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/reviews/", strings.NewReader(`{"bookId":"b1","comment":"x","rating":9}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected validation failure, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/reviews/b1", nil))
	var env struct {
		Data struct {
			Reviews []struct {
				Comment string `json:"comment"`
				Pending bool   `json:"pending"`
				Rating  int    `json:"rating"`
			} `json:"reviews"`
			Pending int `json:"pending"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := env.Data
	if len(got.Reviews) != 2 || !got.Reviews[0].Pending || got.Reviews[0].Comment != "mine" || got.Reviews[1].Rating != 4 || got.Pending != 1 {
		t.Fatalf("merged list: %+v", got)
	}
}
