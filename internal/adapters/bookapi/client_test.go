package bookapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	perr "shelfsync/internal/platform/errors"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/", Token: "tok-1"}), srv
}

func TestDo_HeadersAndBearer(t *testing.T) {
	var gotAuth, gotUA, gotPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.RequestURI()
		_, _ = io.WriteString(w, `[]`)
	})

	if _, err := c.Books(context.Background(), PageQuery{Page: 2, Limit: 24, Filters: map[string][]string{"genres": {"fantasy", "horror"}}}); err != nil {
		t.Fatalf("books: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotUA != defaultUA {
		t.Fatalf("ua = %q", gotUA)
	}
	if gotPath != "/api/books?genres=fantasy%2Chorror&limit=24&page=2" {
		t.Fatalf("path = %q", gotPath)
	}

	c.SetToken("")
	_, _ = c.Books(context.Background(), PageQuery{Page: 1})
	if gotAuth != "" {
		t.Fatalf("cleared token still sent: %q", gotAuth)
	}
}

func TestDo_StatusMapping(t *testing.T) {
	cases := []struct {
		status    int
		code      perr.ErrorCode
		retryable bool
	}{
		{http.StatusTooManyRequests, perr.ErrorCodeTooManyRequests, true},
		{http.StatusInternalServerError, perr.ErrorCodeUnavailable, true},
		{http.StatusBadGateway, perr.ErrorCodeUnavailable, true},
		{http.StatusNotFound, perr.ErrorCodeNotFound, false},
		{http.StatusUnauthorized, perr.ErrorCodeUnauthorized, false},
		{http.StatusBadRequest, perr.ErrorCodeInvalidArgument, false},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Retry-After", "3")
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, `{"message":"nope"}`)
			})
			_, err := c.Search(context.Background(), "x", 1, 10)
			if !perr.IsCode(err, tc.code) {
				t.Fatalf("code = %v, want %v (%v)", perr.CodeOf(err), tc.code, err)
			}
			if perr.StatusOf(err) != tc.status {
				t.Fatalf("status = %d", perr.StatusOf(err))
			}
			if perr.Retryable(err) != tc.retryable {
				t.Fatalf("retryable = %v", perr.Retryable(err))
			}
			if perr.RetryAfterOf(err) != 3*time.Second {
				t.Fatalf("retry after = %v", perr.RetryAfterOf(err))
			}
		})
	}
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(Options{BaseURL: url, Timeout: time.Second})
	_, err := c.Books(context.Background(), PageQuery{Page: 1})
	if !perr.IsCode(err, perr.ErrorCodeNetwork) || !perr.Retryable(err) {
		t.Fatalf("want retryable network error, got %v", err)
	}
}

func TestDo_CanceledContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Books(ctx, PageQuery{Page: 1})
	if !perr.IsCode(err, perr.ErrorCodeCanceled) || perr.Retryable(err) {
		t.Fatalf("want non retryable cancel, got %v", err)
	}
}

func TestBookByID_UnwrapsEnvelope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/books/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"book":{"id":42,"title":"Dune","author":"Frank Herbert (Goodreads Author)","pages":"412"}}`)
	})
	d, err := c.BookByID(context.Background(), "42")
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != "42" || d.Title != "Dune" || d.Author != "Frank Herbert" || d.PageCount != 412 || d.Language != "English" {
		t.Fatalf("detail = %+v", d)
	}
}

func TestBookByID_FallsBackToSearchThenListing(t *testing.T) {
	var calls []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		switch r.URL.Path {
		case "/api/books/the-hobbit":
			w.WriteHeader(http.StatusBadRequest)
		case "/api/books/search":
			_, _ = io.WriteString(w, `{"items":[]}`)
		case "/api/books":
			if r.URL.Query().Get("title") != "the-hobbit" {
				t.Errorf("listing fallback missing title param")
			}
			_, _ = io.WriteString(w, `[{"bookId":"h1","Book-Title":"The Hobbit"}]`)
		}
	})
	d, err := c.BookByID(context.Background(), "the-hobbit")
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != "h1" || d.Title != "The Hobbit" {
		t.Fatalf("detail = %+v", d)
	}
	if len(calls) != 3 {
		t.Fatalf("calls = %v", calls)
	}
}

func TestBookByID_ServerErrorDoesNotFallBack(t *testing.T) {
	var n atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		n.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := c.BookByID(context.Background(), "1")
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) || n.Load() != 1 {
		t.Fatalf("err=%v calls=%d", err, n.Load())
	}
}

func TestReviews_FallbackAndShapes(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/reviews/b1" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.URL.Query().Get("bookId") != "b1" {
			t.Errorf("fallback query = %s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"data":[{"id":7,"comment":"great","rating":"4","user":{"name":"Ana","email":"a@x.io"},"createdAt":"2024-05-01T10:00:00Z"}]}`)
	})
	revs, err := c.Reviews(context.Background(), "b1")
	if err != nil {
		t.Fatal(err)
	}
	if len(revs) != 1 {
		t.Fatalf("reviews = %+v", revs)
	}
	r := revs[0]
	if r.ID != "7" || r.Rating != 4 || r.UserName != "Ana" || r.UserEmail != "a@x.io" || r.CreatedAt.IsZero() {
		t.Fatalf("review = %+v", r)
	}
}

func TestPostReview(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("bad request %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		var in ReviewInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.BookID != "b1" || in.Rating != 5 {
			t.Errorf("body = %+v", in)
		}
		_, _ = io.WriteString(w, `{"ok":true}`)
	})
	got, err := c.PostReview(context.Background(), ReviewInput{BookID: "b1", Comment: "loved it", Rating: 5})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "" || got.Comment != "loved it" || got.BookID != "b1" {
		t.Fatalf("review = %+v", got)
	}
}

func TestCount(t *testing.T) {
	for body, want := range map[string]int{`17`: 17, `{"count":3}`: 3, `{"total":9}`: 9} {
		c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, body)
		})
		got, err := c.Count(context.Background(), nil)
		if err != nil || got != want {
			t.Fatalf("%s: got %d err %v", body, got, err)
		}
	}
}
