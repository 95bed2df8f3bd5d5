package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(t.Context()); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestVersion(t *testing.T) {
	if out := run(t, "version"); !strings.HasPrefix(out, "shelfsync ") {
		t.Fatalf("version output: %q", out)
	}
}

func TestTBRAddJSON(t *testing.T) {
	out := run(t, "--memory", "-o", "json", "tbr", "add", "42", "--title", "Dune")
	var got map[string]bool
	if err := json.Unmarshal([]byte(out), &got); err != nil || !got["added"] {
		t.Fatalf("tbr add: %q %v", out, err)
	}
}

func TestBrowseAndFind(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/books":
			_, _ = w.Write([]byte(`{"books":[{"id":"1","title":"Dune","author":"Frank Herbert"}],"total":1}`))
		case "/api/books/search":
			_, _ = w.Write([]byte(`[{"id":"7","title":"Dune Messiah","author":"Frank Herbert"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer api.Close()
	t.Setenv("BOOKAPI_BASE_URL", api.URL)

	out := run(t, "--memory", "-o", "text", "browse", "--page", "1")
	if !strings.Contains(out, "Dune") || !strings.Contains(out, "page 1") {
		t.Fatalf("browse output: %q", out)
	}

	out = run(t, "--memory", "-o", "text", "find", "messiah", "--remote")
	if !strings.Contains(out, "Dune Messiah") || !strings.Contains(out, "from server") {
		t.Fatalf("find output: %q", out)
	}
}
