package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "shelfsync/internal/platform/errors"
	pnet "shelfsync/internal/platform/net"
	"shelfsync/internal/platform/net/middleware"
)

type portFunc func(*http.Request) (string, error)

func (f portFunc) Parse(r *http.Request) (string, error) { return f(r) }

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestAuth(t *testing.T) {
	reader := portFunc(func(r *http.Request) (string, error) {
		if r.Header.Get("Authorization") != "Bearer reader" {
			return "", perr.Unauthorizedf("invalid bearer token")
		}
		return "reader", nil
	})

	cases := []struct {
		name     string
		port     middleware.AuthPort
		header   string
		wantCode int
		wantUser string
	}{
		{"no port lets the request through", nil, "", http.StatusOK, ""},
		{"accepted token names the user", reader, "Bearer reader", http.StatusOK, "reader"},
		{"rejected token stops the chain", reader, "Bearer nope", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				seen = pnet.UserID(r.Context())
			})
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tbr", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			middleware.Auth(tc.port, writeJSON)(next).ServeHTTP(rec, req)

			if rec.Code != tc.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tc.wantCode)
			}
			if called != (tc.wantCode == http.StatusOK) || seen != tc.wantUser {
				t.Fatalf("called=%v user=%q", called, seen)
			}
			if tc.wantCode != http.StatusOK {
				var w pnet.Wire
				if err := json.Unmarshal(rec.Body.Bytes(), &w); err != nil || w.Code != perr.ErrorCodeUnauthorized {
					t.Fatalf("body %s (%v)", rec.Body.String(), err)
				}
			}
		})
	}
}
