package http

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	pnet "shelfsync/internal/platform/net"
	phttp "shelfsync/internal/platform/net/http"
	"shelfsync/internal/services/reviews/domain"
)

type stubPort struct{ got domain.SubmitInput }

func (s *stubPort) Load(context.Context, string, bool) (domain.Listing, error) {
	return domain.Listing{}, nil
}

func (s *stubPort) Submit(_ context.Context, in domain.SubmitInput) (domain.Review, error) {
	s.got = in
	return domain.Review{ID: "9", BookID: in.BookID, Comment: in.Comment, Rating: in.Rating, UserName: in.UserName}, nil
}

func (s *stubPort) Pending(context.Context, string) ([]domain.Review, error) { return nil, nil }

func TestSubmitSignsWithBearerUser(t *testing.T) {
	cases := []struct {
		name, body, user, want string
	}{
		{"anonymous gets bearer user", `{"bookId":"b1","comment":"ok","rating":3}`, "shelf", "shelf"},
		{"explicit name wins", `{"bookId":"b1","comment":"ok","rating":3,"userName":"ann"}`, "shelf", "ann"},
		{"no auth stays anonymous", `{"bookId":"b1","comment":"ok","rating":3}`, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			port := &stubPort{}
			r := phttp.AdaptChi(chi.NewRouter())
			Register(r, port)

			req := httptest.NewRequest(stdhttp.MethodPost, "/", strings.NewReader(tc.body))
			if tc.user != "" {
				req = req.WithContext(pnet.WithUser(req.Context(), tc.user))
			}
			rec := httptest.NewRecorder()
			r.Mux().ServeHTTP(rec, req)
			if rec.Code != stdhttp.StatusCreated {
				t.Fatalf("status %d %s", rec.Code, rec.Body.String())
			}
			if port.got.UserName != tc.want {
				t.Fatalf("user name %q want %q", port.got.UserName, tc.want)
			}
		})
	}
}
