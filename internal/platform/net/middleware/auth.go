package middleware

import (
	"net/http"

	"shelfsync/internal/platform/logger"
	pnet "shelfsync/internal/platform/net"
)

// AuthPort resolves the caller of a request
type AuthPort interface {
	// Parse returns the user behind the request or an error
	Parse(r *http.Request) (user string, err error)
}

// Auth rejects requests p cannot resolve and stores the user on ctx; a nil port lets everything through
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			user, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			ctx := pnet.WithUser(r.Context(), user)
			ctx = logger.WithRequest(ctx, "", user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
