package httpkit

import (
	"net/http"

	perrs "shelfsync/internal/platform/errors"
	pnet "shelfsync/internal/platform/net"
)

// User returns the user an accepted bearer token resolved to
func User(r *http.Request) (string, error) {
	if uid := pnet.UserID(r.Context()); uid != "" {
		return uid, nil
	}
	return "", perrs.Unauthorizedf("missing bearer token")
}
