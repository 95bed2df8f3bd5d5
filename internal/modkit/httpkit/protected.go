package httpkit

import "shelfsync/internal/platform/net/middleware"

// Protected mounts fn in a group that rejects requests p cannot resolve
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(Auth(p))
		fn(gr)
	})
}
