// Package swaggerkit provides helpers to mount Swagger UI and JSON spec
package swaggerkit

import (
	"net/http"

	phttp "shelfsync/internal/platform/net/http"
)

const (
	base    = "/api/docs"
	docPath = base + "/doc.json"
)

// Options controls what the served spec advertises
type Options struct {
	Enabled bool
	// BearerAuth marks every operation outside Open as requiring a bearer token
	BearerAuth bool
	// Open lists path prefixes that stay unauthenticated
	Open []string
	// TitleSuffix is appended to the spec title, e.g. an environment name
	TitleSuffix string
}

// Mount the Swagger UI and JSON spec if enabled
func Mount(r phttp.Router, o Options) {
	if !o.Enabled {
		return
	}
	r.Get(base, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, base+"/index.html", http.StatusPermanentRedirect)
	})
	r.Get(docPath, serveDocJSON(o))
	phttp.MountSwagger(r, base, docPath)
}
