package http

import (
	httpSwagger "github.com/swaggo/http-swagger"
)

// MountSwagger serves the swagger ui under base, loading the spec from docURL
func MountSwagger(r Router, base, docURL string) {
	r.Handle(base+"/*", httpSwagger.Handler(
		httpSwagger.URL(docURL),
		httpSwagger.DocExpansion("none"),
	))
}
