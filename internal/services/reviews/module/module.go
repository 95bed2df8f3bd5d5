// Package module wires reviews using modkit
package module

import (
	"net/http"
	"time"

	modkit "shelfsync/internal/modkit"
	"shelfsync/internal/modkit/httpkit"
	"shelfsync/internal/platform/config"
	str "shelfsync/internal/platform/strings"
	reviewshttp "shelfsync/internal/services/reviews/http"
	"shelfsync/internal/services/reviews/domain"
	reviewssvc "shelfsync/internal/services/reviews/service"
)

// Options holds configuration settings for the reviews module
type Options struct {
	TTL time.Duration
}

// FromConfig reads REVIEWS_* keys
func FromConfig(cfg config.Conf) Options {
	return Options{TTL: cfg.Prefix("REVIEWS_").MayDuration("TTL", 30*time.Minute)}
}

// Ports exposed to other modules
type Ports struct {
	Reviews domain.ServicePort
}

// Module implements the module.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports Ports

	svc *reviewssvc.Service
}

// New constructs the reviews module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("reviews"), modkit.WithPrefix("/reviews")}, opts...)...)

	o := FromConfig(deps.Cfg)
	svc := reviewssvc.New(NewSource(deps.Client()), deps.KV, reviewssvc.Config{TTL: o.TTL, Log: deps.Logger("reviews")})

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
	}
	m.ports = Ports{Reviews: svc}
	return m
}

// Service returns the concrete reviews service
func (m *Module) Service() *reviewssvc.Service { return m.svc }

// MountRoutes implements the module.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		reviewshttp.Register(rr, m.svc)
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
