// Package module wires the catalog orchestrator using modkit
package module

import (
	"net/http"

	"shelfsync/internal/core/book"
	modkit "shelfsync/internal/modkit"
	"shelfsync/internal/modkit/httpkit"
	str "shelfsync/internal/platform/strings"
	cataloghttp "shelfsync/internal/services/catalog/http"
	catalogsvc "shelfsync/internal/services/catalog/service"
)

// Module implements the module.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports Ports

	svc *catalogsvc.Service
}

// New constructs the catalog module from deps, reading CATALOG_* config
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	return NewWithOptions(deps, FromConfig(deps.Cfg), opts...)
}

// NewWithOptions constructs the catalog module with explicit options
func NewWithOptions(deps modkit.Deps, o Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("catalog"), modkit.WithPrefix("/catalog")}, opts...)...)

	cfg := o.Config()
	cfg.Log = deps.Logger("catalog")
	if n, ok := b.Ports.(Needs); ok && n.Indexer != nil {
		cfg.OnPage = func(recs []book.Record) { n.Indexer.Add(recs) }
	}
	svc := catalogsvc.New(NewSource(deps.Client()), deps.KV, cfg)

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
	}
	m.ports = Ports{Catalog: svc}
	return m
}

// Service returns the concrete orchestrator
func (m *Module) Service() *catalogsvc.Service { return m.svc }

// Close stops the batcher
func (m *Module) Close() { m.svc.Close() }

// MountRoutes implements the module.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		cataloghttp.Register(rr, m.svc)
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }
