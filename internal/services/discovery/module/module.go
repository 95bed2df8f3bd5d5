// Package module wires discovery using modkit
package module

import (
	"context"
	"net/http"

	"shelfsync/internal/core/book"
	modkit "shelfsync/internal/modkit"
	"shelfsync/internal/modkit/httpkit"
	str "shelfsync/internal/platform/strings"
	discoveryhttp "shelfsync/internal/services/discovery/http"
	"shelfsync/internal/services/discovery/domain"
	discoverysvc "shelfsync/internal/services/discovery/service"
)

// Ports exposed to other modules
type Ports struct {
	Discovery domain.ServicePort
	// Index takes records fetched elsewhere into the local search index
	Index interface{ Add(recs []book.Record) int }
}

// Module implements the module.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports Ports

	svc *discoverysvc.Service
}

// New constructs the discovery module from deps, reading DISCOVERY_* config
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	return NewWithOptions(deps, FromConfig(deps.Cfg), opts...)
}

// NewWithOptions constructs the discovery module with explicit options
// and seeds the index from persisted pages when SeedOnStart is set
func NewWithOptions(deps modkit.Deps, o Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("discovery"), modkit.WithPrefix("/discovery")}, opts...)...)

	cfg := o.Config()
	cfg.Log = deps.Logger("discovery")
	svc := discoverysvc.New(NewSource(deps.Client()), deps.KV, cfg)
	if o.SeedOnStart {
		if _, err := svc.Seed(context.Background()); err != nil {
			cfg.Log.Warn().Err(err).Msg("index seed failed")
		}
	}

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
	}
	m.ports = Ports{Discovery: svc, Index: svc}
	return m
}

// Service returns the concrete search service
func (m *Module) Service() *discoverysvc.Service { return m.svc }

// Close stops the search batcher
func (m *Module) Close() { m.svc.Close() }

// MountRoutes implements the module.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		discoveryhttp.Register(rr, m.svc)
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
