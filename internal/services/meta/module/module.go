// Package module wires meta endpoints using a tiny module
package module

import (
	"context"
	"net/http"
	"time"

	modkit "shelfsync/internal/modkit"
	"shelfsync/internal/modkit/httpkit"
	str "shelfsync/internal/platform/strings"

	metahttp "shelfsync/internal/services/meta/http"
)

// Module implements the module.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	checks []metahttp.Check
	stats  func(context.Context) (any, error)

	startedAt time.Time
}

// New constructs a meta module; stats is optional and feeds /meta/stats
func New(deps modkit.Deps, stats func(context.Context) (any, error), opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		stats:     stats,
		startedAt: time.Now(),
	}

	m.checks = []metahttp.Check{{Name: "store"}, {Name: "bookapi", P: deps.Client()}}
	if deps.KV != nil {
		m.checks[0].P = deps.KV
	}
	return m
}

// MountRoutes implements the module.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		metahttp.Register(rr, metahttp.Deps{
			ServiceName: "shelfsync",
			StartedAt:   m.startedAt,
			Checks:      m.checks,
			Stats:       m.stats,
		})
	})
}

// Name implements the module.Module interface
func (m *Module) Name() string { return str.MustString(m.name, "meta") }

// Prefix implements the module.Module interface
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports implements the module.Module interface
func (m *Module) Ports() any { return nil }
