// Package module wires the to be read list using modkit
package module

import (
	"net/http"

	modkit "shelfsync/internal/modkit"
	"shelfsync/internal/modkit/httpkit"
	str "shelfsync/internal/platform/strings"
	tbrhttp "shelfsync/internal/services/tbr/http"
	"shelfsync/internal/services/tbr/domain"
	tbrsvc "shelfsync/internal/services/tbr/service"
)

// Ports exposed to other modules
type Ports struct {
	TBR domain.ServicePort
}

// Module implements the module.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports Ports

	svc *tbrsvc.Service
}

// New constructs the list module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("tbr"), modkit.WithPrefix("/tbr")}, opts...)...)

	svc := tbrsvc.New(deps.KV, deps.Logger("tbr"), nil)
	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
	}
	m.ports = Ports{TBR: svc}
	return m
}

// Service returns the concrete list service
func (m *Module) Service() *tbrsvc.Service { return m.svc }

// MountRoutes implements the module.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		tbrhttp.Register(rr, m.svc)
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
