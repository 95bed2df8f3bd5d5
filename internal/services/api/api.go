// Package api provides the HTTP API for the application
package api

import (
	"context"
	stdhttp "net/http"
	"time"

	"shelfsync/internal/adapters/bookapi"
	"shelfsync/internal/platform/config"
	"shelfsync/internal/platform/logger"
	phttp "shelfsync/internal/platform/net/http"
	"shelfsync/internal/platform/net/middleware"
	"shelfsync/internal/platform/store"

	"shelfsync/internal/modkit"
	"shelfsync/internal/modkit/httpkit"
	"shelfsync/internal/modkit/module"
	"shelfsync/internal/modkit/swaggerkit"

	catalogmod "shelfsync/internal/services/catalog/module"
	discoverymod "shelfsync/internal/services/discovery/module"
	metamod "shelfsync/internal/services/meta/module"
	reviewsmod "shelfsync/internal/services/reviews/module"
	tbrmod "shelfsync/internal/services/tbr/module"
)

// Options are the API options
type Options struct {
	Config config.Conf
	// KV is optional, nil keeps all state in memory
	KV     *store.Store
	Client *bookapi.Client
	Logger *logger.Logger

	EnableProfiler bool
	EnableDocs     bool
	// Token guards every module except meta when set
	Token   string
	Origins []string

	// Throttle caps concurrent catalog and discovery requests, Backlog queues the overflow
	Throttle int
	Backlog  int
}

// App holds the mounted modules so the caller can stop them
type App struct {
	Catalog   *catalogmod.Module
	Discovery *discoverymod.Module
	Reviews   *reviewsmod.Module
	TBR       *tbrmod.Module
	Meta      *metamod.Module

	// Registry holds the port sets each module publishes
	Registry *module.Registry

	kv *store.Store
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) *App {
	deps := modkit.Deps{
		Log: opt.Logger,
		Cfg: opt.Config,
		KV:  opt.KV,
		API: opt.Client,
	}
	if opt.Throttle <= 0 {
		opt.Throttle = 32
	}
	if opt.Backlog < 0 {
		opt.Backlog = 0
	}
	throttle := func() func(stdhttp.Handler) stdhttp.Handler {
		return middleware.ThrottleBacklog(opt.Throttle, opt.Backlog, 30*time.Second)
	}
	jsonOnly := middleware.AllowContentType("application/json")

	// liveness stays outside the api stack and the token
	r.Use(middleware.Heartbeat("/healthz"))

	// discovery goes first so catalog pages land in its index
	app := &App{kv: opt.KV, Registry: module.NewRegistry()}
	app.Discovery = discoverymod.New(deps, modkit.WithMiddlewares(throttle()))
	app.Registry.Register(app.Discovery)

	disc := module.MustPortsAs[discoverymod.Ports](app.Registry, app.Discovery.Name())
	app.Catalog = catalogmod.New(deps,
		modkit.WithPorts(catalogmod.Needs{Indexer: disc.Index}),
		modkit.WithMiddlewares(throttle()),
	)
	app.Reviews = reviewsmod.New(deps, modkit.WithMiddlewares(jsonOnly))
	app.TBR = tbrmod.New(deps, modkit.WithMiddlewares(jsonOnly))
	app.Meta = metamod.New(deps, app.Stats)

	guarded := []module.Module{app.Catalog, app.Discovery, app.Reviews, app.TBR}
	app.Registry.Register(app.Meta, app.Catalog, app.Reviews, app.TBR)

	swaggerkit.Mount(r, swaggerkit.Options{
		Enabled:    opt.EnableDocs,
		BearerAuth: opt.Token != "",
		Open:       []string{"/meta"},
	})

	httpkit.MountAPIV1(r, httpkit.CommonStack(opt.Origins...), func(api httpkit.Router) {
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		app.Meta.MountRoutes(api)
		mount := func(rr httpkit.Router) {
			for _, m := range guarded {
				m.MountRoutes(rr)
			}
		}
		if opt.Token == "" {
			mount(api)
			return
		}
		httpkit.Protected(api, httpkit.StaticToken(opt.Token, "shelfsync"), mount)
	})

	return app
}

// Stats aggregates the counters of every module and the store
func (a *App) Stats(ctx context.Context) (any, error) {
	catalog := a.Catalog.Service()
	out := map[string]any{
		"catalog":   catalog.Stats(),
		"batch":     catalog.BatchStats(),
		"rate":      catalog.RateStats(),
		"discovery": a.Discovery.Service().Stats(),
	}
	if a.kv != nil {
		ns, err := a.kv.Stats(ctx)
		if err != nil {
			return nil, err
		}
		out["store"] = ns
	}
	return out, nil
}

// Close stops background batchers, the store is owned by the caller
func (a *App) Close() {
	a.Catalog.Close()
	a.Discovery.Close()
}
