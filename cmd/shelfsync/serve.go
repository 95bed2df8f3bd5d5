package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	phttp "shelfsync/internal/platform/net/http"
	"shelfsync/internal/services/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local JSON facade",
	Long: `Serve the catalog, discovery, reviews and TBR modules over HTTP under /api/v1.

Environment:
  CORE_API_PORT      listen address (default :4000)
  CORE_API_TOKEN     when set, every route except /api/v1/meta needs it as a bearer token
  CORE_API_ORIGINS   comma separated CORS origins (default *)
  CORE_API_PROFILER  mount pprof under /debug
  CORE_API_DOCS      serve swagger ui and doc.json under /api/docs
  CORE_API_THROTTLE  concurrent catalog and discovery requests (default 32)
  CORE_API_BACKLOG   requests queued past the throttle before 429 (default 64)
  STORE_SWEEP        how often expired cache entries are purged (default 10m)`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		apiCfg := e.cfg.Prefix("CORE_API_")
		srv := phttp.NewServer(e.cfg.Prefix("CORE_"))
		app := api.Mount(srv.Router(), api.Options{
			Config:         e.cfg,
			KV:             e.kv,
			Logger:         e.log,
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			EnableDocs:     apiCfg.MayBool("DOCS", false),
			Throttle:       apiCfg.MayInt("THROTTLE", 32),
			Backlog:        apiCfg.MayInt("BACKLOG", 64),
			Token:          apiCfg.MayString("TOKEN", ""),
			Origins:        apiCfg.MayCSV("ORIGINS", []string{"*"}),
		})
		defer app.Close()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srv.Run(gctx) })
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		})
		g.Go(func() error {
			sweep(gctx, e, e.cfg.Prefix("STORE_").MayDuration("SWEEP", 10*time.Minute))
			return nil
		})
		return g.Wait()
	},
}

// sweep purges expired entries every interval until ctx ends
func sweep(ctx context.Context, e *env, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := e.kv.Sweep(ctx)
			if err != nil {
				e.log.Warn().Err(err).Msg("store sweep failed")
				continue
			}
			if n > 0 {
				e.log.Debug().Int("removed", n).Msg("store swept")
			}
		}
	}
}
