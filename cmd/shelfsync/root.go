package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"shelfsync/internal/core/version"
	modkit "shelfsync/internal/modkit"
	"shelfsync/internal/platform/config"
	"shelfsync/internal/platform/logger"
	"shelfsync/internal/platform/store"
)

var (
	outputFormat string
	inMemory     bool
)

var rootCmd = &cobra.Command{
	Use:   "shelfsync",
	Short: "Offline friendly client for a remote book catalog",
	Long: `shelfsync pages, searches and caches a remote book API.

Every command shares one local store (STORE_PATH, default ~/.shelfsync/db),
so pages fetched by browse make find faster and reviews written offline
stay visible until the server confirms them.

The remote API is read from BOOKAPI_BASE_URL (default http://localhost:5000).`,
	Version:       version.Info().String(),
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text or json")
	rootCmd.PersistentFlags().BoolVar(&inMemory, "memory", false, "keep the store in memory for this run")

	rootCmd.AddCommand(serveCmd, browseCmd, findCmd, reviewsCmd, reviewCmd, tbrCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		b := version.Info()
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", b.Service, b.Version)
		fmt.Fprintf(cmd.OutOrStdout(), "  Commit: %s\n", b.Commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  Date:   %s\n", b.Date)
	},
}

// env is what every command needs: config, a logger and the local store
type env struct {
	cfg  config.Conf
	log  *logger.Logger
	kv   *store.Store
	deps modkit.Deps
}

func openEnv(ctx context.Context) (*env, error) {
	cfg := config.New()
	log := logger.Get()

	sc := store.FromConfig(cfg.Prefix("STORE_"))
	if inMemory {
		sc.InMemory = true
	}
	kv, err := store.Open(ctx, sc, store.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:  cfg,
		log:  log,
		kv:   kv,
		deps: modkit.Deps{Log: log, Cfg: cfg, KV: kv},
	}, nil
}

func (e *env) Close() {
	if err := e.kv.Close(context.Background()); err != nil {
		e.log.Error().Err(err).Msg("failed to close store")
	}
}

// emit writes v as indented json when -o json, otherwise calls text
func emit(w io.Writer, v any, text func(io.Writer)) error {
	if outputFormat == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
