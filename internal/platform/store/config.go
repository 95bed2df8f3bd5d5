package store

import (
	"time"

	"shelfsync/internal/platform/config"
)

// Config configures the local badger database
type Config struct {
	// Path is the on disk directory, ignored when InMemory
	Path string
	// InMemory keeps everything in RAM, used by tests and ephemeral runs
	InMemory bool
	// SyncWrites fsyncs every commit
	SyncWrites bool
	// TTLs overrides the per namespace lifetimes, zero keeps the default
	TTLs map[Namespace]time.Duration
}

// FromConfig reads STORE_* style keys from cfg
func FromConfig(cfg config.Conf) Config {
	return Config{
		Path:       cfg.MayPath("PATH", "~/.shelfsync/db"),
		InMemory:   cfg.MayBool("IN_MEMORY", false),
		SyncWrites: cfg.MayBool("SYNC_WRITES", false),
		TTLs: map[Namespace]time.Duration{
			Books:    cfg.MayDuration("TTL_BOOKS", 0),
			Search:   cfg.MayDuration("TTL_SEARCH", 0),
			Popular:  cfg.MayDuration("TTL_POPULAR", 0),
			Reviews:  cfg.MayDuration("TTL_REVIEWS", 0),
			Book:     cfg.MayDuration("TTL_BOOK", 0),
			Metadata: cfg.MayDuration("TTL_METADATA", 0),
		},
	}
}
