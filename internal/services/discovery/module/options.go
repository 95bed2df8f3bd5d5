package module

import (
	"time"

	"shelfsync/internal/core/batcher"
	"shelfsync/internal/platform/config"
	"shelfsync/internal/services/discovery/service"
)

// Options holds configuration settings for the discovery module
type Options struct {
	Limit        int
	LocalLimit   int
	Fuzzy        bool
	HistoryTTL   time.Duration
	SearchTTL    time.Duration
	SuggestLimit int
	SeedOnStart  bool

	BatchSize    int
	BatchDelay   time.Duration
	BatchMaxWait time.Duration
	MaxAttempts  int
}

// FromConfig reads DISCOVERY_* keys
func FromConfig(cfg config.Conf) Options {
	cf := cfg.Prefix("DISCOVERY_")
	return Options{
		Limit:        cf.MayInt("LIMIT", 50),
		LocalLimit:   cf.MayInt("LOCAL_LIMIT", 20),
		Fuzzy:        cf.MayBool("FUZZY", true),
		HistoryTTL:   cf.MayDuration("HISTORY_TTL", 30*time.Minute),
		SearchTTL:    cf.MayDuration("SEARCH_TTL", 30*time.Minute),
		SuggestLimit: cf.MayInt("SUGGEST_LIMIT", 5),
		SeedOnStart:  cf.MayBool("SEED_ON_START", true),
		BatchSize:    cf.MayInt("BATCH_SIZE", 2),
		BatchDelay:   cf.MayDuration("BATCH_DELAY", 300*time.Millisecond),
		BatchMaxWait: cf.MayDuration("BATCH_MAX_WAIT", time.Second),
		MaxAttempts:  cf.MayInt("MAX_ATTEMPTS", 3),
	}
}

// Config turns Options into the service config
func (o Options) Config() service.Config {
	return service.Config{
		Limit:        o.Limit,
		LocalLimit:   o.LocalLimit,
		Fuzzy:        o.Fuzzy,
		HistoryTTL:   o.HistoryTTL,
		SearchTTL:    o.SearchTTL,
		SuggestLimit: o.SuggestLimit,
		Batch: batcher.Options{
			Name:        "search",
			BatchSize:   o.BatchSize,
			Delay:       o.BatchDelay,
			MaxWait:     o.BatchMaxWait,
			MaxAttempts: o.MaxAttempts,
		},
	}
}
