package module

import (
	"time"

	"shelfsync/internal/core/batcher"
	"shelfsync/internal/core/ratelimit"
	"shelfsync/internal/platform/config"
	"shelfsync/internal/services/catalog/service"
)

// Options holds configuration settings for the catalog module
type Options struct {
	PageSize       int
	PageTTL        time.Duration
	PageCap        int
	PrefetchPages  int
	MaxConcurrent  int
	FallbackPages  int
	Cooldown       time.Duration
	SampleFallback bool

	BatchSize    int
	BatchDelay   time.Duration
	BatchMaxWait time.Duration
	MaxAttempts  int
	RateMax      int
	RateWindow   time.Duration
}

// FromConfig reads CATALOG_* keys
func FromConfig(cfg config.Conf) Options {
	cf := cfg.Prefix("CATALOG_")
	return Options{
		PageSize:       cf.MayInt("PAGE_SIZE", 24),
		PageTTL:        cf.MayDuration("PAGE_TTL", 2*time.Minute),
		PageCap:        cf.MayInt("PAGE_CAP", 50),
		PrefetchPages:  cf.MayInt("PREFETCH_PAGES", 1),
		MaxConcurrent:  cf.MayInt("MAX_CONCURRENT", 3),
		FallbackPages:  cf.MayInt("FALLBACK_PAGES", 3),
		Cooldown:       cf.MayDuration("COOLDOWN", 2*time.Second),
		SampleFallback: cf.MayBool("SAMPLE_FALLBACK", true),
		BatchSize:      cf.MayInt("BATCH_SIZE", 3),
		BatchDelay:     cf.MayDuration("BATCH_DELAY", 200*time.Millisecond),
		BatchMaxWait:   cf.MayDuration("BATCH_MAX_WAIT", 1500*time.Millisecond),
		MaxAttempts:    cf.MayInt("MAX_ATTEMPTS", 3),
		RateMax:        cf.MayInt("RATE_MAX", 8),
		RateWindow:     cf.MayDuration("RATE_WINDOW", time.Second),
	}
}

// Config turns Options into the service config
func (o Options) Config() service.Config {
	return service.Config{
		PageSize:       o.PageSize,
		PageTTL:        o.PageTTL,
		PageCap:        o.PageCap,
		PrefetchPages:  o.PrefetchPages,
		MaxConcurrent:  o.MaxConcurrent,
		FallbackPages:  o.FallbackPages,
		Cooldown:       o.Cooldown,
		SampleFallback: o.SampleFallback,
		Batch: batcher.Options{
			Name:        "books",
			BatchSize:   o.BatchSize,
			Delay:       o.BatchDelay,
			MaxWait:     o.BatchMaxWait,
			MaxAttempts: o.MaxAttempts,
		},
		Rate: ratelimit.Options{Max: o.RateMax, Window: o.RateWindow},
	}
}
