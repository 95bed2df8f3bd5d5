// Package service implements the catalog orchestrator
//
// One Service owns one dataset view. Page fetches go through a TTL page cache,
// per key in-flight dedup, a 429 cooldown, the sliding window limiter and the
// request batcher, in that order.
package service

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"shelfsync/internal/core/batcher"
	"shelfsync/internal/core/book"
	"shelfsync/internal/core/ratelimit"
	"shelfsync/internal/core/ttlcache"
	perr "shelfsync/internal/platform/errors"
	"shelfsync/internal/platform/logger"
	"shelfsync/internal/platform/store"
	"shelfsync/internal/services/catalog/domain"
)

// Config tunes the orchestrator; zero values get the defaults noted per field
type Config struct {
	PageSize int           // 24
	PageTTL  time.Duration // 2m
	PageCap  int           // 50
	// PrefetchPages is how many pages after the current one are prefetched, 0 disables
	PrefetchPages int
	MaxConcurrent int           // 3, ceiling of in-flight fetches for prefetch
	FallbackPages int           // 3, extra pages scanned for genre matches
	Cooldown      time.Duration // 2s after a 429
	// SampleFallback shows the labeled sample set when the very first load fails
	SampleFallback bool

	Batch batcher.Options
	Rate  ratelimit.Options
	Now   func() time.Time
	Log   *logger.Logger
	// OnPage sees the items of every successful network fetch
	OnPage func([]book.Record)
}

func (c *Config) defaults() {
	if c.PageSize <= 0 {
		c.PageSize = 24
	}
	if c.PageTTL <= 0 {
		c.PageTTL = 2 * time.Minute
	}
	if c.PageCap <= 0 {
		c.PageCap = 50
	}
	if c.PrefetchPages < 0 {
		c.PrefetchPages = 0
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 3
	}
	if c.FallbackPages < 0 {
		c.FallbackPages = 0
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 2 * time.Second
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Batch.Name == "" {
		c.Batch.Name = "books"
	}
	if c.Batch.Now == nil {
		c.Batch.Now = c.Now
	}
	if c.Batch.Retryable == nil {
		// a 429 opens the cooldown instead of being retried in place
		c.Batch.Retryable = func(err error) bool {
			return perr.Retryable(err) && !perr.IsRateLimited(err)
		}
	}
	if c.Rate.Now == nil {
		c.Rate.Now = c.Now
	}
}

// Service is the catalog orchestrator
type Service struct {
	cfg Config
	src domain.Source
	kv  *store.Store
	log *logger.Logger

	pages   *ttlcache.Cache[string, domain.PageResult]
	flights singleflight.Group
	batch   *batcher.Batcher
	limit   *ratelimit.Limiter

	mu            sync.Mutex
	inflight      map[string]struct{}
	hashes        map[pageSlot]string // id hash of the last network fetch per page of a view
	cooldownUntil time.Time
	state         domain.State
	token         uint64
	firstDone     bool
	appendBase    int // visible length before the last append

	prefetchWG sync.WaitGroup

	fetches, hits, deduped, prefetches, cooldowns atomic.Int64
}

// New builds a Service over src; kv is optional and only receives best effort page snapshots
func New(src domain.Source, kv *store.Store, cfg Config) *Service {
	cfg.defaults()
	log := cfg.Log
	if log == nil {
		log = logger.Named("catalog")
	}
	if cfg.Batch.Log == nil {
		cfg.Batch.Log = logger.Named("catalog.batcher")
	}
	s := &Service{
		cfg:      cfg,
		src:      src,
		kv:       kv,
		log:      log,
		pages:    ttlcache.New[string, domain.PageResult](ttlcache.Options{TTL: cfg.PageTTL, Capacity: cfg.PageCap, Now: cfg.Now}),
		batch:    batcher.New(cfg.Batch),
		limit:    ratelimit.New(cfg.Rate),
		inflight: map[string]struct{}{},
		hashes:   map[pageSlot]string{},
	}
	s.state = domain.State{Phase: domain.PhaseIdle, Page: 1, PageSize: cfg.PageSize, HasMore: true}
	return s
}

// Close waits for running prefetches and rejects anything still queued
func (s *Service) Close() {
	s.prefetchWG.Wait()
	s.batch.Close()
}

// WaitPrefetch blocks until every scheduled prefetch has settled
func (s *Service) WaitPrefetch() { s.prefetchWG.Wait() }

// State returns a copy of the current view
func (s *Service) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Books = append([]book.Record(nil), s.state.Books...)
	st.IsRateLimited = s.cfg.Now().Before(s.cooldownUntil)
	return st
}

// Stats returns counters and cache occupancy
func (s *Service) Stats() domain.Stats {
	s.mu.Lock()
	inflight := len(s.inflight)
	s.mu.Unlock()
	return domain.Stats{
		CachedPages: s.pages.Len(),
		InFlight:    inflight,
		Fetches:     s.fetches.Load(),
		CacheHits:   s.hits.Load(),
		Deduped:     s.deduped.Load(),
		Prefetches:  s.prefetches.Load(),
		Cooldowns:   s.cooldowns.Load(),
	}
}

// BatchStats exposes the underlying batcher queue
func (s *Service) BatchStats() batcher.Stats { return s.batch.Stats() }

// RateStats exposes the limiter window
func (s *Service) RateStats() ratelimit.Stats { return s.limit.Stats() }

func (s *Service) key(page int, query string, filters map[string][]string) domain.PageKey {
	if page < 1 {
		page = 1
	}
	return domain.PageKey{Page: page, Size: s.cfg.PageSize, Query: query, Filters: filters}
}

var _ domain.ServicePort = (*Service)(nil)
