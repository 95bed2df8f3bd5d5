package service

import (
	"context"
	"strconv"
	"strings"

	"shelfsync/internal/core/batcher"
	"shelfsync/internal/core/book"
	perr "shelfsync/internal/platform/errors"
	"shelfsync/internal/platform/store"
	"shelfsync/internal/services/catalog/domain"
)

// FetchPage returns the page for key from cache, an in-flight fetch, or the network
func (s *Service) FetchPage(ctx context.Context, key domain.PageKey) (domain.PageResult, error) {
	return s.fetch(ctx, key, batcher.High)
}

func (s *Service) fetch(ctx context.Context, key domain.PageKey, pri batcher.Priority) (domain.PageResult, error) {
	k := key.String()
	if res, ok := s.pages.Get(k); ok {
		s.hits.Add(1)
		return res, nil
	}

	ch := s.flights.DoChan(k, func() (any, error) {
		// another flight may have filled the cache between our miss and this call
		if res, ok := s.pages.Get(k); ok {
			s.hits.Add(1)
			return res, nil
		}
		s.mu.Lock()
		s.inflight[k] = struct{}{}
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.inflight, k)
			s.mu.Unlock()
		}()
		// the shared call outlives any single caller
		return s.network(context.WithoutCancel(ctx), key, pri)
	})

	select {
	case r := <-ch:
		if r.Shared {
			s.deduped.Add(1)
		}
		if r.Err != nil {
			return domain.PageResult{}, r.Err
		}
		return r.Val.(domain.PageResult), nil
	case <-ctx.Done():
		return domain.PageResult{}, perr.Wrap(ctx.Err(), perr.ErrorCodeCanceled, "fetch page abandoned")
	}
}

// network performs exactly one upstream fetch for key
func (s *Service) network(ctx context.Context, key domain.PageKey, pri batcher.Priority) (domain.PageResult, error) {
	if err := s.coolingDown(); err != nil {
		return domain.PageResult{}, err
	}

	s.fetches.Add(1)
	res, err := batcher.Do(ctx, s.batch, pri, func(ctx context.Context) (domain.PageResult, error) {
		if err := s.limit.Wait(ctx); err != nil {
			return domain.PageResult{}, err
		}
		return s.src.List(ctx, key)
	})
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeTooManyRequests) {
			s.openCooldown(err)
		}
		s.log.Debug().Err(err).Str("key", key.String()).Msg("page fetch failed")
		return domain.PageResult{}, err
	}

	s.recordFetch(key, res.Items)
	s.pages.Set(key.String(), res)
	s.persist(ctx, key, res)
	if s.cfg.OnPage != nil && len(res.Items) > 0 {
		s.cfg.OnPage(res.Items)
	}
	return res, nil
}

// openCooldown blocks network fetches for the configured window, or the server hint if longer
func (s *Service) openCooldown(err error) {
	d := s.cfg.Cooldown
	if ra := perr.RetryAfterOf(err); ra > d {
		d = ra
	}
	s.mu.Lock()
	s.cooldownUntil = s.cfg.Now().Add(d)
	s.mu.Unlock()
	s.cooldowns.Add(1)
	s.log.Warn().Dur("cooldown", d).Msg("server rate limited, cooling down")
}

// PageHash is the cheap identity of an ordered id list; empty pages have none
func PageHash(items []book.Record) string {
	if len(items) == 0 {
		return ""
	}
	ids := strings.Join(book.IDs(items), ",")
	if len(ids) > 200 {
		ids = ids[:200]
	}
	return ids + "::" + strconv.Itoa(len(items))
}

// pageSlot is one page of one query and filter set
type pageSlot struct {
	view string
	page int
}

// recordFetch updates lastFetch and raises the sticky warning when two pages of the
// same view share a hash
func (s *Service) recordFetch(key domain.PageKey, items []book.Record) {
	h := PageHash(items)
	page := key.Page
	key.Page = 0
	view := key.String()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastFetch = domain.LastFetch{Page: page, ItemCount: len(items), Hash: h, Timestamp: s.cfg.Now()}
	if h == "" {
		return
	}
	s.hashes[pageSlot{view, page}] = h
	for slot, other := range s.hashes {
		if slot.view == view && slot.page != page && other == h {
			if !s.state.ServerWarning {
				s.log.Warn().Int("page", page).Int("same_as", slot.page).Msg("server returned identical pages, pagination disabled")
			}
			s.state.ServerWarning = true
			return
		}
	}
}

func (s *Service) persist(ctx context.Context, key domain.PageKey, res domain.PageResult) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Put(ctx, store.Books, key.String(), res); err != nil {
		s.log.Debug().Err(err).Str("key", key.String()).Msg("page snapshot not persisted")
	}
}

// SchedulePrefetch starts a background fetch of page unless it is cached, already
// in flight, or the in-flight ceiling is reached; it reports whether one started
func (s *Service) SchedulePrefetch(page int, query string, filters map[string][]string) bool {
	if page < 1 {
		return false
	}
	key := s.key(page, query, filters)
	k := key.String()
	if s.pages.Has(k) {
		return false
	}
	s.mu.Lock()
	_, flying := s.inflight[k]
	busy := len(s.inflight) >= s.cfg.MaxConcurrent
	s.mu.Unlock()
	if flying || busy {
		return false
	}

	s.prefetches.Add(1)
	s.prefetchWG.Add(1)
	go func() {
		defer s.prefetchWG.Done()
		if _, err := s.fetch(context.Background(), key, batcher.Normal); err != nil {
			s.log.Debug().Err(err).Int("page", page).Msg("prefetch skipped")
		}
	}()
	return true
}
