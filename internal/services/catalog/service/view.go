package service

import (
	"context"

	"shelfsync/internal/core/batcher"
	"shelfsync/internal/core/book"
	"shelfsync/internal/core/genre"
	perr "shelfsync/internal/platform/errors"
	"shelfsync/internal/services/catalog/domain"
)

// LoadPage loads one page into the view and applies the genre fallback scan
func (s *Service) LoadPage(ctx context.Context, in domain.LoadInput) (domain.PageResult, error) {
	return s.load(ctx, in, false)
}

// AppendPage loads a page and appends its items to the visible list, page 0 means the next one
func (s *Service) AppendPage(ctx context.Context, in domain.LoadInput) (domain.PageResult, error) {
	if in.Page < 1 {
		s.mu.Lock()
		in.Page = s.state.Page + 1
		s.mu.Unlock()
	}
	return s.load(ctx, in, true)
}

// NextPage loads the page after the current one with the last query and filters
func (s *Service) NextPage(ctx context.Context) (domain.PageResult, error) {
	st := s.State()
	if st.ServerWarning {
		return domain.PageResult{}, perr.Conflictf("pagination disabled: server returning identical pages")
	}
	if !st.HasMore {
		return domain.PageResult{}, perr.Conflictf("no more pages after %d", st.Page)
	}
	return s.load(ctx, domain.LoadInput{Page: st.Page + 1, Query: st.Query, Filters: st.Filters}, false)
}

// PrevPage loads the page before the current one, clamped at 1
func (s *Service) PrevPage(ctx context.Context) (domain.PageResult, error) {
	st := s.State()
	if st.ServerWarning {
		return domain.PageResult{}, perr.Conflictf("pagination disabled: server returning identical pages")
	}
	return s.load(ctx, domain.LoadInput{Page: max(1, st.Page-1), Query: st.Query, Filters: st.Filters}, false)
}

// GoToPage loads page with the last query and filters
func (s *Service) GoToPage(ctx context.Context, page int) (domain.PageResult, error) {
	if page < 1 {
		return domain.PageResult{}, perr.InvalidArgf("page must be >= 1, got %d", page)
	}
	st := s.State()
	return s.load(ctx, domain.LoadInput{Page: page, Query: st.Query, Filters: st.Filters}, false)
}

// Search drops cached pages and loads page 1 for query
func (s *Service) Search(ctx context.Context, query string, filters map[string][]string) (domain.PageResult, error) {
	s.pages.Clear()
	return s.load(ctx, domain.LoadInput{Page: 1, Query: query, Filters: filters}, false)
}

// Refresh drops every cache, the hash history and warnings, then reloads the current page
func (s *Service) Refresh(ctx context.Context) (domain.PageResult, error) {
	s.pages.Clear()
	s.mu.Lock()
	s.hashes = map[pageSlot]string{}
	s.state.ServerWarning = false
	s.state.Error = ""
	in := domain.LoadInput{Page: s.state.Page, Query: s.state.Query, Filters: s.state.Filters}
	s.mu.Unlock()
	return s.load(ctx, in, false)
}

// load drives one view transition; only the latest token may write books, total and page
func (s *Service) load(ctx context.Context, in domain.LoadInput, appendMode bool) (domain.PageResult, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	s.mu.Lock()
	s.token++
	tok := s.token
	s.state.Phase = domain.PhaseLoading
	s.state.Loading = true
	s.state.Error = ""
	s.mu.Unlock()

	res, err := s.fetch(ctx, s.key(in.Page, in.Query, in.Filters), batcher.High)
	if err != nil {
		s.fail(tok, err)
		return domain.PageResult{}, err
	}

	s.commit(tok, in, res, appendMode, false)

	out := res
	if want := genre.FromFilters(in.Filters); len(want) > 0 {
		s.setFiltering(tok, true)
		matched := s.scanGenres(ctx, in, res.Items, want)
		if len(matched) > 0 {
			if len(matched) > s.cfg.PageSize {
				matched = matched[:s.cfg.PageSize]
			}
			out = domain.PageResult{Items: matched, Total: res.Total}
			s.commit(tok, in, out, appendMode, true)
		}
		s.setFiltering(tok, false)
	}

	s.settle(tok)
	for i := 1; i <= s.cfg.PrefetchPages; i++ {
		s.SchedulePrefetch(in.Page+i, in.Query, in.Filters)
	}
	return out, nil
}

// scanGenres collects matches from items and up to FallbackPages later pages
// it stops early once a page worth of matches is found or a page comes back empty
func (s *Service) scanGenres(ctx context.Context, in domain.LoadInput, items []book.Record, want genre.Set) []book.Record {
	seen := map[string]struct{}{}
	var matched []book.Record
	collect := func(xs []book.Record) {
		for _, r := range xs {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			if r.Genres().Intersects(want) {
				seen[r.ID] = struct{}{}
				matched = append(matched, r)
			}
		}
	}
	collect(items)

	next := in.Page + 1
	for attempts := 0; len(matched) < s.cfg.PageSize && attempts < s.cfg.FallbackPages; attempts++ {
		extra, err := s.fetch(ctx, s.key(next, in.Query, in.Filters), batcher.High)
		if err != nil {
			s.log.Debug().Err(err).Int("page", next).Msg("genre scan stopped")
			break
		}
		collect(extra.Items)
		if len(extra.Items) == 0 {
			break
		}
		next++
	}
	return matched
}

// commit writes a page into the view; filtered commits only replace the visible books
func (s *Service) commit(tok uint64, in domain.LoadInput, res domain.PageResult, appendMode, filtered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok != s.token {
		return
	}
	switch {
	case appendMode && filtered:
		// replace the tail appended by the unfiltered commit
		s.state.Books = appendUnique(s.state.Books[:s.appendBase], res.Items)
	case appendMode:
		s.appendBase = len(s.state.Books)
		s.state.Books = appendUnique(s.state.Books, res.Items)
	default:
		s.state.Books = append([]book.Record(nil), res.Items...)
	}
	if !filtered {
		s.state.Total = res.Total
	}
	s.state.Page = in.Page
	s.state.Query = in.Query
	s.state.Filters = in.Filters
	s.state.Fallback = false
	s.state.HasMore = domain.HasMore(in.Page, s.cfg.PageSize, s.state.Total)
}

func (s *Service) setFiltering(tok uint64, on bool) {
	s.mu.Lock()
	if tok == s.token {
		s.state.IsFiltering = on
	}
	s.mu.Unlock()
}

func (s *Service) settle(tok uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.firstDone = true
	if tok != s.token {
		return
	}
	s.state.Phase = domain.PhaseSuccess
	s.state.Loading = false
}

// fail records err without touching known good books; the very first load may fall back to samples
func (s *Service) fail(tok uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	first := !s.firstDone
	s.firstDone = true
	if tok != s.token {
		return
	}
	s.state.Phase = domain.PhaseError
	s.state.Loading = false
	s.state.IsFiltering = false
	s.state.Error = err.Error()
	if first && len(s.state.Books) == 0 && s.cfg.SampleFallback {
		s.state.Books = book.Samples()
		n := len(s.state.Books)
		s.state.Total = &n
		s.state.HasMore = false
		s.state.Fallback = true
		s.log.Warn().Err(err).Msg("first load failed, showing sample books")
	}
}

func appendUnique(dst, src []book.Record) []book.Record {
	seen := make(map[string]struct{}, len(dst))
	for _, r := range dst {
		seen[r.ID] = struct{}{}
	}
	out := append([]book.Record(nil), dst...)
	for _, r := range src {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}
