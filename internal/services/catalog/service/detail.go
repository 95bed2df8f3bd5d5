package service

import (
	"context"
	"strings"
	"time"

	"shelfsync/internal/core/batcher"
	"shelfsync/internal/core/book"
	perr "shelfsync/internal/platform/errors"
	"shelfsync/internal/platform/store"
)

// Book returns one book detail, served from the persisted book namespace while fresh
func (s *Service) Book(ctx context.Context, id string) (book.Detail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return book.Detail{}, perr.InvalidArgf("book id is required")
	}
	if s.kv != nil {
		var d book.Detail
		if _, ok, err := s.kv.Get(ctx, store.Book, id, &d); err == nil && ok {
			s.hits.Add(1)
			return d, nil
		}
	}

	ch := s.flights.DoChan("book:"+id, func() (any, error) {
		return s.fetchBook(context.WithoutCancel(ctx), id)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return book.Detail{}, r.Err
		}
		return r.Val.(book.Detail), nil
	case <-ctx.Done():
		return book.Detail{}, perr.Wrap(ctx.Err(), perr.ErrorCodeCanceled, "book lookup abandoned")
	}
}

func (s *Service) fetchBook(ctx context.Context, id string) (book.Detail, error) {
	if err := s.coolingDown(); err != nil {
		return book.Detail{}, err
	}
	s.fetches.Add(1)
	d, err := batcher.Do(ctx, s.batch, batcher.High, func(ctx context.Context) (book.Detail, error) {
		if err := s.limit.Wait(ctx); err != nil {
			return book.Detail{}, err
		}
		return s.src.Book(ctx, id)
	})
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeTooManyRequests) {
			s.openCooldown(err)
		}
		return book.Detail{}, err
	}
	if s.kv != nil {
		if kerr := s.kv.Put(ctx, store.Book, id, d); kerr != nil {
			s.log.Debug().Err(kerr).Str("id", id).Msg("book detail not persisted")
		}
	}
	return d, nil
}

// Count returns the server side count for filters, cached in the metadata namespace
func (s *Service) Count(ctx context.Context, filters map[string][]string) (int, error) {
	key := "count:" + s.key(1, "", filters).String()
	if s.kv != nil {
		var n int
		if _, ok, err := s.kv.Get(ctx, store.Metadata, key, &n); err == nil && ok {
			return n, nil
		}
	}
	if err := s.coolingDown(); err != nil {
		return 0, err
	}
	n, err := batcher.Do(ctx, s.batch, batcher.Normal, func(ctx context.Context) (int, error) {
		if err := s.limit.Wait(ctx); err != nil {
			return 0, err
		}
		return s.src.Count(ctx, filters)
	})
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeTooManyRequests) {
			s.openCooldown(err)
		}
		return 0, err
	}
	if s.kv != nil {
		if err := s.kv.Put(ctx, store.Metadata, key, n); err != nil {
			s.log.Debug().Err(err).Str("key", key).Msg("count not persisted")
		}
	}
	return n, nil
}

func (s *Service) coolingDown() error {
	s.mu.Lock()
	until := s.cooldownUntil
	s.mu.Unlock()
	if now := s.cfg.Now(); now.Before(until) {
		return perr.Cooldownf("rate limited by server, backing off for %s", until.Sub(now).Round(time.Millisecond))
	}
	return nil
}
