// Package service loads and submits reviews with a persisted pending layer
//
// A submitted review is kept locally under its book id until a server list
// carries the same text from the same person. Loads render still pending
// reviews ahead of the server list.
package service

import (
	"context"
	"sync"
	"time"

	"shelfsync/internal/core/pending"
	perr "shelfsync/internal/platform/errors"
	"shelfsync/internal/platform/logger"
	"shelfsync/internal/platform/store"
	"shelfsync/internal/services/reviews/domain"
)

// Config tunes reviews
type Config struct {
	TTL time.Duration // 30m, freshness of a cached merged list
	Now func() time.Time
	Log *logger.Logger
}

// Service is the reviews layer
type Service struct {
	cfg Config
	src domain.Source
	kv  *store.Store
	log *logger.Logger

	mu     sync.Mutex // guards pending read modify write
	mem    map[string][]domain.Review
	cached map[string]cachedList
}

type cachedList struct {
	reviews []domain.Review
	at      time.Time
}

// New builds a Service; without kv the pending set and cache live in memory
func New(src domain.Source, kv *store.Store, cfg Config) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = logger.Named("reviews")
	}
	return &Service{
		cfg:    cfg,
		src:    src,
		kv:     kv,
		log:    cfg.Log,
		mem:    map[string][]domain.Review{},
		cached: map[string]cachedList{},
	}
}

// Load returns the merged list for bookID, from cache unless refresh is set
func (s *Service) Load(ctx context.Context, bookID string, refresh bool) (domain.Listing, error) {
	if bookID == "" {
		return domain.Listing{}, perr.InvalidArgf("book id is required")
	}
	if !refresh {
		if list, ok := s.cachedList(ctx, bookID); ok {
			return listing(bookID, list, true), nil
		}
	}

	server, err := s.src.Reviews(ctx, bookID)
	if err != nil {
		return domain.Listing{}, perr.WithOp(err, "reviews.load")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	local, err := s.loadPending(ctx, bookID)
	if err != nil {
		return domain.Listing{}, err
	}
	merged, still := pending.Merge(local, server, domain.Review.Confirms)
	if len(still) != len(local) {
		s.log.Debug().Str("book", bookID).Int("confirmed", len(local)-len(still)).Msg("pending reviews confirmed")
		if err := s.savePending(ctx, bookID, still); err != nil {
			return domain.Listing{}, err
		}
	}
	s.cacheList(ctx, bookID, merged)
	return listing(bookID, merged, false), nil
}

// Submit posts a review; it is recorded as pending first and dropped from the
// pending set once the server assigns an id, a failed post leaves no trace
func (s *Service) Submit(ctx context.Context, in domain.SubmitInput) (domain.Review, error) {
	local := domain.Review{
		ID:        pending.NewID(),
		BookID:    in.BookID,
		Comment:   in.Comment,
		Rating:    in.Rating,
		UserEmail: in.UserEmail,
		UserName:  in.UserName,
		CreatedAt: s.cfg.Now(),
		Pending:   true,
	}
	if err := s.update(ctx, in.BookID, func(list []domain.Review) []domain.Review {
		return pending.Prepend(list, local)
	}); err != nil {
		return domain.Review{}, err
	}

	got, err := s.src.Post(ctx, in)
	if err != nil {
		if rerr := s.update(ctx, in.BookID, func(list []domain.Review) []domain.Review { return without(list, local.ID) }); rerr != nil {
			s.log.Warn().Err(rerr).Str("book", in.BookID).Msg("failed submit left a pending review")
		}
		return domain.Review{}, perr.WithOp(err, "reviews.submit")
	}
	s.dropCache(ctx, in.BookID)

	if got.ID == "" {
		s.log.Debug().Str("book", in.BookID).Str("id", local.ID).Msg("review kept pending")
		return local, nil
	}
	if err := s.update(ctx, in.BookID, func(list []domain.Review) []domain.Review { return without(list, local.ID) }); err != nil {
		return domain.Review{}, err
	}
	if got.UserEmail == "" && got.UserName == "" {
		got.UserEmail, got.UserName = in.UserEmail, in.UserName
	}
	if got.CreatedAt.IsZero() {
		got.CreatedAt = local.CreatedAt
	}
	return got, nil
}

// Pending returns the unconfirmed reviews of bookID
func (s *Service) Pending(ctx context.Context, bookID string) ([]domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadPending(ctx, bookID)
}

func (s *Service) update(ctx context.Context, bookID string, fn func([]domain.Review) []domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadPending(ctx, bookID)
	if err != nil {
		return err
	}
	return s.savePending(ctx, bookID, fn(list))
}

func (s *Service) loadPending(ctx context.Context, bookID string) ([]domain.Review, error) {
	if s.kv == nil {
		return append([]domain.Review(nil), s.mem[bookID]...), nil
	}
	var list []domain.Review
	if _, _, err := s.kv.Get(ctx, store.Pending, bookID, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Service) savePending(ctx context.Context, bookID string, list []domain.Review) error {
	if s.kv == nil {
		if len(list) == 0 {
			delete(s.mem, bookID)
		} else {
			s.mem[bookID] = list
		}
		return nil
	}
	if len(list) == 0 {
		return s.kv.Delete(ctx, store.Pending, bookID)
	}
	return s.kv.Put(ctx, store.Pending, bookID, list)
}

func (s *Service) cachedList(ctx context.Context, bookID string) ([]domain.Review, bool) {
	now := s.cfg.Now()
	if s.kv == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		c, ok := s.cached[bookID]
		if !ok || now.Sub(c.at) >= s.cfg.TTL {
			return nil, false
		}
		return c.reviews, true
	}
	var list []domain.Review
	at, ok, err := s.kv.Get(ctx, store.Reviews, bookID, &list)
	if err != nil || !ok || now.Sub(at) >= s.cfg.TTL {
		return nil, false
	}
	return list, true
}

// cacheList is called with mu held
func (s *Service) cacheList(ctx context.Context, bookID string, list []domain.Review) {
	if s.kv == nil {
		s.cached[bookID] = cachedList{reviews: list, at: s.cfg.Now()}
		return
	}
	if err := s.kv.Put(ctx, store.Reviews, bookID, list); err != nil {
		s.log.Debug().Err(err).Str("book", bookID).Msg("review list not cached")
	}
}

func (s *Service) dropCache(ctx context.Context, bookID string) {
	if s.kv == nil {
		s.mu.Lock()
		delete(s.cached, bookID)
		s.mu.Unlock()
		return
	}
	if err := s.kv.Delete(ctx, store.Reviews, bookID); err != nil {
		s.log.Debug().Err(err).Str("book", bookID).Msg("review cache not dropped")
	}
}

func listing(bookID string, list []domain.Review, cached bool) domain.Listing {
	n := 0
	for _, r := range list {
		if r.Pending {
			n++
		}
	}
	if list == nil {
		list = []domain.Review{}
	}
	return domain.Listing{BookID: bookID, Reviews: list, Pending: n, Cached: cached}
}

func without(list []domain.Review, id string) []domain.Review {
	out := list[:0:0]
	for _, r := range list {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}
