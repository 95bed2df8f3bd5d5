// Package service implements smart search over the local index and the server
//
// A query is answered by the first layer that has it: the in-memory history,
// the local index, the persisted search cache, then the server through the
// search batcher. Server answers are merged back into the index.
package service

import (
	"context"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"shelfsync/internal/core/batcher"
	"shelfsync/internal/core/book"
	"shelfsync/internal/core/normalize"
	"shelfsync/internal/core/searchindex"
	"shelfsync/internal/core/ttlcache"
	perr "shelfsync/internal/platform/errors"
	"shelfsync/internal/platform/logger"
	"shelfsync/internal/platform/store"
	"shelfsync/internal/services/discovery/domain"
)

// Config tunes discovery; zero values get the defaults noted per field
type Config struct {
	Limit        int           // 50, server and default result limit
	LocalLimit   int           // 20
	Fuzzy        bool          // fuzzy matching in the local index
	HistoryTTL   time.Duration // 30m
	HistoryCap   int           // 100
	SearchTTL    time.Duration // 30m, freshness of persisted server answers
	SuggestLimit int           // 5

	Batch batcher.Options
	Now   func() time.Time
	Log   *logger.Logger
}

func (c *Config) defaults() {
	if c.Limit <= 0 {
		c.Limit = 50
	}
	if c.LocalLimit <= 0 {
		c.LocalLimit = 20
	}
	if c.HistoryTTL <= 0 {
		c.HistoryTTL = 30 * time.Minute
	}
	if c.HistoryCap <= 0 {
		c.HistoryCap = 100
	}
	if c.SearchTTL <= 0 {
		c.SearchTTL = 30 * time.Minute
	}
	if c.SuggestLimit <= 0 {
		c.SuggestLimit = 5
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Batch.Name == "" {
		c.Batch.Name = "search"
	}
	if c.Batch.Now == nil {
		c.Batch.Now = c.Now
	}
	if c.Log == nil {
		c.Log = logger.Named("discovery")
	}
	if c.Batch.Log == nil {
		c.Batch.Log = logger.Named("discovery.batcher")
	}
}

// Service is the smart search layer
type Service struct {
	cfg     Config
	src     domain.Source
	kv      *store.Store
	log     *logger.Logger
	index   *searchindex.Index
	history *ttlcache.Cache[string, domain.Result]
	batch   *batcher.Batcher
	flights singleflight.Group

	searches, historyHits, localHits, storeHits, serverHits atomic.Int64
}

// New builds a Service; kv is optional
func New(src domain.Source, kv *store.Store, cfg Config) *Service {
	cfg.defaults()
	return &Service{
		cfg:     cfg,
		src:     src,
		kv:      kv,
		log:     cfg.Log,
		index:   searchindex.New(),
		history: ttlcache.New[string, domain.Result](ttlcache.Options{TTL: cfg.HistoryTTL, Capacity: cfg.HistoryCap, Now: cfg.Now}),
		batch:   batcher.New(cfg.Batch),
	}
}

// Close rejects queued server searches
func (s *Service) Close() { s.batch.Close() }

// Index exposes the local index
func (s *Service) Index() *searchindex.Index { return s.index }

// Search answers q from the cheapest layer that has it
func (s *Service) Search(ctx context.Context, in domain.SearchInput) (domain.Result, error) {
	q := normalize.Words(in.Query)
	if q == "" {
		return domain.Result{Origin: domain.OriginNone, Results: []searchindex.Result{}}, nil
	}
	limit := in.Limit
	if limit <= 0 {
		limit = s.cfg.Limit
	}
	s.searches.Add(1)

	hkey := historyKey(q, limit, in.Remote)
	if res, ok := s.history.Get(hkey); ok {
		s.historyHits.Add(1)
		res.Origin = domain.OriginHistory
		return res, nil
	}

	if !in.Remote && s.index.Initialized() {
		local := s.index.Search(q, s.localOptions(min(limit, s.cfg.LocalLimit)))
		if len(local) > 0 {
			s.localHits.Add(1)
			res := domain.Result{Query: q, Origin: domain.OriginLocal, Results: local, At: s.cfg.Now()}
			s.history.Set(hkey, res)
			return res, nil
		}
	}

	ch := s.flights.DoChan(hkey, func() (any, error) {
		return s.remote(context.WithoutCancel(ctx), q, limit)
	})
	select {
	case <-ctx.Done():
		return domain.Result{}, perr.Wrap(ctx.Err(), perr.ErrorCodeCanceled, "search abandoned")
	case r := <-ch:
		if r.Err != nil {
			return domain.Result{}, r.Err
		}
		res := r.Val.(domain.Result)
		s.history.Set(hkey, res)
		return res, nil
	}
}

// remote consults the persisted search cache and then the server
func (s *Service) remote(ctx context.Context, q string, limit int) (domain.Result, error) {
	skey := storeKey(q, limit)
	if recs, at, ok := s.stored(ctx, skey); ok {
		s.storeHits.Add(1)
		s.index.Merge(recs)
		return domain.Result{Query: q, Origin: domain.OriginStore, Results: s.scored(q, recs), At: at}, nil
	}

	recs, err := batcher.Do(ctx, s.batch, batcher.High, func(ctx context.Context) ([]book.Record, error) {
		return s.src.Search(ctx, q, limit)
	})
	if err != nil {
		return domain.Result{}, perr.WithOp(err, "discovery.search")
	}
	s.serverHits.Add(1)
	if s.kv != nil {
		if err := s.kv.Put(ctx, store.Search, skey, recs); err != nil {
			s.log.Debug().Err(err).Str("query", q).Msg("search answer not persisted")
		}
	}
	added := s.index.Merge(recs)
	s.log.Debug().Str("query", q).Int("results", len(recs)).Int("indexed", added).Msg("server search")
	return domain.Result{Query: q, Origin: domain.OriginServer, Results: s.scored(q, recs), At: s.cfg.Now()}, nil
}

// stored returns a persisted answer younger than SearchTTL
func (s *Service) stored(ctx context.Context, key string) ([]book.Record, time.Time, bool) {
	if s.kv == nil {
		return nil, time.Time{}, false
	}
	var recs []book.Record
	at, ok, err := s.kv.Get(ctx, store.Search, key, &recs)
	if err != nil || !ok {
		return nil, time.Time{}, false
	}
	if s.cfg.Now().Sub(at) >= s.cfg.SearchTTL {
		return nil, time.Time{}, false
	}
	return recs, at, true
}

// scored keeps the server order and attaches local scores; records the
// local scorer does not reach score 0
func (s *Service) scored(q string, recs []book.Record) []searchindex.Result {
	scores := map[string]float64{}
	for _, r := range s.index.Search(q, s.localOptions(len(recs)+s.cfg.LocalLimit)) {
		scores[r.Record.ID] = r.Score
	}
	out := make([]searchindex.Result, len(recs))
	for i, r := range recs {
		out[i] = searchindex.Result{Record: r, Score: scores[r.ID]}
	}
	return out
}

func (s *Service) localOptions(limit int) searchindex.Options {
	o := searchindex.DefaultOptions()
	o.Limit = limit
	o.Fuzzy = s.cfg.Fuzzy
	return o
}

// Suggest completes a prefix from the indexed vocabulary
func (s *Service) Suggest(in domain.SuggestInput) []string {
	n := in.Limit
	if n <= 0 {
		n = s.cfg.SuggestLimit
	}
	return s.index.Suggest(in.Prefix, n)
}

// Add merges recs into the local index and returns how many were new
func (s *Service) Add(recs []book.Record) int { return s.index.Merge(recs) }

// snapshot is the persisted shape of a catalog page
type snapshot struct {
	Items []book.Record `json:"items"`
}

// Seed loads every persisted catalog page into the local index
func (s *Service) Seed(ctx context.Context) (int, error) {
	if s.kv == nil {
		return 0, nil
	}
	var recs []book.Record
	err := s.kv.Scan(ctx, store.Books, func(e store.Entry) error {
		var snap snapshot
		if err := json.Unmarshal(e.Data, &snap); err != nil {
			s.log.Debug().Err(err).Str("key", e.Key).Msg("skipping unreadable page snapshot")
			return nil
		}
		recs = append(recs, snap.Items...)
		return nil
	})
	if err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeStore, "seed index")
	}
	added := s.index.Merge(recs)
	s.log.Info().Int("books", added).Msg("search index seeded")
	return added, nil
}

// ClearHistory drops remembered answers and returns how many there were
func (s *Service) ClearHistory() int {
	n := s.history.Len()
	s.history.Clear()
	return n
}

// Stats reports layer counters
func (s *Service) Stats() domain.Stats {
	return domain.Stats{
		Index:       s.index.Stats(),
		History:     s.history.Len(),
		Searches:    s.searches.Load(),
		HistoryHits: s.historyHits.Load(),
		LocalHits:   s.localHits.Load(),
		StoreHits:   s.storeHits.Load(),
		ServerHits:  s.serverHits.Load(),
		Batch:       s.batch.Stats(),
	}
}

func historyKey(q string, limit int, remote bool) string {
	k := q + "|" + strconv.Itoa(limit)
	if remote {
		k += "|remote"
	}
	return k
}

func storeKey(q string, limit int) string { return q + "|" + strconv.Itoa(limit) }
