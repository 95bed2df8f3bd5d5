// Package store is the persisted local key value state of the client
//
// Values live under a namespace per cache type and are wrapped as
// {data, storedAt}; each namespace has its own lifetime. Entries that are
// expired or that fail to decode read as misses and are deleted on the spot.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	perr "shelfsync/internal/platform/errors"
	"shelfsync/internal/platform/logger"
)

// Namespace groups keys of one cache type
type Namespace string

// Namespaces known to the client
const (
	Books    Namespace = "books"
	Search   Namespace = "search"
	Popular  Namespace = "popular"
	Reviews  Namespace = "reviews"
	Book     Namespace = "book"
	Metadata Namespace = "metadata"
	TBR      Namespace = "tbr"
	Pending  Namespace = "pending"
)

// Namespaces lists every namespace in a stable order
var Namespaces = []Namespace{Books, Search, Popular, Reviews, Book, Metadata, TBR, Pending}

// DefaultTTLs are the lifetimes per namespace, zero never expires
var DefaultTTLs = map[Namespace]time.Duration{
	Books:    24 * time.Hour,
	Search:   30 * time.Minute,
	Popular:  6 * time.Hour,
	Reviews:  30 * time.Minute,
	Book:     2 * time.Hour,
	Metadata: 12 * time.Hour,
	TBR:      0,
	Pending:  0,
}

// envelope is the stored wire shape
type envelope struct {
	Data     json.RawMessage `json:"data"`
	StoredAt time.Time       `json:"storedAt"`
}

// NSStats describes one namespace
type NSStats struct {
	Entries int   `json:"entries"`
	Expired int   `json:"expired"`
	Corrupt int   `json:"corrupt"`
	Bytes   int64 `json:"bytes"`
}

// Store wraps a badger database
type Store struct {
	// Log is the logger used by the store
	Log *logger.Logger

	db   *badger.DB
	ttls map[Namespace]time.Duration
	now  func() time.Time
}

// Open opens or creates the database described by cfg
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &Store{
		Log:  logger.Named("store"),
		now:  time.Now,
		ttls: make(map[Namespace]time.Duration, len(DefaultTTLs)),
	}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	for ns, d := range DefaultTTLs {
		s.ttls[ns] = d
	}
	for ns, d := range cfg.TTLs {
		if d > 0 {
			s.ttls[ns] = d
		}
	}

	bo := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		bo = badger.DefaultOptions("").WithInMemory(true)
	}
	bo.Logger = nil
	bo.SyncWrites = cfg.SyncWrites
	bo.CompactL0OnClose = true

	db, err := badger.Open(bo)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeStore, "open badger at %q", cfg.Path)
	}
	s.db = db
	s.Log.Debug().Str("path", cfg.Path).Bool("in_memory", cfg.InMemory).Msg("store opened")
	return s, nil
}

// OpenInMemory is a shortcut for an ephemeral store
func OpenInMemory(opts ...Option) (*Store, error) {
	return Open(context.Background(), Config{InMemory: true}, opts...)
}

// Close flushes and closes the database
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	return perr.WrapIf(s.db.Close(), perr.ErrorCodeStore, "close badger")
}

// TTL returns the lifetime of ns
func (s *Store) TTL(ns Namespace) time.Duration { return s.ttls[ns] }

func key(ns Namespace, k string) []byte { return []byte(string(ns) + ":" + k) }

func prefix(ns Namespace) []byte { return []byte(string(ns) + ":") }

// Put stores v under ns/k stamped with the current time
func (s *Store) Put(ctx context.Context, ns Namespace, k string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "marshal value")
	}
	raw, err := json.Marshal(envelope{Data: data, StoredAt: s.now()})
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "marshal envelope")
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(ns, k), raw)
	})
	return perr.WrapIf(err, perr.ErrorCodeStore, "put "+string(ns))
}

// Get decodes ns/k into dest
// found is false for missing, expired and corrupt entries; the latter two are deleted
func (s *Store) Get(ctx context.Context, ns Namespace, k string, dest any) (storedAt time.Time, found bool, err error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}
	var env envelope
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(ns, k))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if uerr := json.Unmarshal(val, &env); uerr != nil {
				return perr.Wrap(uerr, perr.ErrorCodeIndexCorruption, "decode envelope")
			}
			return nil
		})
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return time.Time{}, false, nil
	case perr.IsCode(err, perr.ErrorCodeIndexCorruption):
		s.drop(ns, k, err, "corrupt entry dropped")
		return time.Time{}, false, nil
	case err != nil:
		return time.Time{}, false, perr.Wrap(err, perr.ErrorCodeStore, "get "+string(ns))
	}

	if s.expired(ns, env.StoredAt) {
		s.drop(ns, k, nil, "expired entry dropped")
		return time.Time{}, false, nil
	}
	if dest != nil {
		if uerr := json.Unmarshal(env.Data, dest); uerr != nil {
			s.drop(ns, k, uerr, "corrupt entry dropped")
			return time.Time{}, false, nil
		}
	}
	return env.StoredAt, true, nil
}

// Delete removes ns/k
func (s *Store) Delete(ctx context.Context, ns Namespace, k string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error { return txn.Delete(key(ns, k)) })
	return perr.WrapIf(err, perr.ErrorCodeStore, "delete "+string(ns))
}

// Entry is one live value yielded by Scan
type Entry struct {
	Key      string
	StoredAt time.Time
	Data     json.RawMessage
}

// Scan yields every live entry of ns in key order; expired and corrupt ones are skipped
func (s *Store) Scan(ctx context.Context, ns Namespace, fn func(Entry) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var live []Entry
	p := prefix(ns)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = p
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			var env envelope
			k := strings.TrimPrefix(string(it.Item().Key()), string(p))
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &env) }); err != nil {
				continue
			}
			if s.expired(ns, env.StoredAt) {
				continue
			}
			live = append(live, Entry{Key: k, StoredAt: env.StoredAt, Data: env.Data})
		}
		return nil
	})
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeStore, "scan "+string(ns))
	}
	for _, e := range live {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every key of ns and returns how many went
func (s *Store) Clear(ctx context.Context, ns Namespace) (int, error) {
	return s.deleteWhere(ctx, ns, func([]byte) bool { return true })
}

// Sweep removes expired and corrupt entries in every namespace
func (s *Store) Sweep(ctx context.Context) (int, error) {
	total := 0
	for _, ns := range Namespaces {
		n, err := s.deleteWhere(ctx, ns, func(val []byte) bool {
			var env envelope
			if err := json.Unmarshal(val, &env); err != nil {
				return true
			}
			return s.expired(ns, env.StoredAt)
		})
		total += n
		if err != nil {
			return total, err
		}
	}
	if total > 0 {
		s.Log.Debug().Int("removed", total).Msg("store swept")
	}
	return total, nil
}

// Stats counts entries per namespace
func (s *Store) Stats(ctx context.Context) (map[Namespace]NSStats, error) {
	out := make(map[Namespace]NSStats, len(Namespaces))
	for _, ns := range Namespaces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var st NSStats
		p := prefix(ns)
		err := s.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = p
			it := txn.NewIterator(opts)
			defer it.Close()
			for it.Seek(p); it.ValidForPrefix(p); it.Next() {
				st.Entries++
				st.Bytes += it.Item().ValueSize()
				var env envelope
				if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &env) }); err != nil {
					st.Corrupt++
					continue
				}
				if s.expired(ns, env.StoredAt) {
					st.Expired++
				}
			}
			return nil
		})
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeStore, "stats "+string(ns))
		}
		out[ns] = st
	}
	return out, nil
}

func (s *Store) expired(ns Namespace, storedAt time.Time) bool {
	ttl := s.ttls[ns]
	return ttl > 0 && s.now().Sub(storedAt) >= ttl
}

// deleteWhere collects matching keys under a read txn then deletes them in one write batch
func (s *Store) deleteWhere(ctx context.Context, ns Namespace, match func(val []byte) bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var doomed [][]byte
	p := prefix(ns)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = p
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			hit := false
			if err := item.Value(func(val []byte) error {
				hit = match(val)
				return nil
			}); err != nil {
				return err
			}
			if hit {
				doomed = append(doomed, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeStore, "scan "+string(ns))
	}
	if len(doomed) == 0 {
		return 0, nil
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range doomed {
		if err := wb.Delete(k); err != nil {
			return 0, perr.Wrap(err, perr.ErrorCodeStore, "delete batch")
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeStore, "flush delete batch")
	}
	return len(doomed), nil
}

func (s *Store) drop(ns Namespace, k string, cause error, msg string) {
	if err := s.db.Update(func(txn *badger.Txn) error { return txn.Delete(key(ns, k)) }); err != nil {
		s.Log.Warn().Err(err).Str("ns", string(ns)).Str("key", k).Msg("drop failed")
		return
	}
	evt := s.Log.Debug()
	if cause != nil {
		evt = s.Log.Warn().Err(cause)
	}
	evt.Str("ns", string(ns)).Str("key", k).Msg(msg)
}

// Ping checks the database answers a read transaction
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil || s.db.IsClosed() {
		return perr.Storef("store is closed")
	}
	return perr.WrapIf(s.db.View(func(*badger.Txn) error { return nil }), perr.ErrorCodeStore, "ping badger")
}
