// Package service keeps the to be read list in the local store
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"shelfsync/internal/core/pending"
	perr "shelfsync/internal/platform/errors"
	"shelfsync/internal/platform/logger"
	"shelfsync/internal/platform/store"
	"shelfsync/internal/services/tbr/domain"
)

const (
	listKey    = "list"
	removedKey = "removed"
)

// Service owns the list; without a store it lives in memory
type Service struct {
	kv  *store.Store
	log *logger.Logger
	now func() time.Time

	mu      sync.Mutex
	mem     []domain.Entry
	removed map[string]domain.Removal // memory mode only
}

// New builds a Service; now defaults to time.Now
func New(kv *store.Store, log *logger.Logger, now func() time.Time) *Service {
	if log == nil {
		log = logger.Named("tbr")
	}
	if now == nil {
		now = time.Now
	}
	return &Service{kv: kv, log: log, now: now, removed: map[string]domain.Removal{}}
}

// List returns the entries, newest first
func (s *Service) List(ctx context.Context) ([]domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Entry{}
	}
	return list, nil
}

// Add prepends the book unless its id is already listed and reports whether it was added
func (s *Service) Add(ctx context.Context, in domain.AddInput) (bool, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return false, perr.InvalidArgf("book id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	if indexOf(list, id) >= 0 {
		return false, nil
	}
	e := domain.Entry{ID: id, Title: in.Title, Author: in.Author, ImageURL: in.ImageURL, AddedAt: s.now()}
	if err := s.save(ctx, pending.Prepend(list, e)); err != nil {
		return false, err
	}
	undo, err := s.undo(ctx)
	if err != nil {
		return true, err
	}
	if _, ok := undo[id]; ok {
		delete(undo, id)
		return true, s.keepUndo(ctx, undo)
	}
	return true, nil
}

// Remove takes id off the list and remembers its position for Restore
func (s *Service) Remove(ctx context.Context, id string) (domain.Removal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load(ctx)
	if err != nil {
		return domain.Removal{}, err
	}
	i := indexOf(list, id)
	if i < 0 {
		return domain.Removal{}, perr.NotFoundf("book %q is not on the list", id)
	}
	rm := domain.Removal{Entry: list[i], Index: i}
	out := make([]domain.Entry, 0, len(list)-1)
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	if err := s.save(ctx, out); err != nil {
		return domain.Removal{}, err
	}
	undo, err := s.undo(ctx)
	if err != nil {
		return rm, err
	}
	undo[id] = rm
	return rm, s.keepUndo(ctx, undo)
}

// Restore puts a removed entry back at its old position, clamped to the list end
// it reports false when id was not removed or is already listed again
func (s *Service) Restore(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	undo, err := s.undo(ctx)
	if err != nil {
		return false, err
	}
	rm, ok := undo[id]
	if !ok {
		return false, nil
	}
	list, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	delete(undo, id)
	if err := s.keepUndo(ctx, undo); err != nil {
		return false, err
	}
	if indexOf(list, id) >= 0 {
		return false, nil
	}
	at := min(max(rm.Index, 0), len(list))
	out := make([]domain.Entry, 0, len(list)+1)
	out = append(out, list[:at]...)
	out = append(out, rm.Entry)
	out = append(out, list[at:]...)
	return true, s.save(ctx, out)
}

// Clear empties the list and returns how many entries it held
func (s *Service) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.save(ctx, nil); err != nil {
		return 0, err
	}
	if err := s.keepUndo(ctx, nil); err != nil {
		return 0, err
	}
	s.log.Debug().Int("entries", len(list)).Msg("list cleared")
	return len(list), nil
}

func (s *Service) load(ctx context.Context) ([]domain.Entry, error) {
	if s.kv == nil {
		return append([]domain.Entry(nil), s.mem...), nil
	}
	var list []domain.Entry
	if _, _, err := s.kv.Get(ctx, store.TBR, listKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Service) save(ctx context.Context, list []domain.Entry) error {
	if s.kv == nil {
		s.mem = list
		return nil
	}
	if len(list) == 0 {
		return s.kv.Delete(ctx, store.TBR, listKey)
	}
	return s.kv.Put(ctx, store.TBR, listKey, list)
}

// undo returns the remembered removals, persisted so a later process can restore
func (s *Service) undo(ctx context.Context) (map[string]domain.Removal, error) {
	out := map[string]domain.Removal{}
	if s.kv == nil {
		for k, v := range s.removed {
			out[k] = v
		}
		return out, nil
	}
	if _, _, err := s.kv.Get(ctx, store.TBR, removedKey, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) keepUndo(ctx context.Context, m map[string]domain.Removal) error {
	if s.kv == nil {
		s.removed = m
		return nil
	}
	if len(m) == 0 {
		return s.kv.Delete(ctx, store.TBR, removedKey)
	}
	return s.kv.Put(ctx, store.TBR, removedKey, m)
}

func indexOf(list []domain.Entry, id string) int {
	for i, e := range list {
		if e.ID == id {
			return i
		}
	}
	return -1
}
