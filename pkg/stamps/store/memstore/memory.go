// Package memstore is an in-memory store.Store used by tests and
// one-shot CLI runs that skip persistence.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/mnav0/major-studio-1/pkg/stamps/internalerr"
	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
	"github.com/mnav0/major-studio-1/pkg/stamps/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu     sync.RWMutex
	order  []string
	stamps map[string]stamp.Stamp
	runs   []store.FetchRun
}

// New creates an empty store.
func New() *Store {
	return &Store{stamps: make(map[string]stamp.Stamp)}
}

var _ store.Store = (*Store)(nil)

// Close implements store.Store.
func (s *Store) Close() error { return nil }

func (s *Store) UpsertStamps(ctx context.Context, stamps []stamp.Stamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkIDs(stamps); err != nil {
		return err
	}
	s.upsert(stamps)
	return nil
}

func (s *Store) ReplaceStamps(ctx context.Context, stamps []stamp.Stamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkIDs(stamps); err != nil {
		return err
	}
	keep := make(map[string]struct{}, len(stamps))
	for _, st := range stamps {
		keep[st.ID] = struct{}{}
	}
	order := s.order[:0]
	for _, id := range s.order {
		if _, ok := keep[id]; ok {
			order = append(order, id)
		} else {
			delete(s.stamps, id)
		}
	}
	s.order = order
	s.upsert(stamps)
	return nil
}

func (s *Store) upsert(stamps []stamp.Stamp) {
	for _, st := range stamps {
		if _, ok := s.stamps[st.ID]; !ok {
			s.order = append(s.order, st.ID)
		}
		s.stamps[st.ID] = copyStamp(st)
	}
}

func checkIDs(stamps []stamp.Stamp) error {
	for _, st := range stamps {
		if st.ID == "" {
			return fmt.Errorf("upsert stamp: %w: empty id", internalerr.ErrInvalidInput)
		}
	}
	return nil
}

func (s *Store) Stamps(ctx context.Context, q store.Query) ([]stamp.Stamp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []stamp.Stamp{}
	for _, id := range s.order {
		st := s.stamps[id]
		if !q.Matches(st) {
			continue
		}
		out = append(out, copyStamp(st))
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) StampByID(ctx context.Context, id string) (stamp.Stamp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stamps[id]
	if !ok {
		return stamp.Stamp{}, fmt.Errorf("stamp %s: %w", id, internalerr.ErrNotFound)
	}
	return copyStamp(st), nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stamps), nil
}

func (s *Store) Decades(ctx context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int]struct{})
	out := []int{}
	for _, st := range s.stamps {
		if _, ok := seen[st.Decade]; ok {
			continue
		}
		seen[st.Decade] = struct{}{}
		out = append(out, st.Decade)
	}
	sort.Ints(out)
	return out, nil
}

func (s *Store) RecordFetch(ctx context.Context, run store.FetchRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

func (s *Store) LastFetch(ctx context.Context) (store.FetchRun, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.runs) == 0 {
		return store.FetchRun{}, false, nil
	}
	return s.runs[len(s.runs)-1], true, nil
}

func copyStamp(st stamp.Stamp) stamp.Stamp {
	st.Materials = slices.Clone(st.Materials)
	st.Media = slices.Clone(st.Media)
	st.Embedding = slices.Clone(st.Embedding)
	st.Detected = slices.Clone(st.Detected)
	st.Colors = slices.Clone(st.Colors)
	return st
}
