package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/scalesync/internal/domain/model"
)

// MemoryStore keeps records in a map keyed by date. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	byKey map[string]model.StoredRecord
	keyOf map[string]string // id -> date key
	settings
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		byKey:    make(map[string]model.StoredRecord),
		keyOf:    make(map[string]string),
		settings: defaultSettings(opts),
	}
}

// FindByDate returns the record for the calendar date of t, or nil when absent.
func (s *MemoryStore) FindByDate(ctx context.Context, t time.Time) (*model.StoredRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byKey[model.DateKey(model.Day(t))]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Create inserts rec. A record already stored for the same date is replaced.
func (s *MemoryStore) Create(ctx context.Context, rec model.Record) (model.StoredRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.StoredRecord{}, err
	}
	rec.Date = model.Day(rec.Date)
	now := s.now()
	stored := model.StoredRecord{Record: rec, ID: s.newID(), CreatedAt: now, UpdatedAt: now}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := rec.Key()
	if old, ok := s.byKey[key]; ok {
		delete(s.keyOf, old.ID)
	}
	s.byKey[key] = stored
	s.keyOf[stored.ID] = key
	return stored, nil
}

// Update overwrites the measurements of the record with id. The stored date follows rec.
func (s *MemoryStore) Update(ctx context.Context, id string, rec model.Record) (model.StoredRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.StoredRecord{}, err
	}
	rec.Date = model.Day(rec.Date)

	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.keyOf[id]
	if !ok {
		return model.StoredRecord{}, ErrNotFound
	}
	old := s.byKey[key]
	delete(s.byKey, key)

	stored := model.StoredRecord{Record: rec, ID: id, CreatedAt: old.CreatedAt, UpdatedAt: s.now()}
	s.byKey[rec.Key()] = stored
	s.keyOf[id] = rec.Key()
	return stored, nil
}

// List returns records within [from, to] ordered by date.
func (s *MemoryStore) List(ctx context.Context, from, to time.Time) ([]model.StoredRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validRange(from, to); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]model.StoredRecord, 0, len(s.byKey))
	for _, rec := range s.byKey {
		if !from.IsZero() && rec.Date.Before(model.Day(from)) {
			continue
		}
		if !to.IsZero() && rec.Date.After(model.Day(to)) {
			continue
		}
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKey), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
