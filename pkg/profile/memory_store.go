// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package profile

import "context"

// MemoryStore is a non-persistent Store for tests and local chat sessions.
type MemoryStore struct {
	engine
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{records: map[string]Record{}}
	s.bind(s)
	return s
}

func (s *MemoryStore) Close() error { return nil }

// Seed stores a raw record as-is, bypassing migration.
func (s *MemoryStore) Seed(userID string, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID] = rec.clone()
}

// Raw returns a copy of the stored record.
func (s *MemoryStore) Raw(userID string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, false
	}
	return rec.clone(), true
}

func (s *MemoryStore) load(_ context.Context, userID string) (Record, bool, error) {
	rec, ok := s.records[userID]
	if !ok {
		return Record{}, false, nil
	}
	return rec.clone(), true, nil
}

func (s *MemoryStore) save(_ context.Context, userID string, rec Record) error {
	s.records[userID] = rec.clone()
	return nil
}

func (s *MemoryStore) loadAll(_ context.Context) (map[string]Record, error) {
	out := make(map[string]Record, len(s.records))
	for id, rec := range s.records {
		out[id] = rec.clone()
	}
	return out, nil
}
