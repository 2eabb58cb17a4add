// ABOUTME: In-process annotation store with no persistence
// ABOUTME: Used for ephemeral sessions and as a test double
package storage

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore keeps annotations in maps guarded by a mutex
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]string
	cases   CaseDocument
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]string), cases: make(CaseDocument)}
}

func (s *MemoryStore) RecordDescriptions(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.records), nil
}

func (s *MemoryStore) SetRecordDescription(ctx context.Context, sourceID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ApplyRecord(s.records, sourceID, text)
	return nil
}

func (s *MemoryStore) CaseDescriptions(ctx context.Context) (map[string]map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cases.Clone(), nil
}

func (s *MemoryStore) SetCaseDescription(ctx context.Context, caseName, component, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases.Apply(caseName, component, text)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
