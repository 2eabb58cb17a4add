// ABOUTME: Annotation store backed by two JSON documents on disk
// ABOUTME: Each write replaces the whole document via temp file and rename
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/harper/flowscope/internal/models"
	"github.com/harper/flowscope/internal/storage"
)

// Default document names
const (
	DefaultRecordFile = "descFile.json"
	DefaultCaseFile   = "case_desc.json"
)

// Store keeps both documents in memory and rewrites them on every change
type Store struct {
	mu         sync.Mutex
	recordPath string
	casePath   string
	records    map[string]string
	cases      storage.CaseDocument
}

// Open loads (or creates empty) record and case description documents
func Open(recordPath, casePath string) (*Store, error) {
	s := &Store{recordPath: recordPath, casePath: casePath}

	if err := ensureDocument(recordPath); err != nil {
		return nil, err
	}
	if err := ensureDocument(casePath); err != nil {
		return nil, err
	}

	if err := readDocument(recordPath, &s.records); err != nil {
		return nil, err
	}
	if err := readDocument(casePath, &s.cases); err != nil {
		return nil, err
	}
	if s.records == nil {
		s.records = make(map[string]string)
	}
	if s.cases == nil {
		s.cases = make(storage.CaseDocument)
	}
	return s, nil
}

// OpenDir opens the default document names inside dir
func OpenDir(dir string) (*Store, error) {
	return Open(filepath.Join(dir, DefaultRecordFile), filepath.Join(dir, DefaultCaseFile))
}

// RecordDescriptions returns a copy of the record document
func (s *Store) RecordDescriptions(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.records), nil
}

// SetRecordDescription persists the change before it becomes visible
func (s *Store) SetRecordDescription(ctx context.Context, sourceID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.records)
	storage.ApplyRecord(next, sourceID, text)
	if err := writeDocument(s.recordPath, next); err != nil {
		return err
	}
	s.records = next
	return nil
}

// CaseDescriptions returns a copy of the case document
func (s *Store) CaseDescriptions(ctx context.Context) (map[string]map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cases.Clone(), nil
}

// SetCaseDescription rewrites the case document; empty text removes the component
func (s *Store) SetCaseDescription(ctx context.Context, caseName, component, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cases.Clone()
	next.Apply(caseName, component, text)
	if err := writeDocument(s.casePath, next); err != nil {
		return err
	}
	s.cases = next
	return nil
}

// Close is a no-op; every write is already on disk
func (s *Store) Close() error { return nil }

func ensureDocument(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: stat %s: %v", models.ErrPersistenceIO, path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: create directory for %s: %v", models.ErrPersistenceIO, path, err)
	}
	return writeDocument(path, map[string]string{})
}

func readDocument(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", models.ErrPersistenceIO, path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", models.ErrPersistenceIO, path, err)
	}
	return nil
}

// writeDocument marshals v to a sibling temp file and renames it over path
func writeDocument(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", models.ErrPersistenceIO, path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", models.ErrPersistenceIO, path, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %s: %v", models.ErrPersistenceIO, path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync %s: %v", models.ErrPersistenceIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", models.ErrPersistenceIO, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", models.ErrPersistenceIO, path, err)
	}
	return nil
}
