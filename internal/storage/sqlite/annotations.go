// ABOUTME: Record and case description tables in SQLite
// ABOUTME: Implements the annotation store contract; empty text deletes the row
package sqlite

import (
	"context"
	"fmt"

	"github.com/harper/flowscope/internal/models"
)

// AnnotationStore persists descriptions in the shared database
type AnnotationStore struct {
	db    *DB
	owned bool
}

// NewAnnotationStore creates an AnnotationStore on an existing DB
func NewAnnotationStore(db *DB) *AnnotationStore {
	return &AnnotationStore{db: db}
}

// OpenAnnotationStore opens the database at path; Close closes it
func OpenAnnotationStore(path string) (*AnnotationStore, error) {
	db, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPersistenceIO, err)
	}
	return &AnnotationStore{db: db, owned: true}, nil
}

// RecordDescriptions returns every row of record_descriptions keyed by source id
func (s *AnnotationStore) RecordDescriptions(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.conn.QueryContext(ctx, `SELECT source_id, description FROM record_descriptions`)
	if err != nil {
		return nil, fmt.Errorf("%w: query record descriptions: %v", models.ErrPersistenceIO, err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]string)
	for rows.Next() {
		var id, text string
		if err := rows.Scan(&id, &text); err != nil {
			return nil, fmt.Errorf("%w: scan record description: %v", models.ErrPersistenceIO, err)
		}
		out[id] = text
	}
	return out, rows.Err()
}

// SetRecordDescription upserts the row for sourceID, or deletes it when text is empty
func (s *AnnotationStore) SetRecordDescription(ctx context.Context, sourceID, text string) error {
	var err error
	if text == "" {
		_, err = s.db.conn.ExecContext(ctx, `DELETE FROM record_descriptions WHERE source_id = ?`, sourceID)
	} else {
		_, err = s.db.conn.ExecContext(ctx, `
			INSERT INTO record_descriptions (source_id, description)
			VALUES (?, ?)
			ON CONFLICT(source_id) DO UPDATE SET
				description = excluded.description,
				updated_at = CURRENT_TIMESTAMP
		`, sourceID, text)
	}
	if err != nil {
		return fmt.Errorf("%w: save record description %s: %v", models.ErrPersistenceIO, sourceID, err)
	}
	return nil
}

// CaseDescriptions returns case descriptions keyed by case then component
func (s *AnnotationStore) CaseDescriptions(ctx context.Context) (map[string]map[string]string, error) {
	rows, err := s.db.conn.QueryContext(ctx, `SELECT case_name, component, description FROM case_descriptions`)
	if err != nil {
		return nil, fmt.Errorf("%w: query case descriptions: %v", models.ErrPersistenceIO, err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]map[string]string)
	for rows.Next() {
		var caseName, component, text string
		if err := rows.Scan(&caseName, &component, &text); err != nil {
			return nil, fmt.Errorf("%w: scan case description: %v", models.ErrPersistenceIO, err)
		}
		if out[caseName] == nil {
			out[caseName] = make(map[string]string)
		}
		out[caseName][component] = text
	}
	return out, rows.Err()
}

// SetCaseDescription upserts one (case, component) row, or deletes it when text is empty
func (s *AnnotationStore) SetCaseDescription(ctx context.Context, caseName, component, text string) error {
	var err error
	if text == "" {
		_, err = s.db.conn.ExecContext(ctx,
			`DELETE FROM case_descriptions WHERE case_name = ? AND component = ?`, caseName, component)
	} else {
		_, err = s.db.conn.ExecContext(ctx, `
			INSERT INTO case_descriptions (case_name, component, description)
			VALUES (?, ?, ?)
			ON CONFLICT(case_name, component) DO UPDATE SET
				description = excluded.description,
				updated_at = CURRENT_TIMESTAMP
		`, caseName, component, text)
	}
	if err != nil {
		return fmt.Errorf("%w: save case description %s/%s: %v", models.ErrPersistenceIO, caseName, component, err)
	}
	return nil
}

// Close closes the database only when the store opened it
func (s *AnnotationStore) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}
