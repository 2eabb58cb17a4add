// ABOUTME: Frame (embedding snapshot) storage in SQLite
// ABOUTME: Vectors are stored as little-endian float64 BLOBs; implements catalog.Source
package sqlite

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/harper/flowscope/internal/catalog"
	"github.com/harper/flowscope/internal/models"
)

// FrameStore handles frame persistence
type FrameStore struct {
	db *DB
}

// NewFrameStore creates a new FrameStore
func NewFrameStore(db *DB) *FrameStore {
	return &FrameStore{db: db}
}

// SaveFrames upserts frames in a single transaction
func (s *FrameStore) SaveFrames(ctx context.Context, frames []catalog.Frame) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin frame import: %v", models.ErrPersistenceIO, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO frames (source_id, dimension, vector)
		VALUES (?, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET
			dimension = excluded.dimension,
			vector = excluded.vector,
			imported_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("%w: prepare frame insert: %v", models.ErrPersistenceIO, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, f := range frames {
		if f.SourceID == "" {
			return fmt.Errorf("frame without source_id")
		}
		if _, err := stmt.ExecContext(ctx, f.SourceID, len(f.Vector), vectorToBlob(f.Vector)); err != nil {
			return fmt.Errorf("%w: insert frame %s: %v", models.ErrPersistenceIO, f.SourceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit frame import: %v", models.ErrPersistenceIO, err)
	}
	return nil
}

// LoadFrames returns every stored frame in insertion order
func (s *FrameStore) LoadFrames(ctx context.Context) ([]catalog.Frame, error) {
	rows, err := s.db.conn.QueryContext(ctx, `SELECT source_id, vector FROM frames ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("%w: query frames: %v", models.ErrPersistenceIO, err)
	}
	defer func() { _ = rows.Close() }()

	var frames []catalog.Frame
	for rows.Next() {
		var (
			f    catalog.Frame
			blob []byte
		)
		if err := rows.Scan(&f.SourceID, &blob); err != nil {
			return nil, fmt.Errorf("%w: scan frame: %v", models.ErrPersistenceIO, err)
		}
		f.Vector = blobToVector(blob)
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

// Count returns the number of stored frames
func (s *FrameStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM frames`).Scan(&n)
	return n, err
}

// vectorToBlob converts a float64 slice to binary blob
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector converts a binary blob to float64 slice
func blobToVector(blob []byte) []float64 {
	count := len(blob) / 8
	vector := make([]float64, count)
	for i := 0; i < count; i++ {
		vector[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return vector
}
