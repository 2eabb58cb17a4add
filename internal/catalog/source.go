// ABOUTME: JSON Lines snapshot reader for catalog frames
// ABOUTME: Each line holds {"source_id": "...", "vector": [...]}
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// JSONLSource reads frames from a JSON Lines file
type JSONLSource struct {
	Path string
}

// LoadFrames decodes every frame in the file
func (s JSONLSource) LoadFrames(ctx context.Context) ([]Frame, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	return DecodeFrames(ctx, f)
}

// DecodeFrames reads a stream of JSON frame objects
func DecodeFrames(ctx context.Context, r io.Reader) ([]Frame, error) {
	dec := json.NewDecoder(r)
	var frames []Frame

	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var f Frame
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", line, err)
		}
		if f.SourceID == "" {
			return nil, fmt.Errorf("frame %d: missing source_id", line)
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// StaticSource serves a fixed slice of frames (tests and the import command)
type StaticSource []Frame

// LoadFrames returns the frames as-is
func (s StaticSource) LoadFrames(ctx context.Context) ([]Frame, error) {
	return s, nil
}
