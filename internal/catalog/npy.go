// ABOUTME: NumPy snapshot reader for catalog frames
// ABOUTME: Pairs a 2-D float vector array with a 1-D string array of filenames, row by row
package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sbinet/npyio"
)

// NPYSource reads frames from two row-aligned .npy files: Vectors holds an
// (n, d) float32 or float64 array and Filenames holds n unicode strings.
type NPYSource struct {
	Vectors   string
	Filenames string
}

// LoadFrames reads both arrays and zips them into frames
func (s NPYSource) LoadFrames(ctx context.Context) ([]Frame, error) {
	vectors, err := readNPYMatrix(s.Vectors)
	if err != nil {
		return nil, fmt.Errorf("reading vectors %s: %w", s.Vectors, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	names, err := readNPYStrings(s.Filenames)
	if err != nil {
		return nil, fmt.Errorf("reading filenames %s: %w", s.Filenames, err)
	}
	if len(vectors) != len(names) {
		return nil, fmt.Errorf("snapshot has %d vectors but %d filenames", len(vectors), len(names))
	}

	frames := make([]Frame, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("filename %d is empty", i)
		}
		frames[i] = Frame{SourceID: name, Vector: vectors[i]}
	}
	return frames, nil
}

// openNPY opens path and parses its header
func openNPY(path string) (*os.File, *npyio.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	r, err := npyio.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("invalid npy header: %w", err)
	}
	return f, r, nil
}

// dtypeKind drops the byte-order marker from a numpy type string ("<f8" -> "f8")
func dtypeKind(descr string) string {
	return strings.TrimLeft(descr, "<>|=")
}

func readNPYMatrix(path string) ([][]float64, error) {
	f, r, err := openNPY(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	shape := r.Header.Descr.Shape
	if len(shape) != 2 {
		return nil, fmt.Errorf("expected a 2-D array, got shape %v", shape)
	}
	rows, cols := shape[0], shape[1]

	var flat []float64
	switch kind := dtypeKind(r.Header.Descr.Type); kind {
	case "f8":
		if err := r.Read(&flat); err != nil {
			return nil, err
		}
	case "f4":
		var f32 []float32
		if err := r.Read(&f32); err != nil {
			return nil, err
		}
		flat = make([]float64, len(f32))
		for i, v := range f32 {
			flat[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("unsupported vector dtype %q", r.Header.Descr.Type)
	}
	if len(flat) != rows*cols {
		return nil, fmt.Errorf("read %d values, shape %v needs %d", len(flat), shape, rows*cols)
	}

	fortran := r.Header.Descr.Fortran
	out := make([][]float64, rows)
	for i := range out {
		row := make([]float64, cols)
		for j := range row {
			if fortran {
				row[j] = flat[j*rows+i]
			} else {
				row[j] = flat[i*cols+j]
			}
		}
		out[i] = row
	}
	return out, nil
}

func readNPYStrings(path string) ([]string, error) {
	f, r, err := openNPY(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if shape := r.Header.Descr.Shape; len(shape) != 1 {
		return nil, fmt.Errorf("expected a 1-D array, got shape %v", shape)
	}
	// fixed-width unicode, or an object array of pickled str
	if kind := dtypeKind(r.Header.Descr.Type); !strings.HasPrefix(kind, "U") && kind != "O" {
		return nil, fmt.Errorf("unsupported filename dtype %q, save with dtype=str", r.Header.Descr.Type)
	}

	var names []string
	if err := r.Read(&names); err != nil {
		return nil, err
	}
	return names, nil
}
