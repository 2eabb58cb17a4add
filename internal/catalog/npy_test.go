// ABOUTME: Tests for the NumPy snapshot reader
// ABOUTME: Writes small arrays with npyio and reads them back as catalog frames
package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

func writeNPY(t *testing.T, name string, val interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer f.Close()
	if err := npyio.Write(f, val); err != nil {
		t.Fatalf("npyio.Write(%s) error = %v", name, err)
	}
	return path
}

func TestNPYSource_RoundTrip(t *testing.T) {
	names := []string{
		"caseA_f1.0_t700_OH_10ms",
		"caseA_f1.0_t700_OH_20ms",
		"caseB_f0.9_t600_p_5ms",
	}
	vectors := mat.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})

	src := NPYSource{
		Vectors:   writeNPY(t, "mean.npy", vectors),
		Filenames: writeNPY(t, "filenames.npy", names),
	}

	frames, err := src.LoadFrames(context.Background())
	if err != nil {
		t.Fatalf("LoadFrames() error = %v", err)
	}

	want := []Frame{
		{SourceID: names[0], Vector: []float64{1, 2}},
		{SourceID: names[1], Vector: []float64{3, 4}},
		{SourceID: names[2], Vector: []float64{5, 6}},
	}
	if diff := cmp.Diff(want, frames); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}

	c, stats, err := Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if stats.Loaded != 3 || c.Dimension() != 2 {
		t.Errorf("stats = %+v, dimension = %d", stats, c.Dimension())
	}
}

func TestNPYSource_Errors(t *testing.T) {
	names := writeNPY(t, "filenames.npy", []string{"caseA_f1.0_t700_OH_10ms", "caseA_f1.0_t700_OH_20ms"})
	oneRow := writeNPY(t, "one.npy", mat.NewDense(1, 2, []float64{1, 2}))
	flat := writeNPY(t, "flat.npy", []float32{1, 2, 3})

	tests := []struct {
		name    string
		src     NPYSource
		wantErr string
	}{
		{"row count mismatch", NPYSource{Vectors: oneRow, Filenames: names}, "1 vectors but 2 filenames"},
		{"vectors not 2-D", NPYSource{Vectors: flat, Filenames: names}, "2-D"},
		{"filenames not strings", NPYSource{Vectors: oneRow, Filenames: flat}, "filename dtype"},
		{"missing file", NPYSource{Vectors: filepath.Join(t.TempDir(), "nope.npy"), Filenames: names}, "reading vectors"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.src.LoadFrames(context.Background())
			if err == nil {
				t.Fatal("LoadFrames() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
