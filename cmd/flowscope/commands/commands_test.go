// ABOUTME: End-to-end tests for the data commands against temp snapshot and store files
// ABOUTME: Runs import, cases, project and annotate through the root command
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/flowscope/internal/catalog"
	"github.com/harper/flowscope/internal/core"
	"github.com/harper/flowscope/internal/storage/jsonfile"
	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// setupEnv writes a two-case snapshot and points the config at temp files
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	rng := rand.New(rand.NewPCG(9, 9))

	snapshot := filepath.Join(dir, "snapshot.jsonl")
	f, err := os.Create(snapshot)
	require.NoError(t, err)
	enc := json.NewEncoder(f)
	for _, c := range []struct {
		name   string
		center float64
	}{{"base", 0}, {"hot_t650", 9}} {
		for i := 0; i < 8; i++ {
			require.NoError(t, enc.Encode(catalog.Frame{
				SourceID: fmt.Sprintf("%s_OH_%dms.png", c.name, i),
				Vector:   []float64{c.center + rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()},
			}))
		}
	}
	require.NoError(t, f.Close())

	t.Setenv("FLOWSCOPE_SNAPSHOT_SOURCE", "jsonl")
	t.Setenv("FLOWSCOPE_SNAPSHOT", snapshot)
	t.Setenv("FLOWSCOPE_STORE", "json")
	t.Setenv("FLOWSCOPE_ANNOTATION_DIR", dir)
	t.Setenv("FLOWSCOPE_DB", filepath.Join(dir, "flowscope.db"))
	t.Setenv("FLOWSCOPE_TSNE_ITERATIONS", "300")
	t.Setenv("FLOWSCOPE_TSNE_WORKERS", "2")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader("from stdin\n"))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCasesCommand(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "cases")
	require.NoError(t, err)
	assert.Contains(t, out, "base")
	assert.Contains(t, out, "hot_t650")
	assert.Contains(t, out, "Total: 2 case(s)")

	out, err = run(t, "--format", "json", "cases", "--t", "600,700")
	require.NoError(t, err)
	var cases []catalog.CaseSummary
	require.NoError(t, json.Unmarshal([]byte(out), &cases))
	require.Len(t, cases, 1)
	assert.Equal(t, "hot_t650", cases[0].Case)

	_, err = run(t, "cases", "--p", "1")
	assert.Error(t, err)
	_, err = run(t, "cases", "--p", "2,1")
	assert.Error(t, err)
}

func TestProjectCommand(t *testing.T) {
	dir := setupEnv(t)
	html := filepath.Join(dir, "chart.html")
	png := filepath.Join(dir, "chart.png")

	out, err := run(t, "project", "--component", "OH", "--eps", "4", "--min-samples", "3", "--html", html, "--png", png, "base", "hot_t650")
	require.NoError(t, err)
	assert.Contains(t, out, "CLUSTER")
	assert.Contains(t, out, "16 points")
	assert.FileExists(t, html)
	assert.FileExists(t, png)

	out, err = run(t, "--format", "json", "project", "--eps", "4", "base")
	require.NoError(t, err)
	var resp core.ProjectionResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Coords, 8)

	_, err = run(t, "project", "--component", "CO2", "base")
	assert.Error(t, err)
	_, err = run(t, "project", "--min-samples", "0", "base")
	assert.Error(t, err)
	_, err = run(t, "project", "ghost")
	assert.Error(t, err)
}

func TestAnnotateCommand(t *testing.T) {
	dir := setupEnv(t)
	read := func() (map[string]string, map[string]map[string]string) {
		var recs map[string]string
		var cases map[string]map[string]string
		data, err := os.ReadFile(filepath.Join(dir, jsonfile.DefaultRecordFile))
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &recs))
		data, err = os.ReadFile(filepath.Join(dir, jsonfile.DefaultCaseFile))
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &cases))
		return recs, cases
	}

	out, err := run(t, "annotate", "base_OH_1ms.png", "ignition kernel")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated")
	recs, _ := read()
	assert.Equal(t, "ignition kernel", recs["base_OH_1ms.png"])

	_, err = run(t, "annotate", "base_OH_2ms.png", "-")
	require.NoError(t, err)
	recs, _ = read()
	assert.Equal(t, "from stdin", recs["base_OH_2ms.png"])

	_, err = run(t, "annotate", "--clear", "base_OH_1ms.png")
	require.NoError(t, err)
	recs, _ = read()
	assert.NotContains(t, recs, "base_OH_1ms.png")

	_, err = run(t, "annotate", "--case", "hot_t650", "--component", "OH", "hotter flame")
	require.NoError(t, err)
	_, cases := read()
	assert.Equal(t, "hotter flame", cases["hot_t650"]["OH"])

	tests := []struct {
		name string
		args []string
	}{
		{"unknown record", []string{"annotate", "nope.png", "x"}},
		{"missing text", []string{"annotate", "base_OH_1ms.png"}},
		{"blank text", []string{"annotate", "base_OH_1ms.png", "  "}},
		{"clear with text", []string{"annotate", "--clear", "base_OH_1ms.png", "x"}},
		{"case without component", []string{"annotate", "--case", "base", "x"}},
		{"unknown case", []string{"annotate", "--case", "ghost", "--component", "OH", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestImportCommand(t *testing.T) {
	dir := setupEnv(t)
	db := filepath.Join(dir, "import.db")

	out, err := run(t, "--format", "json", "import", "--db", db, os.Getenv("FLOWSCOPE_SNAPSHOT"))
	require.NoError(t, err)
	var res importResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 16, res.Frames)
	assert.Equal(t, 0, res.Unparseable)
	assert.Equal(t, 16, res.Total)

	// Re-import upserts instead of duplicating
	_, err = run(t, "import", "--db", db, os.Getenv("FLOWSCOPE_SNAPSHOT"))
	require.NoError(t, err)

	t.Setenv("FLOWSCOPE_SNAPSHOT_SOURCE", "sqlite")
	t.Setenv("FLOWSCOPE_DB", db)
	out, err = run(t, "cases")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 2 case(s)")

	_, err = run(t, "import", filepath.Join(dir, "missing.jsonl"))
	assert.Error(t, err)
}

func TestImportCommand_NPY(t *testing.T) {
	dir := setupEnv(t)
	db := filepath.Join(dir, "npy.db")

	names := []string{"base_OH_0ms.png", "base_OH_1ms.png", "hot_t650_OH_0ms.png"}
	vectors := filepath.Join(dir, "mean.npy")
	filenames := filepath.Join(dir, "filenames.npy")
	writeNPYFile(t, vectors, mat.NewDense(3, 2, []float64{0, 1, 0, 2, 9, 1}))
	writeNPYFile(t, filenames, names)

	out, err := run(t, "--format", "json", "import", "--db", db, vectors, filenames)
	require.NoError(t, err)
	var res importResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 3, res.Frames)
	assert.Equal(t, 3, res.Total)

	_, err = run(t, "import", "--db", db, vectors)
	assert.ErrorContains(t, err, "both the vectors and the filenames")

	_, err = run(t, "import", "--db", db, vectors, os.Getenv("FLOWSCOPE_SNAPSHOT"))
	assert.Error(t, err)
}

func writeNPYFile(t *testing.T, path string, val interface{}) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, npyio.Write(f, val))
}
