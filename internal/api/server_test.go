// ABOUTME: httptest coverage for every route, status mapping and middleware
// ABOUTME: Runs the real explorer over a small synthetic catalog with a stub captioner
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/flowscope/internal/catalog"
	"github.com/harper/flowscope/internal/core"
	"github.com/harper/flowscope/internal/llm"
	"github.com/harper/flowscope/internal/models"
	"github.com/harper/flowscope/internal/pipeline"
	"github.com/harper/flowscope/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCaptioner struct{}

func (stubCaptioner) Caption(ctx context.Context, images []llm.Image, prompts []string) (string, error) {
	return fmt.Sprintf("%d images", len(images)), nil
}

func newTestServer(t *testing.T) (*Server, *storage.MemoryStore) {
	t.Helper()
	rng := rand.New(rand.NewPCG(7, 7))
	dir := t.TempDir()

	var frames []catalog.Frame
	for _, c := range []struct {
		name   string
		center float64
	}{{"hot_t600", 0}, {"cold_f1.1", 10}} {
		for i := 0; i < 8; i++ {
			id := fmt.Sprintf("%s_OH_%dms.png", c.name, i)
			frames = append(frames, catalog.Frame{
				SourceID: id,
				Vector:   []float64{c.center + rng.NormFloat64(), c.center + rng.NormFloat64()},
			})
			require.NoError(t, os.WriteFile(filepath.Join(dir, id), []byte("png"), 0644))
		}
	}
	cat, _, err := catalog.Build(frames)
	require.NoError(t, err)

	proj := pipeline.DefaultProjectionConfig()
	proj.TSNE.Iterations = 250
	store := storage.NewMemoryStore()
	e, err := core.NewExplorer(cat, store, stubCaptioner{}, core.Options{
		Projection: proj,
		ImageDirs:  map[models.Variable]string{models.VariableOH: dir},
	})
	require.NoError(t, err)
	return NewServer(e, DefaultConfig()), store
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func project(t *testing.T, s *Server) core.ProjectionResponse {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/coordinates",
		`{"selectedCases":[{"case":"hot_t600","p":0.8},"cold_f1.1"],"selectedComponent":"OH","eps":4,"minSamples":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp core.ProjectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 16, body["records"])
}

func TestCases(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/cases", `{"pRange":[0,2],"tRange":[0,1000],"h2oRange":[0,100]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Cases []catalog.CaseSummary `json:"cases"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Cases, 2)

	tests := []struct {
		name string
		body string
	}{
		{"inverted range", `{"pRange":[2,0],"tRange":[0,1000],"h2oRange":[0,100]}`},
		{"missing range", `{"pRange":[0,2],"tRange":[0,1000]}`},
		{"unknown field", `{"pRange":[0,2],"tRange":[0,1000],"h2oRange":[0,100],"extra":1}`},
		{"not json", `pRange=0`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/cases", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestCoordinates(t *testing.T) {
	s, _ := newTestServer(t)
	resp := project(t, s)

	assert.NotEmpty(t, resp.SelectionID)
	assert.Len(t, resp.Coords, 16)
	assert.Len(t, resp.Labels, 16)
	assert.Len(t, resp.Descriptions, 16)
	assert.ElementsMatch(t, []string{"hot_t600", "cold_f1.1"}, resp.CaseOrder)
}

func TestCoordinatesErrors(t *testing.T) {
	s, _ := newTestServer(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty cases", `{"selectedCases":[],"selectedComponent":"OH","eps":1,"minSamples":2}`, http.StatusBadRequest},
		{"bad component", `{"selectedCases":["hot_t600"],"selectedComponent":"CO2","eps":1,"minSamples":2}`, http.StatusBadRequest},
		{"bad eps", `{"selectedCases":["hot_t600"],"selectedComponent":"OH","eps":0,"minSamples":2}`, http.StatusBadRequest},
		{"missing eps", `{"selectedCases":["hot_t600"],"selectedComponent":"OH","minSamples":2}`, http.StatusBadRequest},
		{"case object without name", `{"selectedCases":[{"p":1}],"selectedComponent":"OH","eps":1,"minSamples":2}`, http.StatusBadRequest},
		{"unknown case", `{"selectedCases":["nope"],"selectedComponent":"OH","eps":1,"minSamples":2}`, http.StatusNotFound},
		{"no records for variable", `{"selectedCases":["hot_t600"],"selectedComponent":"Mach","eps":1,"minSamples":2}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/coordinates", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestSetDescriptions(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()

	rec := do(t, s, http.MethodPost, "/api/descriptions/record", `{"fileName":"hot_t600_OH_1ms.png","description":"flame front"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	descs, err := store.RecordDescriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "flame front", descs["hot_t600_OH_1ms.png"])

	rec = do(t, s, http.MethodPost, "/api/descriptions/record", `{"fileName":"missing.png","description":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/descriptions/record", `{"fileName":"hot_t600_OH_1ms.png"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/descriptions/case", `{"caseName":"hot_t600","component":"OH","description":"stable"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cases, err := store.CaseDescriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "stable", cases["hot_t600"]["OH"])

	rec = do(t, s, http.MethodPost, "/api/descriptions/case", `{"caseName":"hot_t600","component":"bogus","description":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/descriptions/case", `{"caseName":"nope","component":"OH","description":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDescribe(t *testing.T) {
	s, _ := newTestServer(t)
	resp := project(t, s)

	body := fmt.Sprintf(`{"selectionId":%q,"index":0,"component":"OH"}`, resp.SelectionID)
	rec := do(t, s, http.MethodPost, "/api/describe/record", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var desc core.Description
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &desc))
	assert.False(t, desc.Failed)
	assert.NotEmpty(t, desc.Text)

	body = fmt.Sprintf(`{"selectionId":%q,"caseName":"hot_t600","component":"OH","caseIndices":[0,1]}`, resp.SelectionID)
	rec = do(t, s, http.MethodPost, "/api/describe/case", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/api/describe/record", `{"selectionId":"gone","index":0,"component":"OH"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/describe/record", fmt.Sprintf(`{"selectionId":%q,"component":"OH"}`, resp.SelectionID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/describe/record", fmt.Sprintf(`{"selectionId":%q,"index":99,"component":"OH"}`, resp.SelectionID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCharts(t *testing.T) {
	s, _ := newTestServer(t)
	resp := project(t, s)

	rec := do(t, s, http.MethodGet, "/api/selections/"+resp.SelectionID+"/chart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "echarts")

	rec = do(t, s, http.MethodGet, "/api/selections/"+resp.SelectionID+"/chart.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = do(t, s, http.MethodGet, "/api/selections/unknown/chart", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodOptions, "/api/cases", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.ErrInvalidRequest, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", models.ErrMalformedIdentifier), http.StatusBadRequest},
		{models.ErrUnknownCase, http.StatusNotFound},
		{models.ErrUnknownRecord, http.StatusNotFound},
		{models.ErrUnknownSelection, http.StatusNotFound},
		{models.ErrInsufficientSamples, http.StatusUnprocessableEntity},
		{models.ErrCollaboratorUnavailable, http.StatusBadGateway},
		{models.ErrPersistenceIO, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewUnstartedServer(nil)
	ln := srv.Listener

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	assert.NoError(t, <-done)
}
