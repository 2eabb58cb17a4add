// ABOUTME: Explorer is the service behind every external surface (HTTP, MCP, CLI)
// ABOUTME: Filters cases, runs projections, stores annotations and asks the captioner for descriptions
package core

import (
	"context"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harper/flowscope/internal/catalog"
	"github.com/harper/flowscope/internal/llm"
	"github.com/harper/flowscope/internal/models"
	"github.com/harper/flowscope/internal/pipeline"
	"github.com/harper/flowscope/internal/storage"
)

// Captioner turns interleaved images and prompts into text
type Captioner interface {
	Caption(ctx context.Context, images []llm.Image, prompts []string) (string, error)
}

// Options configures an Explorer
type Options struct {
	Projection         pipeline.ProjectionConfig
	ImageDirs          map[models.Variable]string
	SelectionCacheSize int
}

// Explorer wires the catalog, annotation store, pipeline and captioner together
type Explorer struct {
	catalog    *catalog.Catalog
	store      storage.AnnotationStore
	captioner  Captioner
	selections *SelectionCache
	opts       Options
}

// ProjectionRequest selects cases and clustering parameters for one run
type ProjectionRequest struct {
	Cases      []string
	Variable   models.Variable
	Eps        float64
	MinSamples int
}

// ProjectionResponse is everything a client needs to draw and annotate a selection
type ProjectionResponse struct {
	SelectionID       string                       `json:"selection_id"`
	Variable          models.Variable              `json:"variable"`
	Coords            [][2]float64                 `json:"coords"`
	Labels            []int                        `json:"labels"`
	ClusterCount      int                          `json:"cluster_count"`
	SourceIDs         []string                     `json:"source_ids"`
	Timestamps        []int64                      `json:"timestamps"`
	Cases             []string                     `json:"cases"`
	CaseCoords        map[string][][2]float64      `json:"case_coords"`
	CaseOrder         []string                     `json:"case_order"`
	IsCentroid        []bool                       `json:"is_centroid"`
	CentroidIndices   []int                        `json:"centroid_indices"`
	Descriptions      []*string                    `json:"descriptions"`
	CaseDescriptions  map[string]map[string]string `json:"case_descriptions"`
	ExplainedVariance []float64                    `json:"explained_variance"`
}

// Description is captioner output. Failed is set when the captioner could
// not be reached; Text then explains the failure.
type Description struct {
	Text   string `json:"description"`
	Failed bool   `json:"failed"`
}

// NewExplorer creates an Explorer over an already built catalog
func NewExplorer(cat *catalog.Catalog, store storage.AnnotationStore, captioner Captioner, opts Options) (*Explorer, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if store == nil {
		return nil, fmt.Errorf("annotation store is required")
	}
	selections, err := NewSelectionCache(opts.SelectionCacheSize)
	if err != nil {
		return nil, err
	}
	if opts.Projection.PCAComponents == 0 && opts.Projection.TSNE.Iterations == 0 {
		opts.Projection = pipeline.DefaultProjectionConfig()
	}
	return &Explorer{
		catalog:    cat,
		store:      store,
		captioner:  captioner,
		selections: selections,
		opts:       opts,
	}, nil
}

// Catalog returns the underlying catalog
func (e *Explorer) Catalog() *catalog.Catalog {
	return e.catalog
}

// Selection returns a previously computed selection
func (e *Explorer) Selection(id string) (*Selection, error) {
	return e.selections.Get(id)
}

// ListCases returns the distinct parameter triples whose rounded values fall in ranges
func (e *Explorer) ListCases(ctx context.Context, ranges catalog.CaseRanges) ([]catalog.CaseSummary, error) {
	if err := ranges.Validate(); err != nil {
		return nil, err
	}
	return e.catalog.FilterCases(ranges), nil
}

// ComputeProjection runs the pipeline over the selected cases and caches the result
func (e *Explorer) ComputeProjection(ctx context.Context, req ProjectionRequest) (*ProjectionResponse, error) {
	if !req.Variable.Valid() {
		return nil, fmt.Errorf("%w: unknown variable %q", models.ErrInvalidRequest, req.Variable)
	}
	if len(req.Cases) == 0 {
		return nil, fmt.Errorf("%w: no cases selected", models.ErrInvalidRequest)
	}
	params := pipeline.Params{
		DBSCAN:     pipeline.DBSCANParams{Eps: req.Eps, MinSamples: req.MinSamples},
		Projection: e.opts.Projection,
	}
	if err := params.DBSCAN.Validate(); err != nil {
		return nil, err
	}

	records, err := e.catalog.Select(req.Variable, req.Cases)
	if err != nil {
		return nil, err
	}

	result, err := pipeline.Run(ctx, records, params)
	if err != nil {
		return nil, err
	}

	sel := &Selection{
		Variable:   req.Variable,
		Cases:      append([]string(nil), req.Cases...),
		Eps:        req.Eps,
		MinSamples: req.MinSamples,
		Records:    records,
		Result:     result,
	}
	id := e.selections.Add(sel)
	log.Printf("[Explorer] selection %s: %d records, %d cases, %d labels", id, len(records), len(result.CaseOrder), result.ClusterCount)

	return e.buildResponse(ctx, sel)
}

func (e *Explorer) buildResponse(ctx context.Context, sel *Selection) (*ProjectionResponse, error) {
	descs, err := e.store.RecordDescriptions(ctx)
	if err != nil {
		return nil, err
	}
	caseDescs, err := e.store.CaseDescriptions(ctx)
	if err != nil {
		return nil, err
	}

	n := len(sel.Records)
	resp := &ProjectionResponse{
		SelectionID:       sel.ID,
		Variable:          sel.Variable,
		Coords:            sel.Result.Coords,
		Labels:            sel.Result.Labels,
		ClusterCount:      sel.Result.ClusterCount,
		SourceIDs:         make([]string, n),
		Timestamps:        make([]int64, n),
		Cases:             make([]string, n),
		CaseCoords:        sel.Result.CaseCoords,
		CaseOrder:         sel.Result.CaseOrder,
		IsCentroid:        sel.Result.IsCentroid,
		CentroidIndices:   sel.Result.CentroidIndices,
		Descriptions:      make([]*string, n),
		CaseDescriptions:  make(map[string]map[string]string),
		ExplainedVariance: sel.Result.ExplainedVariance,
	}
	for i, r := range sel.Records {
		resp.SourceIDs[i] = r.SourceID
		resp.Timestamps[i] = r.Timestamp
		resp.Cases[i] = r.Case
		if d, ok := descs[r.SourceID]; ok {
			resp.Descriptions[i] = &d
		}
	}
	for _, c := range sel.Result.CaseOrder {
		if comps, ok := caseDescs[c]; ok {
			resp.CaseDescriptions[c] = comps
		}
	}
	return resp, nil
}

// SetRecordDescription stores (or with empty text, removes) a record annotation
func (e *Explorer) SetRecordDescription(ctx context.Context, sourceID, text string) error {
	if _, ok := e.catalog.Lookup(sourceID); !ok {
		return fmt.Errorf("%w: %q", models.ErrUnknownRecord, sourceID)
	}
	if err := e.store.SetRecordDescription(ctx, sourceID, text); err != nil {
		return err
	}
	log.Printf("[Explorer] record %s description %s", sourceID, verb(text))
	return nil
}

// SetCaseDescription stores (or with empty text, removes) a case annotation for one component
func (e *Explorer) SetCaseDescription(ctx context.Context, caseName string, component models.Variable, text string) error {
	if !component.Valid() {
		return fmt.Errorf("%w: unknown component %q", models.ErrInvalidRequest, component)
	}
	if !e.catalog.HasCase(caseName) {
		return fmt.Errorf("%w: %q", models.ErrUnknownCase, caseName)
	}
	if err := e.store.SetCaseDescription(ctx, caseName, component.String(), text); err != nil {
		return err
	}
	log.Printf("[Explorer] case %s/%s description %s", caseName, component, verb(text))
	return nil
}

// DescribeRecord captions one record of a selection, using up to
// MaxReferenceCentroids annotated centroids nearest in embedding space as context
func (e *Explorer) DescribeRecord(ctx context.Context, selectionID string, index int, component models.Variable) (*Description, error) {
	sel, err := e.selections.Get(selectionID)
	if err != nil {
		return nil, err
	}
	if !component.Valid() {
		return nil, fmt.Errorf("%w: unknown component %q", models.ErrInvalidRequest, component)
	}
	if index < 0 || index >= len(sel.Records) {
		return nil, fmt.Errorf("%w: index %d outside selection of %d records", models.ErrUnknownRecord, index, len(sel.Records))
	}

	descs, err := e.store.RecordDescriptions(ctx)
	if err != nil {
		return nil, err
	}

	target := sel.Records[index]
	refs := nearestAnnotatedCentroids(sel, target.Vector, descs, MaxReferenceCentroids)

	paths := []string{e.imagePath(component, target.SourceID)}
	prompts := []string{RecordPrompt}
	for _, i := range refs {
		r := sel.Records[i]
		paths = append(paths, e.imagePath(component, r.SourceID))
		prompts = append(prompts, descs[r.SourceID])
	}

	return e.caption(ctx, paths, prompts), nil
}

// DescribeCase summarizes a case from the listed selection records
func (e *Explorer) DescribeCase(ctx context.Context, selectionID, caseName string, component models.Variable, indices []int) (*Description, error) {
	sel, err := e.selections.Get(selectionID)
	if err != nil {
		return nil, err
	}
	if !component.Valid() {
		return nil, fmt.Errorf("%w: unknown component %q", models.ErrInvalidRequest, component)
	}
	if !sel.HasCase(caseName) {
		return nil, fmt.Errorf("%w: %q is not part of selection %s", models.ErrUnknownCase, caseName, selectionID)
	}
	for _, i := range indices {
		if i < 0 || i >= len(sel.Records) {
			return nil, fmt.Errorf("%w: index %d outside selection of %d records", models.ErrUnknownRecord, i, len(sel.Records))
		}
	}

	descs, err := e.store.RecordDescriptions(ctx)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(indices))
	prompts := make([]string, 0, len(indices)+1)
	for _, i := range indices {
		id := sel.Records[i].SourceID
		paths = append(paths, e.imagePath(component, id))
		prompts = append(prompts, descs[id])
	}
	prompts = append(prompts, CasePrompt)

	return e.caption(ctx, paths, prompts), nil
}

// nearestAnnotatedCentroids returns up to limit centroid indices that carry a
// description, ordered by Euclidean distance of their vectors to target
func nearestAnnotatedCentroids(sel *Selection, target []float64, descs map[string]string, limit int) []int {
	type candidate struct {
		index int
		dist  float64
	}
	var cands []candidate
	for _, i := range sel.Result.CentroidIndices {
		if _, ok := descs[sel.Records[i].SourceID]; !ok {
			continue
		}
		cands = append(cands, candidate{index: i, dist: euclidean(sel.Records[i].Vector, target)})
	}
	sort.SliceStable(cands, func(a, b int) bool { return cands[a].dist < cands[b].dist })

	if len(cands) > limit {
		cands = cands[:limit]
	}
	out := make([]int, len(cands))
	for i, c := range cands {
		out[i] = c.index
	}
	return out
}

func euclidean(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}

func (e *Explorer) imagePath(component models.Variable, sourceID string) string {
	return filepath.Join(e.opts.ImageDirs[component], sourceID)
}

// caption loads images and calls the captioner; failures become a failed Description
func (e *Explorer) caption(ctx context.Context, paths, prompts []string) *Description {
	if e.captioner == nil {
		return &Description{Text: "Error generating description: no captioning service configured", Failed: true}
	}

	images := make([]llm.Image, 0, len(paths))
	for _, p := range paths {
		img, err := llm.LoadImage(p)
		if err != nil {
			log.Printf("[Explorer] image unavailable: %v", err)
			return &Description{Text: fmt.Sprintf("Error generating description: %v", err), Failed: true}
		}
		images = append(images, img)
	}

	text, err := e.captioner.Caption(ctx, images, prompts)
	if err != nil {
		log.Printf("[Explorer] captioning failed: %v", err)
		return &Description{Text: fmt.Sprintf("Error generating description: %v", err), Failed: true}
	}
	return &Description{Text: strings.TrimSpace(text)}
}

func verb(text string) string {
	if text == "" {
		return "removed"
	}
	return "saved"
}
