// ABOUTME: Runs the full analysis over a record selection
// ABOUTME: Projection, clustering, centroid selection and per-case aggregation
package pipeline

import (
	"context"
	"log"
	"time"

	"github.com/harper/flowscope/internal/catalog"
)

// Params configures one pipeline run
type Params struct {
	DBSCAN     DBSCANParams
	Projection ProjectionConfig
}

// Result is the per-run side table for a selection. Indices line up with the
// records the run was given.
type Result struct {
	Coords            [][2]float64
	Labels            []int
	ClusterCount      int
	IsCentroid        []bool
	CentroidIndices   []int
	CaseCoords        map[string][][2]float64
	CaseOrder         []string
	ExplainedVariance []float64
}

// Run executes the pipeline over records in the order given
func Run(ctx context.Context, records []catalog.Record, params Params) (*Result, error) {
	if err := params.DBSCAN.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	vectors := make([][]float64, len(records))
	cases := make([]string, len(records))
	for i, r := range records {
		vectors[i] = r.Vector
		cases[i] = r.Case
	}

	proj, err := Project(ctx, vectors, params.Projection)
	if err != nil {
		return nil, err
	}

	labels, err := DBSCAN(proj.Coords, params.DBSCAN)
	if err != nil {
		return nil, err
	}

	centroids, mask := Centroids(proj.Coords, labels)
	byCase, order := Aggregate(proj.Coords, cases)

	res := &Result{
		Coords:            proj.Coords,
		Labels:            labels,
		ClusterCount:      CountLabels(labels),
		IsCentroid:        mask,
		CentroidIndices:   centroids,
		CaseCoords:        byCase,
		CaseOrder:         order,
		ExplainedVariance: proj.ExplainedVariance,
	}
	log.Printf("[Pipeline] %d records -> %d labels in %v", len(records), res.ClusterCount, time.Since(start).Round(time.Millisecond))
	return res, nil
}
