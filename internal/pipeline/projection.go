// ABOUTME: Projection stage combining PCA and t-SNE
// ABOUTME: Reduces embedding vectors to one 2D coordinate per input, input order preserved
package pipeline

import (
	"context"
	"fmt"

	"github.com/harper/flowscope/internal/models"
)

// ProjectionConfig bundles both reduction steps
type ProjectionConfig struct {
	PCAComponents int
	TSNE          TSNEConfig
}

// DefaultProjectionConfig returns 128 PCA components and default t-SNE settings
func DefaultProjectionConfig() ProjectionConfig {
	return ProjectionConfig{PCAComponents: DefaultPCAComponents, TSNE: DefaultTSNEConfig()}
}

// Projection is the output of Project
type Projection struct {
	Coords            [][2]float64
	ExplainedVariance []float64
}

// Project reduces vectors with PCA and then embeds the result with t-SNE
func Project(ctx context.Context, vectors [][]float64, cfg ProjectionConfig) (*Projection, error) {
	if len(vectors) < 2 {
		return nil, fmt.Errorf("%w: projection needs at least 2 records, got %d", models.ErrInsufficientSamples, len(vectors))
	}

	reduced, err := PCA(vectors, cfg.PCAComponents)
	if err != nil {
		return nil, fmt.Errorf("linear reduction: %w", err)
	}

	coords, err := TSNE(ctx, reduced.Projected, cfg.TSNE)
	if err != nil {
		return nil, fmt.Errorf("manifold embedding: %w", err)
	}

	return &Projection{Coords: coords, ExplainedVariance: reduced.Variances}, nil
}
