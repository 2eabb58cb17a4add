// ABOUTME: Tests for the PCA reduction step
// ABOUTME: Covers sample-count guard, variance ordering, sign determinism and the Gram path
package pipeline

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/harper/flowscope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestPCAInsufficientSamples(t *testing.T) {
	data := blobs([][]float64{{0, 0, 0, 0, 0, 0}}, 4, 1, 1)

	_, err := PCA(data, 128)
	if !errors.Is(err, models.ErrInsufficientSamples) {
		t.Fatalf("PCA(4 samples, 6 dims) error = %v, want ErrInsufficientSamples", err)
	}

	_, err = PCA(data[:1], 1)
	if !errors.Is(err, models.ErrInsufficientSamples) {
		t.Errorf("PCA(1 sample) error = %v, want ErrInsufficientSamples", err)
	}
}

func TestPCAComponentsCappedByDimension(t *testing.T) {
	data := blobs([][]float64{{0, 0, 0}}, 10, 1, 2)

	res, err := PCA(data, 128)
	require.NoError(t, err)

	rows, cols := res.Projected.Dims()
	assert.Equal(t, 10, rows)
	assert.Equal(t, 3, cols)
	assert.Len(t, res.Variances, 3)
}

func TestPCAVarianceOrdering(t *testing.T) {
	data := make([][]float64, 20)
	for i := range data {
		x := float64(i)
		data[i] = []float64{10 * x, 0.5 * float64(i%3), 0.01 * float64(i%2)}
	}

	res, err := PCA(data, 2)
	require.NoError(t, err)
	require.Len(t, res.Variances, 2)
	assert.Greater(t, res.Variances[0], res.Variances[1])

	// The dominant axis maps onto the first component with a positive sign.
	first := res.Projected.At(0, 0)
	last := res.Projected.At(19, 0)
	assert.Less(t, first, last)
}

func TestPCADeterministic(t *testing.T) {
	data := blobs([][]float64{{0, 0, 0, 0}, {5, 5, 5, 5}}, 8, 1, 3)

	a, err := PCA(data, 3)
	require.NoError(t, err)
	b, err := PCA(data, 3)
	require.NoError(t, err)

	n, k := a.Projected.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			if a.Projected.At(i, j) != b.Projected.At(i, j) {
				t.Fatalf("projection differs at (%d,%d): %v vs %v", i, j, a.Projected.At(i, j), b.Projected.At(i, j))
			}
		}
	}
}

func TestPCARaggedInput(t *testing.T) {
	_, err := PCA([][]float64{{1, 2}, {3}}, 1)
	assert.Error(t, err)
}

func TestPCAGramMatchesCovariance(t *testing.T) {
	const n, dim, k = 12, 40, 6
	rng := rand.New(rand.NewPCG(7, 11))
	x := mat.NewDense(n, dim, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < dim; j++ {
			// decaying scale keeps the leading eigenvalues well separated
			x.Set(i, j, rng.NormFloat64()*float64(dim-j))
		}
	}
	centerColumns(x)

	want, wantVars, err := covarianceBasis(x, k)
	require.NoError(t, err)
	got, gotVars, err := gramBasis(x, k)
	require.NoError(t, err)
	flipSigns(want)
	flipSigns(got)

	assert.True(t, floats.EqualApprox(wantVars, gotVars, 1e-8), "variances %v vs %v", wantVars, gotVars)
	assert.True(t, mat.EqualApprox(want, got, 1e-8), "bases differ:\n%v\n%v", mat.Formatted(want), mat.Formatted(got))
}

func TestPCAFewerSamplesThanDimensions(t *testing.T) {
	data := blobs([][]float64{make([]float64, 50), append(make([]float64, 49), 20)}, 6, 1, 5)

	res, err := PCA(data, 4)
	require.NoError(t, err)
	rows, cols := res.Projected.Dims()
	assert.Equal(t, 12, rows)
	assert.Equal(t, 4, cols)
	assert.GreaterOrEqual(t, res.Variances[0], res.Variances[1])

	// The two blobs separate along the first component.
	assert.Less(t, res.Projected.At(0, 0)*res.Projected.At(11, 0), 0.0)
}
