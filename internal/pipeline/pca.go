// ABOUTME: Linear dimensionality reduction (PCA) using gonum's stat.PC or a Gram eigendecomposition
// ABOUTME: Fits and projects the same matrix; component signs are normalized for determinism
package pipeline

import (
	"fmt"
	"math"

	"github.com/harper/flowscope/internal/models"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultPCAComponents is the upper bound on retained principal components
const DefaultPCAComponents = 128

// PCAResult holds the projected samples and the variance of each kept component
type PCAResult struct {
	Projected *mat.Dense // n x k
	Variances []float64  // length k, descending
}

// PCA projects rows of data onto their first min(maxComponents, dim) principal components.
// Fewer samples than retained components is an ErrInsufficientSamples.
func PCA(data [][]float64, maxComponents int) (*PCAResult, error) {
	n := len(data)
	if n < 2 {
		return nil, fmt.Errorf("%w: PCA needs at least 2 samples, got %d", models.ErrInsufficientSamples, n)
	}
	dim := len(data[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: vectors are empty", models.ErrInsufficientSamples)
	}
	if maxComponents <= 0 {
		maxComponents = DefaultPCAComponents
	}

	k := maxComponents
	if dim < k {
		k = dim
	}
	if n < k {
		return nil, fmt.Errorf("%w: %d samples for %d principal components", models.ErrInsufficientSamples, n, k)
	}

	x := mat.NewDense(n, dim, nil)
	for i, row := range data {
		if len(row) != dim {
			return nil, fmt.Errorf("sample %d has %d dimensions, expected %d", i, len(row), dim)
		}
		x.SetRow(i, row)
	}
	centerColumns(x)

	var (
		basis *mat.Dense
		vars  []float64
		err   error
	)
	if n < dim {
		basis, vars, err = gramBasis(x, k)
	} else {
		basis, vars, err = covarianceBasis(x, k)
	}
	if err != nil {
		return nil, err
	}
	flipSigns(basis)

	var projected mat.Dense
	projected.Mul(x, basis)

	return &PCAResult{Projected: &projected, Variances: vars}, nil
}

// covarianceBasis takes the first k principal axes from gonum's SVD-based PC
func covarianceBasis(x *mat.Dense, k int) (*mat.Dense, []float64, error) {
	_, dim := x.Dims()
	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, nil, fmt.Errorf("PCA decomposition failed")
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	_, avail := vecs.Dims()
	if avail < k {
		k = avail
	}
	basis := mat.DenseCopyOf(vecs.Slice(0, dim, 0, k))

	vars := pc.VarsTo(nil)
	if len(vars) > k {
		vars = vars[:k]
	}
	return basis, vars, nil
}

// gramBasis derives the same axes from the n x n Gram matrix X·Xᵀ, which is
// much smaller than the d x d covariance when there are fewer samples than
// dimensions. For an eigenpair (λ, u) of X·Xᵀ the axis is Xᵀu/√λ with variance
// λ/(n-1). Axes past the rank of X are left as zero columns.
func gramBasis(x *mat.Dense, k int) (*mat.Dense, []float64, error) {
	n, dim := x.Dims()

	var gram mat.SymDense
	gram.SymOuterK(1, x)

	var eig mat.EigenSym
	if ok := eig.Factorize(&gram, true); !ok {
		return nil, nil, fmt.Errorf("PCA decomposition failed")
	}
	values := eig.Values(nil) // ascending
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	if k > n {
		k = n
	}
	top := values[n-1]
	basis := mat.NewDense(dim, k, nil)
	vars := make([]float64, k)
	u := make([]float64, n)
	axis := mat.NewVecDense(dim, nil)

	for j := 0; j < k; j++ {
		src := n - 1 - j
		lambda := values[src]
		if lambda <= top*1e-12 || lambda <= 0 {
			continue
		}
		mat.Col(u, src, &vecs)
		axis.MulVec(x.T(), mat.NewVecDense(n, u))
		axis.ScaleVec(1/math.Sqrt(lambda), axis)
		basis.SetCol(j, axis.RawVector().Data)
		vars[j] = lambda / float64(n-1)
	}
	return basis, vars, nil
}

// centerColumns subtracts the column mean from every column in place
func centerColumns(x *mat.Dense) {
	n, d := x.Dims()
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, x)
		mean := stat.Mean(col, nil)
		for i := 0; i < n; i++ {
			x.Set(i, j, col[i]-mean)
		}
	}
}

// flipSigns makes the largest-magnitude loading of every component positive
func flipSigns(basis *mat.Dense) {
	d, k := basis.Dims()
	for j := 0; j < k; j++ {
		best, bestAbs := 0.0, -1.0
		for i := 0; i < d; i++ {
			v := basis.At(i, j)
			if math.Abs(v) > bestAbs {
				best, bestAbs = v, math.Abs(v)
			}
		}
		if best < 0 {
			for i := 0; i < d; i++ {
				basis.Set(i, j, -basis.At(i, j))
			}
		}
	}
}
