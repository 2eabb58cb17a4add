// ABOUTME: Exact t-SNE embedding of PCA output into two dimensions
// ABOUTME: Seeded random init, early exaggeration, momentum and gains; rows computed in parallel
package pipeline

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/harper/flowscope/internal/models"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TSNEConfig tunes the t-SNE optimizer
type TSNEConfig struct {
	Perplexity        float64
	Iterations        int
	ExaggerationIters int
	EarlyExaggeration float64
	LearningRate      float64 // <= 0 selects max(n/exaggeration/4, 50)
	InitialMomentum   float64
	FinalMomentum     float64
	MinGradNorm       float64
	Seed              uint64
	Workers           int
}

// DefaultTSNEConfig returns the optimizer settings used by the projection pipeline
func DefaultTSNEConfig() TSNEConfig {
	return TSNEConfig{
		Perplexity:        30,
		Iterations:        1000,
		ExaggerationIters: 250,
		EarlyExaggeration: 12,
		InitialMomentum:   0.5,
		FinalMomentum:     0.8,
		MinGradNorm:       1e-7,
		Seed:              42,
		Workers:           4,
	}
}

const (
	perplexityTolerance = 1e-5
	perplexitySteps     = 100
	minProbability      = 1e-12
	minGain             = 0.01
	initScale           = 1e-4
)

// TSNE embeds the rows of x into 2D. Output order matches row order and is
// identical for a given seed regardless of Workers.
func TSNE(ctx context.Context, x mat.Matrix, cfg TSNEConfig) ([][2]float64, error) {
	n, _ := x.Dims()
	if n < 2 {
		return nil, fmt.Errorf("%w: t-SNE needs at least 2 points, got %d", models.ErrInsufficientSamples, n)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultTSNEConfig().Iterations
	}
	if cfg.EarlyExaggeration <= 0 {
		cfg.EarlyExaggeration = 1
	}

	perplexity := cfg.Perplexity
	if limit := math.Max(float64(n-1)/3, 1); perplexity <= 0 || perplexity > limit {
		perplexity = limit
	}

	lr := cfg.LearningRate
	if lr <= 0 {
		lr = math.Max(float64(n)/cfg.EarlyExaggeration/4, 50)
	}

	dist := squaredDistances(x)
	p, err := jointProbabilities(ctx, dist, n, perplexity, cfg.Workers)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	y := make([]float64, 2*n)
	for i := range y {
		y[i] = rng.NormFloat64() * initScale
	}

	update := make([]float64, 2*n)
	gains := make([]float64, 2*n)
	for i := range gains {
		gains[i] = 1
	}
	grad := make([]float64, 2*n)
	num := make([]float64, n*n)
	rowSums := make([]float64, n)

	for iter := 0; iter < cfg.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		exaggeration, momentum := 1.0, cfg.FinalMomentum
		if iter < cfg.ExaggerationIters {
			exaggeration, momentum = cfg.EarlyExaggeration, cfg.InitialMomentum
		}

		// Student-t kernel, one row per worker chunk.
		if err := parallelRows(ctx, n, cfg.Workers, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				sum := 0.0
				yi0, yi1 := y[2*i], y[2*i+1]
				for j := 0; j < n; j++ {
					if i == j {
						num[i*n+j] = 0
						continue
					}
					d0, d1 := yi0-y[2*j], yi1-y[2*j+1]
					q := 1 / (1 + d0*d0 + d1*d1)
					num[i*n+j] = q
					sum += q
				}
				rowSums[i] = sum
			}
		}); err != nil {
			return nil, err
		}
		z := floats.Sum(rowSums)

		if err := parallelRows(ctx, n, cfg.Workers, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				g0, g1 := 0.0, 0.0
				yi0, yi1 := y[2*i], y[2*i+1]
				for j := 0; j < n; j++ {
					if i == j {
						continue
					}
					q := num[i*n+j]
					mult := (exaggeration*p[i*n+j] - q/z) * q
					g0 += mult * (yi0 - y[2*j])
					g1 += mult * (yi1 - y[2*j+1])
				}
				grad[2*i] = 4 * g0
				grad[2*i+1] = 4 * g1
			}
		}); err != nil {
			return nil, err
		}

		for k := range y {
			if update[k]*grad[k] < 0 {
				gains[k] += 0.2
			} else {
				gains[k] *= 0.8
			}
			if gains[k] < minGain {
				gains[k] = minGain
			}
			update[k] = momentum*update[k] - lr*gains[k]*grad[k]
			y[k] += update[k]
		}
		recenter(y, n)

		if iter >= cfg.ExaggerationIters && floats.Norm(grad, 2) < cfg.MinGradNorm {
			break
		}
	}

	out := make([][2]float64, n)
	for i := range out {
		out[i] = [2]float64{y[2*i], y[2*i+1]}
	}
	return out, nil
}

// squaredDistances returns the dense n*n matrix of squared Euclidean distances between rows
func squaredDistances(x mat.Matrix) []float64 {
	n, d := x.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, x)
	}
	dist := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := 0.0
			for k := 0; k < d; k++ {
				diff := rows[i][k] - rows[j][k]
				s += diff * diff
			}
			dist[i*n+j] = s
			dist[j*n+i] = s
		}
	}
	return dist
}

// jointProbabilities calibrates a Gaussian per row to the target perplexity and
// returns the symmetrized joint distribution P
func jointProbabilities(ctx context.Context, dist []float64, n int, perplexity float64, workers int) ([]float64, error) {
	cond := make([]float64, n*n)
	target := math.Log(perplexity)

	err := parallelRows(ctx, n, workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			calibrateRow(dist[i*n:(i+1)*n], cond[i*n:(i+1)*n], i, target)
		}
	})
	if err != nil {
		return nil, err
	}

	p := make([]float64, n*n)
	denom := 2 * float64(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			v := (cond[i*n+j] + cond[j*n+i]) / denom
			if v < minProbability {
				v = minProbability
			}
			p[i*n+j] = v
		}
	}
	return p, nil
}

// calibrateRow binary-searches the precision beta so the row's conditional
// distribution has entropy equal to target (natural log of perplexity)
func calibrateRow(dist, out []float64, self int, target float64) {
	beta, betaMin, betaMax := 1.0, math.Inf(-1), math.Inf(1)

	for step := 0; step < perplexitySteps; step++ {
		sum, weighted := 0.0, 0.0
		for j, d := range dist {
			if j == self {
				out[j] = 0
				continue
			}
			v := math.Exp(-d * beta)
			out[j] = v
			sum += v
			weighted += d * v
		}
		if sum == 0 {
			sum = minProbability
		}
		entropy := math.Log(sum) + beta*weighted/sum
		for j := range out {
			out[j] /= sum
		}

		diff := entropy - target
		if math.Abs(diff) < perplexityTolerance {
			return
		}
		if diff > 0 {
			betaMin = beta
			if math.IsInf(betaMax, 1) {
				beta *= 2
			} else {
				beta = (beta + betaMax) / 2
			}
		} else {
			betaMax = beta
			if math.IsInf(betaMin, -1) {
				beta /= 2
			} else {
				beta = (beta + betaMin) / 2
			}
		}
	}
}

// recenter shifts the embedding to zero mean
func recenter(y []float64, n int) {
	m0, m1 := 0.0, 0.0
	for i := 0; i < n; i++ {
		m0 += y[2*i]
		m1 += y[2*i+1]
	}
	m0 /= float64(n)
	m1 /= float64(n)
	for i := 0; i < n; i++ {
		y[2*i] -= m0
		y[2*i+1] -= m1
	}
}

// parallelRows splits [0, n) into contiguous chunks and runs fn on each.
// Each row is written by exactly one chunk, so results do not depend on workers.
func parallelRows(ctx context.Context, n, workers int, fn func(lo, hi int)) error {
	if workers <= 1 || n < 2*workers {
		fn(0, n)
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(lo, hi)
			return nil
		})
	}
	return g.Wait()
}
