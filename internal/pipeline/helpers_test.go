// ABOUTME: Shared fixtures for pipeline tests
// ABOUTME: Seeded Gaussian blobs in arbitrary dimension
package pipeline

import "math/rand/v2"

// blobs returns perBlob points around each center with the given spread
func blobs(centers [][]float64, perBlob int, spread float64, seed uint64) [][]float64 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	var out [][]float64
	for _, c := range centers {
		for i := 0; i < perBlob; i++ {
			p := make([]float64, len(c))
			for d := range c {
				p[d] = c[d] + rng.NormFloat64()*spread
			}
			out = append(out, p)
		}
	}
	return out
}

func fastTSNE(workers int) TSNEConfig {
	cfg := DefaultTSNEConfig()
	cfg.Iterations = 400
	cfg.Workers = workers
	return cfg
}
