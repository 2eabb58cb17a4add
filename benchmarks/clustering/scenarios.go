// ABOUTME: Synthetic benchmark scenarios for the projection and clustering pipeline
// ABOUTME: Each scenario generates labeled Gaussian blobs with a known ground truth

package clustering

import (
	"fmt"
	"math/rand/v2"

	"github.com/harper/flowscope/internal/catalog"
	"github.com/harper/flowscope/internal/models"
)

// TestScenario describes one synthetic dataset and the clustering parameters to run it with
type TestScenario struct {
	ID          string
	Name        string
	Description string
	Clusters    int
	PerCluster  int
	Dimension   int
	Separation  float64 // distance between blob centers along their axis
	Spread      float64 // per-coordinate standard deviation
	Eps         float64
	MinSamples  int
	MinARI      float64 // pass threshold
	Seed        uint64
}

// TestResult represents the outcome of a benchmark test
type TestResult struct {
	TestID        string                 `json:"test_id"`
	TestName      string                 `json:"test_name"`
	Points        int                    `json:"points"`
	ClustersFound int                    `json:"clusters_found"`
	ARI           float64                `json:"ari"`
	Purity        float64                `json:"purity"`
	NoiseFraction float64                `json:"noise_fraction"`
	Duration      string                 `json:"duration"`
	Status        string                 `json:"status"` // "PASS" or "FAIL"
	Details       map[string]interface{} `json:"details,omitempty"`
	ErrorMessage  string                 `json:"error_message,omitempty"`
}

// Generate builds records and their ground-truth labels. Blob k is centered
// at Separation*k on axis k mod Dimension, one case per blob.
func (s TestScenario) Generate() ([]catalog.Record, []int) {
	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15))
	records := make([]catalog.Record, 0, s.Clusters*s.PerCluster)
	truth := make([]int, 0, s.Clusters*s.PerCluster)

	for k := 0; k < s.Clusters; k++ {
		caseName := fmt.Sprintf("%s_blob%d", s.ID, k)
		for i := 0; i < s.PerCluster; i++ {
			vec := make([]float64, s.Dimension)
			for d := range vec {
				vec[d] = rng.NormFloat64() * s.Spread
			}
			vec[k%s.Dimension] += s.Separation * float64(k+1)
			records = append(records, catalog.Record{
				SourceID:      fmt.Sprintf("%s_OH_%dms.png", caseName, i),
				Case:          caseName,
				Variable:      models.VariableOH,
				Timestamp:     int64(i),
				PressureRatio: catalog.DefaultPressureRatio,
				Temperature:   catalog.DefaultTemperature,
				WaterFraction: catalog.DefaultWaterFraction,
				Vector:        vec,
			})
			truth = append(truth, k)
		}
	}
	return records, truth
}

// GetWellSeparated returns a scenario with far-apart blobs
func GetWellSeparated() TestScenario {
	return TestScenario{
		ID:          "separated",
		Name:        "Well separated blobs",
		Description: "Four tight blobs far apart in 32 dimensions; every method should recover them.",
		Clusters:    4,
		PerCluster:  60,
		Dimension:   32,
		Separation:  20,
		Spread:      1,
		Eps:         3,
		MinSamples:  5,
		MinARI:      0.9,
		Seed:        1,
	}
}

// GetOverlapping returns a scenario whose blobs partially overlap
func GetOverlapping() TestScenario {
	return TestScenario{
		ID:          "overlap",
		Name:        "Overlapping blobs",
		Description: "Three blobs whose tails touch; clustering should still mostly agree with the truth.",
		Clusters:    3,
		PerCluster:  80,
		Dimension:   16,
		Separation:  4,
		Spread:      1.2,
		Eps:         2.5,
		MinSamples:  8,
		MinARI:      0.6,
		Seed:        2,
	}
}

// GetHighDimensional returns a scenario shaped like real encoder output
func GetHighDimensional() TestScenario {
	return TestScenario{
		ID:          "highdim",
		Name:        "High dimensional frames",
		Description: "Six blobs in 512 dimensions, reduced by PCA to 128 before t-SNE.",
		Clusters:    6,
		PerCluster:  50,
		Dimension:   512,
		Separation:  15,
		Spread:      1,
		Eps:         3,
		MinSamples:  5,
		MinARI:      0.85,
		Seed:        3,
	}
}

// GetAllTests returns every scenario
func GetAllTests() []TestScenario {
	return []TestScenario{
		GetWellSeparated(),
		GetOverlapping(),
		GetHighDimensional(),
	}
}
