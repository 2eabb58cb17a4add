// ABOUTME: Clustering agreement metrics between predicted labels and ground truth
// ABOUTME: Adjusted Rand index, purity and noise fraction

package clustering

import (
	"fmt"

	"github.com/harper/flowscope/internal/pipeline"
)

// MetricsCalculator scores clusterings against known labels
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// singletonNoise gives every noise point its own label so noise never
// counts as agreement
func singletonNoise(labels []int) []int {
	out := make([]int, len(labels))
	next := -1
	for i, l := range labels {
		if l == pipeline.NoiseLabel {
			out[i] = next
			next--
			continue
		}
		out[i] = l
	}
	return out
}

func choose2(n int) float64 {
	return float64(n) * float64(n-1) / 2
}

// AdjustedRandIndex compares two labelings of the same points. 1 is
// identical, around 0 is chance agreement.
func (m *MetricsCalculator) AdjustedRandIndex(predicted, truth []int) (float64, error) {
	if len(predicted) != len(truth) {
		return 0, fmt.Errorf("label lengths differ: %d vs %d", len(predicted), len(truth))
	}
	n := len(predicted)
	if n < 2 {
		return 1, nil
	}
	pred := singletonNoise(predicted)

	type pair struct{ p, t int }
	contingency := make(map[pair]int)
	rows := make(map[int]int)
	cols := make(map[int]int)
	for i := range pred {
		contingency[pair{pred[i], truth[i]}]++
		rows[pred[i]]++
		cols[truth[i]]++
	}

	var index, sumRows, sumCols float64
	for _, c := range contingency {
		index += choose2(c)
	}
	for _, c := range rows {
		sumRows += choose2(c)
	}
	for _, c := range cols {
		sumCols += choose2(c)
	}

	expected := sumRows * sumCols / choose2(n)
	maxIndex := (sumRows + sumCols) / 2
	if maxIndex == expected {
		return 1, nil
	}
	return (index - expected) / (maxIndex - expected), nil
}

// Purity is the fraction of clustered points whose cluster's majority
// truth label matches their own. Noise points are excluded.
func (m *MetricsCalculator) Purity(predicted, truth []int) float64 {
	counts := make(map[int]map[int]int)
	clustered := 0
	for i, l := range predicted {
		if l == pipeline.NoiseLabel {
			continue
		}
		if counts[l] == nil {
			counts[l] = make(map[int]int)
		}
		counts[l][truth[i]]++
		clustered++
	}
	if clustered == 0 {
		return 0
	}
	majority := 0
	for _, byTruth := range counts {
		best := 0
		for _, c := range byTruth {
			best = max(best, c)
		}
		majority += best
	}
	return float64(majority) / float64(clustered)
}

// NoiseFraction is the share of points labeled noise
func (m *MetricsCalculator) NoiseFraction(predicted []int) float64 {
	if len(predicted) == 0 {
		return 0
	}
	noise := 0
	for _, l := range predicted {
		if l == pipeline.NoiseLabel {
			noise++
		}
	}
	return float64(noise) / float64(len(predicted))
}
