// ABOUTME: Tests for per-label centroid selection
// ABOUTME: One centroid per label, nearest to mean, lowest index on ties
package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCentroidsOnePerLabel(t *testing.T) {
	points := [][2]float64{{0, 0}, {1, 0}, {2, 0}, {10, 10}, {50, 50}, {11, 11}, {12, 12}}
	labels := []int{0, 0, 0, 1, NoiseLabel, 1, 1}

	indices, mask := Centroids(points, labels)

	assert.Equal(t, []int{4, 1, 5}, indices, "ordered by ascending label, noise first")
	count := 0
	for _, m := range mask {
		if m {
			count++
		}
	}
	assert.Equal(t, CountLabels(labels), count)
	for _, i := range indices {
		assert.True(t, mask[i])
	}
}

func TestCentroidsTieBreaksLowestIndex(t *testing.T) {
	// Mean is (1, 0); indices 0 and 1 are equidistant.
	points := [][2]float64{{0, 0}, {2, 0}}
	indices, mask := Centroids(points, []int{3, 3})

	assert.Equal(t, []int{0}, indices)
	assert.Equal(t, []bool{true, false}, mask)
}

func TestCentroidsSingleMember(t *testing.T) {
	indices, mask := Centroids([][2]float64{{5, 5}}, []int{NoiseLabel})
	assert.Equal(t, []int{0}, indices)
	assert.Equal(t, []bool{true}, mask)
}
