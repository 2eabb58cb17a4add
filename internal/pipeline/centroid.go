// ABOUTME: Picks one representative (centroid) point per cluster label
// ABOUTME: The member nearest the group mean wins; ties go to the lowest index
package pipeline

import (
	"math"
	"slices"
)

// Centroids groups points by label and returns, for each distinct label in
// ascending order, the index of the member closest to the group's mean.
// The boolean mask marks the same indices.
func Centroids(points [][2]float64, labels []int) (indices []int, mask []bool) {
	mask = make([]bool, len(points))
	groups := make(map[int][]int)
	for i, l := range labels {
		groups[l] = append(groups[l], i)
	}

	keys := make([]int, 0, len(groups))
	for l := range groups {
		keys = append(keys, l)
	}
	slices.Sort(keys)

	indices = make([]int, 0, len(keys))
	for _, l := range keys {
		members := groups[l]
		var mx, my float64
		for _, i := range members {
			mx += points[i][0]
			my += points[i][1]
		}
		mx /= float64(len(members))
		my /= float64(len(members))

		best, bestDist := -1, math.Inf(1)
		for _, i := range members {
			d := math.Hypot(points[i][0]-mx, points[i][1]-my)
			if d < bestDist {
				best, bestDist = i, d
			}
		}
		indices = append(indices, best)
		mask[best] = true
	}
	return indices, mask
}
