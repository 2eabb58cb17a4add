// ABOUTME: Density-based clustering (DBSCAN) of projected 2D coordinates
// ABOUTME: Uses a uniform grid index with cell size eps for neighborhood queries
package pipeline

import (
	"fmt"
	"math"
	"slices"

	"github.com/harper/flowscope/internal/models"
)

// NoiseLabel marks points that belong to no cluster
const NoiseLabel = -1

const unvisited = -2

// DBSCANParams configures the clustering stage
type DBSCANParams struct {
	Eps        float64 // neighborhood radius, inclusive
	MinSamples int     // neighbors (including self) required for a core point
}

// Validate rejects non-positive radius or sample counts
func (p DBSCANParams) Validate() error {
	if !(p.Eps > 0) || math.IsInf(p.Eps, 0) {
		return fmt.Errorf("%w: eps must be a positive number, got %v", models.ErrInvalidRequest, p.Eps)
	}
	if p.MinSamples < 1 {
		return fmt.Errorf("%w: minSamples must be at least 1, got %d", models.ErrInvalidRequest, p.MinSamples)
	}
	return nil
}

// gridIndex buckets 2D points into square cells of side eps
type gridIndex struct {
	cellSize float64
	cells    map[int64][]int
}

func newGridIndex(points [][2]float64, cellSize float64) *gridIndex {
	g := &gridIndex{cellSize: cellSize, cells: make(map[int64][]int, len(points)/4+1)}
	for i, p := range points {
		cx, cy := g.cellOf(p)
		id := pairCell(cx, cy)
		g.cells[id] = append(g.cells[id], i)
	}
	return g
}

func (g *gridIndex) cellOf(p [2]float64) (int64, int64) {
	return int64(math.Floor(p[0] / g.cellSize)), int64(math.Floor(p[1] / g.cellSize))
}

// pairCell maps signed cell coordinates to one key: zigzag then Szudzik pairing
func pairCell(x, y int64) int64 {
	a, b := zigzag(x), zigzag(y)
	if a >= b {
		return a*a + a + b
	}
	return a + b*b
}

func zigzag(v int64) int64 {
	if v >= 0 {
		return 2 * v
	}
	return -2*v - 1
}

// regionQuery returns the indices within eps of points[idx], including idx itself,
// in ascending index order
func (g *gridIndex) regionQuery(points [][2]float64, idx int, eps float64) []int {
	p := points[idx]
	eps2 := eps * eps
	cx, cy := g.cellOf(p)

	var neighbors []int
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, c := range g.cells[pairCell(cx+dx, cy+dy)] {
				ddx := points[c][0] - p[0]
				ddy := points[c][1] - p[1]
				if ddx*ddx+ddy*ddy <= eps2 {
					neighbors = append(neighbors, c)
				}
			}
		}
	}
	slices.Sort(neighbors)
	return neighbors
}

// DBSCAN labels each point with a cluster id starting at 0, or NoiseLabel.
// Clusters are numbered in order of their first core point.
func DBSCAN(points [][2]float64, params DBSCANParams) ([]int, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	n := len(points)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = unvisited
	}
	if n == 0 {
		return labels, nil
	}

	index := newGridIndex(points, params.Eps)
	next := 0

	for i := 0; i < n; i++ {
		if labels[i] != unvisited {
			continue
		}
		neighbors := index.regionQuery(points, i, params.Eps)
		if len(neighbors) < params.MinSamples {
			labels[i] = NoiseLabel
			continue
		}

		cluster := next
		next++
		labels[i] = cluster

		for q := 0; q < len(neighbors); q++ {
			idx := neighbors[q]
			if labels[idx] == NoiseLabel {
				labels[idx] = cluster // border point
			}
			if labels[idx] != unvisited {
				continue
			}
			labels[idx] = cluster
			more := index.regionQuery(points, idx, params.Eps)
			if len(more) >= params.MinSamples {
				neighbors = append(neighbors, more...)
			}
		}
	}
	return labels, nil
}

// CountLabels returns the number of distinct labels, noise included
func CountLabels(labels []int) int {
	seen := make(map[int]struct{}, len(labels))
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}
