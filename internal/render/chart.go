// ABOUTME: Scatter chart rendering for projected selections
// ABOUTME: Interactive HTML via go-echarts and static PNG via gonum/plot, one series per cluster label
package render

import (
	"fmt"
	"io"
	"slices"

	"github.com/harper/flowscope/internal/pipeline"
)

// Chart is the data needed to draw one selection
type Chart struct {
	Title      string
	Subtitle   string
	Coords     [][2]float64
	Labels     []int
	IsCentroid []bool
	Names      []string // per-point tooltip text, usually source ids
}

// FromResult builds a chart from a pipeline result and the source ids it covers
func FromResult(title string, res *pipeline.Result, names []string) Chart {
	return Chart{
		Title:      title,
		Subtitle:   fmt.Sprintf("points=%d labels=%d", len(res.Coords), res.ClusterCount),
		Coords:     res.Coords,
		Labels:     res.Labels,
		IsCentroid: res.IsCentroid,
		Names:      names,
	}
}

// Validate checks that the per-point slices line up
func (c Chart) Validate() error {
	n := len(c.Coords)
	if len(c.Labels) != n {
		return fmt.Errorf("chart has %d coords but %d labels", n, len(c.Labels))
	}
	if c.IsCentroid != nil && len(c.IsCentroid) != n {
		return fmt.Errorf("chart has %d coords but %d centroid flags", n, len(c.IsCentroid))
	}
	if c.Names != nil && len(c.Names) != n {
		return fmt.Errorf("chart has %d coords but %d names", n, len(c.Names))
	}
	return nil
}

// group is the points sharing one label
type group struct {
	label   int
	members []int
}

// groups returns point indices per label in ascending label order
func (c Chart) groups() []group {
	byLabel := make(map[int][]int)
	for i, l := range c.Labels {
		byLabel[l] = append(byLabel[l], i)
	}
	labels := make([]int, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	slices.Sort(labels)

	out := make([]group, len(labels))
	for i, l := range labels {
		out[i] = group{label: l, members: byLabel[l]}
	}
	return out
}

func (c Chart) name(i int) string {
	if i < len(c.Names) {
		return c.Names[i]
	}
	return fmt.Sprintf("#%d", i)
}

func (c Chart) centroid(i int) bool {
	return i < len(c.IsCentroid) && c.IsCentroid[i]
}

// SeriesName labels a cluster series
func SeriesName(label int) string {
	if label == pipeline.NoiseLabel {
		return "noise"
	}
	return fmt.Sprintf("cluster %d", label)
}

// Format selects an output encoding
type Format string

const (
	FormatHTML Format = "html"
	FormatPNG  Format = "png"
)

// Write renders c to w in the requested format
func Write(w io.Writer, c Chart, f Format) error {
	switch f {
	case FormatHTML:
		return ScatterHTML(w, c)
	case FormatPNG:
		return ScatterPNG(w, c)
	default:
		return fmt.Errorf("unsupported chart format %q", f)
	}
}
