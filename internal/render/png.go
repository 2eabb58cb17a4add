// ABOUTME: Static PNG scatter of a selection using gonum/plot
// ABOUTME: Each label gets a palette color; centroids are overdrawn as larger crosses
package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PNG canvas size
const (
	pngWidth  = 8 * vg.Inch
	pngHeight = 8 * vg.Inch
)

var noiseColor = color.RGBA{R: 160, G: 160, B: 160, A: 255}

// ScatterPNG writes a PNG image of the selection
func ScatterPNG(w io.Writer, c Chart) error {
	if err := c.Validate(); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = "t-SNE 1"
	p.Y.Label.Text = "t-SNE 2"
	p.Legend.Top = true

	var centroids plotter.XYs
	for gi, g := range c.groups() {
		pts := make(plotter.XYs, 0, len(g.members))
		for _, i := range g.members {
			pts = append(pts, plotter.XY{X: c.Coords[i][0], Y: c.Coords[i][1]})
			if c.centroid(i) {
				centroids = append(centroids, plotter.XY{X: c.Coords[i][0], Y: c.Coords[i][1]})
			}
		}

		s, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("failed to build series %s: %w", SeriesName(g.label), err)
		}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(2.5)
		if g.label < 0 {
			s.GlyphStyle.Color = noiseColor
		} else {
			s.GlyphStyle.Color = plotutil.Color(gi)
		}
		p.Add(s)
		p.Legend.Add(SeriesName(g.label), s)
	}

	if len(centroids) > 0 {
		cs, err := plotter.NewScatter(centroids)
		if err != nil {
			return fmt.Errorf("failed to build centroid series: %w", err)
		}
		cs.GlyphStyle.Shape = draw.CrossGlyph{}
		cs.GlyphStyle.Radius = vg.Points(6)
		cs.GlyphStyle.Color = color.Black
		p.Add(cs)
		p.Legend.Add("centroid", cs)
	}

	wt, err := p.WriterTo(pngWidth, pngHeight, "png")
	if err != nil {
		return fmt.Errorf("failed to create png canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}
