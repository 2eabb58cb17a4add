// ABOUTME: Interactive HTML scatter of a selection using go-echarts
// ABOUTME: Centroids are drawn larger; tooltips show each point's source id
package render

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	pointSize    = 6
	centroidSize = 14
)

// ScatterHTML writes a standalone HTML page with one series per label
func ScatterHTML(w io.Writer, c Chart) error {
	if err := c.Validate(); err != nil {
		return err
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: c.Title, Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: c.Title, Subtitle: c.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Formatter: "{b}"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t-SNE 1", NameLocation: "middle", NameGap: 25, Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "t-SNE 2", NameLocation: "middle", NameGap: 30, Scale: opts.Bool(true)}),
	)

	for _, g := range c.groups() {
		data := make([]opts.ScatterData, 0, len(g.members))
		for _, i := range g.members {
			pt := opts.ScatterData{
				Name:       c.name(i),
				Value:      []interface{}{c.Coords[i][0], c.Coords[i][1]},
				SymbolSize: pointSize,
			}
			if c.centroid(i) {
				pt.Symbol = "diamond"
				pt.SymbolSize = centroidSize
			}
			data = append(data, pt)
		}
		scatter.AddSeries(SeriesName(g.label), data)
	}

	return scatter.Render(w)
}
