// ABOUTME: Project command runs PCA, t-SNE and DBSCAN over selected cases
// ABOUTME: Prints a cluster summary and optionally writes HTML or PNG charts
package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/harper/flowscope/internal/core"
	"github.com/harper/flowscope/internal/render"
	"github.com/spf13/cobra"
)

var (
	projectComponent  string
	projectEps        float64
	projectMinSamples int
	projectHTML       string
	projectPNG        string
)

// NewProjectCmd creates the project command
func NewProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project <case>...",
		Short: "Project and cluster the frames of selected cases",
		Long: `Project the frames of the selected cases for one variable to 2D,
cluster them with DBSCAN and report one representative frame per cluster.

The full per-point result is printed with --format json. Charts can be
written as interactive HTML (--html) or a static PNG (--png).`,
		Example: `  flowscope project --component OH --eps 3 base_case lean_f1.2
  flowscope project --component p --eps 2.5 --min-samples 8 --html out.html base_case
  flowscope project --component Mach --eps 3 --png clusters.png --format json base_case`,
		Args: cobra.MinimumNArgs(1),
		RunE: runProject,
	}

	cmd.Flags().StringVar(&projectComponent, "component", "OH", "Variable: p, OH or Mach")
	cmd.Flags().Float64Var(&projectEps, "eps", 3, "DBSCAN neighborhood radius in projected space")
	cmd.Flags().IntVar(&projectMinSamples, "min-samples", 5, "DBSCAN minimum neighborhood size")
	cmd.Flags().StringVar(&projectHTML, "html", "", "Write an interactive HTML chart to this path")
	cmd.Flags().StringVar(&projectPNG, "png", "", "Write a PNG chart to this path")

	return cmd
}

// clusterRow is one line of the cluster summary
type clusterRow struct {
	Label       int
	Size        int
	Centroid    string
	Description string
}

func runProject(cmd *cobra.Command, args []string) error {
	component, err := parseComponent(projectComponent)
	if err != nil {
		return err
	}
	if err := validatePositiveInt(projectMinSamples, "--min-samples"); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.Explorer.ComputeProjection(ctx, core.ProjectionRequest{
		Cases:      args,
		Variable:   component,
		Eps:        projectEps,
		MinSamples: projectMinSamples,
	})
	if err != nil {
		return err
	}

	if projectHTML != "" || projectPNG != "" {
		sel, err := a.Explorer.Selection(resp.SelectionID)
		if err != nil {
			return err
		}
		chart := render.FromResult(sel.Title(), sel.Result, sel.SourceIDs())
		if err := writeChart(projectHTML, chart, render.FormatHTML); err != nil {
			return err
		}
		if err := writeChart(projectPNG, chart, render.FormatPNG); err != nil {
			return err
		}
	}

	if wantJSON() {
		return writeJSON(cmd, resp)
	}

	rows := clusterRows(resp)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CLUSTER\tSIZE\tCENTROID\tDESCRIPTION\n")
	fmt.Fprintf(w, "-------\t----\t--------\t-----------\n")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", render.SeriesName(r.Label), r.Size, orDash(r.Centroid), orDash(truncate(r.Description, 50)))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d points, %d clusters, selection %s\n", len(resp.Coords), resp.ClusterCount, resp.SelectionID)
		for _, path := range []string{projectHTML, projectPNG} {
			if path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			}
		}
	}
	return nil
}

// clusterRows groups points by label, noise last
func clusterRows(resp *core.ProjectionResponse) []clusterRow {
	byLabel := make(map[int]*clusterRow)
	for _, l := range resp.Labels {
		r, ok := byLabel[l]
		if !ok {
			r = &clusterRow{Label: l}
			byLabel[l] = r
		}
		r.Size++
	}
	for _, i := range resp.CentroidIndices {
		r := byLabel[resp.Labels[i]]
		r.Centroid = resp.SourceIDs[i]
		if d := resp.Descriptions[i]; d != nil {
			r.Description = *d
		}
	}

	rows := make([]clusterRow, 0, len(byLabel))
	for _, r := range byLabel {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool {
		li, lj := rows[i].Label, rows[j].Label
		if (li < 0) != (lj < 0) {
			return lj < 0
		}
		return li < lj
	})
	return rows
}

func writeChart(path string, chart render.Chart, format render.Format) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := render.Write(f, chart, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return f.Close()
}
