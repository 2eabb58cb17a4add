// ABOUTME: Cases command lists simulation cases inside parameter ranges
// ABOUTME: Mirrors the case filter the frontend uses
package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/harper/flowscope/internal/catalog"
	"github.com/spf13/cobra"
)

var (
	casesP   []float64
	casesT   []float64
	casesH2O []float64
)

// NewCasesCmd creates the cases command
func NewCasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "List cases within parameter ranges",
		Long: `List distinct simulation cases whose rounded parameters fall inside
the given closed ranges. Pressure ratio is rounded to 3 places,
temperature to 2, and water fraction is shown as a percentage.`,
		Example: `  flowscope cases
  flowscope cases --p 0.8,1.2 --t 500,700
  flowscope cases --h2o 0,5 --format json`,
		Args: cobra.NoArgs,
		RunE: runCases,
	}

	cmd.Flags().Float64SliceVar(&casesP, "p", []float64{0, 1000}, "Pressure ratio range min,max")
	cmd.Flags().Float64SliceVar(&casesT, "t", []float64{0, 10000}, "Temperature range min,max")
	cmd.Flags().Float64SliceVar(&casesH2O, "h2o", []float64{0, 100}, "Water percentage range min,max")

	return cmd
}

func runCases(cmd *cobra.Command, args []string) error {
	var ranges catalog.CaseRanges
	for _, f := range []struct {
		vals []float64
		name string
		dst  *catalog.Range
	}{{casesP, "p", &ranges.P}, {casesT, "t", &ranges.T}, {casesH2O, "h2o", &ranges.H2O}} {
		iv, err := parseInterval(f.vals, f.name)
		if err != nil {
			return err
		}
		*f.dst = catalog.Range{Min: iv[0], Max: iv[1]}
	}

	ctx := context.Background()
	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	cases, err := a.Explorer.ListCases(ctx, ranges)
	if err != nil {
		return err
	}

	if wantJSON() {
		return writeJSON(cmd, cases)
	}
	if len(cases) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No cases found\n")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CASE\tP\tT\tH2O %%\n")
	fmt.Fprintf(w, "----\t-\t-\t-----\n")
	for _, c := range cases {
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\n", truncate(c.Case, 40), c.P, c.T, c.H2O)
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d case(s)\n", len(cases))
	}
	return nil
}
