// ABOUTME: Annotate command sets or clears frame and case descriptions
// ABOUTME: Writes through the configured annotation store
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	annotateCase      string
	annotateComponent string
	annotateFile      string
	annotateClear     bool
)

// NewAnnotateCmd creates the annotate command
func NewAnnotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate [source-id] [text]",
		Short: "Set or clear a frame or case description",
		Long: `Set the description of one frame, or with --case, of one case and
component. The text comes from the last argument, --file, or stdin
when the argument is "-". --clear removes the description.`,
		Example: `  flowscope annotate base_OH_120ms.png "flame front detaches"
  flowscope annotate --case lean_f1.2 --component OH "lifted flame, unstable"
  flowscope annotate --clear base_OH_120ms.png
  flowscope annotate --file notes.txt base_OH_120ms.png`,
		Args: cobra.MaximumNArgs(2),
		RunE: runAnnotate,
	}

	cmd.Flags().StringVar(&annotateCase, "case", "", "Annotate this case instead of a frame")
	cmd.Flags().StringVar(&annotateComponent, "component", "", "Component for --case: p, OH or Mach")
	cmd.Flags().StringVar(&annotateFile, "file", "", "Read description from file")
	cmd.Flags().BoolVar(&annotateClear, "clear", false, "Remove the description")

	return cmd
}

// annotationTarget splits args into the frame id (empty for cases) and text
func annotationTarget(args []string, stdin io.Reader) (string, string, error) {
	var sourceID string
	if annotateCase == "" {
		if len(args) == 0 {
			return "", "", fmt.Errorf("source-id is required")
		}
		sourceID, args = args[0], args[1:]
	}

	switch {
	case annotateClear:
		if len(args) > 0 || annotateFile != "" {
			return "", "", fmt.Errorf("--clear takes no text")
		}
		return sourceID, "", nil
	case annotateFile != "":
		if len(args) > 0 {
			return "", "", fmt.Errorf("use either --file or a text argument")
		}
		data, err := os.ReadFile(annotateFile)
		if err != nil {
			return "", "", fmt.Errorf("reading file: %w", err)
		}
		return sourceID, strings.TrimSpace(string(data)), nil
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return sourceID, strings.TrimSpace(string(data)), nil
	case len(args) == 1:
		text := strings.TrimSpace(args[0])
		if text == "" {
			return "", "", fmt.Errorf("description is empty (use --clear to remove)")
		}
		return sourceID, text, nil
	default:
		return "", "", fmt.Errorf("description text is required")
	}
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	sourceID, text, err := annotationTarget(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	action := "Updated"
	if text == "" {
		action = "Cleared"
	}

	if annotateCase != "" {
		component, err := parseComponent(annotateComponent)
		if err != nil {
			return err
		}
		if err := a.Explorer.SetCaseDescription(ctx, annotateCase, component, text); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%s description of case %s (%s)\n", action, annotateCase, component)
		}
		return nil
	}

	if err := a.Explorer.SetRecordDescription(ctx, sourceID, text); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s description of %s\n", action, sourceID)
	}
	return nil
}
