// ABOUTME: Root command, global flags and subcommand registration
// ABOUTME: Handles .env loading, log verbosity and output format selection
package commands

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

var validFormats = []string{"auto", "json", "table"}

const banner = `
 ███████╗██╗      ██████╗ ██╗    ██╗███████╗ ██████╗ ██████╗ ██████╗ ███████╗
 ██╔════╝██║     ██╔═══██╗██║    ██║██╔════╝██╔════╝██╔═══██╗██╔══██╗██╔════╝
 █████╗  ██║     ██║   ██║██║ █╗ ██║███████╗██║     ██║   ██║██████╔╝█████╗
 ██╔══╝  ██║     ██║   ██║██║███╗██║╚════██║██║     ██║   ██║██╔═══╝ ██╔══╝
 ██║     ███████╗╚██████╔╝╚███╔███╔╝███████║╚██████╗╚██████╔╝██║     ███████╗
 ╚═╝     ╚══════╝ ╚═════╝  ╚══╝╚══╝ ╚══════╝ ╚═════╝ ╚═════╝ ╚═╝     ╚══════╝`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flowscope",
		Short: "Explore combustion simulation frames in 2D",
		Long: banner + `

flowscope projects encoder embeddings of simulation frames to 2D with
PCA and t-SNE, clusters them with DBSCAN, picks a representative frame
per cluster and keeps human or model-written descriptions of frames
and cases.

It serves the browser frontend over HTTP, LLM agents over MCP, and
answers the same questions on the command line.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !containsString(validFormats, outputFormat) {
				return fmt.Errorf("--format must be one of auto, json, table; got %q", outputFormat)
			}
			if err := godotenv.Load(); err != nil && verbose {
				log.Printf("No .env file loaded: %v", err)
			}
			if quiet {
				log.SetOutput(io.Discard)
			} else {
				log.SetOutput(os.Stderr)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (pipeline and storage logs)")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress everything but results")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, json or table")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewCasesCmd())
	cmd.AddCommand(NewProjectCmd())
	cmd.AddCommand(NewAnnotateCmd())
	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
