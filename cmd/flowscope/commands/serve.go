// ABOUTME: Serve command starts the HTTP API for the browser frontend
// ABOUTME: Runs until interrupted, then drains in-flight requests
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/harper/flowscope/internal/api"
	"github.com/spf13/cobra"
)

var (
	serveAddr string
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API used by the browser frontend.

The snapshot is loaded once at startup. Projections are cached by
selection id so follow-up describe and chart requests can refer to them.`,
		Example: `  flowscope serve
  flowscope serve --addr 0.0.0.0:8080
  FLOWSCOPE_STORE=sqlite flowscope serve`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from FLOWSCOPE_ADDR)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("Warning: error closing annotation store: %v", err)
		}
	}()

	sc := a.Config.Server()
	if serveAddr != "" {
		sc.Addr = serveAddr
	}

	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "flowscope serving %d records on http://%s\n", a.Catalog.Len(), sc.Addr)
	}
	return api.NewServer(a.Explorer, sc).ListenAndServe(ctx)
}
