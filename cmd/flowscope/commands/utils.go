// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Config loading, app construction, output helpers and flag validation
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/harper/flowscope/internal/app"
	"github.com/harper/flowscope/internal/config"
	"github.com/harper/flowscope/internal/models"
	"github.com/spf13/cobra"
)

// loadConfig reads configuration from the environment
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openApp loads config and builds the explorer. Library logs are only
// shown with --verbose for one-shot commands.
func openApp(ctx context.Context, oneShot bool) (*app.App, error) {
	if oneShot && !verbose {
		log.SetOutput(io.Discard)
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing: %w", err)
	}
	return a, nil
}

// wantJSON reports whether results should be printed as JSON
func wantJSON() bool {
	return outputFormat == "json"
}

// writeJSON prints v as indented JSON
func writeJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
	return nil
}

// parseComponent validates a --component flag value
func parseComponent(s string) (models.Variable, error) {
	v, err := models.ParseVariable(s)
	if err != nil {
		return "", fmt.Errorf("--component: %w", err)
	}
	return v, nil
}

// parseInterval validates a two-element range flag
func parseInterval(vals []float64, name string) ([2]float64, error) {
	if len(vals) != 2 {
		return [2]float64{}, fmt.Errorf("--%s takes min,max; got %d values", name, len(vals))
	}
	return [2]float64{vals[0], vals[1]}, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// orDash renders empty strings as "-" in tables
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// containsString checks if a slice contains a string
func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}
