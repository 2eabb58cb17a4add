// ABOUTME: Version command to display build information
// ABOUTME: Prints version, commit, build date, Go runtime and annotation schema version
package commands

import (
	"fmt"
	"runtime"

	"github.com/harper/flowscope/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

var versionInfo = VersionInfo{Version: "dev", Commit: "none", Date: "unknown"}

// VersionInfo contains build information
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// versionReport is the JSON shape of the version command
type versionReport struct {
	VersionInfo
	GoVersion     string `json:"go_version"`
	SchemaVersion int    `json:"schema_version"`
}

// SetVersion is called from main with linker-provided values
func SetVersion(version, commit, date string) {
	versionInfo = VersionInfo{Version: version, Commit: commit, Date: date}
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, build date and SQLite schema version for flowscope.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := versionReport{
				VersionInfo:   versionInfo,
				GoVersion:     runtime.Version(),
				SchemaVersion: sqlite.SchemaVersion,
			}
			if wantJSON() {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "flowscope %s\n", report.Version)
			fmt.Fprintf(out, "Commit: %s\n", report.Commit)
			fmt.Fprintf(out, "Built:  %s\n", report.Date)
			fmt.Fprintf(out, "Go:     %s\n", report.GoVersion)
			fmt.Fprintf(out, "Schema: v%d\n", report.SchemaVersion)
			return nil
		},
	}
}
