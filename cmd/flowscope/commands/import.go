// ABOUTME: Import command loads a JSONL or NumPy snapshot into the SQLite frame store
// ABOUTME: Lets serve and mcp start from FLOWSCOPE_SNAPSHOT_SOURCE=sqlite
package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harper/flowscope/internal/app"
	"github.com/harper/flowscope/internal/catalog"
	"github.com/harper/flowscope/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

var (
	importDB string
)

// importResult summarizes an import
type importResult struct {
	Database    string `json:"database"`
	Frames      int    `json:"frames"`
	Parseable   int    `json:"parseable"`
	Unparseable int    `json:"unparseable"`
	Total       int    `json:"total_in_database"`
}

// NewImportCmd creates the import command
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <snapshot.jsonl> | <vectors.npy> <filenames.npy>",
		Short: "Import a JSONL or NumPy snapshot into SQLite",
		Long: `Import frames from a snapshot into the SQLite database.

A JSON Lines snapshot has one {"source_id": "<filename>", "vector": [...]}
per line. A NumPy snapshot is a pair of .npy files: an (n, d) float array
of vectors and n filenames saved with a unicode string dtype.

Frames are upserted by source id, so re-importing a snapshot is safe.
Frames whose filenames cannot be parsed are stored but reported.`,
		Example: `  flowscope import embeddings.jsonl
  flowscope import --db ./flowscope.db embeddings.jsonl
  flowscope import npys/vit_mean_2.npy npys/vit_filenames_all.npy`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runImport,
	}

	cmd.Flags().StringVar(&importDB, "db", "", "Database path (default from FLOWSCOPE_DB or XDG data dir)")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := importDB
	if path == "" {
		path = app.DBPath(cfg)
	}

	src, err := importSource(args)
	if err != nil {
		return err
	}
	frames, err := src.LoadFrames(ctx)
	if err != nil {
		return err
	}
	_, stats, err := catalog.Build(frames)
	if err != nil {
		return fmt.Errorf("snapshot is inconsistent: %w", err)
	}

	db, err := sqlite.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	store := sqlite.NewFrameStore(db)
	if err := store.SaveFrames(ctx, frames); err != nil {
		return err
	}
	total, err := store.Count(ctx)
	if err != nil {
		return err
	}

	res := importResult{
		Database:    path,
		Frames:      len(frames),
		Parseable:   stats.Loaded,
		Unparseable: stats.Skipped,
		Total:       total,
	}
	if wantJSON() {
		return writeJSON(cmd, res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d frames into %s\n", res.Frames, res.Database)
	if res.Unparseable > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Warning: %d frames have unparseable filenames and will be skipped at load\n", res.Unparseable)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Database now holds %d frames\n", res.Total)
	}
	return nil
}

// importSource picks the snapshot reader from the argument shape
func importSource(args []string) (catalog.Source, error) {
	isNPY := func(p string) bool { return strings.EqualFold(filepath.Ext(p), ".npy") }

	switch {
	case len(args) == 2 && isNPY(args[0]) && isNPY(args[1]):
		return catalog.NPYSource{Vectors: args[0], Filenames: args[1]}, nil
	case len(args) == 2:
		return nil, fmt.Errorf("two arguments must be a vectors .npy and a filenames .npy")
	case isNPY(args[0]):
		return nil, fmt.Errorf("a NumPy snapshot needs both the vectors and the filenames .npy files")
	default:
		return catalog.JSONLSource{Path: args[0]}, nil
	}
}
