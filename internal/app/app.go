// ABOUTME: Wires configuration into a ready explorer: snapshot, annotation backend, captioner
// ABOUTME: Shared by the CLI commands and the standalone MCP server binary
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/harper/flowscope/internal/catalog"
	"github.com/harper/flowscope/internal/charm"
	"github.com/harper/flowscope/internal/config"
	"github.com/harper/flowscope/internal/core"
	"github.com/harper/flowscope/internal/llm"
	"github.com/harper/flowscope/internal/storage"
	"github.com/harper/flowscope/internal/storage/jsonfile"
	"github.com/harper/flowscope/internal/storage/sqlite"
)

// App holds everything a surface needs to serve requests
type App struct {
	Config   *config.Config
	Catalog  *catalog.Catalog
	Store    storage.AnnotationStore
	Explorer *core.Explorer
}

// DBPath returns the configured database path or the XDG default
func DBPath(cfg *config.Config) string {
	if cfg.DBPath != "" {
		return cfg.DBPath
	}
	return sqlite.DefaultDBPath()
}

// SnapshotSource picks the frame source named by the configuration.
// The returned closer releases any database handle.
func SnapshotSource(cfg *config.Config) (catalog.Source, func() error, error) {
	switch cfg.SnapshotSource {
	case config.SnapshotSQLite:
		db, err := sqlite.Open(DBPath(cfg))
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewFrameStore(db), db.Close, nil
	case config.SnapshotNPY:
		src := catalog.NPYSource{Vectors: cfg.NPYVectorsPath, Filenames: cfg.NPYFilenamesPath}
		return src, func() error { return nil }, nil
	default:
		return catalog.JSONLSource{Path: cfg.SnapshotPath}, func() error { return nil }, nil
	}
}

// LoadCatalog reads the snapshot and builds the catalog
func LoadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	src, closeSrc, err := SnapshotSource(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeSrc() }()

	cat, stats, err := catalog.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	log.Printf("[App] catalog loaded: %d records (%d skipped), dimension %d", stats.Loaded, stats.Skipped, cat.Dimension())
	return cat, nil
}

// OpenAnnotationStore opens the configured annotation backend
func OpenAnnotationStore(cfg *config.Config) (storage.AnnotationStore, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		return storage.NewMemoryStore(), nil
	case config.StoreSQLite:
		return sqlite.OpenAnnotationStore(DBPath(cfg))
	case config.StoreCharm:
		return charm.NewClient(&charm.Config{Host: cfg.CharmHost, DBName: cfg.CharmDBName, AutoSync: cfg.AutoSync})
	case config.StoreJSON:
		return jsonfile.OpenDir(cfg.AnnotationDir)
	default:
		return nil, fmt.Errorf("unknown annotation store %q", cfg.StoreBackend)
	}
}

// New builds an App from cfg. The captioner may be nil, in which case the
// OpenAI-compatible client from cfg is used.
func New(ctx context.Context, cfg *config.Config, captioner core.Captioner) (*App, error) {
	cat, err := LoadCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithCatalog(cfg, cat, captioner)
}

// NewWithCatalog builds an App around an already loaded catalog
func NewWithCatalog(cfg *config.Config, cat *catalog.Catalog, captioner core.Captioner) (*App, error) {
	if captioner == nil {
		client, err := llm.NewCaptionClient(cfg.Caption())
		if err != nil {
			return nil, fmt.Errorf("failed to create caption client: %w", err)
		}
		captioner = client
	}

	store, err := OpenAnnotationStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation store: %w", err)
	}

	explorer, err := core.NewExplorer(cat, store, captioner, core.Options{
		Projection:         cfg.Projection(),
		ImageDirs:          cfg.ImageDirs(),
		SelectionCacheSize: cfg.SelectionCacheSize,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &App{Config: cfg, Catalog: cat, Store: store, Explorer: explorer}, nil
}

// Close releases the annotation store
func (a *App) Close() error {
	return a.Store.Close()
}
