// ABOUTME: Centralized configuration for the flowscope server and CLI
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/harper/flowscope/internal/api"
	"github.com/harper/flowscope/internal/llm"
	"github.com/harper/flowscope/internal/models"
	"github.com/harper/flowscope/internal/pipeline"
)

// Annotation store backends
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
	StoreCharm  = "charm"
	StoreMemory = "memory"
)

// Snapshot sources
const (
	SnapshotJSONL  = "jsonl"
	SnapshotSQLite = "sqlite"
	SnapshotNPY    = "npy"
)

// Config holds all configuration for flowscope
type Config struct {
	// Snapshot settings
	SnapshotSource   string
	SnapshotPath     string
	NPYVectorsPath   string
	NPYFilenamesPath string
	DBPath           string

	// Annotation settings
	StoreBackend  string
	AnnotationDir string

	// Charm settings
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// Image directories
	ImageRoot   string
	PressureDir string
	OHDir       string
	MachDir     string

	// Captioning settings
	CaptionBaseURL    string
	CaptionAPIKey     string
	CaptionModel      string
	CaptionTimeout    time.Duration
	CaptionMaxRetries int
	CaptionRetryDelay time.Duration

	// Projection settings
	PCAComponents  int
	TSNEPerplexity float64
	TSNEIterations int
	TSNESeed       uint64
	TSNEWorkers    int

	// Server settings
	ListenAddr         string
	AllowedOrigin      string
	SelectionCacheSize int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	tsne := pipeline.DefaultTSNEConfig()
	root := getEnv("FLOWSCOPE_IMAGE_ROOT", filepath.Join("..", "frontend", "public", "external_images"))

	cfg := &Config{
		SnapshotSource:     getEnv("FLOWSCOPE_SNAPSHOT_SOURCE", SnapshotJSONL),
		SnapshotPath:       getEnv("FLOWSCOPE_SNAPSHOT", "embeddings.jsonl"),
		NPYVectorsPath:     getEnv("FLOWSCOPE_NPY_VECTORS", filepath.Join("npys", "embeddings_mean.npy")),
		NPYFilenamesPath:   getEnv("FLOWSCOPE_NPY_FILENAMES", filepath.Join("npys", "embeddings_filenames.npy")),
		DBPath:             os.Getenv("FLOWSCOPE_DB"),
		StoreBackend:       getEnv("FLOWSCOPE_STORE", StoreJSON),
		AnnotationDir:      getEnv("FLOWSCOPE_ANNOTATION_DIR", "."),
		CharmHost:          getEnv("CHARM_HOST", "charm.2389.dev"),
		CharmDBName:        getEnv("CHARM_DB", "flowscope"),
		AutoSync:           getEnvBool("CHARM_AUTO_SYNC", true),
		ImageRoot:          root,
		PressureDir:        getEnv("FLOWSCOPE_IMAGES_P", filepath.Join(root, "p_crop_trans")),
		OHDir:              getEnv("FLOWSCOPE_IMAGES_OH", filepath.Join(root, "imgs", "oh_trans")),
		MachDir:            getEnv("FLOWSCOPE_IMAGES_MACH", filepath.Join(root, "imgs", "mach_trans")),
		CaptionBaseURL:     getEnv("CAPTION_BASE_URL", llm.DefaultBaseURL),
		CaptionAPIKey:      getEnv("CAPTION_API_KEY", getEnv("OPENAI_API_KEY", "ollama")),
		CaptionModel:       getEnv("CAPTION_MODEL", llm.DefaultCaptionModel),
		CaptionTimeout:     getEnvDuration("CAPTION_TIMEOUT", 120*time.Second),
		CaptionMaxRetries:  getEnvInt("CAPTION_MAX_RETRIES", 2),
		CaptionRetryDelay:  getEnvDuration("CAPTION_RETRY_DELAY", time.Second),
		PCAComponents:      getEnvInt("FLOWSCOPE_PCA_COMPONENTS", pipeline.DefaultPCAComponents),
		TSNEPerplexity:     getEnvFloat("FLOWSCOPE_TSNE_PERPLEXITY", tsne.Perplexity),
		TSNEIterations:     getEnvInt("FLOWSCOPE_TSNE_ITERATIONS", tsne.Iterations),
		TSNESeed:           uint64(getEnvInt("FLOWSCOPE_TSNE_SEED", int(tsne.Seed))),
		TSNEWorkers:        getEnvInt("FLOWSCOPE_TSNE_WORKERS", min(runtime.NumCPU(), 8)),
		ListenAddr:         getEnv("FLOWSCOPE_ADDR", api.DefaultConfig().Addr),
		AllowedOrigin:      getEnv("FLOWSCOPE_ALLOWED_ORIGIN", "*"),
		SelectionCacheSize: getEnvInt("FLOWSCOPE_SELECTION_CACHE", 32),
	}

	return cfg, cfg.Validate()
}

// Validate checks enum values and numeric ranges
func (c *Config) Validate() error {
	switch c.SnapshotSource {
	case SnapshotJSONL, SnapshotSQLite:
	case SnapshotNPY:
		if c.NPYVectorsPath == "" || c.NPYFilenamesPath == "" {
			return fmt.Errorf("FLOWSCOPE_NPY_VECTORS and FLOWSCOPE_NPY_FILENAMES are required for the npy snapshot source")
		}
	default:
		return fmt.Errorf("FLOWSCOPE_SNAPSHOT_SOURCE must be jsonl, sqlite or npy, got %q", c.SnapshotSource)
	}
	switch c.StoreBackend {
	case StoreJSON, StoreSQLite, StoreCharm, StoreMemory:
	default:
		return fmt.Errorf("FLOWSCOPE_STORE must be json, sqlite, charm or memory, got %q", c.StoreBackend)
	}
	if c.CaptionMaxRetries < 0 || c.CaptionMaxRetries > 10 {
		return fmt.Errorf("CAPTION_MAX_RETRIES must be 0-10, got %d", c.CaptionMaxRetries)
	}
	if c.PCAComponents < 1 {
		return fmt.Errorf("FLOWSCOPE_PCA_COMPONENTS must be positive, got %d", c.PCAComponents)
	}
	if c.TSNEPerplexity <= 0 {
		return fmt.Errorf("FLOWSCOPE_TSNE_PERPLEXITY must be positive, got %f", c.TSNEPerplexity)
	}
	if c.TSNEIterations < 1 {
		return fmt.Errorf("FLOWSCOPE_TSNE_ITERATIONS must be positive, got %d", c.TSNEIterations)
	}
	if c.TSNEWorkers < 1 {
		return fmt.Errorf("FLOWSCOPE_TSNE_WORKERS must be positive, got %d", c.TSNEWorkers)
	}
	if c.SelectionCacheSize < 1 {
		return fmt.Errorf("FLOWSCOPE_SELECTION_CACHE must be positive, got %d", c.SelectionCacheSize)
	}
	return nil
}

// ImageDirs maps each variable to its rendered image directory
func (c *Config) ImageDirs() map[models.Variable]string {
	return map[models.Variable]string{
		models.VariablePressure: c.PressureDir,
		models.VariableOH:       c.OHDir,
		models.VariableMach:     c.MachDir,
	}
}

// Projection returns the PCA and t-SNE settings
func (c *Config) Projection() pipeline.ProjectionConfig {
	proj := pipeline.DefaultProjectionConfig()
	proj.PCAComponents = c.PCAComponents
	proj.TSNE.Perplexity = c.TSNEPerplexity
	proj.TSNE.Iterations = c.TSNEIterations
	proj.TSNE.Seed = c.TSNESeed
	proj.TSNE.Workers = c.TSNEWorkers
	return proj
}

// Caption returns the captioning client settings
func (c *Config) Caption() *llm.CaptionConfig {
	cc := llm.DefaultCaptionConfig()
	cc.BaseURL = c.CaptionBaseURL
	cc.APIKey = c.CaptionAPIKey
	cc.Model = c.CaptionModel
	cc.Timeout = c.CaptionTimeout
	cc.MaxRetries = c.CaptionMaxRetries
	cc.RetryDelay = c.CaptionRetryDelay
	return cc
}

// Server returns the HTTP listener settings
func (c *Config) Server() api.Config {
	sc := api.DefaultConfig()
	sc.Addr = c.ListenAddr
	sc.AllowedOrigin = c.AllowedOrigin
	return sc
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
