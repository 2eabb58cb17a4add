// ABOUTME: Charm KV client wrapper for cloud-synced annotation storage
// ABOUTME: Record and case descriptions live under prefixed keys with automatic SSH key auth
package charm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/harper/flowscope/internal/models"
)

// Key prefixes for different entity types
const (
	RecordPrefix = "desc:record:"
	CasePrefix   = "desc:case:"
)

// Config holds charm client configuration
type Config struct {
	Host     string
	DBName   string
	AutoSync bool
}

// DefaultConfig returns default configuration for charm client
func DefaultConfig() *Config {
	host := os.Getenv("CHARM_HOST")
	if host == "" {
		host = "charm.2389.dev"
	}
	return &Config{
		Host:     host,
		DBName:   "flowscope",
		AutoSync: true,
	}
}

// Store is the subset of the charm kv API the client needs
type Store interface {
	Set(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Close() error
}

// Client wraps charm KV as an annotation store
type Client struct {
	kv       Store
	autoSync bool
	mu       sync.Mutex
}

// caseEntry is the stored value for one case description
type caseEntry struct {
	Case        string `json:"case"`
	Component   string `json:"component"`
	Description string `json:"description"`
}

// NewClient opens the charm kv database named in cfg
func NewClient(cfg *Config) (*Client, error) {
	// charm reads the host from the environment when opening KV
	if err := os.Setenv("CHARM_HOST", cfg.Host); err != nil {
		return nil, fmt.Errorf("failed to set CHARM_HOST: %w", err)
	}

	db, err := kv.OpenWithDefaults(cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open charm kv: %v", models.ErrPersistenceIO, err)
	}

	c := NewClientWithStore(db, cfg.AutoSync)
	if cfg.AutoSync {
		_ = db.Sync()
	}
	return c, nil
}

// NewClientWithStore wraps an already opened kv store
func NewClientWithStore(store Store, autoSync bool) *Client {
	return &Client{kv: store, autoSync: autoSync}
}

// Close closes the KV database
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		err := c.kv.Close()
		c.kv = nil
		return err
	}
	return nil
}

// syncIfEnabled syncs to cloud after writes
func (c *Client) syncIfEnabled() {
	if c.autoSync {
		_ = c.kv.Sync()
	}
}

// ID returns the charm user ID
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

// Sync manually triggers a sync with the cloud
func (c *Client) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv == nil {
		return fmt.Errorf("%w: charm kv is closed", models.ErrPersistenceIO)
	}
	if err := c.kv.Sync(); err != nil {
		return fmt.Errorf("%w: sync failed: %v", models.ErrPersistenceIO, err)
	}
	return nil
}

// RecordDescriptions returns every record description keyed by source id
func (c *Client) RecordDescriptions(ctx context.Context) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := c.keysWithPrefix(RecordPrefix)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		val, err := c.kv.Get([]byte(key))
		if err != nil {
			return nil, fmt.Errorf("%w: get %s: %v", models.ErrPersistenceIO, key, err)
		}
		out[strings.TrimPrefix(key, RecordPrefix)] = string(val)
	}
	return out, nil
}

// SetRecordDescription stores text for sourceID; empty text deletes it
func (c *Client) SetRecordDescription(ctx context.Context, sourceID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.put(RecordKey(sourceID), []byte(text), text == "")
}

// CaseDescriptions returns case descriptions keyed by case then component
func (c *Client) CaseDescriptions(ctx context.Context) (map[string]map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := c.keysWithPrefix(CasePrefix)
	if err != nil {
		return nil, err
	}
	out := make(map[string]map[string]string)
	for _, key := range keys {
		val, err := c.kv.Get([]byte(key))
		if err != nil {
			return nil, fmt.Errorf("%w: get %s: %v", models.ErrPersistenceIO, key, err)
		}
		var e caseEntry
		if err := json.Unmarshal(val, &e); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", models.ErrPersistenceIO, key, err)
		}
		if out[e.Case] == nil {
			out[e.Case] = make(map[string]string)
		}
		out[e.Case][e.Component] = e.Description
	}
	return out, nil
}

// SetCaseDescription stores text for one case component; empty text deletes it
func (c *Client) SetCaseDescription(ctx context.Context, caseName, component, text string) error {
	data, err := json.Marshal(caseEntry{Case: caseName, Component: component, Description: text})
	if err != nil {
		return fmt.Errorf("failed to marshal case description: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.put(CaseKey(caseName, component), data, text == "")
}

// put writes or deletes key; callers hold c.mu
func (c *Client) put(key string, value []byte, remove bool) error {
	if c.kv == nil {
		return fmt.Errorf("%w: charm kv is closed", models.ErrPersistenceIO)
	}
	if remove {
		if err := c.kv.Delete([]byte(key)); err != nil {
			return fmt.Errorf("%w: failed to delete key %s: %v", models.ErrPersistenceIO, key, err)
		}
	} else if err := c.kv.Set([]byte(key), value); err != nil {
		return fmt.Errorf("%w: failed to set key %s: %v", models.ErrPersistenceIO, key, err)
	}
	c.syncIfEnabled()
	return nil
}

// keysWithPrefix lists keys starting with prefix; callers hold c.mu
func (c *Client) keysWithPrefix(prefix string) ([]string, error) {
	if c.kv == nil {
		return nil, fmt.Errorf("%w: charm kv is closed", models.ErrPersistenceIO)
	}
	keys, err := c.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list keys: %v", models.ErrPersistenceIO, err)
	}

	var result []string
	for _, key := range keys {
		if s := string(key); strings.HasPrefix(s, prefix) {
			result = append(result, s)
		}
	}
	return result, nil
}

// RecordKey generates a key for a record description
func RecordKey(sourceID string) string {
	return RecordPrefix + sourceID
}

// CaseKey generates a key for a case description component
func CaseKey(caseName, component string) string {
	return CasePrefix + caseName + "/" + component
}
