// ABOUTME: Bounded cache of projection results keyed by selection id
// ABOUTME: Replaces a process-wide "current selection" with explicit handles
package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/harper/flowscope/internal/catalog"
	"github.com/harper/flowscope/internal/models"
	"github.com/harper/flowscope/internal/pipeline"
)

// DefaultSelectionCacheSize is how many selections stay addressable
const DefaultSelectionCacheSize = 32

// Selection is one completed pipeline run and the records it covered
type Selection struct {
	ID         string
	Variable   models.Variable
	Cases      []string
	Eps        float64
	MinSamples int
	Records    []catalog.Record
	Result     *pipeline.Result
	CreatedAt  time.Time
}

// HasCase reports whether caseName contributed records to the selection
func (s *Selection) HasCase(caseName string) bool {
	_, ok := s.Result.CaseCoords[caseName]
	return ok
}

// SourceIDs returns the selection's source ids in pipeline order
func (s *Selection) SourceIDs() []string {
	ids := make([]string, len(s.Records))
	for i, r := range s.Records {
		ids[i] = r.SourceID
	}
	return ids
}

// Title is a short human label for charts and logs
func (s *Selection) Title() string {
	return fmt.Sprintf("%s: %s (eps=%g, min_samples=%d)", s.Variable, strings.Join(s.Cases, ", "), s.Eps, s.MinSamples)
}

// SelectionCache is a thread-safe LRU of selections
type SelectionCache struct {
	cache *lru.Cache[string, *Selection]
}

// NewSelectionCache creates a cache holding at most size selections
func NewSelectionCache(size int) (*SelectionCache, error) {
	if size <= 0 {
		size = DefaultSelectionCacheSize
	}
	cache, err := lru.New[string, *Selection](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create selection cache: %w", err)
	}
	return &SelectionCache{cache: cache}, nil
}

// Add assigns a fresh id to sel and stores it
func (c *SelectionCache) Add(sel *Selection) string {
	sel.ID = uuid.NewString()
	if sel.CreatedAt.IsZero() {
		sel.CreatedAt = time.Now()
	}
	c.cache.Add(sel.ID, sel)
	return sel.ID
}

// Get returns the selection for id or ErrUnknownSelection
func (c *SelectionCache) Get(id string) (*Selection, error) {
	sel, ok := c.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownSelection, id)
	}
	return sel, nil
}

// Len returns the number of cached selections
func (c *SelectionCache) Len() int {
	return c.cache.Len()
}
