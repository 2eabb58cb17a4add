// ABOUTME: In-memory catalog of parsed frames, partitioned by physical variable
// ABOUTME: Built once at startup from a snapshot and never mutated afterwards
package catalog

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/harper/flowscope/internal/models"
)

// Frame is one raw snapshot entry before parsing
type Frame struct {
	SourceID string    `json:"source_id"`
	Vector   []float64 `json:"vector"`
}

// Source yields the snapshot a Catalog is built from
type Source interface {
	LoadFrames(ctx context.Context) ([]Frame, error)
}

// Catalog holds every parsed record.
// Iteration over All() follows snapshot order; Partition() follows (case, timestamp).
type Catalog struct {
	records    []Record
	partitions map[models.Variable][]int
	bySourceID map[string]int
	cases      map[string]struct{}
	dimension  int
}

// BuildStats summarizes a catalog build
type BuildStats struct {
	Loaded  int
	Skipped int
}

// Load reads the snapshot from src and builds a Catalog.
// Frames whose filenames cannot be parsed are skipped and logged.
func Load(ctx context.Context, src Source) (*Catalog, BuildStats, error) {
	frames, err := src.LoadFrames(ctx)
	if err != nil {
		return nil, BuildStats{}, fmt.Errorf("loading snapshot: %w", err)
	}
	return Build(frames)
}

// Build parses frames and assembles a Catalog
func Build(frames []Frame) (*Catalog, BuildStats, error) {
	var stats BuildStats
	records := make([]Record, 0, len(frames))

	for _, f := range frames {
		rec, err := ParseRecord(f.Vector, f.SourceID)
		if err != nil {
			log.Printf("[Catalog] skipping frame: %v", err)
			stats.Skipped++
			continue
		}
		records = append(records, rec)
	}

	c, err := New(records)
	if err != nil {
		return nil, stats, err
	}
	stats.Loaded = len(records)
	return c, stats, nil
}

// New assembles a Catalog from already parsed records.
// Source ids must be unique and every vector must have the same length.
func New(records []Record) (*Catalog, error) {
	c := &Catalog{
		records:    records,
		partitions: make(map[models.Variable][]int),
		bySourceID: make(map[string]int, len(records)),
		cases:      make(map[string]struct{}),
	}

	for i, r := range records {
		if _, dup := c.bySourceID[r.SourceID]; dup {
			return nil, fmt.Errorf("duplicate source id %q", r.SourceID)
		}
		if i == 0 {
			c.dimension = len(r.Vector)
		} else if len(r.Vector) != c.dimension {
			return nil, fmt.Errorf("vector for %q has %d dimensions, expected %d", r.SourceID, len(r.Vector), c.dimension)
		}
		c.bySourceID[r.SourceID] = i
		c.cases[r.Case] = struct{}{}
		c.partitions[r.Variable] = append(c.partitions[r.Variable], i)
	}

	for _, idx := range c.partitions {
		sort.SliceStable(idx, func(a, b int) bool {
			ra, rb := c.records[idx[a]], c.records[idx[b]]
			if ra.Case != rb.Case {
				return ra.Case < rb.Case
			}
			return ra.Timestamp < rb.Timestamp
		})
	}

	return c, nil
}

// Len returns the number of records
func (c *Catalog) Len() int {
	return len(c.records)
}

// Dimension returns the shared vector length (0 for an empty catalog)
func (c *Catalog) Dimension() int {
	return c.dimension
}

// All returns every record in snapshot order. Callers must not modify it.
func (c *Catalog) All() []Record {
	return c.records
}

// Partition returns the records for one variable ordered by (case, timestamp)
func (c *Catalog) Partition(v models.Variable) []Record {
	idx := c.partitions[v]
	out := make([]Record, len(idx))
	for i, j := range idx {
		out[i] = c.records[j]
	}
	return out
}

// Lookup finds a record by its source id
func (c *Catalog) Lookup(sourceID string) (Record, bool) {
	i, ok := c.bySourceID[sourceID]
	if !ok {
		return Record{}, false
	}
	return c.records[i], true
}

// HasCase reports whether any record belongs to caseName
func (c *Catalog) HasCase(caseName string) bool {
	_, ok := c.cases[caseName]
	return ok
}

// Select returns the records of variable v whose case is in cases, in partition order.
// Every requested case must exist somewhere in the catalog.
func (c *Catalog) Select(v models.Variable, cases []string) ([]Record, error) {
	wanted := make(map[string]struct{}, len(cases))
	for _, name := range cases {
		if !c.HasCase(name) {
			return nil, fmt.Errorf("%w: %q", models.ErrUnknownCase, name)
		}
		wanted[name] = struct{}{}
	}

	var out []Record
	for _, j := range c.partitions[v] {
		if _, ok := wanted[c.records[j].Case]; ok {
			out = append(out, c.records[j])
		}
	}
	return out, nil
}
