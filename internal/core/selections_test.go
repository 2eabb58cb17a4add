// ABOUTME: Tests for the selection cache
// ABOUTME: Id assignment, lookup and LRU eviction
package core

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/harper/flowscope/internal/catalog"
	"github.com/harper/flowscope/internal/models"
	"github.com/harper/flowscope/internal/pipeline"
)

func TestSelectionCacheEviction(t *testing.T) {
	c, err := NewSelectionCache(1)
	if err != nil {
		t.Fatalf("NewSelectionCache() error = %v", err)
	}

	first := c.Add(&Selection{Result: &pipeline.Result{}})
	second := c.Add(&Selection{Result: &pipeline.Result{}})
	if first == second {
		t.Fatal("selection ids should be unique")
	}

	if _, err := c.Get(first); !errors.Is(err, models.ErrUnknownSelection) {
		t.Errorf("Get(evicted) error = %v, want ErrUnknownSelection", err)
	}
	sel, err := c.Get(second)
	if err != nil {
		t.Fatalf("Get(second) error = %v", err)
	}
	if sel.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestSelectionCacheDefaultSize(t *testing.T) {
	c, err := NewSelectionCache(0)
	if err != nil {
		t.Fatalf("NewSelectionCache(0) error = %v", err)
	}
	for i := 0; i < DefaultSelectionCacheSize+5; i++ {
		c.Add(&Selection{Result: &pipeline.Result{}})
	}
	if c.Len() != DefaultSelectionCacheSize {
		t.Errorf("Len() = %d, want %d", c.Len(), DefaultSelectionCacheSize)
	}
}

func TestSelectionHasCase(t *testing.T) {
	sel := &Selection{Result: &pipeline.Result{CaseCoords: map[string][][2]float64{"a": {{0, 0}}}}}
	if !sel.HasCase("a") || sel.HasCase("b") {
		t.Error("HasCase mismatch")
	}
}

func TestSelectionSourceIDsAndTitle(t *testing.T) {
	sel := &Selection{
		Variable:   models.VariableOH,
		Cases:      []string{"a", "b"},
		Eps:        0.5,
		MinSamples: 3,
		Records:    []catalog.Record{{SourceID: "x.png"}, {SourceID: "y.png"}},
	}
	if diff := cmp.Diff([]string{"x.png", "y.png"}, sel.SourceIDs()); diff != "" {
		t.Errorf("SourceIDs() mismatch (-want +got):\n%s", diff)
	}
	if got, want := sel.Title(), "OH: a, b (eps=0.5, min_samples=3)"; got != want {
		t.Errorf("Title() = %q, want %q", got, want)
	}
}
