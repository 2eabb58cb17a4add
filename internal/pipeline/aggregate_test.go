// ABOUTME: Tests for case aggregation of coordinates
// ABOUTME: Order preservation and total count invariants
package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAggregate(t *testing.T) {
	coords := [][2]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}}
	cases := []string{"b", "a", "b", "c", "a"}

	byCase, order := Aggregate(coords, cases)

	if diff := cmp.Diff([]string{"b", "a", "c"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	want := map[string][][2]float64{
		"b": {{1, 1}, {3, 3}},
		"a": {{2, 2}, {5, 5}},
		"c": {{4, 4}},
	}
	if diff := cmp.Diff(want, byCase); diff != "" {
		t.Errorf("byCase mismatch (-want +got):\n%s", diff)
	}

	total := 0
	for _, v := range byCase {
		total += len(v)
	}
	if total != len(coords) {
		t.Errorf("total = %d, want %d", total, len(coords))
	}
}
