// ABOUTME: Tests for the in-memory annotation store and shared document helpers
// ABOUTME: Verifies set, delete and copy semantics
package storage

import (
	"context"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_ = s.SetRecordDescription(ctx, "r1", "hello")
	_ = s.SetCaseDescription(ctx, "c1", "OH", "world")

	recs, _ := s.RecordDescriptions(ctx)
	if recs["r1"] != "hello" {
		t.Errorf("record = %q, want hello", recs["r1"])
	}
	cases, _ := s.CaseDescriptions(ctx)
	if cases["c1"]["OH"] != "world" {
		t.Errorf("case = %q, want world", cases["c1"]["OH"])
	}

	cases["c1"]["OH"] = "mutated"
	again, _ := s.CaseDescriptions(ctx)
	if again["c1"]["OH"] != "world" {
		t.Errorf("CaseDescriptions returned shared state")
	}

	_ = s.SetRecordDescription(ctx, "r1", "")
	recs, _ = s.RecordDescriptions(ctx)
	if len(recs) != 0 {
		t.Errorf("records = %v, want empty after delete", recs)
	}
}

func TestCaseDocumentApplyDeleteMissing(t *testing.T) {
	doc := CaseDocument{}
	doc.Apply("nope", "OH", "")
	if len(doc) != 0 {
		t.Errorf("doc = %v, want empty", doc)
	}
}
