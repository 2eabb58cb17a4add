// ABOUTME: Tests for the charm annotation client against an in-memory kv
// ABOUTME: Covers key layout, set/delete semantics and sync-on-write
package charm

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/harper/flowscope/internal/models"
)

type fakeKV struct {
	data    map[string][]byte
	syncs   int
	syncErr error
}

func newFakeKV() *fakeKV { return &fakeKV{data: map[string][]byte{}} }

func (f *fakeKV) Set(k, v []byte) error { f.data[string(k)] = append([]byte(nil), v...); return nil }
func (f *fakeKV) Get(k []byte) ([]byte, error) {
	v, ok := f.data[string(k)]
	if !ok {
		return nil, errors.New("key not found")
	}
	return v, nil
}
func (f *fakeKV) Delete(k []byte) error { delete(f.data, string(k)); return nil }
func (f *fakeKV) Keys() ([][]byte, error) {
	var keys []string
	for k := range f.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = []byte(k)
	}
	return out, nil
}
func (f *fakeKV) Sync() error {
	f.syncs++
	return f.syncErr
}
func (f *fakeKV) Close() error { return nil }

func TestKeys(t *testing.T) {
	if got := RecordKey("a_OH_1ms"); got != "desc:record:a_OH_1ms" {
		t.Errorf("RecordKey() = %v", got)
	}
	if got := CaseKey("run_t600", "OH"); got != "desc:case:run_t600/OH" {
		t.Errorf("CaseKey() = %v", got)
	}
}

func TestRecordDescriptions(t *testing.T) {
	ctx := context.Background()
	store := newFakeKV()
	c := NewClientWithStore(store, true)

	if err := c.SetRecordDescription(ctx, "a_OH_1ms", "vortex"); err != nil {
		t.Fatalf("SetRecordDescription() error = %v", err)
	}
	got, err := c.RecordDescriptions(ctx)
	if err != nil {
		t.Fatalf("RecordDescriptions() error = %v", err)
	}
	if got["a_OH_1ms"] != "vortex" {
		t.Errorf("description = %q, want vortex", got["a_OH_1ms"])
	}
	if store.syncs != 1 {
		t.Errorf("syncs = %d, want 1", store.syncs)
	}

	_ = c.SetRecordDescription(ctx, "a_OH_1ms", "")
	got, _ = c.RecordDescriptions(ctx)
	if len(got) != 0 {
		t.Errorf("descriptions = %v, want empty", got)
	}
}

func TestCaseDescriptions(t *testing.T) {
	ctx := context.Background()
	c := NewClientWithStore(newFakeKV(), false)

	_ = c.SetCaseDescription(ctx, "run_t600", "OH", "flame")
	_ = c.SetCaseDescription(ctx, "run_t600", "p", "steady")
	_ = c.SetRecordDescription(ctx, "run_t600_OH_1ms", "unrelated")

	got, err := c.CaseDescriptions(ctx)
	if err != nil {
		t.Fatalf("CaseDescriptions() error = %v", err)
	}
	if len(got) != 1 || got["run_t600"]["OH"] != "flame" || got["run_t600"]["p"] != "steady" {
		t.Errorf("CaseDescriptions() = %v", got)
	}
}

func TestClosedClient(t *testing.T) {
	c := NewClientWithStore(newFakeKV(), false)
	_ = c.Close()

	err := c.SetRecordDescription(context.Background(), "x", "y")
	if !errors.Is(err, models.ErrPersistenceIO) {
		t.Errorf("error = %v, want ErrPersistenceIO", err)
	}
	if err := c.Sync(); !errors.Is(err, models.ErrPersistenceIO) {
		t.Errorf("Sync after Close: error = %v, want ErrPersistenceIO", err)
	}
}

func TestSync(t *testing.T) {
	kv := newFakeKV()
	c := NewClientWithStore(kv, false)

	if err := c.Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if kv.syncs != 1 {
		t.Errorf("syncs = %d, want 1", kv.syncs)
	}

	kv.syncErr = errors.New("connection refused")
	if err := c.Sync(); !errors.Is(err, models.ErrPersistenceIO) {
		t.Errorf("error = %v, want ErrPersistenceIO", err)
	}
}
