package catalog_test

import (
	"errors"
	"sync"
	"testing"

	"stowaway/internal/catalog"
)

func assertDense(t *testing.T, r *catalog.Registry) {
	t.Helper()
	for i, entry := range r.Snapshot() {
		if entry.Sequence != i+1 {
			t.Fatalf("entry %d has sequence %d, want %d", i, entry.Sequence, i+1)
		}
	}
}

func TestAddAssignsDenseSequence(t *testing.T) {
	r := catalog.NewRegistry()
	for i := 0; i < 3; i++ {
		idx, err := r.Add()
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		if idx != i {
			t.Fatalf("Add returned %d, want %d", idx, i)
		}
	}
	idx, err := r.AddEntry(catalog.Entry{Sequence: 99, HostPath: "a.jpg"})
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	got, _ := r.Get(idx)
	if got.Sequence != 4 || got.HostPath != "a.jpg" {
		t.Fatalf("unexpected entry: %+v", got)
	}
	assertDense(t, r)
}

func TestRemoveManyRenumbers(t *testing.T) {
	r := catalog.NewRegistry(
		catalog.Entry{HostPath: "a.jpg"},
		catalog.Entry{HostPath: "b.jpg"},
		catalog.Entry{HostPath: "c.jpg"},
		catalog.Entry{HostPath: "d.jpg"},
	)
	if err := r.RemoveMany([]int{2, 0, 2}); err != nil {
		t.Fatalf("RemoveMany: %v", err)
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].HostPath != "b.jpg" || snap[1].HostPath != "d.jpg" {
		t.Fatalf("unexpected entries after remove: %+v", snap)
	}
	assertDense(t, r)

	if err := r.Remove(5); !errors.Is(err, catalog.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("failed remove must not change list, len=%d", r.Len())
	}
}

func TestRemoveManyRejectsPartialBadInput(t *testing.T) {
	r := catalog.NewRegistry(catalog.Entry{}, catalog.Entry{})
	if err := r.RemoveMany([]int{0, -1}); !errors.Is(err, catalog.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("expected no removal, len=%d", r.Len())
	}
}

func TestReplaceRenumbersIgnoringStoredSequence(t *testing.T) {
	r := catalog.NewRegistry()
	if err := r.Replace([]catalog.Entry{{Sequence: 7}, {Sequence: 7}, {Sequence: 1}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	assertDense(t, r)
}

func TestSettersAndUpdateKeepSequence(t *testing.T) {
	r := catalog.NewRegistry(catalog.Entry{}, catalog.Entry{})
	if err := r.SetHostPath(1, "photo.jpg"); err != nil {
		t.Fatalf("SetHostPath: %v", err)
	}
	_ = r.SetPayloadPath(1, "notes.txt")
	_ = r.SetGeneratedPath(1, "notes_payload.jpg")
	_ = r.SetHasPayload(1, true)
	_ = r.SetUploaded(1, true)
	_ = r.SetDescription(1, "trip")
	_ = r.SetSelected(1, true)
	if err := r.Update(1, func(e *catalog.Entry) { e.Sequence = 42 }); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := r.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := catalog.Entry{
		Sequence:      2,
		Selected:      true,
		HostPath:      "photo.jpg",
		PayloadPath:   "notes.txt",
		GeneratedPath: "notes_payload.jpg",
		HasPayload:    true,
		Uploaded:      true,
		Description:   "trip",
	}
	if got != want {
		t.Fatalf("unexpected entry:\n got %+v\nwant %+v", got, want)
	}
	if err := r.SetDescription(9, "x"); !errors.Is(err, catalog.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestSelectAllAndSelected(t *testing.T) {
	r := catalog.NewRegistry(catalog.Entry{}, catalog.Entry{}, catalog.Entry{})
	r.SelectAll(true)
	if got := r.Selected(); len(got) != 3 {
		t.Fatalf("expected all selected, got %v", got)
	}
	r.SelectAll(false)
	_ = r.SetSelected(1, true)
	if got := r.Selected(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected [1], got %v", got)
	}
}

func TestFreezeBlocksStructuralEditsOnly(t *testing.T) {
	r := catalog.NewRegistry(catalog.Entry{}, catalog.Entry{})
	release, err := r.Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	if !r.Frozen() {
		t.Fatal("expected frozen")
	}
	if _, err := r.Freeze(); !errors.Is(err, catalog.ErrFrozen) {
		t.Fatalf("expected second freeze to fail, got %v", err)
	}
	if _, err := r.Add(); !errors.Is(err, catalog.ErrFrozen) {
		t.Fatalf("Add while frozen: %v", err)
	}
	if err := r.Remove(0); !errors.Is(err, catalog.ErrFrozen) {
		t.Fatalf("Remove while frozen: %v", err)
	}
	if err := r.Replace(nil); !errors.Is(err, catalog.ErrFrozen) {
		t.Fatalf("Replace while frozen: %v", err)
	}
	if err := r.SetUploaded(0, true); err != nil {
		t.Fatalf("field write while frozen should succeed: %v", err)
	}

	release()
	release()
	if r.Frozen() {
		t.Fatal("expected release to unfreeze")
	}
	if _, err := r.Add(); err != nil {
		t.Fatalf("Add after release: %v", err)
	}
}

func TestIndexOfSequence(t *testing.T) {
	r := catalog.NewRegistry(catalog.Entry{}, catalog.Entry{})
	idx, err := r.IndexOfSequence(2)
	if err != nil || idx != 1 {
		t.Fatalf("IndexOfSequence(2) = %d, %v", idx, err)
	}
	if _, err := r.IndexOfSequence(0); !errors.Is(err, catalog.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestConcurrentFieldWritesAndReads(t *testing.T) {
	r := catalog.NewRegistry(make([]catalog.Entry, 50)...)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			_ = r.SetUploaded(idx, true)
		}(i)
		go func() {
			defer wg.Done()
			_ = r.Snapshot()
		}()
	}
	wg.Wait()
	for _, entry := range r.Snapshot() {
		if !entry.Uploaded {
			t.Fatalf("entry %d not marked uploaded", entry.Sequence)
		}
	}
}

func TestEntryHelpers(t *testing.T) {
	e := catalog.Entry{HostPath: "h.jpg"}
	if e.ExtractionSource() != "h.jpg" {
		t.Fatalf("expected host fallback, got %q", e.ExtractionSource())
	}
	e.GeneratedPath = "g.jpg"
	if e.ExtractionSource() != "g.jpg" {
		t.Fatalf("expected generated path, got %q", e.ExtractionSource())
	}
	if e.Pending() {
		t.Fatal("entry without payload path should not be pending")
	}
	e.PayloadPath = "p.txt"
	if !e.Pending() {
		t.Fatal("expected pending")
	}
	e.HasPayload = true
	if e.Pending() {
		t.Fatal("entry with payload should not be pending")
	}
}
