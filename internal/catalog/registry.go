package catalog

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrIndexOutOfRange is returned when a position does not address an entry.
	ErrIndexOutOfRange = errors.New("entry index out of range")
	// ErrFrozen is returned for structural edits while an upload holds the registry.
	ErrFrozen = errors.New("entry list is frozen during upload")
)

// Registry is the ordered, concurrency-safe entry list.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
	frozen  bool
}

// NewRegistry returns a registry seeded with entries, renumbered 1..N.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{entries: slices.Clone(entries)}
	r.renumberLocked()
	return r
}

// Add appends an empty entry and returns its index.
func (r *Registry) Add() (int, error) {
	return r.AddEntry(Entry{})
}

// AddEntry appends entry and returns its index. Sequence is assigned.
func (r *Registry) AddEntry(entry Entry) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return -1, ErrFrozen
	}
	entry.Sequence = len(r.entries) + 1
	r.entries = append(r.entries, entry)
	return len(r.entries) - 1, nil
}

// Remove deletes the entry at index.
func (r *Registry) Remove(index int) error {
	return r.RemoveMany([]int{index})
}

// RemoveMany deletes every listed index in one step. Duplicates are ignored;
// any out-of-range index fails the whole call without changes.
func (r *Registry) RemoveMany(indices []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	drop := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if err := r.checkIndexLocked(idx); err != nil {
			return err
		}
		drop[idx] = struct{}{}
	}
	kept := r.entries[:0]
	for i, entry := range r.entries {
		if _, ok := drop[i]; ok {
			continue
		}
		kept = append(kept, entry)
	}
	clear(r.entries[len(kept):])
	r.entries = kept
	r.renumberLocked()
	return nil
}

// RenumberAll assigns Sequence = position + 1 to every entry.
func (r *Registry) RenumberAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renumberLocked()
}

// Replace swaps the whole list, as when loading from disk.
func (r *Registry) Replace(entries []Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	r.entries = slices.Clone(entries)
	r.renumberLocked()
	return nil
}

// Get returns a copy of the entry at index.
func (r *Registry) Get(index int) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.checkIndexLocked(index); err != nil {
		return Entry{}, err
	}
	return r.entries[index], nil
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Snapshot returns a copy of every entry in order.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.entries)
}

// Selected returns the indices of entries whose Selected flag is set.
func (r *Registry) Selected() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []int
	for i, entry := range r.entries {
		if entry.Selected {
			out = append(out, i)
		}
	}
	return out
}

// SelectAll sets or clears the Selected flag on every entry.
func (r *Registry) SelectAll(selected bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		r.entries[i].Selected = selected
	}
}

// Update applies fn to the entry at index under the write lock. Sequence
// changes made by fn are discarded.
func (r *Registry) Update(index int, fn func(*Entry)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkIndexLocked(index); err != nil {
		return err
	}
	seq := r.entries[index].Sequence
	fn(&r.entries[index])
	r.entries[index].Sequence = seq
	return nil
}

func (r *Registry) SetSelected(index int, selected bool) error {
	return r.Update(index, func(e *Entry) { e.Selected = selected })
}

func (r *Registry) SetHostPath(index int, path string) error {
	return r.Update(index, func(e *Entry) { e.HostPath = path })
}

func (r *Registry) SetPayloadPath(index int, path string) error {
	return r.Update(index, func(e *Entry) { e.PayloadPath = path })
}

func (r *Registry) SetGeneratedPath(index int, path string) error {
	return r.Update(index, func(e *Entry) { e.GeneratedPath = path })
}

func (r *Registry) SetHasPayload(index int, has bool) error {
	return r.Update(index, func(e *Entry) { e.HasPayload = has })
}

func (r *Registry) SetUploaded(index int, uploaded bool) error {
	return r.Update(index, func(e *Entry) { e.Uploaded = uploaded })
}

func (r *Registry) SetDescription(index int, description string) error {
	return r.Update(index, func(e *Entry) { e.Description = description })
}

// Freeze blocks structural mutation until the returned release func runs.
// Only one holder at a time; a second Freeze fails with ErrFrozen. Release is
// idempotent.
func (r *Registry) Freeze() (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return nil, ErrFrozen
	}
	r.frozen = true
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			r.frozen = false
			r.mu.Unlock()
		})
	}, nil
}

// Frozen reports whether any freeze is held.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// IndexOfSequence maps a 1-based display number to a position.
func (r *Registry) IndexOfSequence(sequence int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := sequence - 1
	if err := r.checkIndexLocked(idx); err != nil {
		return -1, fmt.Errorf("entry #%d: %w", sequence, ErrIndexOutOfRange)
	}
	return idx, nil
}

func (r *Registry) checkIndexLocked(index int) error {
	if index < 0 || index >= len(r.entries) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(r.entries))
	}
	return nil
}

func (r *Registry) renumberLocked() {
	for i := range r.entries {
		r.entries[i].Sequence = i + 1
	}
}
