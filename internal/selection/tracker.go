// Package selection tracks which page indices are marked for batch operations.
//
// Indices are only meaningful until the next structural change to the
// document. Callers clear the tracker after every reorder, delete, extract
// rebuild or merge; the tracker never tries to remap indices.
package selection

import "sort"

// Tracker is a set of page indices. The zero value is ready to use.
// Not safe for concurrent use; the owning session serializes access.
type Tracker struct {
	set map[int]struct{}
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{set: make(map[int]struct{})}
}

// Toggle flips membership of index and reports whether it is now selected.
func (t *Tracker) Toggle(index int) bool {
	if t.set == nil {
		t.set = make(map[int]struct{})
	}
	if _, ok := t.set[index]; ok {
		delete(t.set, index)
		return false
	}
	t.set[index] = struct{}{}
	return true
}

// SelectAll selects 0..count-1.
func (t *Tracker) SelectAll(count int) {
	t.set = make(map[int]struct{}, count)
	for i := 0; i < count; i++ {
		t.set[i] = struct{}{}
	}
}

// Clear empties the selection.
func (t *Tracker) Clear() {
	t.set = make(map[int]struct{})
}

// Size returns the number of selected indices.
func (t *Tracker) Size() int {
	return len(t.set)
}

// Contains reports whether index is selected.
func (t *Tracker) Contains(index int) bool {
	_, ok := t.set[index]
	return ok
}

// SortedIndices returns the selection in ascending order.
func (t *Tracker) SortedIndices() []int {
	out := make([]int, 0, len(t.set))
	for idx := range t.set {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Complement returns the indices in [0, count) that are not selected, ascending.
func (t *Tracker) Complement(count int) []int {
	out := make([]int, 0, count)
	for i := 0; i < count; i++ {
		if _, ok := t.set[i]; !ok {
			out = append(out, i)
		}
	}
	return out
}

// Valid reports whether every selected index lies in [0, count).
func (t *Tracker) Valid(count int) bool {
	for idx := range t.set {
		if idx < 0 || idx >= count {
			return false
		}
	}
	return true
}
