// Package reorder implements list reordering for drag-and-drop style UIs.
// The core is Move, a pure index-splice: the item at one index is removed and
// reinserted at another, preserving the relative order of everything else.
// Session tracks an in-progress drag gesture the way the frontends do, with a
// dragged index and a drag-over index; nothing here persists the result — the
// owning caller saves the emitted order.
package reorder

// Move returns a copy of items with the element at index from moved to index
// to. Out-of-range indices or from == to return an unchanged copy.
func Move[T any](items []T, from, to int) []T {
	out := make([]T, len(items))
	copy(out, items)

	if from == to || from < 0 || to < 0 || from >= len(out) || to >= len(out) {
		return out
	}

	item := out[from]
	out = append(out[:from], out[from+1:]...)

	// Reinsert at the drop index.
	out = append(out, item)
	copy(out[to+1:], out[to:])
	out[to] = item
	return out
}

// Session tracks a single drag gesture over a list.
type Session struct {
	draggedIndex  int
	dragOverIndex int
}

// NewSession returns a session with no active drag.
func NewSession() *Session {
	return &Session{draggedIndex: -1, dragOverIndex: -1}
}

// DragStart records the index being dragged.
func (s *Session) DragStart(index int) {
	s.draggedIndex = index
	s.dragOverIndex = -1
}

// DragOver records the index currently hovered. Hovering the dragged item
// itself is ignored.
func (s *Session) DragOver(index int) {
	if s.draggedIndex != -1 && s.draggedIndex != index {
		s.dragOverIndex = index
	}
}

// Drop applies the pending move to items and clears the session. Dropping
// with no valid target (or onto the dragged item itself) is a no-op.
func Drop[T any](s *Session, items []T) []T {
	defer s.Reset()
	if s.draggedIndex == -1 || s.dragOverIndex == -1 || s.draggedIndex == s.dragOverIndex {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}
	return Move(items, s.draggedIndex, s.dragOverIndex)
}

// Reset clears drag state without reordering. Used when the drop lands
// outside any item.
func (s *Session) Reset() {
	s.draggedIndex = -1
	s.dragOverIndex = -1
}

// Active reports whether a drag is in progress.
func (s *Session) Active() bool {
	return s.draggedIndex != -1
}
