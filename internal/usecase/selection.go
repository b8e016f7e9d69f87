package usecase

import "sort"

// SelectionSet holds positions within the current view, not lead ids.
// Not safe for concurrent use; SyncSession serializes access.
type SelectionSet struct {
	idx map[int]struct{}
}

func NewSelectionSet() *SelectionSet {
	return &SelectionSet{idx: map[int]struct{}{}}
}

func (s *SelectionSet) Toggle(i, viewLen int) error {
	if i < 0 || i >= viewLen {
		return ErrIndexOutOfView
	}
	if _, ok := s.idx[i]; ok {
		delete(s.idx, i)
		return nil
	}
	s.idx[i] = struct{}{}
	return nil
}

// SelectAll selects every row of the view, or clears the selection when it
// already has as many entries as the view has rows.
func (s *SelectionSet) SelectAll(viewLen int) {
	if len(s.idx) == viewLen {
		s.Clear()
		return
	}
	s.idx = make(map[int]struct{}, viewLen)
	for i := 0; i < viewLen; i++ {
		s.idx[i] = struct{}{}
	}
}

// Prune drops indices that no longer exist in a view of viewLen rows.
func (s *SelectionSet) Prune(viewLen int) {
	for i := range s.idx {
		if i >= viewLen {
			delete(s.idx, i)
		}
	}
}

func (s *SelectionSet) Clear() {
	s.idx = map[int]struct{}{}
}

func (s *SelectionSet) Has(i int) bool {
	_, ok := s.idx[i]
	return ok
}

func (s *SelectionSet) Len() int {
	return len(s.idx)
}

// Indices returns the selection in ascending order.
func (s *SelectionSet) Indices() []int {
	out := make([]int, 0, len(s.idx))
	for i := range s.idx {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
