package editor

import "fmt"

// Toggle flips selection of the page at index and reports whether it is now
// selected.
func (s *Session) Toggle(index int) (bool, error) {
	return s.toggle(func() (int, error) { return index, nil })
}

// ToggleCard flips selection of the page shown by a card.
func (s *Session) ToggleCard(cardID string) (bool, error) {
	return s.toggle(func() (int, error) {
		index, ok := s.grid.IndexOf(cardID)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
		}
		return index, nil
	})
}

// toggle resolves the index under the session lock so a card id cannot be
// mapped against a stale page order.
func (s *Session) toggle(resolve func() (int, error)) (bool, error) {
	end, err := s.begin("")
	if err != nil {
		return false, err
	}
	defer end()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return false, ErrNoDocument
	}
	index, err := resolve()
	if err != nil {
		return false, err
	}
	if index < 0 || index >= s.doc.PageCount() {
		return false, fmt.Errorf("%w: %d (document has %d pages)", ErrIndex, index, s.doc.PageCount())
	}
	return s.sel.Toggle(index), nil
}

// ToggleAll selects every page, or clears the selection when every page is
// already selected. It returns the new selection size.
func (s *Session) ToggleAll() (int, error) {
	end, err := s.begin("")
	if err != nil {
		return 0, err
	}
	defer end()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return 0, ErrNoDocument
	}
	count := s.doc.PageCount()
	if count > 0 && s.sel.Size() == count {
		s.sel.Clear()
	} else {
		s.sel.SelectAll(count)
	}
	return s.sel.Size(), nil
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() error {
	end, err := s.begin("")
	if err != nil {
		return err
	}
	defer end()

	s.mu.Lock()
	s.sel.Clear()
	s.mu.Unlock()
	return nil
}
