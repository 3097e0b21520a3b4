package editor

import (
	"context"
	"fmt"

	"github.com/jackzampolin/pagesmith/internal/pdfdoc"
)

// DragStart begins dragging a card. Any selection is cleared because its
// indices will not survive the reorder.
func (s *Session) DragStart(cardID string) error {
	end, err := s.begin("")
	if err != nil {
		return err
	}
	defer end()

	s.mu.Lock()
	if s.doc == nil {
		s.mu.Unlock()
		return ErrNoDocument
	}
	if s.drag != nil {
		s.grid.Restore()
		s.drag = nil
	}
	index, ok := s.grid.IndexOf(cardID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}
	s.drag = &DragState{CardID: cardID, Index: index, StartedAt: s.now()}
	cleared := s.sel.Size() > 0
	s.sel.Clear()
	s.mu.Unlock()

	if cleared {
		s.notify(NoticeSuccess, "Selection cleared for reorder")
	}
	return nil
}

// DragOver moves the dragged card next to target in the visual order only.
// Without a drag in progress it does nothing.
func (s *Session) DragOver(targetID string) error {
	end, err := s.begin("")
	if err != nil {
		return err
	}
	defer end()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return nil
	}
	if _, ok := s.grid.IndexOf(targetID); !ok {
		s.grid.Restore()
		s.drag = nil
		return fmt.Errorf("%w: %s", ErrUnknownCard, targetID)
	}
	s.grid.MoveRelative(s.drag.CardID, targetID)
	return nil
}

// DragEnd abandons a drag without committing. The visual order returns to the
// document order.
func (s *Session) DragEnd() error {
	end, err := s.begin("")
	if err != nil {
		return err
	}
	defer end()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return nil
	}
	s.drag = nil
	s.grid.Restore()
	return nil
}

// Drop commits the visual order produced by the current drag.
func (s *Session) Drop(ctx context.Context) error {
	end, err := s.begin("Reordering pages...")
	if err != nil {
		return err
	}
	defer end()

	s.mu.Lock()
	dragging := s.drag != nil
	s.drag = nil
	s.mu.Unlock()
	if !dragging {
		return nil
	}
	return s.commitOrder(ctx)
}

// Reorder arranges the cards in the given order and commits it. order must
// list every current card id exactly once.
func (s *Session) Reorder(ctx context.Context, order []string) error {
	end, err := s.begin("Reordering pages...")
	if err != nil {
		return err
	}
	defer end()

	s.mu.Lock()
	if s.doc == nil {
		s.mu.Unlock()
		return ErrNoDocument
	}
	s.drag = nil
	s.grid.Restore()
	if err := s.grid.Arrange(order); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %w: %w", ErrReorder, ErrInvalidOrder, err)
	}
	s.mu.Unlock()

	return s.commitOrder(ctx)
}

// commitOrder rebuilds the document in the grid's visual order. On failure
// the old document stays authoritative and the grid is rebuilt from it.
func (s *Session) commitOrder(ctx context.Context) error {
	s.mu.RLock()
	old := s.doc
	perm := s.grid.Order()
	identity := s.grid.IsCanonical()
	s.mu.RUnlock()

	if old == nil || identity {
		return nil
	}

	if err := s.interrupted(ctx, ErrReorder, "Reorder failed"); err != nil {
		s.resync()
		return err
	}

	next := pdfdoc.New(s.codec)
	if _, err := next.AppendPages(old, perm); err != nil {
		s.resync()
		s.fail("Reorder failed", err)
		return fmt.Errorf("%w: %w", ErrReorder, err)
	}

	s.mu.Lock()
	s.doc = next
	s.sel.Clear()
	s.gate.Reset()
	s.grid.Relabel()
	s.mu.Unlock()

	s.logger.Info("pages reordered", "order", perm)
	s.notify(NoticeSuccess, "Page reordered")
	return nil
}
