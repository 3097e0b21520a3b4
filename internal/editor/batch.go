package editor

import (
	"context"
	"fmt"

	"github.com/jackzampolin/pagesmith/internal/pdfdoc"
)

// DeletePage removes the page at index.
func (s *Session) DeletePage(ctx context.Context, index int) error {
	end, err := s.begin("Deleting page...")
	if err != nil {
		return err
	}
	defer end()
	return s.deletePage(ctx, index)
}

// DeleteSelected removes every selected page, keeping the rest in order.
func (s *Session) DeleteSelected(ctx context.Context) error {
	end, err := s.begin("Removing pages...")
	if err != nil {
		return err
	}
	defer end()
	return s.deleteSelected(ctx)
}

func (s *Session) deletePage(ctx context.Context, index int) error {
	if err := s.interrupted(ctx, ErrDelete, "Error deleting page"); err != nil {
		return err
	}
	doc, err := s.requireDoc()
	if err != nil {
		return err
	}

	next := doc.Clone()
	if err := next.RemovePage(index); err != nil {
		s.fail("Error deleting page", err)
		return fmt.Errorf("%w: %w", ErrDelete, err)
	}

	s.install(next)
	s.logger.Info("page deleted", "index", index, "pages", next.PageCount())
	s.notify(NoticeSuccess, "Page deleted")
	return nil
}

// deleteCard deletes the page a card shows, resolving its index now rather
// than when the delete was requested.
func (s *Session) deleteCard(ctx context.Context, cardID string) error {
	s.mu.RLock()
	index, ok := s.grid.IndexOf(cardID)
	s.mu.RUnlock()
	if !ok {
		s.fail("Error deleting page", fmt.Errorf("%w: %s", ErrUnknownCard, cardID))
		return fmt.Errorf("%w: %w: %s", ErrDelete, ErrUnknownCard, cardID)
	}
	return s.deletePage(ctx, index)
}

func (s *Session) deleteSelected(ctx context.Context) error {
	if err := s.interrupted(ctx, ErrDelete, "Batch delete failed"); err != nil {
		return err
	}

	s.mu.RLock()
	doc := s.doc
	var keep []int
	var removed int
	valid := true
	if doc != nil {
		keep = s.sel.Complement(doc.PageCount())
		removed = doc.PageCount() - len(keep)
		valid = s.sel.Valid(doc.PageCount())
	}
	s.mu.RUnlock()
	if doc == nil {
		return ErrNoDocument
	}
	if !valid {
		err := fmt.Errorf("%w: selection outside %d pages", ErrIndex, doc.PageCount())
		s.fail("Batch delete failed", err)
		return fmt.Errorf("%w: %w", ErrDelete, err)
	}
	if removed == 0 {
		return ErrEmptySelection
	}

	next := pdfdoc.New(s.codec)
	if _, err := next.AppendPages(doc, keep); err != nil {
		s.fail("Batch delete failed", err)
		return fmt.Errorf("%w: %w", ErrDelete, err)
	}

	s.install(next)
	s.logger.Info("pages removed", "removed", removed, "pages", next.PageCount())
	s.notify(NoticeSuccess, "Pages removed")
	return nil
}

// RequestDeletePage asks for confirmation before deleting the page a card
// shows. Any earlier pending confirmation is replaced.
func (s *Session) RequestDeletePage(cardID string) (Intent, error) {
	end, err := s.begin("")
	if err != nil {
		return Intent{}, err
	}
	defer end()

	s.mu.RLock()
	hasDoc := s.doc != nil
	_, ok := s.grid.IndexOf(cardID)
	s.mu.RUnlock()
	if !hasDoc {
		return Intent{}, ErrNoDocument
	}
	if !ok {
		return Intent{}, fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}

	intent, replaced := s.gate.Request(IntentDeletePage, "Delete Page?", "This cannot be undone.", cardID,
		func(ctx context.Context) error { return s.deleteCard(ctx, cardID) })
	s.logger.Debug("delete requested", "intent_id", intent.ID, "card_id", cardID, "replaced", replaced)
	return intent, nil
}

// RequestDeleteSelected asks for confirmation before deleting the selection.
func (s *Session) RequestDeleteSelected() (Intent, error) {
	end, err := s.begin("")
	if err != nil {
		return Intent{}, err
	}
	defer end()

	s.mu.RLock()
	hasDoc := s.doc != nil
	n := s.sel.Size()
	s.mu.RUnlock()
	if !hasDoc {
		return Intent{}, ErrNoDocument
	}
	if n == 0 {
		return Intent{}, ErrEmptySelection
	}

	intent, replaced := s.gate.Request(IntentDeleteSelected,
		fmt.Sprintf("Delete %d Page(s)?", n),
		"These pages will be removed from your document.",
		"", s.deleteSelected)
	s.logger.Debug("batch delete requested", "intent_id", intent.ID, "pages", n, "replaced", replaced)
	return intent, nil
}

// Confirm runs the pending intent with the given id.
func (s *Session) Confirm(ctx context.Context, intentID string) error {
	pending := s.gate.Pending()
	if pending == nil {
		return ErrNoPendingIntent
	}

	label := "Deleting page..."
	if pending.Kind == IntentDeleteSelected {
		label = "Removing pages..."
	}
	end, err := s.begin(label)
	if err != nil {
		return err
	}
	defer end()

	return s.gate.Confirm(ctx, intentID)
}

// Cancel discards the pending intent with the given id.
func (s *Session) Cancel(intentID string) error {
	end, err := s.begin("")
	if err != nil {
		return err
	}
	defer end()
	return s.gate.Cancel(intentID)
}
