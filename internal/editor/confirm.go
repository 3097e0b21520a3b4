package editor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IntentKind names what a pending confirmation will do.
type IntentKind string

const (
	IntentDeletePage     IntentKind = "delete_page"
	IntentDeleteSelected IntentKind = "delete_selected"
)

// Intent is a destructive action waiting for the user to confirm it.
type Intent struct {
	ID          string     `json:"id"`
	Kind        IntentKind `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CardID      string     `json:"card_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Gate holds at most one pending Intent. A new request replaces the pending
// one. Confirm runs the action once and returns to idle; Cancel returns to
// idle without running it.
type Gate struct {
	mu      sync.Mutex
	pending *Intent
	action  func(context.Context) error
	now     func() time.Time
}

// NewGate returns an idle gate.
func NewGate(now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{now: now}
}

// Request stores action behind a new intent and returns it. It also reports
// whether an earlier unconfirmed intent was replaced.
func (g *Gate) Request(kind IntentKind, title, description, cardID string, action func(context.Context) error) (Intent, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	replaced := g.pending != nil
	g.pending = &Intent{
		ID:          uuid.New().String(),
		Kind:        kind,
		Title:       title,
		Description: description,
		CardID:      cardID,
		CreatedAt:   g.now(),
	}
	g.action = action
	return *g.pending, replaced
}

// Pending returns a copy of the pending intent, or nil when idle.
func (g *Gate) Pending() *Intent {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return nil
	}
	p := *g.pending
	return &p
}

// take clears the gate and hands back the action if id matches.
func (g *Gate) take(id string) (func(context.Context) error, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil {
		return nil, ErrNoPendingIntent
	}
	if id != "" && id != g.pending.ID {
		return nil, ErrStaleIntent
	}
	action := g.action
	g.pending = nil
	g.action = nil
	return action, nil
}

// Confirm runs and clears the pending action. An empty id confirms whatever
// is pending.
func (g *Gate) Confirm(ctx context.Context, id string) error {
	action, err := g.take(id)
	if err != nil {
		return err
	}
	if action == nil {
		return nil
	}
	return action(ctx)
}

// Cancel clears the pending action without running it.
func (g *Gate) Cancel(id string) error {
	_, err := g.take(id)
	return err
}

// Reset drops any pending intent.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = nil
	g.action = nil
}
