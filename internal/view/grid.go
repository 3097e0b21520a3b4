// Package view keeps the visual ordering of page cards apart from the document.
//
// Each card has a stable identity that outlives relabeling, so thumbnail
// renders and client actions address a card by id rather than by position.
// A card's Index is its canonical page index: it only changes on Relabel or
// Rebuild, never while cards are being shuffled during a drag.
package view

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// ThumbState is the render state of a card's thumbnail.
type ThumbState string

const (
	ThumbPending ThumbState = "pending"
	ThumbReady   ThumbState = "ready"
	ThumbFailed  ThumbState = "failed"
)

// Card is one page tile in the grid.
type Card struct {
	ID    string     `json:"id"`
	Index int        `json:"index"`
	Label string     `json:"label"`
	Thumb ThumbState `json:"thumbnail"`

	png []byte
}

// Label returns the display label for canonical index i.
func Label(i int) string {
	return fmt.Sprintf("Page %d", i+1)
}

// Grid is the ordered list of cards. Not safe for concurrent use.
type Grid struct {
	cards []*Card
	byID  map[string]*Card
	newID func() string
}

// NewGrid returns an empty grid.
func NewGrid() *Grid {
	return &Grid{
		byID:  make(map[string]*Card),
		newID: func() string { return uuid.New().String() },
	}
}

// Rebuild discards every card and creates count fresh ones in canonical order.
// Fresh ids make any in-flight render for an old card stale.
func (g *Grid) Rebuild(count int) []Card {
	g.cards = make([]*Card, count)
	g.byID = make(map[string]*Card, count)
	out := make([]Card, count)
	for i := 0; i < count; i++ {
		c := &Card{ID: g.newID(), Index: i, Label: Label(i), Thumb: ThumbPending}
		g.cards[i] = c
		g.byID[c.ID] = c
		out[i] = *c
	}
	return out
}

// Len returns the number of cards.
func (g *Grid) Len() int {
	return len(g.cards)
}

// IndexOf returns the canonical page index of a card.
func (g *Grid) IndexOf(id string) (int, bool) {
	c, ok := g.byID[id]
	if !ok {
		return 0, false
	}
	return c.Index, true
}

// Position returns the visual position of a card.
func (g *Grid) Position(id string) (int, bool) {
	for i, c := range g.cards {
		if c.ID == id {
			return i, true
		}
	}
	return 0, false
}

// MoveRelative moves dragged next to target: after it when dragged currently
// sits before target, otherwise before it. Reports whether anything moved.
func (g *Grid) MoveRelative(dragged, target string) bool {
	if dragged == target {
		return false
	}
	from, ok := g.Position(dragged)
	if !ok {
		return false
	}
	to, ok := g.Position(target)
	if !ok {
		return false
	}

	card := g.cards[from]
	rest := append(g.cards[:from:from], g.cards[from+1:]...)

	// With dragged removed, inserting at the target's old position lands
	// after the target when dragged came from the left and before it otherwise.
	out := make([]*Card, 0, len(g.cards))
	out = append(out, rest[:to]...)
	out = append(out, card)
	out = append(out, rest[to:]...)
	g.cards = out
	return true
}

// Arrange sets the visual order to ids, which must be a permutation of the
// current card ids.
func (g *Grid) Arrange(ids []string) error {
	if len(ids) != len(g.cards) {
		return fmt.Errorf("order has %d cards, grid has %d", len(ids), len(g.cards))
	}
	seen := make(map[string]bool, len(ids))
	out := make([]*Card, len(ids))
	for i, id := range ids {
		c, ok := g.byID[id]
		if !ok {
			return fmt.Errorf("unknown card %q", id)
		}
		if seen[id] {
			return fmt.Errorf("card %q listed twice", id)
		}
		seen[id] = true
		out[i] = c
	}
	g.cards = out
	return nil
}

// Order reads the visual order back as a permutation of canonical indices.
func (g *Grid) Order() []int {
	out := make([]int, len(g.cards))
	for i, c := range g.cards {
		out[i] = c.Index
	}
	return out
}

// IsCanonical reports whether the visual order matches the canonical order.
func (g *Grid) IsCanonical() bool {
	for i, c := range g.cards {
		if c.Index != i {
			return false
		}
	}
	return true
}

// Relabel commits the visual order: each card takes its position as its
// canonical index and label. Thumbnails are kept.
func (g *Grid) Relabel() {
	for i, c := range g.cards {
		c.Index = i
		c.Label = Label(i)
	}
}

// Restore puts cards back in canonical order, undoing an uncommitted shuffle.
func (g *Grid) Restore() {
	sort.SliceStable(g.cards, func(i, j int) bool {
		return g.cards[i].Index < g.cards[j].Index
	})
}

// Cards returns a copy of the cards in visual order.
func (g *Grid) Cards() []Card {
	out := make([]Card, len(g.cards))
	for i, c := range g.cards {
		out[i] = *c
		out[i].png = nil
	}
	return out
}

// SetThumbnail stores a rendered thumbnail. It returns false when the card
// no longer exists, in which case the render is stale and is dropped.
func (g *Grid) SetThumbnail(id string, png []byte) bool {
	c, ok := g.byID[id]
	if !ok {
		return false
	}
	c.png = png
	c.Thumb = ThumbReady
	return true
}

// FailThumbnail marks a card's render as failed; the placeholder stays.
func (g *Grid) FailThumbnail(id string) bool {
	c, ok := g.byID[id]
	if !ok {
		return false
	}
	c.Thumb = ThumbFailed
	return true
}

// Thumbnail returns a card's rendered PNG, if any.
func (g *Grid) Thumbnail(id string) ([]byte, ThumbState, bool) {
	c, ok := g.byID[id]
	if !ok {
		return nil, "", false
	}
	return c.png, c.Thumb, true
}
