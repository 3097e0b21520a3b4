package editor

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/jackzampolin/pagesmith/internal/pdfdoc/pdfdoctest"
)

// TestReorder_Permutations tests that committing an order applies it to the
// page content and relabels by position.
func TestReorder_Permutations(t *testing.T) {
	tests := []struct {
		name  string
		perm  []int
		pages []string
	}{
		{"reverse", []int{3, 2, 1, 0}, []string{"P3", "P2", "P1", "P0"}},
		{"rotate", []int{1, 2, 3, 0}, []string{"P1", "P2", "P3", "P0"}},
		{"swap middle", []int{0, 2, 1, 3}, []string{"P0", "P2", "P1", "P3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := loaded(t, "P0", "P1", "P2", "P3")
			ids := cardIDs(s)
			order := make([]string, len(tt.perm))
			for i, p := range tt.perm {
				order[i] = ids[p]
			}

			if err := s.Reorder(context.Background(), order); err != nil {
				t.Fatalf("Reorder() error = %v", err)
			}
			if got := pageLabels(t, s); !reflect.DeepEqual(got, tt.pages) {
				t.Errorf("pages = %v, want %v", got, tt.pages)
			}
			if got := cardIDs(s); !reflect.DeepEqual(got, order) {
				t.Errorf("cards = %v, want %v", got, order)
			}
			checkGrid(t, s)
		})
	}
}

func TestReorder_IdentityIsNoop(t *testing.T) {
	s, codec := loaded(t, "P0", "P1", "P2")
	if _, err := s.Toggle(1); err != nil {
		t.Fatal(err)
	}
	notices := len(s.State().Notices)
	calls := codec.CollectCalls()

	if err := s.Reorder(context.Background(), cardIDs(s)); err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}
	if codec.CollectCalls() != calls {
		t.Error("identity order rebuilt the document")
	}
	if len(s.State().Notices) != notices {
		t.Error("identity order emitted a notice")
	}
	if got := s.State().Selected; !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("selection = %v, want [1]", got)
	}

	// A drag dropped where it started is also a no-op.
	ids := cardIDs(s)
	if err := s.DragStart(ids[0]); err != nil {
		t.Fatal(err)
	}
	if err := s.Drop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if codec.CollectCalls() != calls {
		t.Error("drop in place rebuilt the document")
	}
}

func TestReorder_InvalidOrder(t *testing.T) {
	s, _ := loaded(t, "P0", "P1", "P2")
	ids := cardIDs(s)

	tests := []struct {
		name  string
		order []string
	}{
		{"too short", ids[:2]},
		{"duplicate", []string{ids[0], ids[0], ids[1]}},
		{"unknown", []string{ids[0], ids[1], "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Reorder(context.Background(), tt.order)
			if !errors.Is(err, ErrReorder) || !errors.Is(err, ErrInvalidOrder) {
				t.Errorf("Reorder() error = %v, want ErrReorder and ErrInvalidOrder", err)
			}
			if got := cardIDs(s); !reflect.DeepEqual(got, ids) {
				t.Errorf("cards = %v, want unchanged", got)
			}
		})
	}
}

// TestReorder_FailureResyncs tests that a failed commit keeps the old document
// and rebuilds the grid from it.
func TestReorder_FailureResyncs(t *testing.T) {
	s, codec := loaded(t, "P0", "P1", "P2")
	ids := cardIDs(s)

	if err := s.DragStart(ids[0]); err != nil {
		t.Fatal(err)
	}
	if err := s.DragOver(ids[2]); err != nil {
		t.Fatal(err)
	}
	codec.FailCollect(true)

	err := s.Drop(context.Background())
	if !errors.Is(err, ErrReorder) {
		t.Fatalf("Drop() error = %v, want ErrReorder", err)
	}
	if got := pageLabels(t, s); !reflect.DeepEqual(got, []string{"P0", "P1", "P2"}) {
		t.Errorf("pages = %v, want original order", got)
	}
	st := s.State()
	if st.Drag != nil {
		t.Error("drag state survived failure")
	}
	for _, c := range st.Cards {
		for _, old := range ids {
			if c.ID == old {
				t.Errorf("card %s survived resync", old)
			}
		}
	}
	checkGrid(t, s)
	if n := lastNotice(s); n.Level != NoticeError || n.Message != "Reorder failed" {
		t.Errorf("notice = %+v", n)
	}
}

func TestDrag_EndRestoresOrder(t *testing.T) {
	s, codec := loaded(t, "P0", "P1", "P2")
	ids := cardIDs(s)

	if err := s.DragStart(ids[0]); err != nil {
		t.Fatal(err)
	}
	if err := s.DragOver(ids[2]); err != nil {
		t.Fatal(err)
	}
	if got := cardIDs(s); !reflect.DeepEqual(got, []string{ids[1], ids[2], ids[0]}) {
		t.Fatalf("visual order during drag = %v", got)
	}
	// Canonical indices do not move until commit.
	if _, err := s.Toggle(0); err != nil {
		t.Fatal(err)
	}
	if got := s.State().Cards[2]; !got.Selected || got.Index != 0 {
		t.Errorf("dragged card = %+v, want index 0 selected", got)
	}
	if _, err := s.Toggle(0); err != nil {
		t.Fatal(err)
	}

	if err := s.DragEnd(); err != nil {
		t.Fatal(err)
	}
	if got := cardIDs(s); !reflect.DeepEqual(got, ids) {
		t.Errorf("order after drag end = %v, want %v", got, ids)
	}
	if codec.CollectCalls() != 0 {
		t.Error("drag end touched the document")
	}
	if s.State().Drag != nil {
		t.Error("drag state not cleared")
	}
}

func TestDrag_Edges(t *testing.T) {
	s, _ := loaded(t, "P0", "P1")
	ids := cardIDs(s)

	if err := s.DragOver(ids[0]); err != nil {
		t.Errorf("DragOver() without drag error = %v", err)
	}
	if err := s.Drop(context.Background()); err != nil {
		t.Errorf("Drop() without drag error = %v", err)
	}
	if err := s.DragStart("missing"); !errors.Is(err, ErrUnknownCard) {
		t.Errorf("DragStart(missing) error = %v", err)
	}

	if err := s.DragStart(ids[1]); err != nil {
		t.Fatal(err)
	}
	if err := s.DragOver(ids[1]); err != nil {
		t.Errorf("DragOver(self) error = %v", err)
	}
	if got := cardIDs(s); !reflect.DeepEqual(got, ids) {
		t.Errorf("self drag-over moved cards: %v", got)
	}
	if err := s.DragOver("missing"); !errors.Is(err, ErrUnknownCard) {
		t.Errorf("DragOver(missing) error = %v", err)
	}
	if s.State().Drag != nil {
		t.Error("drag state not cleared after error")
	}
}

func TestDrag_StartClearsSelection(t *testing.T) {
	s, _ := loaded(t, "P0", "P1", "P2")
	if _, err := s.Toggle(2); err != nil {
		t.Fatal(err)
	}

	if err := s.DragStart(cardIDs(s)[0]); err != nil {
		t.Fatal(err)
	}
	st := s.State()
	if len(st.Selected) != 0 {
		t.Errorf("selection = %v, want empty", st.Selected)
	}
	if n := lastNotice(s); n.Message != "Selection cleared for reorder" {
		t.Errorf("notice = %q", n.Message)
	}
	if st.Drag == nil || st.Drag.Index != 0 {
		t.Errorf("drag = %+v", st.Drag)
	}
}

func TestSelection_ToggleTwiceRestores(t *testing.T) {
	s, _ := loaded(t, "P0", "P1", "P2", "P3")
	for _, i := range []int{0, 3} {
		if _, err := s.Toggle(i); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 4; i++ {
		before := s.State().Selected
		if _, err := s.Toggle(i); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Toggle(i); err != nil {
			t.Fatal(err)
		}
		if got := s.State().Selected; !reflect.DeepEqual(got, before) {
			t.Errorf("toggle %d twice: %v -> %v", i, before, got)
		}
	}

	if _, err := s.Toggle(4); !errors.Is(err, ErrIndex) {
		t.Errorf("Toggle(4) error = %v, want ErrIndex", err)
	}
	if _, err := s.Toggle(-1); !errors.Is(err, ErrIndex) {
		t.Errorf("Toggle(-1) error = %v, want ErrIndex", err)
	}
	if _, err := s.ToggleCard("missing"); !errors.Is(err, ErrUnknownCard) {
		t.Errorf("ToggleCard(missing) error = %v", err)
	}
	on, err := s.ToggleCard(cardIDs(s)[1])
	if err != nil || !on {
		t.Errorf("ToggleCard() = %v, %v", on, err)
	}
}

func TestSelection_ToggleAll(t *testing.T) {
	s, _ := loaded(t, "P0", "P1", "P2")
	if _, err := s.Toggle(1); err != nil {
		t.Fatal(err)
	}

	n, err := s.ToggleAll()
	if err != nil || n != 3 {
		t.Fatalf("ToggleAll() = %d, %v, want 3", n, err)
	}
	n, err = s.ToggleAll()
	if err != nil || n != 0 {
		t.Fatalf("second ToggleAll() = %d, %v, want 0", n, err)
	}

	if _, err := s.Toggle(0); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearSelection(); err != nil {
		t.Fatal(err)
	}
	if got := s.State().Selected; len(got) != 0 {
		t.Errorf("selection = %v", got)
	}
}

// TestFilters_KeepOriginalOrder tests that batch delete and extract keep the
// surviving pages in their original relative order.
func TestFilters_KeepOriginalOrder(t *testing.T) {
	labels := []string{"P0", "P1", "P2", "P3", "P4"}
	tests := []struct {
		selected []int
		kept     []string
		picked   []string
	}{
		{[]int{4, 0}, []string{"P1", "P2", "P3"}, []string{"P0", "P4"}},
		{[]int{3, 1, 2}, []string{"P0", "P4"}, []string{"P1", "P2", "P3"}},
		{[]int{2}, []string{"P0", "P1", "P3", "P4"}, []string{"P2"}},
		{[]int{0, 1, 2, 3, 4}, nil, labels},
	}
	for _, tt := range tests {
		s, _ := loaded(t, labels...)
		for _, i := range tt.selected {
			if _, err := s.Toggle(i); err != nil {
				t.Fatal(err)
			}
		}

		f, err := s.Extract(context.Background())
		if err != nil {
			t.Fatalf("Extract(%v) error = %v", tt.selected, err)
		}
		if got, _ := pdfdoctest.Labels(f.Data); !reflect.DeepEqual(got, tt.picked) {
			t.Errorf("Extract(%v) = %v, want %v", tt.selected, got, tt.picked)
		}

		if err := s.DeleteSelected(context.Background()); err != nil {
			t.Fatalf("DeleteSelected(%v) error = %v", tt.selected, err)
		}
		if got := pageLabels(t, s); !reflect.DeepEqual(got, tt.kept) {
			t.Errorf("DeleteSelected(%v) = %v, want %v", tt.selected, got, tt.kept)
		}
	}
}

// TestStructuralOps_ClearSelection tests that every structural change empties
// the selection.
func TestStructuralOps_ClearSelection(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		op   func(s *Session) error
	}{
		{"reorder", func(s *Session) error {
			ids := cardIDs(s)
			return s.Reorder(ctx, []string{ids[2], ids[1], ids[0]})
		}},
		{"delete page", func(s *Session) error { return s.DeletePage(ctx, 2) }},
		{"delete selected", func(s *Session) error { return s.DeleteSelected(ctx) }},
		{"merge", func(s *Session) error {
			_, err := s.Merge(ctx, pdfdoctest.Build("M0"))
			return err
		}},
		{"load", func(s *Session) error { return s.Load(ctx, pdfdoctest.Build("L0", "L1")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := loaded(t, "P0", "P1", "P2")
			if _, err := s.Toggle(0); err != nil {
				t.Fatal(err)
			}
			if _, err := s.RequestDeletePage(cardIDs(s)[1]); err != nil {
				t.Fatal(err)
			}

			if err := tt.op(s); err != nil {
				t.Fatalf("op error = %v", err)
			}
			st := s.State()
			if len(st.Selected) != 0 {
				t.Errorf("selection = %v, want empty", st.Selected)
			}
			if st.Pending != nil {
				t.Errorf("pending intent survived: %+v", st.Pending)
			}
			checkGrid(t, s)
		})
	}
}

// TestSelection_IndicesStayInRange runs random operation sequences and checks
// the selection never holds an index outside the document.
func TestSelection_IndicesStayInRange(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 20; run++ {
		s, codec := loaded(t, "P0", "P1", "P2", "P3", "P4")

		for step := 0; step < 40; step++ {
			count := s.State().PageCount
			codec.FailCollect(rng.Intn(8) == 0)

			switch rng.Intn(8) {
			case 0, 1:
				_, _ = s.Toggle(rng.Intn(count + 2))
			case 2:
				if count > 0 {
					_ = s.DeletePage(ctx, rng.Intn(count))
				}
			case 3:
				_ = s.DeleteSelected(ctx)
			case 4:
				ids := cardIDs(s)
				rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
				_ = s.Reorder(ctx, ids)
			case 5:
				_, _ = s.Merge(ctx, pdfdoctest.Build("M0", "M1"))
			case 6:
				_, _ = s.ToggleAll()
			case 7:
				ids := cardIDs(s)
				if len(ids) > 1 {
					_ = s.DragStart(ids[rng.Intn(len(ids))])
					_ = s.DragOver(ids[rng.Intn(len(ids))])
					if rng.Intn(2) == 0 {
						_ = s.Drop(ctx)
					} else {
						_ = s.DragEnd()
					}
				}
			}

			s.mu.RLock()
			pages := s.doc.PageCount()
			valid := s.sel.Valid(pages)
			cards := s.grid.Len()
			s.mu.RUnlock()
			if !valid {
				t.Fatalf("run %d step %d: selection %v outside %d pages", run, step, s.State().Selected, pages)
			}
			if cards != pages {
				t.Fatalf("run %d step %d: %d cards for %d pages", run, step, cards, pages)
			}
		}
	}
}
