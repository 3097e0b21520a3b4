package editor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackzampolin/pagesmith/internal/pdfdoc/pdfdoctest"
	"github.com/jackzampolin/pagesmith/internal/render"
	"github.com/jackzampolin/pagesmith/internal/view"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	if cfg.Codec == nil {
		cfg.Codec = pdfdoctest.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return testNow }
	}
	if cfg.ID == "" {
		cfg.ID = "test"
	}
	return NewSession(cfg)
}

// loaded returns a session holding a fake document with the given page labels.
func loaded(t *testing.T, labels ...string) (*Session, *pdfdoctest.Codec) {
	t.Helper()
	codec := pdfdoctest.New()
	s := newSession(t, Config{Codec: codec})
	if err := s.Load(context.Background(), pdfdoctest.Build(labels...)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return s, codec
}

func pageLabels(t *testing.T, s *Session) []string {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil
	}
	got, err := pdfdoctest.DocumentLabels(s.doc)
	if err != nil {
		t.Fatalf("DocumentLabels() error = %v", err)
	}
	return got
}

func cardIDs(s *Session) []string {
	cards := s.Cards()
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

func lastNotice(s *Session) Notice {
	st := s.State()
	if len(st.Notices) == 0 {
		return Notice{}
	}
	return st.Notices[len(st.Notices)-1]
}

// checkGrid asserts cards are in canonical order with matching labels.
func checkGrid(t *testing.T, s *Session) {
	t.Helper()
	st := s.State()
	if len(st.Cards) != st.PageCount {
		t.Fatalf("cards = %d, pages = %d", len(st.Cards), st.PageCount)
	}
	for i, c := range st.Cards {
		if c.Index != i || c.Label != view.Label(i) {
			t.Errorf("card %d = {Index:%d Label:%q}, want {%d %q}", i, c.Index, c.Label, i, view.Label(i))
		}
	}
}

func TestSession_LoadResetsState(t *testing.T) {
	s, _ := loaded(t, "P0", "P1", "P2")

	st := s.State()
	if !st.HasDocument || st.PageCount != 3 || st.Empty() {
		t.Fatalf("state = %+v", st)
	}
	if st.Busy != "" {
		t.Errorf("busy = %q after load", st.Busy)
	}
	if n := lastNotice(s); n.Level != NoticeSuccess || n.Message != "PDF loaded successfully" {
		t.Errorf("notice = %+v", n)
	}
	checkGrid(t, s)

	if _, err := s.Toggle(1); err != nil {
		t.Fatal(err)
	}
	if err := s.Load(context.Background(), pdfdoctest.Build("Q0", "Q1")); err != nil {
		t.Fatal(err)
	}
	if got := s.State().Selected; len(got) != 0 {
		t.Errorf("selection after reload = %v", got)
	}
	if got := pageLabels(t, s); !reflect.DeepEqual(got, []string{"Q0", "Q1"}) {
		t.Errorf("pages = %v", got)
	}
}

// TestScenarioA_BatchDelete tests deleting pages 0 and 2 of three.
func TestScenarioA_BatchDelete(t *testing.T) {
	s, _ := loaded(t, "P0", "P1", "P2")
	for _, i := range []int{0, 2} {
		if _, err := s.Toggle(i); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.DeleteSelected(context.Background()); err != nil {
		t.Fatalf("DeleteSelected() error = %v", err)
	}
	if got := pageLabels(t, s); !reflect.DeepEqual(got, []string{"P1"}) {
		t.Errorf("pages = %v, want [P1]", got)
	}
	if n := lastNotice(s); n.Message != "Pages removed" {
		t.Errorf("notice = %q", n.Message)
	}
	if got := s.State().Selected; len(got) != 0 {
		t.Errorf("selection = %v, want empty", got)
	}
	checkGrid(t, s)
}

// TestScenarioB_DragReorder tests dragging the second page before the first.
func TestScenarioB_DragReorder(t *testing.T) {
	s, _ := loaded(t, "P0", "P1")
	ids := cardIDs(s)

	if err := s.DragStart(ids[1]); err != nil {
		t.Fatal(err)
	}
	if err := s.DragOver(ids[0]); err != nil {
		t.Fatal(err)
	}
	if err := s.Drop(context.Background()); err != nil {
		t.Fatalf("Drop() error = %v", err)
	}
	// Drop already cleared the drag, so a trailing drag end is a no-op.
	if err := s.DragEnd(); err != nil {
		t.Fatal(err)
	}

	if got := pageLabels(t, s); !reflect.DeepEqual(got, []string{"P1", "P0"}) {
		t.Errorf("pages = %v, want [P1 P0]", got)
	}
	cards := s.Cards()
	if cards[0].ID != ids[1] || cards[0].Label != "Page 1" {
		t.Errorf("card 0 = %+v, want %s labelled Page 1", cards[0], ids[1])
	}
	if cards[1].ID != ids[0] || cards[1].Label != "Page 2" {
		t.Errorf("card 1 = %+v, want %s labelled Page 2", cards[1], ids[0])
	}
	if n := lastNotice(s); n.Message != "Page reordered" {
		t.Errorf("notice = %q", n.Message)
	}
	if s.State().Drag != nil {
		t.Error("drag state not cleared")
	}
	checkGrid(t, s)
}

// TestScenarioC_Merge tests appending a three-page document to a two-page one.
func TestScenarioC_Merge(t *testing.T) {
	s, _ := loaded(t, "A0", "A1")

	added, err := s.Merge(context.Background(), pdfdoctest.Build("B0", "B1", "B2"))
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if added != 3 {
		t.Errorf("added = %d, want 3", added)
	}
	want := []string{"A0", "A1", "B0", "B1", "B2"}
	if got := pageLabels(t, s); !reflect.DeepEqual(got, want) {
		t.Errorf("pages = %v, want %v", got, want)
	}
	if n := lastNotice(s); n.Message != "Added 3 pages" {
		t.Errorf("notice = %q", n.Message)
	}
	checkGrid(t, s)
}

// TestScenarioD_Extract tests extracting pages 1 and 3 of four.
func TestScenarioD_Extract(t *testing.T) {
	s, _ := loaded(t, "P0", "P1", "P2", "P3")
	for _, i := range []int{3, 1} {
		if _, err := s.Toggle(i); err != nil {
			t.Fatal(err)
		}
	}

	f, err := s.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	got, err := pdfdoctest.Labels(f.Data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"P1", "P3"}) {
		t.Errorf("extracted = %v, want [P1 P3]", got)
	}
	if f.Pages != 2 {
		t.Errorf("pages = %d", f.Pages)
	}
	if want := "extracted_pages_1772366400000.pdf"; f.Name != want {
		t.Errorf("name = %q, want %q", f.Name, want)
	}

	if got := pageLabels(t, s); !reflect.DeepEqual(got, []string{"P0", "P1", "P2", "P3"}) {
		t.Errorf("working document changed: %v", got)
	}
	if got := s.State().Selected; !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("selection = %v, want [1 3]", got)
	}
	if n := lastNotice(s); n.Message != "Pages extracted & downloaded" {
		t.Errorf("notice = %q", n.Message)
	}
}

// TestScenarioE_LoadCorrupt tests that a bad load leaves the prior document.
func TestScenarioE_LoadCorrupt(t *testing.T) {
	t.Run("with prior document", func(t *testing.T) {
		s, _ := loaded(t, "P0", "P1")
		before := cardIDs(s)

		err := s.Load(context.Background(), []byte("garbage"))
		if !errors.Is(err, ErrLoad) {
			t.Fatalf("Load() error = %v, want ErrLoad", err)
		}
		if got := pageLabels(t, s); !reflect.DeepEqual(got, []string{"P0", "P1"}) {
			t.Errorf("pages = %v", got)
		}
		if got := cardIDs(s); !reflect.DeepEqual(got, before) {
			t.Errorf("cards changed: %v -> %v", before, got)
		}
		n := lastNotice(s)
		if n.Level != NoticeError || n.Message != "Error loading PDF. Is it encrypted?" {
			t.Errorf("notice = %+v", n)
		}
	})

	t.Run("without prior document", func(t *testing.T) {
		s := newSession(t, Config{})
		if err := s.Load(context.Background(), nil); !errors.Is(err, ErrLoad) {
			t.Fatalf("Load() error = %v, want ErrLoad", err)
		}
		if st := s.State(); st.HasDocument || !st.Empty() {
			t.Errorf("state = %+v", st)
		}
	})
}

func TestSession_DownloadAndEmptyDocument(t *testing.T) {
	s, _ := loaded(t, "P0")

	f, err := s.Download(context.Background())
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if !strings.HasPrefix(f.Name, "full_document_") || !strings.HasSuffix(f.Name, ".pdf") {
		t.Errorf("name = %q", f.Name)
	}
	if n := lastNotice(s); n.Message != "Download started!" {
		t.Errorf("notice = %q", n.Message)
	}

	if err := s.DeletePage(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	st := s.State()
	if !st.HasDocument || !st.Empty() || len(st.Cards) != 0 {
		t.Errorf("state after deleting last page = %+v", st)
	}
	if _, err := s.Download(context.Background()); !errors.Is(err, ErrSave) {
		t.Errorf("Download() on empty document error = %v, want ErrSave", err)
	}
	if n := lastNotice(s); n.Message != "Error saving PDF" {
		t.Errorf("notice = %q", n.Message)
	}

	// An empty document can still take merged pages.
	if _, err := s.Merge(context.Background(), pdfdoctest.Build("M0")); err != nil {
		t.Fatalf("Merge() into empty document error = %v", err)
	}
	if got := pageLabels(t, s); !reflect.DeepEqual(got, []string{"M0"}) {
		t.Errorf("pages = %v", got)
	}
}

func TestSession_NoDocument(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, Config{})

	tests := []struct {
		name string
		fn   func() error
	}{
		{"merge", func() error { _, err := s.Merge(ctx, pdfdoctest.Build("x")); return err }},
		{"download", func() error { _, err := s.Download(ctx); return err }},
		{"extract", func() error { _, err := s.Extract(ctx); return err }},
		{"delete page", func() error { return s.DeletePage(ctx, 0) }},
		{"delete selected", func() error { return s.DeleteSelected(ctx) }},
		{"toggle", func() error { _, err := s.Toggle(0); return err }},
		{"toggle all", func() error { _, err := s.ToggleAll(); return err }},
		{"reorder", func() error { return s.Reorder(ctx, nil) }},
		{"request delete", func() error { _, err := s.RequestDeleteSelected(); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrNoDocument) {
				t.Errorf("error = %v, want ErrNoDocument", err)
			}
		})
	}
}

func TestSession_EmptySelection(t *testing.T) {
	s, _ := loaded(t, "P0", "P1")

	if _, err := s.Extract(context.Background()); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("Extract() error = %v, want ErrEmptySelection", err)
	}
	if _, err := s.RequestDeleteSelected(); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("RequestDeleteSelected() error = %v, want ErrEmptySelection", err)
	}
	if err := s.DeleteSelected(context.Background()); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("DeleteSelected() error = %v, want ErrEmptySelection", err)
	}
}

func TestSession_DeletePageFailureKeepsDocument(t *testing.T) {
	s, codec := loaded(t, "P0", "P1", "P2")
	codec.FailRemove(true)

	err := s.DeletePage(context.Background(), 1)
	if !errors.Is(err, ErrDelete) || !errors.Is(err, pdfdoctest.ErrInjected) {
		t.Fatalf("DeletePage() error = %v", err)
	}
	if got := pageLabels(t, s); len(got) != 3 {
		t.Errorf("pages = %v", got)
	}
	if n := lastNotice(s); n.Level != NoticeError || n.Message != "Error deleting page" {
		t.Errorf("notice = %+v", n)
	}

	if err := s.DeletePage(context.Background(), 7); !errors.Is(err, ErrIndex) {
		t.Errorf("DeletePage(7) error = %v, want ErrIndex", err)
	}
}

func TestSession_MergeFailure(t *testing.T) {
	s, codec := loaded(t, "A0")

	if _, err := s.Merge(context.Background(), []byte("nope")); !errors.Is(err, ErrMerge) {
		t.Errorf("Merge(corrupt) error = %v, want ErrMerge", err)
	}
	codec.FailConcat(true)
	if _, err := s.Merge(context.Background(), pdfdoctest.Build("B0")); !errors.Is(err, ErrMerge) {
		t.Errorf("Merge() error = %v, want ErrMerge", err)
	}
	if got := pageLabels(t, s); !reflect.DeepEqual(got, []string{"A0"}) {
		t.Errorf("pages = %v", got)
	}
	if n := lastNotice(s); n.Message != "Error merging PDF." {
		t.Errorf("notice = %q", n.Message)
	}
}

func TestSession_CancelledContextFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name     string
		op       func(s *Session) error
		category error
		notice   string
	}{
		{"load", func(s *Session) error { return s.Load(ctx, pdfdoctest.Build("X")) }, ErrLoad, "Error loading PDF"},
		{"merge", func(s *Session) error { _, err := s.Merge(ctx, pdfdoctest.Build("X")); return err }, ErrMerge, "Error merging PDF."},
		{"download", func(s *Session) error { _, err := s.Download(ctx); return err }, ErrSave, "Error saving PDF"},
		{"extract", func(s *Session) error { _, err := s.Extract(ctx); return err }, ErrExtract, "Extraction failed"},
		{"delete page", func(s *Session) error { return s.DeletePage(ctx, 0) }, ErrDelete, "Error deleting page"},
		{"delete selected", func(s *Session) error { return s.DeleteSelected(ctx) }, ErrDelete, "Batch delete failed"},
		{"reorder", func(s *Session) error {
			ids := cardIDs(s)
			return s.Reorder(ctx, []string{ids[2], ids[1], ids[0]})
		}, ErrReorder, "Reorder failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := loaded(t, "P0", "P1", "P2")
			if _, err := s.Toggle(1); err != nil {
				t.Fatal(err)
			}
			before := len(s.State().Notices)

			err := tt.op(s)
			if !errors.Is(err, tt.category) || !errors.Is(err, context.Canceled) {
				t.Fatalf("error = %v, want %v wrapping context.Canceled", err, tt.category)
			}

			st := s.State()
			if len(st.Notices) != before+1 {
				t.Fatalf("notices = %d, want %d", len(st.Notices), before+1)
			}
			if n := lastNotice(s); n.Level != NoticeError || n.Message != tt.notice {
				t.Errorf("notice = %+v, want error %q", n, tt.notice)
			}
			if got := pageLabels(t, s); !reflect.DeepEqual(got, []string{"P0", "P1", "P2"}) {
				t.Errorf("pages = %v", got)
			}
			if st.Busy != "" {
				t.Errorf("busy = %q after failure", st.Busy)
			}
			checkGrid(t, s)
		})
	}
}

func TestSession_OutOfRangeSelectionRejected(t *testing.T) {
	s, _ := loaded(t, "P0", "P1")
	s.mu.Lock()
	s.sel.Toggle(0)
	s.sel.Toggle(9)
	s.mu.Unlock()

	_, err := s.Extract(context.Background())
	if !errors.Is(err, ErrExtract) || !errors.Is(err, ErrIndex) {
		t.Errorf("Extract() error = %v, want ErrExtract wrapping ErrIndex", err)
	}
	if n := lastNotice(s); n.Message != "Extraction failed" {
		t.Errorf("notice = %q", n.Message)
	}

	err = s.DeleteSelected(context.Background())
	if !errors.Is(err, ErrDelete) || !errors.Is(err, ErrIndex) {
		t.Errorf("DeleteSelected() error = %v, want ErrDelete wrapping ErrIndex", err)
	}
	if n := lastNotice(s); n.Message != "Batch delete failed" {
		t.Errorf("notice = %q", n.Message)
	}
	if got := pageLabels(t, s); !reflect.DeepEqual(got, []string{"P0", "P1"}) {
		t.Errorf("pages = %v", got)
	}
}

func TestSession_BusyRejectsSecondOperation(t *testing.T) {
	s, _ := loaded(t, "P0", "P1")

	end, err := s.begin("Merging documents...")
	if err != nil {
		t.Fatal(err)
	}
	if got := s.State().Busy; got != "Merging documents..." {
		t.Errorf("busy = %q", got)
	}

	if _, err := s.Toggle(0); !errors.Is(err, ErrBusy) {
		t.Errorf("Toggle() error = %v, want ErrBusy", err)
	}
	if err := s.DeletePage(context.Background(), 0); !errors.Is(err, ErrBusy) {
		t.Errorf("DeletePage() error = %v, want ErrBusy", err)
	}
	// Reads are not gated.
	if got := len(s.Cards()); got != 2 {
		t.Errorf("cards = %d", got)
	}

	end()
	if s.State().Busy != "" {
		t.Error("busy label not cleared")
	}
	if _, err := s.Toggle(0); err != nil {
		t.Errorf("Toggle() after release error = %v", err)
	}
}

func TestSession_NoticeHistoryBounded(t *testing.T) {
	s := newSession(t, Config{NoticeHistory: 3})
	ctx := context.Background()
	if err := s.Load(ctx, pdfdoctest.Build("P0")); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if _, err := s.Download(ctx); err != nil {
			t.Fatal(err)
		}
	}
	notices := s.State().Notices
	if len(notices) != 3 {
		t.Fatalf("notices = %d, want 3", len(notices))
	}
	for _, n := range notices {
		if n.Message != "Download started!" {
			t.Errorf("oldest notice was not dropped: %q", n.Message)
		}
	}
}

type fakeThumbs struct {
	mu     sync.Mutex
	jobs   []render.Job
	inline bool
	err    error
}

func (f *fakeThumbs) Submit(job render.Job) error {
	if f.err != nil {
		return f.err
	}
	if f.inline {
		job.Done(render.Result{Key: job.Key, Page: job.Page, PNG: []byte("png")})
		return nil
	}
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()
	return nil
}

func (f *fakeThumbs) take() []render.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.jobs
	f.jobs = nil
	return out
}

func TestSession_ThumbnailsFollowCardIdentity(t *testing.T) {
	thumbs := &fakeThumbs{}
	s := newSession(t, Config{Thumbnails: thumbs})
	ctx := context.Background()
	if err := s.Load(ctx, pdfdoctest.Build("P0", "P1", "P2")); err != nil {
		t.Fatal(err)
	}

	jobs := thumbs.take()
	ids := cardIDs(s)
	if len(jobs) != 3 {
		t.Fatalf("jobs = %d, want 3", len(jobs))
	}
	for i, job := range jobs {
		if job.Key != ids[i] || job.Page != i+1 {
			t.Errorf("job %d = {%s %d}, want {%s %d}", i, job.Key, job.Page, ids[i], i+1)
		}
	}

	// Results arrive after a reorder: they still belong to the same cards.
	if err := s.Reorder(ctx, []string{ids[2], ids[0], ids[1]}); err != nil {
		t.Fatal(err)
	}
	jobs[2].Done(render.Result{Key: jobs[2].Key, Page: 3, PNG: []byte("third")})
	jobs[0].Done(render.Result{Key: jobs[0].Key, Page: 1, Err: render.ErrRender})

	png, state, err := s.Thumbnail(ids[2])
	if err != nil || state != view.ThumbReady || string(png) != "third" {
		t.Errorf("Thumbnail(%s) = %q, %s, %v", ids[2], png, state, err)
	}
	if _, state, _ := s.Thumbnail(ids[0]); state != view.ThumbFailed {
		t.Errorf("failed render state = %s", state)
	}
	if len(thumbs.take()) != 0 {
		t.Error("reorder should not re-render thumbnails")
	}

	// A delete rebuilds every card; the late result for the old card is dropped.
	if err := s.DeletePage(ctx, 0); err != nil {
		t.Fatal(err)
	}
	jobs[1].Done(render.Result{Key: jobs[1].Key, Page: 2, PNG: []byte("stale")})
	for _, c := range s.Cards() {
		if c.ID == jobs[1].Key {
			t.Fatalf("old card %s survived rebuild", c.ID)
		}
		if c.Thumb != view.ThumbPending {
			t.Errorf("card %s thumb = %s, want pending", c.ID, c.Thumb)
		}
	}
	if got := len(thumbs.take()); got != 2 {
		t.Errorf("jobs after delete = %d, want 2", got)
	}
	if _, _, err := s.Thumbnail(jobs[1].Key); !errors.Is(err, ErrUnknownCard) {
		t.Errorf("Thumbnail(stale) error = %v", err)
	}
}

func TestSession_ThumbnailsInlineAndRejected(t *testing.T) {
	t.Run("inline delivery", func(t *testing.T) {
		s := newSession(t, Config{Thumbnails: &fakeThumbs{inline: true}})
		if err := s.Load(context.Background(), pdfdoctest.Build("P0", "P1")); err != nil {
			t.Fatal(err)
		}
		for _, c := range s.Cards() {
			if c.Thumb != view.ThumbReady {
				t.Errorf("card %s thumb = %s", c.ID, c.Thumb)
			}
		}
	})

	t.Run("thumbnails disabled", func(t *testing.T) {
		s := newSession(t, Config{})
		if err := s.Load(context.Background(), pdfdoctest.Build("P0")); err != nil {
			t.Fatal(err)
		}
		if c := s.Cards()[0]; c.Thumb != view.ThumbFailed {
			t.Errorf("thumb = %s, want failed", c.Thumb)
		}
	})

	t.Run("queue rejects", func(t *testing.T) {
		s := newSession(t, Config{Thumbnails: &fakeThumbs{err: render.ErrQueueFull}})
		if err := s.Load(context.Background(), pdfdoctest.Build("P0")); err != nil {
			t.Fatal(err)
		}
		if c := s.Cards()[0]; c.Thumb != view.ThumbFailed {
			t.Errorf("thumb = %s, want failed", c.Thumb)
		}
	})
}
