// Package editor reconciles a PDF document with its on-screen page cards.
//
// A Session owns three pieces of state that must stay consistent: the
// authoritative document, the selection set, and the visual card grid.
// Mutating operations run one at a time behind an operation gate; an
// operation that arrives while another is running fails with ErrBusy.
// Every structural change rebuilds or relabels the grid from the document
// and clears the selection, so indices held by the client are never reused
// against a different page order.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackzampolin/pagesmith/internal/pdfdoc"
	"github.com/jackzampolin/pagesmith/internal/render"
	"github.com/jackzampolin/pagesmith/internal/selection"
	"github.com/jackzampolin/pagesmith/internal/view"
)

// DefaultNoticeHistory is how many notices a session keeps.
const DefaultNoticeHistory = 20

// Thumbnailer accepts page render jobs. render.Pool satisfies it.
type Thumbnailer interface {
	Submit(job render.Job) error
}

// NoticeLevel is the kind of a user-facing notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a short message for the user about an operation's outcome.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	Time    time.Time   `json:"time"`
}

// DragState is an in-progress drag that has not been dropped yet.
type DragState struct {
	CardID    string    `json:"card_id"`
	Index     int       `json:"index"`
	StartedAt time.Time `json:"started_at"`
}

// Config configures a Session.
type Config struct {
	ID            string
	Codec         pdfdoc.Codec
	Thumbnails    Thumbnailer // nil marks every thumbnail failed
	Logger        *slog.Logger
	NoticeHistory int              // default: DefaultNoticeHistory
	Now           func() time.Time // default: time.Now
}

// Session is one editing workspace.
type Session struct {
	id     string
	codec  pdfdoc.Codec
	thumbs Thumbnailer
	logger *slog.Logger
	now    func() time.Time

	// opMu serializes mutating operations. It is only ever TryLocked.
	opMu sync.Mutex

	mu         sync.RWMutex
	doc        *pdfdoc.Document
	sel        *selection.Tracker
	grid       *view.Grid
	drag       *DragState
	busy       string
	notices    []Notice
	maxNotices int
	created    time.Time
	lastActive time.Time

	gate *Gate
}

// NewSession creates a session with no document.
func NewSession(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	maxNotices := cfg.NoticeHistory
	if maxNotices <= 0 {
		maxNotices = DefaultNoticeHistory
	}
	codec := cfg.Codec
	if codec == nil {
		codec = pdfdoc.NewPDFCPU(false)
	}

	t := now()
	return &Session{
		id:         cfg.ID,
		codec:      codec,
		thumbs:     cfg.Thumbnails,
		logger:     logger.With("session_id", cfg.ID),
		now:        now,
		sel:        selection.New(),
		grid:       view.NewGrid(),
		maxNotices: maxNotices,
		created:    t,
		lastActive: t,
		gate:       NewGate(now),
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// LastActive returns when the session last handled a request.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// Touch marks the session as active without changing it.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = s.now()
	s.mu.Unlock()
}

// CardState is a card as the client sees it.
type CardState struct {
	view.Card
	Selected bool `json:"selected"`
}

// State is a point-in-time snapshot of a session.
type State struct {
	ID          string      `json:"id"`
	HasDocument bool        `json:"has_document"`
	PageCount   int         `json:"page_count"`
	Cards       []CardState `json:"cards"`
	Selected    []int       `json:"selected"`
	Busy        string      `json:"busy,omitempty"`
	Drag        *DragState  `json:"drag,omitempty"`
	Pending     *Intent     `json:"pending,omitempty"`
	Notices     []Notice    `json:"notices"`
	CreatedAt   time.Time   `json:"created_at"`
	LastActive  time.Time   `json:"last_active"`
}

// Empty reports whether the editor should show its empty state.
func (st State) Empty() bool {
	return st.PageCount == 0
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		ID:          s.id,
		HasDocument: s.doc != nil,
		Selected:    s.sel.SortedIndices(),
		Busy:        s.busy,
		Pending:     s.gate.Pending(),
		Notices:     append([]Notice(nil), s.notices...),
		CreatedAt:   s.created,
		LastActive:  s.lastActive,
	}
	if s.doc != nil {
		st.PageCount = s.doc.PageCount()
	}
	if s.drag != nil {
		d := *s.drag
		st.Drag = &d
	}
	cards := s.grid.Cards()
	st.Cards = make([]CardState, len(cards))
	for i, c := range cards {
		st.Cards[i] = CardState{Card: c, Selected: s.sel.Contains(c.Index)}
	}
	return st
}

// Cards returns the page cards in visual order.
func (s *Session) Cards() []view.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.Cards()
}

// Thumbnail returns the rendered PNG of a card.
func (s *Session) Thumbnail(cardID string) ([]byte, view.ThumbState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, state, ok := s.grid.Thumbnail(cardID)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}
	return data, state, nil
}

// begin acquires the operation gate. label, when set, is shown as the busy
// indicator until the returned func runs.
func (s *Session) begin(label string) (func(), error) {
	if !s.opMu.TryLock() {
		s.mu.RLock()
		running := s.busy
		s.mu.RUnlock()
		if running != "" {
			return nil, fmt.Errorf("%w: %s", ErrBusy, running)
		}
		return nil, ErrBusy
	}

	s.mu.Lock()
	s.busy = label
	s.lastActive = s.now()
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.busy = ""
		s.mu.Unlock()
		s.opMu.Unlock()
	}, nil
}

func (s *Session) notify(level NoticeLevel, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, Notice{Level: level, Message: msg, Time: s.now()})
	if over := len(s.notices) - s.maxNotices; over > 0 {
		s.notices = append([]Notice(nil), s.notices[over:]...)
	}
}

// fail records an error notice for an operation that left state unchanged.
func (s *Session) fail(msg string, err error) {
	s.logger.Error(msg, "error", err)
	s.notify(NoticeError, msg)
}

// interrupted turns a done context into a failed operation of the given
// category. It returns nil while ctx is live.
func (s *Session) interrupted(ctx context.Context, category error, msg string) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	s.fail(msg, err)
	return fmt.Errorf("%w: %w", category, err)
}

// requireDoc returns the current document, or ErrNoDocument.
func (s *Session) requireDoc() (*pdfdoc.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, ErrNoDocument
	}
	return s.doc, nil
}

// swapLocked installs doc as authoritative and rebuilds every derived piece
// of state from it. Callers hold s.mu and submit the returned jobs after
// releasing it.
func (s *Session) swapLocked(doc *pdfdoc.Document) []render.Job {
	s.doc = doc
	return s.resyncLocked()
}

// resyncLocked discards the grid, selection, drag and pending confirmation
// and rebuilds cards from the current document.
func (s *Session) resyncLocked() []render.Job {
	s.sel.Clear()
	s.drag = nil
	s.gate.Reset()

	count := 0
	if s.doc != nil {
		count = s.doc.PageCount()
	}
	cards := s.grid.Rebuild(count)
	if count == 0 {
		return nil
	}
	if s.thumbs == nil {
		for _, c := range cards {
			s.grid.FailThumbnail(c.ID)
		}
		return nil
	}

	data, err := s.doc.Serialize()
	if err != nil {
		s.logger.Warn("cannot queue thumbnails", "error", err)
		for _, c := range cards {
			s.grid.FailThumbnail(c.ID)
		}
		return nil
	}

	jobs := make([]render.Job, len(cards))
	for i, c := range cards {
		jobs[i] = render.Job{
			Key:  c.ID,
			Page: c.Index + 1,
			PDF:  data,
			Done: s.applyThumbnail,
		}
	}
	return jobs
}

// submit queues render jobs. Must not be called with s.mu held: a
// Thumbnailer may deliver results synchronously.
func (s *Session) submit(jobs []render.Job) {
	for _, job := range jobs {
		if err := s.thumbs.Submit(job); err != nil {
			s.logger.Warn("thumbnail not queued", "card_id", job.Key, "page", job.Page, "error", err)
			s.mu.Lock()
			s.grid.FailThumbnail(job.Key)
			s.mu.Unlock()
		}
	}
}

func (s *Session) applyThumbnail(res render.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ok bool
	if res.Err != nil {
		ok = s.grid.FailThumbnail(res.Key)
	} else {
		ok = s.grid.SetThumbnail(res.Key, res.PNG)
	}
	if !ok {
		s.logger.Debug("discarding stale thumbnail", "card_id", res.Key, "page", res.Page)
	}
}

// install swaps in doc and queues its thumbnails.
func (s *Session) install(doc *pdfdoc.Document) {
	s.mu.Lock()
	jobs := s.swapLocked(doc)
	s.mu.Unlock()
	s.submit(jobs)
}

// resync rebuilds derived state from the unchanged document.
func (s *Session) resync() {
	s.mu.Lock()
	jobs := s.resyncLocked()
	s.mu.Unlock()
	s.submit(jobs)
}
