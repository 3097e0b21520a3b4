// Package sessions keeps the in-memory set of editing sessions and expires
// idle ones on a cron schedule. Nothing is persisted.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/jackzampolin/pagesmith/internal/editor"
	"github.com/jackzampolin/pagesmith/internal/pdfdoc"
)

// ErrNotFound is returned for an unknown session id.
var ErrNotFound = errors.New("session not found")

const (
	DefaultTTL           = time.Hour
	DefaultSweepSchedule = "@every 1m"
)

// Config configures a Manager.
type Config struct {
	Codec         pdfdoc.Codec
	Thumbnails    editor.Thumbnailer
	Logger        *slog.Logger
	TTL           time.Duration // default: DefaultTTL
	SweepSchedule string        // default: DefaultSweepSchedule
	NoticeHistory int
	Now           func() time.Time
}

// Manager owns every live session.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	ttl     atomic.Int64
	running atomic.Bool

	mu       sync.RWMutex
	sessions map[string]*editor.Session
}

// Summary describes a session in listings.
type Summary struct {
	ID         string    `json:"id"`
	PageCount  int       `json:"page_count"`
	Selected   int       `json:"selected"`
	Busy       string    `json:"busy,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

// NewManager creates an empty manager.
func NewManager(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.SweepSchedule == "" {
		cfg.SweepSchedule = DefaultSweepSchedule
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Codec == nil {
		cfg.Codec = pdfdoc.NewPDFCPU(false)
	}
	m := &Manager{
		cfg:      cfg,
		logger:   cfg.Logger.With("component", "sessions"),
		sessions: make(map[string]*editor.Session),
	}
	m.ttl.Store(int64(cfg.TTL))
	return m
}

// SetTTL changes the idle timeout used by later sweeps. Non-positive values
// are ignored.
func (m *Manager) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if old := time.Duration(m.ttl.Swap(int64(ttl))); old != ttl {
		m.logger.Info("session ttl changed", "old", old, "new", ttl)
	}
}

// TTL returns the current idle timeout.
func (m *Manager) TTL() time.Duration {
	return time.Duration(m.ttl.Load())
}

// Running reports whether the sweeper is active.
func (m *Manager) Running() bool {
	return m.running.Load()
}

// Create starts a new empty session.
func (m *Manager) Create() *editor.Session {
	id := uuid.New().String()
	s := editor.NewSession(editor.Config{
		ID:            id,
		Codec:         m.cfg.Codec,
		Thumbnails:    m.cfg.Thumbnails,
		Logger:        m.cfg.Logger,
		NoticeHistory: m.cfg.NoticeHistory,
		Now:           m.cfg.Now,
	})

	m.mu.Lock()
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("session created", "session_id", id, "sessions", n)
	return s
}

// Get returns a session by id.
func (m *Manager) Get(id string) (*editor.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Delete closes a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.sessions, id)
	m.logger.Info("session closed", "session_id", id)
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// List returns summaries of every session, oldest first.
func (m *Manager) List() []Summary {
	m.mu.RLock()
	all := make([]*editor.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()

	out := make([]Summary, 0, len(all))
	for _, s := range all {
		st := s.State()
		out = append(out, Summary{
			ID:         st.ID,
			PageCount:  st.PageCount,
			Selected:   len(st.Selected),
			Busy:       st.Busy,
			CreatedAt:  st.CreatedAt,
			LastActive: st.LastActive,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Sweep closes sessions idle for longer than the TTL and returns how many
// were closed.
func (m *Manager) Sweep() int {
	cutoff := m.cfg.Now().Add(-m.TTL())

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			removed++
			m.logger.Info("session expired", "session_id", id)
		}
	}
	if removed > 0 {
		m.logger.Debug("sweep complete", "removed", removed, "remaining", len(m.sessions))
	}
	return removed
}

// Start runs the sweeper on its schedule. Blocks until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(m.cfg.SweepSchedule, func() { m.Sweep() }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", m.cfg.SweepSchedule, err)
	}
	c.Start()
	m.running.Store(true)
	m.logger.Info("session sweeper started", "schedule", m.cfg.SweepSchedule, "ttl", m.TTL())

	<-ctx.Done()
	<-c.Stop().Done()
	m.running.Store(false)
	m.logger.Info("session sweeper stopped")
	return nil
}
