package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jackzampolin/pagesmith/internal/api"
	"github.com/jackzampolin/pagesmith/internal/config"
	"github.com/jackzampolin/pagesmith/internal/editor"
	"github.com/jackzampolin/pagesmith/internal/home"
	"github.com/jackzampolin/pagesmith/internal/pdfdoc"
	"github.com/jackzampolin/pagesmith/internal/render"
	"github.com/jackzampolin/pagesmith/internal/server/endpoints"
	"github.com/jackzampolin/pagesmith/internal/sessions"
	"github.com/jackzampolin/pagesmith/internal/svcctx"
)

// Server is the pagesmith HTTP server.
// It owns the session manager and the thumbnail pool and runs both for as
// long as the HTTP listener is up.
type Server struct {
	httpServer *http.Server
	sessions   *sessions.Manager
	thumbnails *render.Pool
	configMgr  *config.Manager
	logger     *slog.Logger
	logLevel   *slog.LevelVar

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// ConfigManager provides configuration with hot-reload support.
	// When nil, DefaultConfig is used.
	ConfigManager *config.Manager
	// Home is the pagesmith home directory
	Home *home.Dir
	// Logger is the structured logger to use
	Logger *slog.Logger
	// LogLevel, when set, follows log_level across config reloads
	LogLevel *slog.LevelVar
	// Codec overrides the PDF codec (default: pdfcpu)
	Codec pdfdoc.Codec
	// Renderer overrides the thumbnail renderer (default: pdftoppm)
	Renderer render.Renderer
	// SwaggerSpecPath is the path to swagger.json
	SwaggerSpecPath string
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	settings := config.DefaultConfig()
	if cfg.ConfigManager != nil {
		settings = cfg.ConfigManager.Get()
	}
	if cfg.Host == "" {
		cfg.Host = settings.Server.Host
	}
	if cfg.Port == "" {
		cfg.Port = settings.Server.Port
	}
	if cfg.LogLevel != nil {
		cfg.LogLevel.Set(ParseLevel(settings.LogLevel))
	}

	codec := cfg.Codec
	if codec == nil {
		codec = pdfdoc.NewPDFCPU(settings.Editor.StrictPDF)
	}

	s := &Server{
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
		logLevel:  cfg.LogLevel,
	}

	// A nil *render.Pool must not reach the session as a non-nil interface.
	var thumbs editor.Thumbnailer
	if settings.Thumbnails.Enabled {
		renderer := cfg.Renderer
		if renderer == nil {
			pdftoppm := &render.Pdftoppm{
				Binary:   settings.PdftoppmBinary(),
				Scale:    settings.Thumbnails.Scale,
				MaxWidth: settings.Thumbnails.MaxWidth,
			}
			if err := pdftoppm.Available(); err != nil {
				cfg.Logger.Warn("pdftoppm not found, thumbnails will fail", "binary", pdftoppm.Binary, "error", err)
			}
			renderer = pdftoppm
		}
		s.thumbnails = render.NewPool(render.PoolConfig{
			Logger:      cfg.Logger,
			Renderer:    renderer,
			WorkerCount: settings.Thumbnails.Workers,
			QueueSize:   settings.Thumbnails.QueueSize,
		})
		thumbs = s.thumbnails
	}

	s.sessions = sessions.NewManager(sessions.Config{
		Codec:         codec,
		Thumbnails:    thumbs,
		Logger:        cfg.Logger,
		TTL:           settings.Editor.SessionTTL,
		SweepSchedule: settings.Editor.SweepSchedule,
		NoticeHistory: settings.Editor.NoticeHistory,
	})

	if cfg.ConfigManager != nil {
		cfg.ConfigManager.OnChange(s.applyConfig)
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{
		MaxUploadBytes:  settings.MaxUploadBytes(),
		SwaggerSpecPath: cfg.SwaggerSpecPath,
	}) {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	s.services = &svcctx.Services{
		Sessions:   s.sessions,
		Thumbnails: s.thumbnails,
		Config:     cfg.ConfigManager,
		Logger:     cfg.Logger,
		Home:       cfg.Home,
	}

	return s, nil
}

// applyConfig picks up the settings that can change without a restart.
func (s *Server) applyConfig(c *config.Config) {
	s.sessions.SetTTL(c.Editor.SessionTTL)
	if s.logLevel != nil {
		s.logLevel.Set(ParseLevel(c.LogLevel))
	}
	s.logger.Info("config reloaded", "log_level", c.LogLevel, "session_ttl", c.Editor.SessionTTL)
}

// Start starts the sweeper, the thumbnail pool and the HTTP server.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	bgCtx, stopBackground := context.WithCancel(ctx)
	var bg sync.WaitGroup

	sweepErr := make(chan error, 1)
	bg.Add(1)
	go func() {
		defer bg.Done()
		sweepErr <- s.sessions.Start(bgCtx)
	}()

	if s.thumbnails != nil {
		bg.Add(1)
		go func() {
			defer bg.Done()
			s.thumbnails.Start(bgCtx)
		}()
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-sweepErr:
		if err != nil {
			runErr = fmt.Errorf("session sweeper error: %w", err)
		}
	case err := <-errCh:
		if err != nil {
			runErr = fmt.Errorf("HTTP server error: %w", err)
		}
	}

	s.shutdown(stopBackground, &bg)
	return runErr
}

// shutdown stops the HTTP server, then the background workers.
func (s *Server) shutdown(stopBackground context.CancelFunc, bg *sync.WaitGroup) {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	stopBackground()
	bg.Wait()

	s.setNotRunning()
	s.logger.Info("server stopped")
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Sessions returns the session manager.
func (s *Server) Sessions() *sessions.Manager {
	return s.sessions
}

// Thumbnails returns the thumbnail pool, or nil when thumbnails are disabled.
func (s *Server) Thumbnails() *render.Pool {
	return s.thumbnails
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the root HTTP handler, for tests that drive it directly.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable until the session sweeper is running.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.sessions == nil || !s.sessions.Running() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}

// ParseLevel maps a log_level setting to a slog level. Unknown values are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
