package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagesmith/internal/config"
	"github.com/jackzampolin/pagesmith/internal/home"
	"github.com/jackzampolin/pagesmith/internal/server"
	"github.com/jackzampolin/pagesmith/internal/server/endpoints"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pagesmith server",
	Long: `Start the pagesmith HTTP server and open the editor at its root URL.

The server keeps editing sessions in memory and expires idle ones.
Thumbnails are rendered with poppler's pdftoppm when it is installed.

The server provides:
  - /        - The page editor
  - /api/... - The session API (see /swagger)
  - /health  - Basic server health check
  - /ready   - Readiness check (session sweeper and thumbnail pool)

Examples:
  pagesmith serve                    # Start on the configured port (default 8080)
  pagesmith serve --port 3000        # Start on custom port
  pagesmith serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Get home directory
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		// Prefer an explicit --config, then the home directory's config.yaml
		path := cfgFile
		if path == "" && h.ConfigExists() {
			path = h.ConfigPath()
		}
		cfgMgr, err := config.NewManager(path)
		if err != nil {
			return err
		}

		// Set up logger; the level follows log_level across reloads
		level := new(slog.LevelVar)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		}))
		if f := cfgMgr.ConfigFile(); f != "" {
			logger.Info("loaded config", "file", f)
			cfgMgr.WatchConfig()
		}

		// Create server
		srv, err := server.New(server.Config{
			Host:            serveHost,
			Port:            servePort,
			ConfigManager:   cfgMgr,
			Home:            h,
			Logger:          logger,
			LogLevel:        level,
			SwaggerSpecPath: endpoints.GetSwaggerSpecPath(),
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: server.host)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default: server.port)")

	rootCmd.AddCommand(serveCmd)
}
