package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds pagesmith configuration.
// Stored at: ~/.pagesmith/config.yaml
type Config struct {
	Server     ServerCfg    `mapstructure:"server" yaml:"server"`
	LogLevel   string       `mapstructure:"log_level" yaml:"log_level"`
	Editor     EditorCfg    `mapstructure:"editor" yaml:"editor"`
	Thumbnails ThumbnailCfg `mapstructure:"thumbnails" yaml:"thumbnails"`
}

// ServerCfg configures the HTTP listener.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// EditorCfg configures editing sessions.
type EditorCfg struct {
	MaxUploadMB   int           `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	SessionTTL    time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
	SweepSchedule string        `mapstructure:"sweep_schedule" yaml:"sweep_schedule"` // cron spec
	NoticeHistory int           `mapstructure:"notice_history" yaml:"notice_history"`
	StrictPDF     bool          `mapstructure:"strict_pdf" yaml:"strict_pdf"` // strict pdfcpu validation
}

// ThumbnailCfg configures page thumbnail rendering.
type ThumbnailCfg struct {
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
	Scale     float64 `mapstructure:"scale" yaml:"scale"` // 1.0 = 72 dpi
	Workers   int     `mapstructure:"workers" yaml:"workers"`
	QueueSize int     `mapstructure:"queue_size" yaml:"queue_size"`
	MaxWidth  int     `mapstructure:"max_width" yaml:"max_width"` // 0 = no downscale
	Pdftoppm  string  `mapstructure:"pdftoppm" yaml:"pdftoppm"`   // binary path, supports ${ENV_VAR}
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
		LogLevel: "info",
		Editor: EditorCfg{
			MaxUploadMB:   100,
			SessionTTL:    time.Hour,
			SweepSchedule: "@every 1m",
			NoticeHistory: 20,
		},
		Thumbnails: ThumbnailCfg{
			Enabled:   true,
			Scale:     0.5,
			Workers:   4,
			QueueSize: 1000,
			Pdftoppm:  "pdftoppm",
		},
	}
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Editor.MaxUploadMB <= 0 {
		return fmt.Errorf("editor.max_upload_mb must be positive, got %d", c.Editor.MaxUploadMB)
	}
	if c.Editor.SessionTTL <= 0 {
		return fmt.Errorf("editor.session_ttl must be positive, got %s", c.Editor.SessionTTL)
	}
	if _, err := cron.ParseStandard(c.Editor.SweepSchedule); err != nil {
		return fmt.Errorf("editor.sweep_schedule: %w", err)
	}
	if c.Thumbnails.Enabled {
		if c.Thumbnails.Scale <= 0 || c.Thumbnails.Scale > 4 {
			return fmt.Errorf("thumbnails.scale must be in (0, 4], got %v", c.Thumbnails.Scale)
		}
		if c.Thumbnails.Workers <= 0 {
			return fmt.Errorf("thumbnails.workers must be positive, got %d", c.Thumbnails.Workers)
		}
	}
	return nil
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Editor.MaxUploadMB) << 20
}

// PdftoppmBinary returns the configured pdftoppm path with ${ENV_VAR}
// references resolved.
func (c *Config) PdftoppmBinary() string {
	if bin := ResolveEnvVars(c.Thumbnails.Pdftoppm); bin != "" {
		return bin
	}
	return "pdftoppm"
}
