package config

import (
	"errors"
	"fmt"
	"sort"
	"unicode"
)

var (
	// ErrNoDefault is returned when no default value exists for a config key.
	ErrNoDefault = errors.New("no default exists")

	// ErrInvalidKey is returned when a config key contains invalid characters.
	ErrInvalidKey = errors.New("invalid config key")

	// ErrUnknownKey is returned for a well-formed key that is not configured.
	ErrUnknownKey = errors.New("unknown config key")
)

// Entry is a single configuration key with its default and meaning.
type Entry struct {
	Key         string `json:"key" yaml:"key"`
	Value       any    `json:"value" yaml:"value"`
	Description string `json:"description" yaml:"description"`
}

// DefaultEntries returns the default configuration entries, flattened to
// dotted keys. Viper defaults are seeded from this list.
func DefaultEntries() []Entry {
	d := DefaultConfig()
	return []Entry{
		// ===================
		// Server
		// ===================
		{
			Key:         "server.host",
			Value:       d.Server.Host,
			Description: "Address the HTTP server binds to",
		},
		{
			Key:         "server.port",
			Value:       d.Server.Port,
			Description: "Port the HTTP server listens on",
		},
		{
			Key:         "log_level",
			Value:       d.LogLevel,
			Description: "Log level: debug, info, warn or error",
		},

		// ===================
		// Editor
		// ===================
		{
			Key:         "editor.max_upload_mb",
			Value:       d.Editor.MaxUploadMB,
			Description: "Largest PDF accepted by load and merge, in megabytes",
		},
		{
			Key:         "editor.session_ttl",
			Value:       d.Editor.SessionTTL.String(),
			Description: "Idle time after which a session is discarded",
		},
		{
			Key:         "editor.sweep_schedule",
			Value:       d.Editor.SweepSchedule,
			Description: "Cron schedule for expiring idle sessions",
		},
		{
			Key:         "editor.notice_history",
			Value:       d.Editor.NoticeHistory,
			Description: "Number of notices kept per session",
		},
		{
			Key:         "editor.strict_pdf",
			Value:       d.Editor.StrictPDF,
			Description: "Reject PDFs that only pass relaxed validation",
		},

		// ===================
		// Thumbnails
		// ===================
		{
			Key:         "thumbnails.enabled",
			Value:       d.Thumbnails.Enabled,
			Description: "Render page thumbnails with pdftoppm",
		},
		{
			Key:         "thumbnails.scale",
			Value:       d.Thumbnails.Scale,
			Description: "Render scale, 1.0 is 72 dpi",
		},
		{
			Key:         "thumbnails.workers",
			Value:       d.Thumbnails.Workers,
			Description: "Concurrent thumbnail renders",
		},
		{
			Key:         "thumbnails.queue_size",
			Value:       d.Thumbnails.QueueSize,
			Description: "Pending renders held before new ones are rejected",
		},
		{
			Key:         "thumbnails.max_width",
			Value:       d.Thumbnails.MaxWidth,
			Description: "Downscale thumbnails wider than this many pixels (0 disables)",
		},
		{
			Key:         "thumbnails.pdftoppm",
			Value:       d.Thumbnails.Pdftoppm,
			Description: "Path to the pdftoppm binary (supports ${ENV_VAR})",
		},
	}
}

// GetDefault returns the default entry for a config key.
func GetDefault(key string) (Entry, error) {
	if err := ValidateKey(key); err != nil {
		return Entry{}, err
	}
	for _, entry := range DefaultEntries() {
		if entry.Key == key {
			return entry, nil
		}
	}
	return Entry{}, fmt.Errorf("%w for key %q", ErrNoDefault, key)
}

// Effective returns every known key with its current value, sorted by key.
func (cm *Manager) Effective() []Entry {
	entries := DefaultEntries()
	for i := range entries {
		entries[i].Value = cm.v.Get(entries[i].Key)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// ValidateKey checks if a config key contains only allowed characters.
// Valid keys contain: letters, digits, dots, underscores, and hyphens.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidKey)
	}
	for i, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '_' && r != '-' {
			return fmt.Errorf("%w: invalid character %q at position %d", ErrInvalidKey, r, i)
		}
	}
	if key[0] == '.' || key[len(key)-1] == '.' {
		return fmt.Errorf("%w: key cannot start or end with a dot", ErrInvalidKey)
	}
	return nil
}
