package endpoints

import (
	"github.com/jackzampolin/pagesmith/internal/api"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	// MaxUploadBytes caps load, merge and create uploads; 0 disables the cap.
	MaxUploadBytes  int64
	SwaggerSpecPath string
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	swagger := &SwaggerEndpoint{SpecPath: cfg.SwaggerSpecPath}
	eps := []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},

		// Session endpoints
		&CreateSessionEndpoint{MaxUploadBytes: cfg.MaxUploadBytes},
		&ListSessionsEndpoint{},
		&GetSessionEndpoint{},
		&DeleteSessionEndpoint{},

		// Document endpoints
		&LoadDocumentEndpoint{MaxUploadBytes: cfg.MaxUploadBytes},
		&MergeDocumentEndpoint{MaxUploadBytes: cfg.MaxUploadBytes},
		&DownloadEndpoint{},
		&ExtractEndpoint{},

		// Page endpoints
		&ListPagesEndpoint{},
		&ThumbnailEndpoint{},
		&ReorderEndpoint{},

		// Selection endpoints
		&ToggleSelectionEndpoint{},
		&ToggleAllEndpoint{},
		&ClearSelectionEndpoint{},

		// Drag endpoints
		&DragEndpoint{Step: "start"},
		&DragEndpoint{Step: "over"},
		&DragEndpoint{Step: "drop"},
		&DragEndpoint{Step: "end"},

		// Confirmation endpoints
		&RequestDeletePageEndpoint{},
		&RequestDeleteSelectedEndpoint{},
		&ResolveIntentEndpoint{Confirm: true},
		&ResolveIntentEndpoint{Confirm: false},

		// Settings endpoints
		&ListSettingsEndpoint{},
		&GetSettingEndpoint{},

		// Swagger/OpenAPI endpoints
		swagger,
		&SwaggerUIEndpoint{},

		// Static files (catch-all, must be last)
		&StaticEndpoint{},
	}
	swagger.Endpoints = eps
	return eps
}
