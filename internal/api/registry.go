package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Registry holds all registered endpoints.
type Registry struct {
	endpoints []Endpoint
}

// NewRegistry creates a new endpoint registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an endpoint to the registry.
func (r *Registry) Register(ep Endpoint) {
	r.endpoints = append(r.endpoints, ep)
}

// RegisterRoutes registers all endpoint HTTP routes with the given mux.
// initMiddleware wraps handlers that require full server initialization.
func (r *Registry) RegisterRoutes(mux *http.ServeMux, initMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	for _, ep := range r.endpoints {
		method, path, handler := ep.Route()
		if ep.RequiresInit() {
			handler = initMiddleware(handler)
		}
		mux.HandleFunc(method+" "+path, handler)
	}
}

// BuildCommands returns a cobra.Command tree for all registered endpoints.
// Endpoints that share a Group are nested under one parent command.
// getServerURL is called at runtime to get the server URL.
func (r *Registry) BuildCommands(getServerURL func() string) *cobra.Command {
	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Commands that call the running server",
		Long: `API commands call the running pagesmith server via HTTP.

These commands require a running server (pagesmith serve).
Use --server to specify a custom server URL.

Examples:
  pagesmith api health                           # Check server health
  pagesmith api sessions create --file in.pdf    # Open a session on a PDF
  pagesmith api sessions get <id>                # Show pages, selection and notices
  pagesmith api selection toggle <id> --index 2  # Select the third page`,
	}

	groups := make(map[string]*cobra.Command)
	for _, ep := range r.endpoints {
		cmd := ep.Command(getServerURL)
		if cmd == nil {
			continue
		}
		g, ok := ep.(Grouped)
		if !ok || g.Group() == "" {
			apiCmd.AddCommand(cmd)
			continue
		}
		parent, ok := groups[g.Group()]
		if !ok {
			parent = &cobra.Command{
				Use:   g.Group(),
				Short: groupShort[g.Group()],
			}
			groups[g.Group()] = parent
			apiCmd.AddCommand(parent)
		}
		parent.AddCommand(cmd)
	}

	return apiCmd
}

var groupShort = map[string]string{
	"sessions":     "Create, inspect and close editing sessions",
	"pages":        "Inspect page cards and thumbnails",
	"selection":    "Select pages for batch operations",
	"drag":         "Drive a drag-and-drop reorder step by step",
	"confirmation": "Confirm or cancel a pending delete",
	"document":     "Load, merge, download and extract PDFs",
	"settings":     "Inspect the server's effective configuration",
}

// Endpoints returns all registered endpoints.
func (r *Registry) Endpoints() []Endpoint {
	return r.endpoints
}
