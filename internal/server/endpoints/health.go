package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagesmith/internal/api"
	"github.com/jackzampolin/pagesmith/internal/render"
	"github.com/jackzampolin/pagesmith/internal/svcctx"
	"github.com/jackzampolin/pagesmith/version"
)

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status     string `json:"status"`
	Sessions   string `json:"sessions,omitempty"`
	Thumbnails string `json:"thumbnails,omitempty"`
}

// HealthEndpoint handles GET /health.
type HealthEndpoint struct{}

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Liveness check
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/health [get]
func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/health", &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp.Status)
			return nil
		},
	}
}

// ReadyEndpoint handles GET /ready.
type ReadyEndpoint struct{}

func (e *ReadyEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/ready", e.handler
}

func (e *ReadyEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Readiness check
//	@Description	Ready once the session sweeper and, when enabled, the thumbnail pool are running
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/ready [get]
func (e *ReadyEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Sessions: "ok", Thumbnails: "disabled"}

	mgr := svcctx.SessionsFrom(r.Context())
	switch {
	case mgr == nil:
		resp.Sessions = "not_initialized"
	case !mgr.Running():
		resp.Sessions = "starting"
	}

	if pool := svcctx.ThumbnailsFrom(r.Context()); pool != nil {
		resp.Thumbnails = "ok"
		if !pool.Status().Running {
			resp.Thumbnails = "starting"
		}
	}

	if resp.Sessions != "ok" || resp.Thumbnails == "starting" {
		resp.Status = "degraded"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ReadyEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "ready",
		Short: "Check server readiness (sessions and thumbnail pool)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/ready", &resp); err != nil {
				return err
			}
			fmt.Printf("Status:     %s\n", resp.Status)
			fmt.Printf("Sessions:   %s\n", resp.Sessions)
			fmt.Printf("Thumbnails: %s\n", resp.Thumbnails)
			return nil
		},
	}
}

// StatusResponse is the detailed status response.
type StatusResponse struct {
	Server     string             `json:"server"`
	Version    string             `json:"version"`
	Sessions   SessionsStatus     `json:"sessions"`
	Thumbnails *render.PoolStatus `json:"thumbnails,omitempty"`
	ConfigFile string             `json:"config_file,omitempty"`
}

// SessionsStatus summarizes the session manager.
type SessionsStatus struct {
	Active  int    `json:"active"`
	TTL     string `json:"ttl"`
	Sweeper string `json:"sweeper"`
}

// StatusEndpoint handles GET /status.
type StatusEndpoint struct{}

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/status", e.handler
}

func (e *StatusEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Detailed server status
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Router			/status [get]
func (e *StatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Server:  "running",
		Version: version.GitRelease,
	}

	if mgr := svcctx.SessionsFrom(r.Context()); mgr != nil {
		resp.Sessions = SessionsStatus{
			Active:  mgr.Count(),
			TTL:     mgr.TTL().Round(time.Second).String(),
			Sweeper: "stopped",
		}
		if mgr.Running() {
			resp.Sessions.Sweeper = "running"
		}
	} else {
		resp.Sessions.Sweeper = "not_initialized"
	}

	if pool := svcctx.ThumbnailsFrom(r.Context()); pool != nil {
		status := pool.Status()
		resp.Thumbnails = &status
	}

	if cfg := svcctx.ConfigFrom(r.Context()); cfg != nil {
		resp.ConfigFile = cfg.ConfigFile()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *StatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get detailed server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp StatusResponse
			if err := client.Get(cmd.Context(), "/status", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
