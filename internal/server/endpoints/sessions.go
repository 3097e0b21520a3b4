package endpoints

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagesmith/internal/api"
	"github.com/jackzampolin/pagesmith/internal/editor"
	"github.com/jackzampolin/pagesmith/internal/sessions"
	"github.com/jackzampolin/pagesmith/internal/svcctx"
)

// CreateSessionEndpoint handles POST /api/sessions.
type CreateSessionEndpoint struct {
	// MaxUploadBytes caps the optional initial PDF.
	MaxUploadBytes int64
}

var _ api.Endpoint = (*CreateSessionEndpoint)(nil)

func (e *CreateSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions", e.handler
}

func (e *CreateSessionEndpoint) RequiresInit() bool { return true }

func (e *CreateSessionEndpoint) Group() string { return "sessions" }

// handler godoc
//
//	@Summary		Create an editing session
//	@Description	Opens a new session. When a PDF is attached it is loaded straight away.
//	@Tags			sessions
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	false	"PDF to load"
//	@Success		201		{object}	editor.State
//	@Failure		400		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/api/sessions [post]
func (e *CreateSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	mgr := svcctx.SessionsFrom(r.Context())
	if mgr == nil {
		writeError(w, http.StatusServiceUnavailable, "session manager not initialized")
		return
	}

	var data []byte
	if isMultipart(r) {
		var ok bool
		if data, _, ok = readUpload(w, r, e.MaxUploadBytes); !ok {
			return
		}
	}

	s := mgr.Create()
	if data != nil {
		if err := s.Load(r.Context(), data); err != nil {
			_ = mgr.Delete(s.ID())
			writeEditorError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, s.State())
}

func (e *CreateSessionEndpoint) Command(getServerURL func() string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a session, optionally loading a PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var state editor.State
			if file == "" {
				if err := client.Post(ctx, "/api/sessions", nil, &state); err != nil {
					return err
				}
				return api.Output(state)
			}

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", file, err)
			}
			defer f.Close()
			if err := client.Upload(ctx, "/api/sessions", filepath.Base(file), f, &state); err != nil {
				return err
			}
			return api.Output(state)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "PDF to load into the new session")
	return cmd
}

// ListSessionsResponse is the response for listing sessions.
type ListSessionsResponse struct {
	Sessions []sessions.Summary `json:"sessions"`
	Total    int                `json:"total"`
}

// ListSessionsEndpoint handles GET /api/sessions.
type ListSessionsEndpoint struct{}

var _ api.Endpoint = (*ListSessionsEndpoint)(nil)

func (e *ListSessionsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions", e.handler
}

func (e *ListSessionsEndpoint) RequiresInit() bool { return true }

func (e *ListSessionsEndpoint) Group() string { return "sessions" }

// handler godoc
//
//	@Summary		List sessions
//	@Description	Summaries of every live session, oldest first
//	@Tags			sessions
//	@Produce		json
//	@Success		200	{object}	ListSessionsResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/sessions [get]
func (e *ListSessionsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	mgr := svcctx.SessionsFrom(r.Context())
	if mgr == nil {
		writeError(w, http.StatusServiceUnavailable, "session manager not initialized")
		return
	}
	list := mgr.List()
	writeJSON(w, http.StatusOK, ListSessionsResponse{Sessions: list, Total: len(list)})
}

func (e *ListSessionsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp ListSessionsResponse
			if err := client.Get(ctx, "/api/sessions", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetSessionEndpoint handles GET /api/sessions/{id}.
type GetSessionEndpoint struct{}

var _ api.Endpoint = (*GetSessionEndpoint)(nil)

func (e *GetSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions/{id}", e.handler
}

func (e *GetSessionEndpoint) RequiresInit() bool { return true }

func (e *GetSessionEndpoint) Group() string { return "sessions" }

// handler godoc
//
//	@Summary		Get session state
//	@Description	Cards in visual order, selection, drag, pending confirmation, busy label and notices
//	@Tags			sessions
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	editor.State
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/sessions/{id} [get]
func (e *GetSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

func (e *GetSessionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a session's pages, selection and notices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var state editor.State
			if err := client.Get(ctx, "/api/sessions/"+args[0], &state); err != nil {
				return err
			}
			return api.Output(state)
		},
	}
}

// DeleteSessionEndpoint handles DELETE /api/sessions/{id}.
type DeleteSessionEndpoint struct{}

var _ api.Endpoint = (*DeleteSessionEndpoint)(nil)

func (e *DeleteSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/sessions/{id}", e.handler
}

func (e *DeleteSessionEndpoint) RequiresInit() bool { return true }

func (e *DeleteSessionEndpoint) Group() string { return "sessions" }

// handler godoc
//
//	@Summary		Close a session
//	@Description	Discards the session and its document
//	@Tags			sessions
//	@Param			id	path	string	true	"Session ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/sessions/{id} [delete]
func (e *DeleteSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	mgr := svcctx.SessionsFrom(r.Context())
	if mgr == nil {
		writeError(w, http.StatusServiceUnavailable, "session manager not initialized")
		return
	}
	if err := mgr.Delete(r.PathValue("id")); err != nil {
		writeEditorError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteSessionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Close a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			if err := client.Delete(ctx, "/api/sessions/"+args[0]); err != nil {
				return err
			}
			return api.Output(map[string]string{"deleted": args[0]})
		},
	}
}
