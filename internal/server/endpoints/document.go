package endpoints

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagesmith/internal/api"
	"github.com/jackzampolin/pagesmith/internal/editor"
	"github.com/jackzampolin/pagesmith/internal/home"
)

// LoadDocumentEndpoint handles POST /api/sessions/{id}/document.
type LoadDocumentEndpoint struct {
	MaxUploadBytes int64
}

var _ api.Endpoint = (*LoadDocumentEndpoint)(nil)

func (e *LoadDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/document", e.handler
}

func (e *LoadDocumentEndpoint) RequiresInit() bool { return true }

func (e *LoadDocumentEndpoint) Group() string { return "document" }

// handler godoc
//
//	@Summary		Load a PDF
//	@Description	Replaces the session's document. Selection, drag and any pending confirmation are cleared.
//	@Tags			document
//	@Accept			mpfd
//	@Produce		json
//	@Param			id		path		string	true	"Session ID"
//	@Param			file	formData	file	true	"PDF to load"
//	@Success		200		{object}	editor.State
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/document [post]
func (e *LoadDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	data, _, ok := readUpload(w, r, e.MaxUploadBytes)
	if !ok {
		return
	}
	if err := s.Load(r.Context(), data); err != nil {
		writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

func (e *LoadDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "load <session-id> <file.pdf>",
		Short: "Load a PDF into a session, replacing its document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var state editor.State
			if err := upload(cmd.Context(), getServerURL(), "/api/sessions/"+args[0]+"/document", args[1], &state); err != nil {
				return err
			}
			return api.Output(state)
		},
	}
}

// MergeResponse is the response for a merge.
type MergeResponse struct {
	Added int          `json:"added"`
	State editor.State `json:"state"`
}

// MergeDocumentEndpoint handles POST /api/sessions/{id}/merge.
type MergeDocumentEndpoint struct {
	MaxUploadBytes int64
}

var _ api.Endpoint = (*MergeDocumentEndpoint)(nil)

func (e *MergeDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/merge", e.handler
}

func (e *MergeDocumentEndpoint) RequiresInit() bool { return true }

func (e *MergeDocumentEndpoint) Group() string { return "document" }

// handler godoc
//
//	@Summary		Merge a PDF
//	@Description	Appends every page of the uploaded PDF to the end of the session's document
//	@Tags			document
//	@Accept			mpfd
//	@Produce		json
//	@Param			id		path		string	true	"Session ID"
//	@Param			file	formData	file	true	"PDF to append"
//	@Success		200		{object}	MergeResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/merge [post]
func (e *MergeDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	data, _, ok := readUpload(w, r, e.MaxUploadBytes)
	if !ok {
		return
	}
	added, err := s.Merge(r.Context(), data)
	if err != nil {
		writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MergeResponse{Added: added, State: s.State()})
}

func (e *MergeDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <session-id> <file.pdf>",
		Short: "Append a PDF's pages to a session's document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp MergeResponse
			if err := upload(cmd.Context(), getServerURL(), "/api/sessions/"+args[0]+"/merge", args[1], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DownloadEndpoint handles GET /api/sessions/{id}/download.
type DownloadEndpoint struct{}

var _ api.Endpoint = (*DownloadEndpoint)(nil)

func (e *DownloadEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions/{id}/download", e.handler
}

func (e *DownloadEndpoint) RequiresInit() bool { return true }

func (e *DownloadEndpoint) Group() string { return "document" }

// handler godoc
//
//	@Summary		Download the document
//	@Description	The whole document in its current page order
//	@Tags			document
//	@Produce		application/pdf
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{file}		binary
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/sessions/{id}/download [get]
func (e *DownloadEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	f, err := s.Download(r.Context())
	if err != nil {
		writeEditorError(w, err)
		return
	}
	writeFile(w, f)
}

func (e *DownloadEndpoint) Command(getServerURL func() string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "download <session-id>",
		Short: "Download the full document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return saveDownload(cmd.Context(), getServerURL(), http.MethodGet, "/api/sessions/"+args[0]+"/download", out)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output path (default: ~/.pagesmith/exports/<name>)")
	return cmd
}

// ExtractEndpoint handles POST /api/sessions/{id}/extract.
type ExtractEndpoint struct{}

var _ api.Endpoint = (*ExtractEndpoint)(nil)

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/extract", e.handler
}

func (e *ExtractEndpoint) RequiresInit() bool { return true }

func (e *ExtractEndpoint) Group() string { return "document" }

// handler godoc
//
//	@Summary		Extract selected pages
//	@Description	A new PDF of the selected pages in ascending page order. The session is unchanged.
//	@Tags			document
//	@Produce		application/pdf
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{file}		binary
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/sessions/{id}/extract [post]
func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	f, err := s.Extract(r.Context())
	if err != nil {
		writeEditorError(w, err)
		return
	}
	writeFile(w, f)
}

func (e *ExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "extract <session-id>",
		Short: "Download the selected pages as a new PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return saveDownload(cmd.Context(), getServerURL(), http.MethodPost, "/api/sessions/"+args[0]+"/extract", out)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output path (default: ~/.pagesmith/exports/<name>)")
	return cmd
}

// upload sends a local file as the multipart field "file".
func upload(ctx context.Context, serverURL, path, file string, result any) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer f.Close()
	return api.NewClient(serverURL).Upload(ctx, path, filepath.Base(file), f, result)
}

// saveDownload fetches a PDF and writes it to out, or into the exports
// directory under the name the server suggested.
func saveDownload(ctx context.Context, serverURL, method, path, out string) error {
	f, err := api.NewClient(serverURL).Download(ctx, method, path, nil)
	if err != nil {
		return err
	}
	if out == "" {
		dir, err := home.New("")
		if err != nil {
			return err
		}
		out = dir.ExportPath(f.Name)
	}
	saved, err := api.SaveFile(out, f)
	if err != nil {
		return err
	}
	return api.Output(saved)
}
