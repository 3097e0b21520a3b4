package endpoints

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagesmith/internal/api"
	"github.com/jackzampolin/pagesmith/internal/editor"
	"github.com/jackzampolin/pagesmith/internal/view"
)

// ListPagesResponse is the card list in visual order.
type ListPagesResponse struct {
	Cards []editor.CardState `json:"cards"`
	Total int                `json:"total"`
}

// ListPagesEndpoint handles GET /api/sessions/{id}/pages.
type ListPagesEndpoint struct{}

var _ api.Endpoint = (*ListPagesEndpoint)(nil)

func (e *ListPagesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions/{id}/pages", e.handler
}

func (e *ListPagesEndpoint) RequiresInit() bool { return true }

func (e *ListPagesEndpoint) Group() string { return "pages" }

// handler godoc
//
//	@Summary		List page cards
//	@Description	Cards in visual order with their canonical index, label, thumbnail state and selection
//	@Tags			pages
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	ListPagesResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/sessions/{id}/pages [get]
func (e *ListPagesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	cards := s.State().Cards
	writeJSON(w, http.StatusOK, ListPagesResponse{Cards: cards, Total: len(cards)})
}

func (e *ListPagesEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list <session-id>",
		Short: "List page cards in visual order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp ListPagesResponse
			if err := client.Get(ctx, "/api/sessions/"+args[0]+"/pages", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ThumbnailStatus is returned while a thumbnail is not available.
type ThumbnailStatus struct {
	CardID string          `json:"card_id"`
	State  view.ThumbState `json:"state"`
}

// ThumbnailEndpoint handles GET /api/sessions/{id}/pages/{card_id}/thumbnail.
type ThumbnailEndpoint struct{}

var _ api.Endpoint = (*ThumbnailEndpoint)(nil)

func (e *ThumbnailEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions/{id}/pages/{card_id}/thumbnail", e.handler
}

func (e *ThumbnailEndpoint) RequiresInit() bool { return true }

func (e *ThumbnailEndpoint) Group() string { return "pages" }

// handler godoc
//
//	@Summary		Get a page thumbnail
//	@Description	PNG when rendered; 202 while pending; 404 for an unknown card or a failed render
//	@Tags			pages
//	@Produce		png
//	@Param			id		path		string	true	"Session ID"
//	@Param			card_id	path		string	true	"Card ID"
//	@Success		200		{file}		binary
//	@Success		202		{object}	ThumbnailStatus
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/pages/{card_id}/thumbnail [get]
func (e *ThumbnailEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	cardID := r.PathValue("card_id")
	png, state, err := s.Thumbnail(cardID)
	if err != nil {
		writeEditorError(w, err)
		return
	}

	switch state {
	case view.ThumbReady:
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "private, max-age=3600")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	case view.ThumbPending:
		writeJSON(w, http.StatusAccepted, ThumbnailStatus{CardID: cardID, State: state})
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("thumbnail %s for card %s", state, cardID))
	}
}

func (e *ThumbnailEndpoint) Command(getServerURL func() string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "thumbnail <session-id> <card-id>",
		Short: "Save a page thumbnail as PNG",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			f, err := client.Download(ctx, http.MethodGet, "/api/sessions/"+args[0]+"/pages/"+args[1]+"/thumbnail", nil)
			if err != nil {
				return err
			}
			if f.ContentType != "image/png" {
				fmt.Fprintln(os.Stderr, "thumbnail not rendered yet")
				return api.Output(ThumbnailStatus{CardID: args[1], State: view.ThumbPending})
			}
			if out == "" {
				out = args[1] + ".png"
			}
			saved, err := api.SaveFile(out, f)
			if err != nil {
				return err
			}
			return api.Output(saved)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output path (default: <card-id>.png)")
	return cmd
}

// ReorderRequest is the body for a full order commit.
type ReorderRequest struct {
	Order []string `json:"order"`
}

// ReorderEndpoint handles POST /api/sessions/{id}/reorder.
type ReorderEndpoint struct{}

var _ api.Endpoint = (*ReorderEndpoint)(nil)

func (e *ReorderEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/reorder", e.handler
}

func (e *ReorderEndpoint) RequiresInit() bool { return true }

func (e *ReorderEndpoint) Group() string { return "pages" }

// handler godoc
//
//	@Summary		Reorder pages
//	@Description	Commits a complete visual order, given as every card ID exactly once
//	@Tags			pages
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Session ID"
//	@Param			request	body		ReorderRequest	true	"New card order"
//	@Success		200		{object}	editor.State
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/reorder [post]
func (e *ReorderEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var req ReorderRequest
	if err := decodeBody(r, reorderSchema, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.Reorder(r.Context(), req.Order); err != nil {
		writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

func (e *ReorderEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <session-id> <card-id>...",
		Short: "Commit a new page order by card ID",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var state editor.State
			if err := client.Post(ctx, "/api/sessions/"+args[0]+"/reorder", ReorderRequest{Order: args[1:]}, &state); err != nil {
				return err
			}
			return api.Output(state)
		},
	}
}
