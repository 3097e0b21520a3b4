package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagesmith/internal/api"
	"github.com/jackzampolin/pagesmith/internal/editor"
)

// ToggleRequest names the page to toggle, by card or by canonical index.
type ToggleRequest struct {
	CardID string `json:"card_id,omitempty"`
	Index  *int   `json:"index,omitempty"`
}

// ToggleResponse reports the toggled page's new membership.
type ToggleResponse struct {
	Selected bool         `json:"selected"`
	State    editor.State `json:"state"`
}

// ToggleSelectionEndpoint handles POST /api/sessions/{id}/selection/toggle.
type ToggleSelectionEndpoint struct{}

var _ api.Endpoint = (*ToggleSelectionEndpoint)(nil)

func (e *ToggleSelectionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/selection/toggle", e.handler
}

func (e *ToggleSelectionEndpoint) RequiresInit() bool { return true }

func (e *ToggleSelectionEndpoint) Group() string { return "selection" }

// handler godoc
//
//	@Summary		Toggle a page's selection
//	@Description	Give exactly one of card_id or index
//	@Tags			selection
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Session ID"
//	@Param			request	body		ToggleRequest	true	"Page to toggle"
//	@Success		200		{object}	ToggleResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/selection/toggle [post]
func (e *ToggleSelectionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var req ToggleRequest
	if err := decodeBody(r, toggleSchema, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var selected bool
	var err error
	if req.Index != nil {
		selected, err = s.Toggle(*req.Index)
	} else {
		selected, err = s.ToggleCard(req.CardID)
	}
	if err != nil {
		writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ToggleResponse{Selected: selected, State: s.State()})
}

func (e *ToggleSelectionEndpoint) Command(getServerURL func() string) *cobra.Command {
	var cardID string
	var index int
	cmd := &cobra.Command{
		Use:   "toggle <session-id>",
		Short: "Toggle a page's selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indexSet := cmd.Flags().Changed("index")
			if (cardID == "") == !indexSet {
				return fmt.Errorf("exactly one of --card or --index is required")
			}
			req := ToggleRequest{CardID: cardID}
			if indexSet {
				req.Index = &index
			}

			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp ToggleResponse
			if err := client.Post(ctx, "/api/sessions/"+args[0]+"/selection/toggle", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&cardID, "card", "", "Card ID")
	cmd.Flags().IntVar(&index, "index", 0, "Canonical page index (0-based)")
	return cmd
}

// ToggleAllResponse reports the selection size after a toggle-all.
type ToggleAllResponse struct {
	Selected int          `json:"selected"`
	State    editor.State `json:"state"`
}

// ToggleAllEndpoint handles POST /api/sessions/{id}/selection/all.
type ToggleAllEndpoint struct{}

var _ api.Endpoint = (*ToggleAllEndpoint)(nil)

func (e *ToggleAllEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/selection/all", e.handler
}

func (e *ToggleAllEndpoint) RequiresInit() bool { return true }

func (e *ToggleAllEndpoint) Group() string { return "selection" }

// handler godoc
//
//	@Summary		Select or clear all pages
//	@Description	Selects every page, or clears the selection when every page is already selected
//	@Tags			selection
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	ToggleAllResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Router			/api/sessions/{id}/selection/all [post]
func (e *ToggleAllEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	n, err := s.ToggleAll()
	if err != nil {
		writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ToggleAllResponse{Selected: n, State: s.State()})
}

func (e *ToggleAllEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "all <session-id>",
		Short: "Select every page, or clear if all are selected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp ToggleAllResponse
			if err := client.Post(ctx, "/api/sessions/"+args[0]+"/selection/all", nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ClearSelectionEndpoint handles DELETE /api/sessions/{id}/selection.
type ClearSelectionEndpoint struct{}

var _ api.Endpoint = (*ClearSelectionEndpoint)(nil)

func (e *ClearSelectionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/sessions/{id}/selection", e.handler
}

func (e *ClearSelectionEndpoint) RequiresInit() bool { return true }

func (e *ClearSelectionEndpoint) Group() string { return "selection" }

// handler godoc
//
//	@Summary		Clear the selection
//	@Tags			selection
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	editor.State
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Router			/api/sessions/{id}/selection [delete]
func (e *ClearSelectionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	if err := s.ClearSelection(); err != nil {
		writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

func (e *ClearSelectionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <session-id>",
		Short: "Clear the selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			if err := client.Delete(ctx, "/api/sessions/"+args[0]+"/selection"); err != nil {
				return err
			}
			return api.Output(map[string]string{"session": args[0], "selection": "cleared"})
		},
	}
}
