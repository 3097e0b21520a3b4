package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagesmith/internal/api"
	"github.com/jackzampolin/pagesmith/internal/editor"
)

// RequestDeletePageEndpoint handles POST /api/sessions/{id}/pages/{card_id}/delete.
type RequestDeletePageEndpoint struct{}

var _ api.Endpoint = (*RequestDeletePageEndpoint)(nil)

func (e *RequestDeletePageEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/pages/{card_id}/delete", e.handler
}

func (e *RequestDeletePageEndpoint) RequiresInit() bool { return true }

func (e *RequestDeletePageEndpoint) Group() string { return "confirmation" }

// handler godoc
//
//	@Summary		Request a page delete
//	@Description	Nothing is deleted until the returned intent is confirmed. Replaces any pending intent.
//	@Tags			confirmation
//	@Produce		json
//	@Param			id		path		string	true	"Session ID"
//	@Param			card_id	path		string	true	"Card ID"
//	@Success		202		{object}	editor.Intent
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/pages/{card_id}/delete [post]
func (e *RequestDeletePageEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	intent, err := s.RequestDeletePage(r.PathValue("card_id"))
	if err != nil {
		writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, intent)
}

func (e *RequestDeletePageEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-page <session-id> <card-id>",
		Short: "Ask to delete one page (confirm to apply)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var intent editor.Intent
			if err := client.Post(ctx, "/api/sessions/"+args[0]+"/pages/"+args[1]+"/delete", nil, &intent); err != nil {
				return err
			}
			return api.Output(intent)
		},
	}
}

// RequestDeleteSelectedEndpoint handles POST /api/sessions/{id}/selection/delete.
type RequestDeleteSelectedEndpoint struct{}

var _ api.Endpoint = (*RequestDeleteSelectedEndpoint)(nil)

func (e *RequestDeleteSelectedEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/selection/delete", e.handler
}

func (e *RequestDeleteSelectedEndpoint) RequiresInit() bool { return true }

func (e *RequestDeleteSelectedEndpoint) Group() string { return "confirmation" }

// handler godoc
//
//	@Summary		Request a batch delete
//	@Description	Asks to delete every selected page. Nothing is deleted until confirmed.
//	@Tags			confirmation
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		202	{object}	editor.Intent
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Router			/api/sessions/{id}/selection/delete [post]
func (e *RequestDeleteSelectedEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	intent, err := s.RequestDeleteSelected()
	if err != nil {
		writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, intent)
}

func (e *RequestDeleteSelectedEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-selected <session-id>",
		Short: "Ask to delete the selected pages (confirm to apply)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var intent editor.Intent
			if err := client.Post(ctx, "/api/sessions/"+args[0]+"/selection/delete", nil, &intent); err != nil {
				return err
			}
			return api.Output(intent)
		},
	}
}

// ResolveIntentEndpoint handles
// POST /api/sessions/{id}/confirmation/{intent_id}/{confirm,cancel}.
type ResolveIntentEndpoint struct {
	// Confirm runs the intent when true and discards it otherwise.
	Confirm bool
}

var _ api.Endpoint = (*ResolveIntentEndpoint)(nil)

func (e *ResolveIntentEndpoint) verb() string {
	if e.Confirm {
		return "confirm"
	}
	return "cancel"
}

func (e *ResolveIntentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/confirmation/{intent_id}/" + e.verb(), e.handler
}

func (e *ResolveIntentEndpoint) RequiresInit() bool { return true }

func (e *ResolveIntentEndpoint) Group() string { return "confirmation" }

// handler godoc
//
//	@Summary		Confirm or cancel a pending delete
//	@Description	The intent ID must match the pending intent. A mismatch leaves it pending.
//	@Tags			confirmation
//	@Produce		json
//	@Param			id			path		string	true	"Session ID"
//	@Param			intent_id	path		string	true	"Intent ID"
//	@Success		200			{object}	editor.State
//	@Failure		404			{object}	ErrorResponse
//	@Failure		409			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/api/sessions/{id}/confirmation/{intent_id}/confirm [post]
//	@Router			/api/sessions/{id}/confirmation/{intent_id}/cancel [post]
func (e *ResolveIntentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	intentID := r.PathValue("intent_id")

	var err error
	if e.Confirm {
		err = s.Confirm(r.Context(), intentID)
	} else {
		err = s.Cancel(intentID)
	}
	if err != nil {
		writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

func (e *ResolveIntentEndpoint) Command(getServerURL func() string) *cobra.Command {
	short := "Discard a pending delete"
	if e.Confirm {
		short = "Apply a pending delete"
	}
	return &cobra.Command{
		Use:   e.verb() + " <session-id> <intent-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var state editor.State
			if err := client.Post(ctx, "/api/sessions/"+args[0]+"/confirmation/"+args[1]+"/"+e.verb(), nil, &state); err != nil {
				return err
			}
			return api.Output(state)
		},
	}
}
