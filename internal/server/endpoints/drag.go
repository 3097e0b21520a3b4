package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagesmith/internal/api"
	"github.com/jackzampolin/pagesmith/internal/editor"
)

// CardRequest names a card.
type CardRequest struct {
	CardID string `json:"card_id"`
}

// DragEndpoint handles one step of a drag-and-drop reorder:
// POST /api/sessions/{id}/drag/{start,over,drop,end}.
type DragEndpoint struct {
	// Step is one of start, over, drop or end.
	Step string
}

var _ api.Endpoint = (*DragEndpoint)(nil)

func (e *DragEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/drag/" + e.Step, e.handler
}

func (e *DragEndpoint) RequiresInit() bool { return true }

func (e *DragEndpoint) Group() string { return "drag" }

// takesCard reports whether the step names a card in its body.
func (e *DragEndpoint) takesCard() bool {
	return e.Step == "start" || e.Step == "over"
}

// handler godoc
//
//	@Summary		Drag a page card
//	@Description	start picks up a card and clears the selection. over moves it next to another card in the visual order only.
//	@Description	drop commits the visual order to the document. end abandons the drag and restores the order.
//	@Tags			drag
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Session ID"
//	@Param			step	path		string		true	"start, over, drop or end"
//	@Param			request	body		CardRequest	false	"Card to drag (start) or hover over (over)"
//	@Success		200		{object}	editor.State
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/sessions/{id}/drag/{step} [post]
func (e *DragEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req CardRequest
	if e.takesCard() {
		if err := decodeBody(r, cardSchema, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var err error
	switch e.Step {
	case "start":
		err = s.DragStart(req.CardID)
	case "over":
		err = s.DragOver(req.CardID)
	case "drop":
		err = s.Drop(r.Context())
	case "end":
		err = s.DragEnd()
	default:
		writeError(w, http.StatusNotFound, "unknown drag step: "+e.Step)
		return
	}
	if err != nil {
		writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

func (e *DragEndpoint) Command(getServerURL func() string) *cobra.Command {
	use := e.Step + " <session-id>"
	args := cobra.ExactArgs(1)
	if e.takesCard() {
		use = e.Step + " <session-id> <card-id>"
		args = cobra.ExactArgs(2)
	}

	return &cobra.Command{
		Use:   use,
		Short: dragShort[e.Step],
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			var body any
			if e.takesCard() {
				body = CardRequest{CardID: args[1]}
			}
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var state editor.State
			if err := client.Post(ctx, "/api/sessions/"+args[0]+"/drag/"+e.Step, body, &state); err != nil {
				return err
			}
			return api.Output(state)
		},
	}
}

var dragShort = map[string]string{
	"start": "Pick up a card (clears the selection)",
	"over":  "Move the dragged card next to another card",
	"drop":  "Commit the dragged order to the document",
	"end":   "Abandon the drag and restore the order",
}
