package endpoints

import (
	"errors"
	"net/http"

	"github.com/jackzampolin/pagesmith/internal/editor"
	"github.com/jackzampolin/pagesmith/internal/sessions"
)

// statusFor maps editor and session errors to HTTP status codes.
// Client mistakes are checked before the operation categories that wrap them.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sessions.ErrNotFound),
		errors.Is(err, editor.ErrUnknownCard),
		errors.Is(err, editor.ErrNoPendingIntent):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrIndex),
		errors.Is(err, editor.ErrInvalidOrder):
		return http.StatusBadRequest
	case errors.Is(err, editor.ErrBusy),
		errors.Is(err, editor.ErrNoDocument),
		errors.Is(err, editor.ErrEmptySelection),
		errors.Is(err, editor.ErrStaleIntent):
		return http.StatusConflict
	case errors.Is(err, editor.ErrLoad),
		errors.Is(err, editor.ErrMerge):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeEditorError writes err with the status statusFor picks.
func writeEditorError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}
