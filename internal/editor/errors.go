package editor

import (
	"errors"

	"github.com/jackzampolin/pagesmith/internal/pdfdoc"
	"github.com/jackzampolin/pagesmith/internal/render"
)

// Operation categories. Every failed operation wraps exactly one of these.
var (
	ErrLoad    = pdfdoc.ErrLoad
	ErrReorder = errors.New("reorder failed")
	ErrDelete  = errors.New("delete failed")
	ErrMerge   = errors.New("merge failed")
	ErrSave    = pdfdoc.ErrSave
	ErrExtract = errors.New("extract failed")
	ErrRender  = render.ErrRender
)

// Precondition failures.
var (
	ErrIndex           = pdfdoc.ErrIndex
	ErrNoDocument      = errors.New("no document loaded")
	ErrEmptySelection  = errors.New("no pages selected")
	ErrBusy            = errors.New("another operation is in progress")
	ErrUnknownCard     = errors.New("unknown page card")
	ErrInvalidOrder    = errors.New("invalid page order")
	ErrNoPendingIntent = errors.New("no confirmation pending")
	ErrStaleIntent     = errors.New("confirmation was replaced or already handled")
)
