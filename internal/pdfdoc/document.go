// Package pdfdoc holds the authoritative page sequence of an editing session.
//
// A Document never reorders pages in place. Reorders, filtered deletes and
// extracts build a fresh Document by appending pages from an existing one in
// the wanted order, then the caller swaps it in. A failed build leaves the
// source untouched.
package pdfdoc

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad is returned when input bytes cannot be read as a PDF.
	ErrLoad = errors.New("load failed")

	// ErrEncrypted is returned for encrypted input. It always accompanies ErrLoad.
	ErrEncrypted = errors.New("document is encrypted")

	// ErrIndex is returned when a page index is outside the current document.
	ErrIndex = errors.New("page index out of range")

	// ErrCopy is returned when pages cannot be copied between documents.
	ErrCopy = errors.New("copy pages failed")

	// ErrSave is returned when a document cannot be serialized.
	ErrSave = errors.New("save failed")
)

// Codec is the PDF library seam. Page indices are zero-based.
// Implementations must not retain or modify the byte slices they are given.
type Codec interface {
	// Inspect validates data and returns its page count.
	Inspect(data []byte) (int, error)

	// Collect builds a new PDF holding the given pages of data, in the given order.
	Collect(data []byte, indices []int) ([]byte, error)

	// Concat joins documents in order.
	Concat(docs ...[]byte) ([]byte, error)

	// Remove returns data without the page at index.
	Remove(data []byte, index int) ([]byte, error)
}

// Document is an ordered sequence of pages backed by serialized PDF bytes.
// The zero-page document carries no bytes.
type Document struct {
	codec Codec
	data  []byte
	pages int
}

// New returns an empty document.
func New(codec Codec) *Document {
	return &Document{codec: codec}
}

// Load parses data into a Document.
func Load(codec Codec, data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrLoad)
	}
	pages, err := codec.Inspect(data)
	if err != nil {
		if errors.Is(err, ErrLoad) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	owned := make([]byte, len(data))
	copy(owned, data)
	return &Document{codec: codec, data: owned, pages: pages}, nil
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.pages
}

// Indices returns 0..PageCount()-1.
func (d *Document) Indices() []int {
	out := make([]int, d.pages)
	for i := range out {
		out[i] = i
	}
	return out
}

// AppendPages copies the referenced pages of src onto the end of d, preserving
// the order of indices. src may be d itself. On error d is unchanged.
func (d *Document) AppendPages(src *Document, indices []int) (int, error) {
	if src == nil {
		return 0, fmt.Errorf("%w: nil source document", ErrCopy)
	}
	for _, idx := range indices {
		if idx < 0 || idx >= src.pages {
			return 0, fmt.Errorf("%w: %d (source has %d pages)", ErrIndex, idx, src.pages)
		}
	}
	if len(indices) == 0 {
		return 0, nil
	}

	copied, err := d.codec.Collect(src.data, indices)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCopy, err)
	}

	next := copied
	if d.pages > 0 {
		next, err = d.codec.Concat(d.data, copied)
		if err != nil {
			return 0, fmt.Errorf("%w: failed to append pages: %w", ErrCopy, err)
		}
	}

	d.data = next
	d.pages += len(indices)
	return len(indices), nil
}

// RemovePage drops the page at index. Removing the only page leaves an
// empty document.
func (d *Document) RemovePage(index int) error {
	if index < 0 || index >= d.pages {
		return fmt.Errorf("%w: %d (document has %d pages)", ErrIndex, index, d.pages)
	}
	if d.pages == 1 {
		d.data = nil
		d.pages = 0
		return nil
	}

	next, err := d.codec.Remove(d.data, index)
	if err != nil {
		return fmt.Errorf("failed to remove page %d: %w", index, err)
	}
	d.data = next
	d.pages--
	return nil
}

// Serialize returns the PDF bytes for the current page order.
func (d *Document) Serialize() ([]byte, error) {
	if d.pages == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrSave)
	}
	out := make([]byte, len(d.data))
	copy(out, d.data)
	return out, nil
}

// Clone returns an independent copy of d.
func (d *Document) Clone() *Document {
	c := &Document{codec: d.codec, pages: d.pages}
	if d.data != nil {
		c.data = make([]byte, len(d.data))
		copy(c.data, d.data)
	}
	return c
}
