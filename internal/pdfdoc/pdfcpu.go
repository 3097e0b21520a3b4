package pdfdoc

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// PDFCPU is a Codec backed by pdfcpu.
type PDFCPU struct {
	// Strict switches validation from relaxed to strict.
	Strict bool
}

var _ Codec = (*PDFCPU)(nil)

// NewPDFCPU returns a pdfcpu codec. pdfcpu's on-disk config dir is disabled
// so the service never writes outside its own home.
func NewPDFCPU(strict bool) *PDFCPU {
	disableConfigDir.Do(api.DisableConfigDir)
	return &PDFCPU{Strict: strict}
}

// conf returns a fresh configuration; pdfcpu mutates it per command.
func (c *PDFCPU) conf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if c.Strict {
		conf.ValidationMode = model.ValidationStrict
	}
	return conf
}

// Inspect reads and validates data and returns the page count.
func (c *PDFCPU) Inspect(data []byte) (int, error) {
	ctx, err := api.ReadContext(bytes.NewReader(data), c.conf())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if ctx.Encrypt != nil {
		return 0, fmt.Errorf("%w: %w", ErrLoad, ErrEncrypted)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return 0, fmt.Errorf("%w: validation failed: %w", ErrLoad, err)
	}
	return ctx.PageCount, nil
}

// Collect writes a new PDF containing the selected pages in order.
func (c *PDFCPU) Collect(data []byte, indices []int) ([]byte, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("no pages selected")
	}
	var buf bytes.Buffer
	if err := api.Collect(bytes.NewReader(data), &buf, pageSelection(indices), c.conf()); err != nil {
		return nil, fmt.Errorf("failed to collect pages: %w", err)
	}
	return buf.Bytes(), nil
}

// Concat merges documents in order.
func (c *PDFCPU) Concat(docs ...[]byte) ([]byte, error) {
	switch len(docs) {
	case 0:
		return nil, fmt.Errorf("nothing to concatenate")
	case 1:
		return docs[0], nil
	}

	readers := make([]io.ReadSeeker, len(docs))
	for i, d := range docs {
		readers[i] = bytes.NewReader(d)
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, c.conf()); err != nil {
		return nil, fmt.Errorf("failed to merge documents: %w", err)
	}
	return buf.Bytes(), nil
}

// Remove writes data without the page at index.
func (c *PDFCPU) Remove(data []byte, index int) ([]byte, error) {
	var buf bytes.Buffer
	if err := api.RemovePages(bytes.NewReader(data), &buf, pageSelection([]int{index}), c.conf()); err != nil {
		return nil, fmt.Errorf("failed to remove page: %w", err)
	}
	return buf.Bytes(), nil
}

// pageSelection converts zero-based indices to pdfcpu's 1-based page selection.
func pageSelection(indices []int) []string {
	sel := make([]string, len(indices))
	for i, idx := range indices {
		sel[i] = strconv.Itoa(idx + 1)
	}
	return sel
}
