// Package render produces page thumbnails off the request path.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"golang.org/x/image/draw"
)

// ErrRender is returned when a single page thumbnail cannot be produced.
var ErrRender = errors.New("render failed")

// DefaultScale is the thumbnail scale relative to the page's native size.
const DefaultScale = 0.5

// Renderer turns one page of a serialized PDF into PNG bytes.
// page is 1-indexed.
type Renderer interface {
	Render(ctx context.Context, pdf []byte, page int) ([]byte, error)
}

// Pdftoppm renders pages with poppler's pdftoppm.
type Pdftoppm struct {
	// Binary is the pdftoppm executable (default: "pdftoppm" on PATH).
	Binary string
	// Scale multiplies the page's native size; 72 DPI is native.
	Scale float64
	// MaxWidth caps the thumbnail width in pixels; 0 disables the cap.
	MaxWidth int
}

var _ Renderer = (*Pdftoppm)(nil)

// dpi converts Scale to the resolution pdftoppm expects.
func (p *Pdftoppm) dpi() int {
	scale := p.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	dpi := int(72*scale + 0.5)
	if dpi < 1 {
		dpi = 1
	}
	return dpi
}

// Available reports whether the pdftoppm binary can be found.
func (p *Pdftoppm) Available() error {
	_, err := exec.LookPath(p.binary())
	return err
}

func (p *Pdftoppm) binary() string {
	if p.Binary == "" {
		return "pdftoppm"
	}
	return p.Binary
}

// Render renders a single page to PNG.
func (p *Pdftoppm) Render(ctx context.Context, pdf []byte, page int) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	tmpDir, err := os.MkdirTemp("", "pagesmith-thumb-*")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create temp dir: %w", ErrRender, err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(pdfPath, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("%w: failed to write pdf: %w", ErrRender, err)
	}

	// -singlefile writes <prefix>.png without a page suffix.
	outputPrefix := filepath.Join(tmpDir, "page")
	pageStr := strconv.Itoa(page)
	cmd := exec.CommandContext(ctx, p.binary(),
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", strconv.Itoa(p.dpi()),
		"-singlefile",
		pdfPath,
		outputPrefix,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%w: pdftoppm failed: %w (output: %s)", ErrRender, err, string(output))
	}

	data, err := os.ReadFile(outputPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("%w: pdftoppm did not create expected output: %w", ErrRender, err)
	}

	if p.MaxWidth > 0 {
		data, err = Downscale(data, p.MaxWidth)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRender, err)
		}
	}
	return data, nil
}

// Downscale shrinks a PNG to at most maxWidth pixels wide, keeping the aspect
// ratio. Images already narrow enough are returned unchanged.
func Downscale(data []byte, maxWidth int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode png: %w", err)
	}

	b := src.Bounds()
	if b.Dx() <= maxWidth {
		return data, nil
	}

	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
