package render_test

import (
	"bytes"
	"context"
	"image/png"
	"testing"
	"time"

	"github.com/jackzampolin/pagesmith/internal/render"
	"github.com/jackzampolin/pagesmith/internal/testutil"
)

func TestPdftoppm_RenderHalfScale(t *testing.T) {
	bin := testutil.RequirePdftoppm(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	r := &render.Pdftoppm{Binary: bin, Scale: 0.5}
	pdf := testutil.BuildPDF("first", "second")

	out, err := r.Render(ctx, pdf, 2)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a png: %v", err)
	}

	wantW := int(testutil.PageWidth(1) / 2)
	if diff := cfg.Width - wantW; diff < -1 || diff > 1 {
		t.Errorf("width = %d, want ~%d", cfg.Width, wantW)
	}
	if diff := cfg.Height - 150; diff < -1 || diff > 1 {
		t.Errorf("height = %d, want ~150", cfg.Height)
	}
}

func TestPdftoppm_BadInput(t *testing.T) {
	bin := testutil.RequirePdftoppm(t)

	r := &render.Pdftoppm{Binary: bin}
	if _, err := r.Render(context.Background(), []byte("not a pdf"), 1); err == nil {
		t.Error("expected error for invalid pdf")
	}
}
