package stamp

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"testing"

	"fspdf/internal/pdftest"
	"fspdf/internal/tool"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	calls  [][]string
	failOn string
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	if name == r.failOn {
		return &tool.Error{Name: name, Err: errors.New("exit status 1"), Stderr: "bad input"}
	}
	return nil
}

func TestNames(t *testing.T) {
	assert.Equal(t, "/tmp/w/input-stamp.pdf", OverlayPDF("/tmp/w/input.pdf"))
	assert.Equal(t, "/home/a/contract-signed.pdf", SignedName("/home/a/contract.pdf"))
	assert.Equal(t, "/home/a/contract.v2-signed.pdf", SignedName("/home/a/contract.v2.PDF"))
}

func TestPdftkPipeline(t *testing.T) {
	r := &recordingRunner{}
	p := &Pdftk{Runner: r}

	err := p.Stamp(context.Background(), "/w/input.pdf", []string{"/w/a.png", "/w/b.png", "/w/empty.png"}, "/out/doc-signed.pdf")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"convert", "/w/a.png", "/w/b.png", "/w/empty.png", "/w/input-stamp.pdf"},
		{"pdftk", "/w/input.pdf", "multistamp", "/w/input-stamp.pdf", "output", "/out/doc-signed.pdf"},
	}, r.calls)
}

func TestPdftkStopsOnFailure(t *testing.T) {
	r := &recordingRunner{failOn: "convert"}
	err := (&Pdftk{Runner: r}).Stamp(context.Background(), "in.pdf", []string{"a.png"}, "out.pdf")
	require.Error(t, err)
	assert.Len(t, r.calls, 1)

	var te *tool.Error
	assert.True(t, errors.As(err, &te))
	assert.Contains(t, err.Error(), "build overlay PDF")
}

func TestStampRequiresOverlays(t *testing.T) {
	assert.Error(t, (&Pdftk{Runner: &recordingRunner{}}).Stamp(context.Background(), "in.pdf", nil, "out.pdf"))
	assert.Error(t, (&Pdfcpu{}).Stamp(context.Background(), "in.pdf", nil, "out.pdf"))
}

// writeOverlays writes one transparent overlay per size, except for the
// pages in inked, which are filled with black, plus a transparent filler.
func writeOverlays(t *testing.T, dir string, sizes []pdftest.Size, inked ...int) []string {
	t.Helper()
	var overlays []string
	for i, s := range sizes {
		c := color.Color(color.NRGBA{})
		for _, p := range inked {
			if p == i+1 {
				c = color.Black
			}
		}
		path := filepath.Join(dir, fmt.Sprintf("input-%04d-stamp.png", i))
		pdftest.WritePNG(t, path, s.W, s.H, c)
		overlays = append(overlays, path)
	}
	filler := filepath.Join(dir, "input-empty.png")
	pdftest.WritePNG(t, filler, sizes[0].W, sizes[0].H, color.NRGBA{})
	return append(overlays, filler)
}

func TestPdfcpuStamp(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.pdf")
	sizes := []pdftest.Size{{W: 200, H: 280}, {W: 280, H: 200}, {W: 150, H: 150}}
	pdftest.MakePDF(t, in, sizes...)
	overlays := writeOverlays(t, dir, sizes, 2)

	out := filepath.Join(dir, "signed.pdf")
	require.NoError(t, (&Pdfcpu{}).Stamp(context.Background(), in, overlays, out))

	assert.Equal(t, 3, pdftest.PageCount(t, out))
	assert.Equal(t, 4, pdftest.PageCount(t, OverlayPDF(in)))
	assert.Equal(t, []int{2}, pdftest.StampedPages(t, out))

	before, err := api.PageDimsFile(in)
	require.NoError(t, err)
	after, err := api.PageDimsFile(out)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPdfcpuStampBlankOverlaysCopiesInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.pdf")
	sizes := []pdftest.Size{{W: 200, H: 280}, {W: 280, H: 200}}
	pdftest.MakePDF(t, in, sizes...)
	overlays := writeOverlays(t, dir, sizes)

	out := filepath.Join(dir, "signed.pdf")
	require.NoError(t, (&Pdfcpu{}).Stamp(context.Background(), in, overlays, out))

	assert.Equal(t, 2, pdftest.PageCount(t, out))
	assert.Empty(t, pdftest.StampedPages(t, out))
}

func TestNew(t *testing.T) {
	for name, want := range map[string]string{"pdftk": "*stamp.Pdftk", "": "*stamp.Pdftk", "pdfcpu": "*stamp.Pdfcpu"} {
		s, err := New(name, tool.Exec{})
		require.NoError(t, err)
		assert.Equal(t, want, fmt.Sprintf("%T", s))
	}
	_, err := New("qpdf", tool.Exec{})
	assert.Error(t, err)
}
