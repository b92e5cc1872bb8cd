// Package pdftest builds small PDF and PNG fixtures for tests.
package pdftest

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func init() {
	api.DisableConfigDir()
}

// Size is a page size in pixels.
type Size struct {
	W, H int
}

// WritePNG writes an opaque w×h PNG filled with c.
func WritePNG(t testing.TB, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// MakePDF writes a PDF at path with one white page per size.
func MakePDF(t testing.TB, path string, sizes ...Size) {
	t.Helper()
	dir := t.TempDir()
	files := make([]string, len(sizes))
	for i, s := range sizes {
		files[i] = filepath.Join(dir, fmt.Sprintf("p%d.png", i))
		WritePNG(t, files[i], s.W, s.H, color.White)
	}
	imp, err := pdfcpu.ParseImportDetails("pos:full", types.POINTS)
	if err != nil {
		t.Fatal(err)
	}
	if err := api.ImportImagesFile(files, path, imp, nil); err != nil {
		t.Fatal(err)
	}
}

// PageCount returns the number of pages of the PDF at path.
func PageCount(t testing.TB, path string) int {
	t.Helper()
	n, err := api.PageCountFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

// StampedPages returns the 1-based numbers of the pages of the PDF at path
// that carry a pdfcpu stamp or watermark.
func StampedPages(t testing.TB, path string) []int {
	t.Helper()
	var pages []int
	dir := t.TempDir()
	for i := 1; i <= PageCount(t, path); i++ {
		out := filepath.Join(dir, fmt.Sprintf("unstamped-%d.pdf", i))
		if err := api.RemoveWatermarksFile(path, out, []string{fmt.Sprint(i)}, nil); err == nil {
			pages = append(pages, i)
		}
	}
	return pages
}
