package rasterize

import (
	"context"
	"path/filepath"
	"strconv"

	"fspdf/internal/log"
	"fspdf/internal/tool"
)

// Pdftoppm rasterizes with poppler's pdftoppm. It numbers pages from 1 and
// zero-pads to the width of the page count.
type Pdftoppm struct {
	Runner tool.Runner
}

// Args returns the pdftoppm arguments for one run.
func (p *Pdftoppm) Args(pdfPath, outDir string, density int) []string {
	prefix := filepath.Join(outDir, pagePrefix(pdfPath))
	return []string{"-png", "-r", strconv.Itoa(density), pdfPath, prefix}
}

// Rasterize implements Rasterizer.
func (p *Pdftoppm) Rasterize(ctx context.Context, pdfPath, outDir string, density int) ([]string, error) {
	log.Info.Printf("rasterizing %s at %d dpi with pdftoppm", pdfPath, density)
	if err := p.Runner.Run(ctx, "pdftoppm", p.Args(pdfPath, outDir, density)...); err != nil {
		return nil, err
	}
	return PageFiles(outDir, pagePrefix(pdfPath))
}
