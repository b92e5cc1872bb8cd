// Package stamp merges per-page overlay images onto a PDF.
//
// A stamper receives the overlays in page order (plus any trailing filler
// pages), turns them into an overlay PDF with one page per image, and stamps
// page i of that PDF onto page i of the original.
package stamp

import (
	"context"
	"path/filepath"
	"strings"

	"fspdf/internal/tool"

	"github.com/pkg/errors"
)

// Stamper produces outPath from pdfPath and the ordered overlay images.
type Stamper interface {
	Stamp(ctx context.Context, pdfPath string, overlays []string, outPath string) error
}

// New returns the stamper registered under name ("pdftk" or "pdfcpu").
func New(name string, runner tool.Runner) (Stamper, error) {
	switch name {
	case "pdftk", "":
		return &Pdftk{Runner: runner}, nil
	case "pdfcpu":
		return &Pdfcpu{}, nil
	default:
		return nil, errors.Errorf("unknown stamper %q", name)
	}
}

// OverlayPDF returns the path of the intermediate overlay PDF, next to
// pdfPath.
func OverlayPDF(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + "-stamp.pdf"
}

// SignedName returns the output name for pdfPath: "<base>-signed.pdf".
func SignedName(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + "-signed.pdf"
}
