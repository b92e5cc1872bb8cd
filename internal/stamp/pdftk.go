package stamp

import (
	"context"

	"fspdf/internal/log"
	"fspdf/internal/tool"

	"github.com/pkg/errors"
)

// Pdftk builds the overlay PDF with ImageMagick's convert and merges it
// with "pdftk multistamp".
type Pdftk struct {
	Runner tool.Runner
}

// ConvertArgs returns the arguments that assemble the overlay PDF.
func (p *Pdftk) ConvertArgs(overlays []string, stampPDF string) []string {
	args := make([]string, 0, len(overlays)+1)
	args = append(args, overlays...)
	return append(args, stampPDF)
}

// MultistampArgs returns the pdftk arguments for the merge.
func (p *Pdftk) MultistampArgs(pdfPath, stampPDF, outPath string) []string {
	return []string{pdfPath, "multistamp", stampPDF, "output", outPath}
}

// Stamp implements Stamper.
func (p *Pdftk) Stamp(ctx context.Context, pdfPath string, overlays []string, outPath string) error {
	if len(overlays) == 0 {
		return errors.New("no overlays to stamp")
	}
	stampPDF := OverlayPDF(pdfPath)

	log.Info.Printf("building overlay PDF from %d images", len(overlays))
	if err := p.Runner.Run(ctx, "convert", p.ConvertArgs(overlays, stampPDF)...); err != nil {
		return errors.Wrap(err, "build overlay PDF")
	}

	log.Info.Printf("stamping %s", outPath)
	if err := p.Runner.Run(ctx, "pdftk", p.MultistampArgs(pdfPath, stampPDF, outPath)...); err != nil {
		return errors.Wrap(err, "stamp PDF")
	}
	return nil
}
