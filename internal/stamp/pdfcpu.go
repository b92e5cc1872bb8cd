package stamp

import (
	"context"
	"fmt"
	"os"

	fsimage "fspdf/internal/image"
	"fspdf/internal/log"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/pkg/errors"
)

// Each overlay page is scaled to the full width of its target page and
// centred, on top of the existing content.
const watermarkDesc = "scalefactor:1 rel, position:c, rotation:0, opacity:1"

// Pdfcpu stamps in-process with pdfcpu: the overlays are imported as one
// image per page and each page of the result is applied as a PDF stamp.
// Pages whose overlay is fully transparent are left untouched.
type Pdfcpu struct {
	Conf *model.Configuration
}

func (p *Pdfcpu) conf() *model.Configuration {
	if p.Conf != nil {
		return p.Conf
	}
	return model.NewDefaultConfiguration()
}

// Stamp implements Stamper. The context is only checked between steps.
func (p *Pdfcpu) Stamp(ctx context.Context, pdfPath string, overlays []string, outPath string) error {
	if len(overlays) == 0 {
		return errors.New("no overlays to stamp")
	}
	conf := p.conf()
	stampPDF := OverlayPDF(pdfPath)

	// ImportImagesFile appends to an existing file.
	if err := os.Remove(stampPDF); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove stale overlay PDF")
	}

	imp, err := pdfcpu.ParseImportDetails("pos:full", types.POINTS)
	if err != nil {
		return errors.Wrap(err, "import settings")
	}
	log.Info.Printf("building overlay PDF from %d images", len(overlays))
	if err := api.ImportImagesFile(overlays, stampPDF, imp, conf); err != nil {
		return errors.Wrap(err, "build overlay PDF")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	n, err := api.PageCountFile(pdfPath)
	if err != nil {
		return errors.Wrapf(err, "read %s", pdfPath)
	}
	if n > len(overlays) {
		n = len(overlays)
	}

	stamps := make(map[int]*model.Watermark, n)
	for i := 1; i <= n; i++ {
		img, err := fsimage.Load(overlays[i-1])
		if err != nil {
			return err
		}
		if fsimage.IsTransparent(img) {
			continue
		}
		wm, err := pdfcpu.ParsePDFWatermarkDetails(fmt.Sprintf("%s:%d", stampPDF, i), watermarkDesc, true, types.POINTS)
		if err != nil {
			return errors.Wrapf(err, "overlay page %d", i)
		}
		stamps[i] = wm
	}

	if len(stamps) == 0 {
		log.Info.Printf("nothing to stamp, copying %s", pdfPath)
		return copyFile(pdfPath, outPath)
	}

	log.Info.Printf("stamping %d pages into %s", len(stamps), outPath)
	if err := api.AddWatermarksMapFile(pdfPath, outPath, stamps, conf); err != nil {
		return errors.Wrap(err, "stamp PDF")
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrap(err, "read input PDF")
	}
	return errors.Wrap(os.WriteFile(dst, data, 0o644), "write output PDF")
}
