package app

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"

	fsimage "fspdf/internal/image"
	"fspdf/internal/log"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Save flattens every page into a transparent overlay at its native
// resolution, appends one blank filler page, and stamps them onto the input
// PDF. It returns the path of the signed PDF.
func (s *Session) Save(ctx context.Context) (string, error) {
	if s.workDir == "" {
		return "", errors.New("session is closed")
	}
	if s.drag != nil {
		s.EndDrag()
	}

	overlays, err := s.writeOverlays(ctx)
	if err != nil {
		return "", err
	}

	first := s.pages[0]
	filler := filepath.Join(s.workDir, "input-empty.png")
	if err := fsimage.SavePNG(filler, fsimage.NewOverlay(first.SourceWidth, first.SourceHeight)); err != nil {
		return "", errors.Wrap(err, "write filler page")
	}

	out := s.OutputPath()
	if err := s.stamper.Stamp(ctx, s.workPDF, append(overlays, filler), out); err != nil {
		return "", errors.Wrap(err, "save signed PDF")
	}
	log.Info.Printf("saved %s", out)
	s.Emit(EventSaved, out)
	return out, nil
}

// writeOverlays renders and encodes the page overlays concurrently. Pages
// are only read here.
func (s *Session) writeOverlays(ctx context.Context) ([]string, error) {
	overlays := make([]string, len(s.pages))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, p := range s.pages {
		overlays[i] = overlayPath(p.Path)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			log.Trace.Printf("flattening page %d (%d annotations)", i+1, p.Len())
			return fsimage.SavePNG(overlays[i], p.Flatten())
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "write overlays")
	}
	return overlays, nil
}

// overlayPath names a page's overlay after its raster: page-0001.png
// becomes page-0001-stamp.png.
func overlayPath(pagePath string) string {
	return strings.TrimSuffix(pagePath, filepath.Ext(pagePath)) + "-stamp.png"
}
