// Package rasterize turns a PDF into one PNG per page using an external
// converter.
package rasterize

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"fspdf/internal/log"
	"fspdf/internal/tool"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pkg/errors"
)

// Rasterizer renders every page of pdfPath into outDir at density DPI and
// returns the page images in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, outDir string, density int) ([]string, error)
}

// New returns the rasterizer registered under name ("convert" or
// "pdftoppm").
func New(name string, runner tool.Runner) (Rasterizer, error) {
	switch name {
	case "convert", "":
		return &Convert{Runner: runner}, nil
	case "pdftoppm":
		return &Pdftoppm{Runner: runner}, nil
	default:
		return nil, errors.Errorf("unknown rasterizer %q", name)
	}
}

// pagePrefix is the base name given to page images inside outDir.
func pagePrefix(pdfPath string) string {
	return strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
}

// PageFiles lists "<prefix>-<n>.png" files in dir ordered by n.
func PageFiles(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "list page images")
	}

	re := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-(\d+)\.png$`)
	type page struct {
		n    int
		path string
	}
	var pages []page
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := re.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		pages = append(pages, page{n: n, path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })

	files := make([]string, len(pages))
	for i, p := range pages {
		files[i] = p.path
	}
	return files, nil
}

// Run rasterizes pdfPath with r and checks that one image was produced per
// PDF page. A PDF that pdfcpu cannot read is only logged, since the
// converter may still handle it.
func Run(ctx context.Context, r Rasterizer, pdfPath, outDir string, density int) ([]string, error) {
	files, err := r.Rasterize(ctx, pdfPath, outDir, density)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no page images produced for %s", pdfPath)
	}

	n, err := api.PageCountFile(pdfPath)
	if err != nil {
		log.Warning.Printf("unable to count pages of %s: %v", pdfPath, err)
		return files, nil
	}
	if n != len(files) {
		return nil, errors.Errorf("%s has %d pages but %d page images were produced", pdfPath, n, len(files))
	}
	return files, nil
}
