package rasterize

import (
	"context"
	"path/filepath"
	"strconv"

	"fspdf/internal/log"
	"fspdf/internal/tool"
)

// Convert rasterizes with ImageMagick's convert. Pages are written as
// <name>-0000.png, <name>-0001.png, ... with the alpha channel off.
type Convert struct {
	Runner  tool.Runner
	Command string // defaults to "convert"
}

func (c *Convert) command() string {
	if c.Command == "" {
		return "convert"
	}
	return c.Command
}

// Args returns the converter arguments for one run.
func (c *Convert) Args(pdfPath, outDir string, density int) []string {
	out := filepath.Join(outDir, pagePrefix(pdfPath)+"-%04d.png")
	return []string{"-density", strconv.Itoa(density), pdfPath, "-alpha", "off", out}
}

// Rasterize implements Rasterizer.
func (c *Convert) Rasterize(ctx context.Context, pdfPath, outDir string, density int) ([]string, error) {
	log.Info.Printf("rasterizing %s at %d dpi", pdfPath, density)
	if err := c.Runner.Run(ctx, c.command(), c.Args(pdfPath, outDir, density)...); err != nil {
		return nil, err
	}
	return PageFiles(outDir, pagePrefix(pdfPath))
}
