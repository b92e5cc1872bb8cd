// Package image provides image loading, resampling, text rasterization and
// the paste operations used to build page overlays.
package image

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os"

	_ "golang.org/x/image/tiff"
)

// Load decodes a PNG, JPEG or TIFF file.
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// SavePNG encodes img as PNG at path.
func SavePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := bufio.NewWriter(file)
	if err := png.Encode(w, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Size returns the pixel dimensions of img.
func Size(img image.Image) (width, height int) {
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

// NewOverlay returns a fully transparent RGBA image of the given size.
func NewOverlay(width, height int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, width, height))
}

// NewPatch returns an opaque rectangle filled with c.
func NewPatch(width, height int, c color.Color) *image.RGBA {
	patch := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(patch, patch.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return patch
}

// IsTransparent reports whether every pixel of img has zero alpha.
func IsTransparent(img image.Image) bool {
	if n, ok := img.(*image.NRGBA); ok {
		for y := n.Rect.Min.Y; y < n.Rect.Max.Y; y++ {
			row := n.Pix[n.PixOffset(n.Rect.Min.X, y):n.PixOffset(n.Rect.Max.X, y)]
			for i := 3; i < len(row); i += 4 {
				if row[i] != 0 {
					return false
				}
			}
		}
		return true
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
				return false
			}
		}
	}
	return true
}
