package image

import (
	"image"

	"github.com/nfnt/resize"
)

// Quality selects the interpolation used when resampling.
type Quality int

const (
	// Fast is used for on-screen previews.
	Fast Quality = iota
	// Fine is used when flattening into the output resolution.
	Fine
)

func (q Quality) interp() resize.InterpolationFunction {
	if q == Fine {
		return resize.Lanczos3
	}
	return resize.NearestNeighbor
}

// ScaledHeight returns the height matching width for a w×h source,
// preserving the aspect ratio. The result is at least 1.
func ScaledHeight(w, h, width int) int {
	if w <= 0 {
		return 1
	}
	height := int(float64(h) * float64(width) / float64(w))
	if height < 1 {
		height = 1
	}
	return height
}

// ScaleToWidth resamples src to the given width, preserving aspect ratio.
func ScaleToWidth(src image.Image, width int, q Quality) image.Image {
	if width < 1 {
		width = 1
	}
	w, h := Size(src)
	if w == width {
		return src
	}
	height := ScaledHeight(w, h, width)
	return resize.Resize(uint(width), uint(height), src, q.interp())
}
