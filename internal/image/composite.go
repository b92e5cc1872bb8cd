package image

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// PasteMode specifies how a source is combined with the destination.
type PasteMode int

const (
	// PasteMasked uses the source alpha as the paste mask.
	PasteMasked PasteMode = iota
	// PasteOpaque replaces destination pixels, ignoring source transparency.
	PasteOpaque
)

func (m PasteMode) String() string {
	switch m {
	case PasteMasked:
		return "Masked"
	case PasteOpaque:
		return "Opaque"
	default:
		return "Unknown"
	}
}

func (m PasteMode) op() draw.Op {
	if m == PasteOpaque {
		return draw.Src
	}
	return draw.Over
}

// PasteCentered draws src onto dst so that its centre lands on (cx, cy).
// Parts falling outside dst are clipped.
func PasteCentered(dst draw.Image, src image.Image, cx, cy int, mode PasteMode) {
	w, h := Size(src)
	Paste(dst, src, image.Pt(cx-w/2, cy-h/2), mode)
}

// Paste draws src onto dst with its top-left corner at pt.
func Paste(dst draw.Image, src image.Image, pt image.Point, mode PasteMode) {
	sb := src.Bounds()
	r := image.Rectangle{Min: pt, Max: pt.Add(sb.Size())}
	draw.Draw(dst, r, src, sb.Min, mode.op())
}

// Fill paints the whole of dst with c.
func Fill(dst draw.Image, c color.Color) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// ScaleInto draws src scaled to the rectangle r of dst.
func ScaleInto(dst draw.Image, r image.Rectangle, src image.Image) {
	xdraw.ApproxBiLinear.Scale(dst, r, src, src.Bounds(), xdraw.Over, nil)
}

// DashedRect draws a dashed one-pixel outline of r, clipped to dst.
func DashedRect(dst draw.Image, r image.Rectangle, col color.Color) {
	bounds := dst.Bounds()
	set := func(x, y int) {
		if (image.Point{X: x, Y: y}).In(bounds) {
			dst.Set(x, y, col)
		}
	}
	x1, y1, x2, y2 := r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1
	for x := x1; x <= x2; x++ {
		if (x+y1)%4 < 2 {
			set(x, y1)
		}
		if (x+y2)%4 < 2 {
			set(x, y2)
		}
	}
	for y := y1; y <= y2; y++ {
		if (x1+y)%4 < 2 {
			set(x1, y)
		}
		if (x2+y)%4 < 2 {
			set(x2, y)
		}
	}
}
