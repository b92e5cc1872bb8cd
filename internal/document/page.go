// Package document models the pages of a rasterized PDF and the annotations
// placed on them.
//
// Every annotation stores its position and width relative to the page, so
// the display can be rescaled freely and the page can be flattened at any
// output resolution. Absolute (canvas pixel) values are derived on demand.
package document

import (
	"image"
	"image/color"

	fsimage "fspdf/internal/image"
	"fspdf/pkg/colorutil"
)

// DefaultMinWidth is the smallest display width an annotation can be
// resized to, in canvas pixels.
const DefaultMinWidth = 50

// Background is the canvas color around a letterboxed page.
var Background = color.RGBA{R: 0xd9, G: 0xd9, B: 0xd9, A: 0xff}

// Page is one rasterized PDF page and the annotations placed on it.
type Page struct {
	Index int    // Zero-based page number
	Path  string // Raster file the page was loaded from

	source       image.Image
	SourceWidth  int
	SourceHeight int

	// Display geometry, recomputed by Rescale.
	Width   int
	Height  int
	XOffset float64
	YOffset float64

	// MinWidth bounds annotation resizing.
	MinWidth int

	annotations []*Annotation
	selected    *Annotation

	// Scaled background cache.
	background *image.RGBA
}

// NewPage wraps a page raster. Until the first Rescale the page is shown at
// its native size with no offset.
func NewPage(index int, path string, src image.Image) *Page {
	w, h := fsimage.Size(src)
	return &Page{
		Index:        index,
		Path:         path,
		source:       src,
		SourceWidth:  w,
		SourceHeight: h,
		Width:        w,
		Height:       h,
		MinWidth:     DefaultMinWidth,
	}
}

// Source returns the page raster at native resolution.
func (p *Page) Source() image.Image {
	return p.source
}

// Scale returns the display scale relative to the native raster.
func (p *Page) Scale() float64 {
	if p.SourceWidth == 0 {
		return 0
	}
	return float64(p.Width) / float64(p.SourceWidth)
}

// Rescale fits the page into a targetWidth×targetHeight area with a single
// uniform scale factor, centres it, and redraws every annotation.
func (p *Page) Rescale(targetWidth, targetHeight int) {
	if targetWidth <= 0 || targetHeight <= 0 || p.SourceWidth == 0 || p.SourceHeight == 0 {
		return
	}
	sw := float64(targetWidth) / float64(p.SourceWidth)
	sh := float64(targetHeight) / float64(p.SourceHeight)

	// The limiting axis takes the target size exactly.
	if sw <= sh {
		p.Width = targetWidth
		p.Height = max(1, int(float64(p.SourceHeight)*sw))
	} else {
		p.Width = max(1, int(float64(p.SourceWidth)*sh))
		p.Height = targetHeight
	}
	p.XOffset = float64(targetWidth-p.Width) / 2
	p.YOffset = float64(targetHeight-p.Height) / 2

	p.Redraw()
}

// Redraw re-derives the absolute geometry of every annotation from its
// relative coordinates and the current page geometry.
func (p *Page) Redraw() {
	for _, a := range p.annotations {
		a.Redraw()
	}
}

// ToRelative converts a canvas position to page-relative coordinates.
func (p *Page) ToRelative(x, y float64) (rx, ry float64) {
	return (x - p.XOffset) / float64(p.Width), (y - p.YOffset) / float64(p.Height)
}

// ToCanvas converts page-relative coordinates to a canvas position.
func (p *Page) ToCanvas(rx, ry float64) (x, y float64) {
	return rx*float64(p.Width) + p.XOffset, ry*float64(p.Height) + p.YOffset
}

// Contains reports whether the canvas position lies on the page.
func (p *Page) Contains(x, y float64) bool {
	return x >= p.XOffset && x < p.XOffset+float64(p.Width) &&
		y >= p.YOffset && y < p.YOffset+float64(p.Height)
}

// Place creates an annotation from src centred on the canvas position
// (x, y). Its relative width makes it appear at src's natural pixel size
// at the current scale.
func (p *Page) Place(kind Kind, src image.Image, x, y float64) *Annotation {
	a := newAnnotation(p, kind, src, x, y)
	p.annotations = append(p.annotations, a)
	p.Redraw()
	// Keep any clamping applied at placement, so the output matches what
	// was shown.
	a.RelWidth = float64(a.width) / float64(p.Width)
	return a
}

// Annotations returns the annotations in z-order, bottom first.
func (p *Page) Annotations() []*Annotation {
	out := make([]*Annotation, len(p.annotations))
	copy(out, p.annotations)
	return out
}

// Len returns the number of annotations on the page.
func (p *Page) Len() int {
	return len(p.annotations)
}

// Remove deletes a from the page. It reports whether a was found.
func (p *Page) Remove(a *Annotation) bool {
	for i, cur := range p.annotations {
		if cur == a {
			p.annotations = append(p.annotations[:i], p.annotations[i+1:]...)
			if p.selected == a {
				p.selected = nil
			}
			return true
		}
	}
	return false
}

// Select marks a as the page's selected annotation, deselecting any other.
// A nil a clears the selection; an annotation of another page is ignored.
func (p *Page) Select(a *Annotation) {
	if a != nil && a.page != p {
		return
	}
	p.selected = a
}

// Selected returns the selected annotation, or nil.
func (p *Page) Selected() *Annotation {
	return p.selected
}

// AnnotationAt returns the topmost annotation under the canvas position.
func (p *Page) AnnotationAt(x, y float64) *Annotation {
	pt := image.Pt(int(x), int(y))
	for i := len(p.annotations) - 1; i >= 0; i-- {
		if pt.In(p.annotations[i].Bounds()) {
			return p.annotations[i]
		}
	}
	return nil
}

// Render draws the display surface for a width×height canvas: background,
// annotations in insertion order, then the selection indicator.
func (p *Page) Render(width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	fsimage.Fill(out, Background)

	origin := image.Pt(int(p.XOffset), int(p.YOffset))
	fsimage.Paste(out, p.scaledBackground(), origin, fsimage.PasteOpaque)

	for _, a := range p.annotations {
		a.draw(out)
	}

	if p.selected != nil {
		fsimage.DashedRect(out, p.selected.Bounds().Inset(-2), colorutil.Black)
	}
	return out
}

// Flatten renders every annotation into a transparent overlay at the page's
// native resolution.
func (p *Page) Flatten() *image.NRGBA {
	overlay := fsimage.NewOverlay(p.SourceWidth, p.SourceHeight)
	for _, a := range p.annotations {
		a.Flatten(overlay)
	}
	return overlay
}

func (p *Page) scaledBackground() *image.RGBA {
	if p.background != nil && p.background.Rect.Dx() == p.Width && p.background.Rect.Dy() == p.Height {
		return p.background
	}
	p.background = image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	fsimage.ScaleInto(p.background, p.background.Rect, p.source)
	return p.background
}

// clampWidth limits an annotation width to [MinWidth, page display width].
// The minimum wins on pages narrower than MinWidth.
func (p *Page) clampWidth(w int) int {
	if w > p.Width {
		w = p.Width
	}
	if w < p.MinWidth {
		w = p.MinWidth
	}
	return w
}
