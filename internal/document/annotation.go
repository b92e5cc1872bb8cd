package document

import (
	"image"
	"image/draw"
	"math"

	fsimage "fspdf/internal/image"

	"github.com/google/uuid"
)

// Kind identifies what an annotation shows.
type Kind int

const (
	KindSignature Kind = iota
	KindText
	KindEraser
)

func (k Kind) String() string {
	switch k {
	case KindSignature:
		return "signature"
	case KindText:
		return "text"
	case KindEraser:
		return "eraser"
	default:
		return "unknown"
	}
}

// pasteMode reports how the kind is composited. Erasers cover the page
// regardless of their own alpha.
func (k Kind) pasteMode() fsimage.PasteMode {
	if k == KindEraser {
		return fsimage.PasteOpaque
	}
	return fsimage.PasteMasked
}

// Annotation is one element placed on a page.
type Annotation struct {
	ID   uuid.UUID
	Kind Kind

	page    *Page
	source  image.Image // original, never modified
	display image.Image // source resampled to the display width

	// Page-relative geometry. These are the source of truth.
	RelX     float64
	RelY     float64
	RelWidth float64

	// Absolute canvas geometry of the centre, derived by Redraw and
	// advanced by DragTo.
	X     float64
	Y     float64
	width int

	dragging     bool
	dragX, dragY float64
}

func newAnnotation(p *Page, kind Kind, src image.Image, x, y float64) *Annotation {
	sw, _ := fsimage.Size(src)
	a := &Annotation{
		ID:       uuid.New(),
		Kind:     kind,
		page:     p,
		source:   src,
		X:        x,
		Y:        y,
		RelWidth: float64(sw) / float64(p.Width),
	}
	a.RelX, a.RelY = p.ToRelative(x, y)
	return a
}

// Page returns the page the annotation belongs to.
func (a *Annotation) Page() *Page {
	return a.page
}

// Source returns the unscaled image.
func (a *Annotation) Source() image.Image {
	return a.source
}

// Width returns the current display width in canvas pixels.
func (a *Annotation) Width() int {
	return a.width
}

// Height returns the current display height in canvas pixels.
func (a *Annotation) Height() int {
	if a.display == nil {
		return 0
	}
	_, h := fsimage.Size(a.display)
	return h
}

// Bounds returns the display rectangle on the canvas.
func (a *Annotation) Bounds() image.Rectangle {
	if a.display == nil {
		return image.Rectangle{}
	}
	w, h := fsimage.Size(a.display)
	tl := image.Pt(int(a.X)-w/2, int(a.Y)-h/2)
	return image.Rectangle{Min: tl, Max: tl.Add(image.Pt(w, h))}
}

// Resize sets the display width, clamped to [MinWidth, page width], and
// updates the relative width. It reports whether anything changed; a width
// equal to the current one is a no-op.
func (a *Annotation) Resize(target float64) bool {
	return a.resize(target, true)
}

// Shrink makes the annotation 10% narrower.
func (a *Annotation) Shrink() bool {
	return a.Resize(float64(a.width) * 0.9)
}

// Grow makes the annotation 20% wider.
func (a *Annotation) Grow() bool {
	return a.Resize(float64(a.width) * 1.2)
}

func (a *Annotation) resize(target float64, updateRel bool) bool {
	w := a.page.clampWidth(int(math.Round(target)))
	if a.display != nil && w == a.width {
		return false
	}
	a.width = w
	if updateRel {
		a.RelWidth = float64(w) / float64(a.page.Width)
	}
	a.display = fsimage.ScaleToWidth(a.source, w, fsimage.Fast)
	return true
}

// Redraw derives the absolute position and display size from the relative
// geometry and the page's current scale and offset.
func (a *Annotation) Redraw() {
	a.X, a.Y = a.page.ToCanvas(a.RelX, a.RelY)
	a.resize(float64(a.page.Width)*a.RelWidth, false)
}

// Dragging reports whether a drag is in progress.
func (a *Annotation) Dragging() bool {
	return a.dragging
}

// BeginDrag records the pointer position a drag starts from.
func (a *Annotation) BeginDrag(px, py float64) {
	a.dragging = true
	a.dragX, a.dragY = px, py
}

// DragTo moves the annotation by the pointer delta since the last call and
// returns that delta. Relative coordinates are left alone until EndDrag.
func (a *Annotation) DragTo(px, py float64) (dx, dy float64) {
	if !a.dragging {
		a.BeginDrag(px, py)
		return 0, 0
	}
	dx, dy = px-a.dragX, py-a.dragY
	a.X += dx
	a.Y += dy
	a.dragX, a.dragY = px, py
	return dx, dy
}

// EndDrag commits the dragged position to relative coordinates and redraws
// the page.
func (a *Annotation) EndDrag() {
	if !a.dragging {
		return
	}
	a.dragging = false
	a.dragX, a.dragY = 0, 0
	a.RelX, a.RelY = a.page.ToRelative(a.X, a.Y)
	a.page.Redraw()
}

// Flatten draws the annotation onto an output-resolution image. Position and
// size come from the relative geometry scaled to dst, not to the display.
func (a *Annotation) Flatten(dst draw.Image) {
	ow, oh := fsimage.Size(dst)
	width := int(a.RelWidth * float64(ow))
	if width < 1 {
		return
	}
	x := int(a.RelX * float64(ow))
	y := int(a.RelY * float64(oh))

	img := fsimage.ScaleToWidth(a.source, width, fsimage.Fine)
	fsimage.PasteCentered(dst, img, x, y, a.Kind.pasteMode())
}

func (a *Annotation) draw(dst draw.Image) {
	if a.display == nil {
		return
	}
	fsimage.Paste(dst, a.display, a.Bounds().Min, a.Kind.pasteMode())
}
