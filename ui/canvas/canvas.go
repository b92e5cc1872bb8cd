// Package canvas provides the page canvas: a raster widget that shows the
// active page of a session and turns pointer input into edits.
package canvas

import (
	"image"
	"sync"

	"fspdf/internal/app"
	fsimage "fspdf/internal/image"
	"fspdf/internal/log"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// PageCanvas displays the session's active page. Session coordinates are
// fyne units relative to the widget's top-left corner; the raster is
// rendered at unit size and scaled to device pixels.
type PageCanvas struct {
	widget.BaseWidget

	// mu serialises session access between input handlers and the raster
	// generator, which fyne may call from its render goroutine.
	mu      sync.Mutex
	session *app.Session

	raster  *fynecanvas.Raster
	content *draggableContent

	// Drag state for the current pointer gesture.
	dragging bool
	ignore   bool

	onError func(error)
}

// New creates a canvas bound to session.
func New(session *app.Session) *PageCanvas {
	pc := &PageCanvas{session: session}

	pc.raster = fynecanvas.NewRaster(pc.draw)
	pc.raster.ScaleMode = fynecanvas.ImageScaleSmooth
	pc.raster.SetMinSize(fyne.NewSize(200, 200))
	pc.content = newDraggableContent(pc, pc.raster)

	for _, ev := range []app.EventType{
		app.EventPageChanged,
		app.EventAnnotationsChanged,
		app.EventSelectionChanged,
		app.EventRedraw,
	} {
		session.On(ev, func(interface{}) { pc.raster.Refresh() })
	}

	pc.ExtendBaseWidget(pc)
	return pc
}

// OnError sets the callback for errors raised by pointer actions.
func (pc *PageCanvas) OnError(callback func(error)) {
	pc.onError = callback
}

// Do runs fn with exclusive access to the session.
func (pc *PageCanvas) Do(fn func(s *app.Session)) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	fn(pc.session)
}

// Refresh redraws the page.
func (pc *PageCanvas) Refresh() {
	pc.raster.Refresh()
}

func (pc *PageCanvas) draw(w, h int) image.Image {
	pc.mu.Lock()
	rendered := pc.session.Render()
	pc.mu.Unlock()

	if rendered.Bounds().Dx() == w && rendered.Bounds().Dy() == h {
		return rendered
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	fsimage.ScaleInto(out, out.Bounds(), rendered)
	return out
}

func (pc *PageCanvas) layout(size fyne.Size) {
	pc.content.Resize(size)
	pc.mu.Lock()
	pc.session.Resize(int(size.Width), int(size.Height))
	pc.mu.Unlock()
}

func (pc *PageCanvas) report(err error) {
	if err == nil {
		return
	}
	log.Error.Println(err)
	if pc.onError != nil {
		pc.onError(err)
	}
}

// CreateRenderer implements fyne.Widget.
func (pc *PageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &pageCanvasRenderer{canvas: pc}
}

type pageCanvasRenderer struct {
	canvas *PageCanvas
}

func (r *pageCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.layout(size)
}

func (r *pageCanvasRenderer) MinSize() fyne.Size {
	return r.canvas.raster.MinSize()
}

func (r *pageCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *pageCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.content}
}

func (r *pageCanvasRenderer) Destroy() {}

// draggableContent wraps the raster to handle pointer events.
type draggableContent struct {
	widget.BaseWidget
	canvas *PageCanvas
	raster *fynecanvas.Raster
}

var (
	_ fyne.Draggable         = (*draggableContent)(nil)
	_ fyne.Tappable          = (*draggableContent)(nil)
	_ fyne.SecondaryTappable = (*draggableContent)(nil)
	_ fyne.Scrollable        = (*draggableContent)(nil)
	_ desktop.Cursorable     = (*draggableContent)(nil)
)

func newDraggableContent(pc *PageCanvas, raster *fynecanvas.Raster) *draggableContent {
	dc := &draggableContent{
		canvas: pc,
		raster: raster,
	}
	dc.ExtendBaseWidget(dc)
	return dc
}

func (dc *draggableContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(dc.raster)
}

func (dc *draggableContent) MinSize() fyne.Size {
	return dc.raster.MinSize()
}

// inside rejects events fyne occasionally delivers outside the widget.
func (dc *draggableContent) inside(pos fyne.Position) bool {
	size := dc.Size()
	return pos.X >= 0 && pos.Y >= 0 && pos.X <= size.Width && pos.Y <= size.Height
}

// Dragged moves the annotation under the pointer where the gesture began.
func (dc *draggableContent) Dragged(ev *fyne.DragEvent) {
	pc := dc.canvas
	if pc.ignore {
		return
	}
	x, y := float64(ev.Position.X), float64(ev.Position.Y)

	pc.mu.Lock()
	defer pc.mu.Unlock()
	if !pc.dragging {
		startX := x - float64(ev.Dragged.DX)
		startY := y - float64(ev.Dragged.DY)
		if !pc.session.BeginDrag(startX, startY) {
			pc.ignore = true
			return
		}
		pc.dragging = true
	}
	pc.session.DragTo(x, y)
}

// DragEnd drops the dragged annotation.
func (dc *draggableContent) DragEnd() {
	pc := dc.canvas
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.dragging {
		pc.session.EndDrag()
	}
	pc.dragging = false
	pc.ignore = false
}

// Scrolled resizes the annotation under the pointer.
func (dc *draggableContent) Scrolled(ev *fyne.ScrollEvent) {
	pc := dc.canvas
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.session.Scroll(float64(ev.Position.X), float64(ev.Position.Y), float64(ev.Scrolled.DY))
}

// Tapped selects the annotation under the pointer or places a new one.
func (dc *draggableContent) Tapped(ev *fyne.PointEvent) {
	if !dc.inside(ev.Position) {
		return
	}
	pc := dc.canvas
	pc.mu.Lock()
	_, err := pc.session.Click(float64(ev.Position.X), float64(ev.Position.Y))
	pc.mu.Unlock()
	pc.report(err)
}

// TappedSecondary deletes the annotation under the pointer.
func (dc *draggableContent) TappedSecondary(ev *fyne.PointEvent) {
	if !dc.inside(ev.Position) {
		return
	}
	pc := dc.canvas
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.session.DeleteAt(float64(ev.Position.X), float64(ev.Position.Y))
}

// Cursor shows a crosshair while a placing mode is active.
func (dc *draggableContent) Cursor() desktop.Cursor {
	pc := dc.canvas
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.session.Mode() == app.ModeOff {
		return desktop.DefaultCursor
	}
	return desktop.CrosshairCursor
}
