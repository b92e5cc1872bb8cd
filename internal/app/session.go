package app

import (
	"context"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"fspdf/internal/config"
	"fspdf/internal/document"
	fsimage "fspdf/internal/image"
	"fspdf/internal/log"
	"fspdf/internal/rasterize"
	"fspdf/internal/stamp"
	"fspdf/pkg/colorutil"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Options configures a new Session.
type Options struct {
	PDFPath       string
	SignaturePath string
	Config        *config.Config
	Rasterizer    rasterize.Rasterizer
	Stamper       stamp.Stamper
}

// Session is one editing session over a single PDF. All methods except
// Save's internal workers run on the UI goroutine.
type Session struct {
	events

	cfg     *config.Config
	pdfPath string
	workDir string
	workPDF string

	signature image.Image
	text      *fsimage.TextRenderer
	eraser    color.RGBA

	rasterizer rasterize.Rasterizer
	stamper    stamp.Stamper

	pages   []*document.Page
	current int
	mode    Mode
	drag    *document.Annotation
	pending string

	viewW, viewH int
}

// Open copies the PDF into a private temporary directory, rasterizes it and
// loads every page. The directory is removed by Close, or before returning
// when Open fails after creating it.
func Open(ctx context.Context, opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Rasterizer == nil || opts.Stamper == nil {
		return nil, errors.New("session needs a rasterizer and a stamper")
	}

	eraser, err := colorutil.ParseHex(cfg.Eraser.Color)
	if err != nil {
		return nil, errors.Wrap(err, "eraser color")
	}

	signature, err := fsimage.Load(opts.SignaturePath)
	if err != nil {
		return nil, errors.Wrap(err, "load signature")
	}

	text, err := fsimage.NewTextRenderer(cfg.Font, cfg.FontSize, cfg.LineHeight)
	if err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp("", "fspdf-")
	if err != nil {
		text.Close()
		return nil, errors.Wrap(err, "create temporary directory")
	}
	log.Info.Printf("temporary directory: %s", workDir)

	s := &Session{
		cfg:        cfg,
		pdfPath:    opts.PDFPath,
		workDir:    workDir,
		workPDF:    filepath.Join(workDir, "input.pdf"),
		signature:  signature,
		text:       text,
		eraser:     eraser,
		rasterizer: opts.Rasterizer,
		stamper:    opts.Stamper,
	}
	if err := s.load(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) load(ctx context.Context) error {
	log.Info.Printf("working on %s", s.pdfPath)
	if err := copyFile(s.pdfPath, s.workPDF); err != nil {
		return errors.Wrap(err, "copy input PDF")
	}

	files, err := rasterize.Run(ctx, s.rasterizer, s.workPDF, s.workDir, s.cfg.Density)
	if err != nil {
		return errors.Wrap(err, "rasterize PDF")
	}
	log.Trace.Printf("page images: %v", files)

	return s.loadPages(ctx, files)
}

func (s *Session) loadPages(ctx context.Context, files []string) error {
	pages := make([]*document.Page, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := fsimage.Load(f)
			if err != nil {
				return err
			}
			p := document.NewPage(i, f, img)
			p.MinWidth = s.cfg.MinWidth
			pages[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "load page images")
	}
	s.pages = pages
	w, h := fsimage.Size(pages[0].Source())
	log.Info.Printf("loaded %d pages, first page %dx%d", len(pages), w, h)
	return nil
}

// Close releases the temporary directory. It is safe to call more than once.
func (s *Session) Close() error {
	if s.text != nil {
		s.text.Close()
		s.text = nil
	}
	if s.workDir == "" {
		return nil
	}
	err := os.RemoveAll(s.workDir)
	s.workDir = ""
	return err
}

// PDFPath returns the input PDF as given by the user.
func (s *Session) PDFPath() string {
	return s.pdfPath
}

// WorkDir returns the temporary directory, or "" once closed.
func (s *Session) WorkDir() string {
	return s.workDir
}

// OutputPath returns where Save writes the signed PDF.
func (s *Session) OutputPath() string {
	return stamp.SignedName(s.pdfPath)
}

// Pages returns every page in order.
func (s *Session) Pages() []*document.Page {
	return s.pages
}

// Page returns the active page.
func (s *Session) Page() *document.Page {
	return s.pages[s.current]
}

// PageIndex returns the zero-based index of the active page.
func (s *Session) PageIndex() int {
	return s.current
}

// Mode returns the interaction mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// SetMode changes the interaction mode.
func (s *Session) SetMode(m Mode) {
	if m == s.mode {
		return
	}
	s.mode = m
	log.Trace.Printf("mode is %q", m)
	s.Emit(EventModeChanged, m)
}

// SetPendingText sets the text used for the next fill-mode placement.
func (s *Session) SetPendingText(text string) {
	s.pending = text
}

// PendingText returns the text used for the next fill-mode placement.
func (s *Session) PendingText() string {
	return s.pending
}

// Resize records the canvas size and rescales the active page to it.
func (s *Session) Resize(width, height int) {
	if width <= 0 || height <= 0 || (width == s.viewW && height == s.viewH) {
		return
	}
	s.viewW, s.viewH = width, height
	s.Page().Rescale(width, height)
	log.Trace.Printf("page %d resized to %dx%d", s.current+1, s.Page().Width, s.Page().Height)
	s.Emit(EventRedraw, nil)
}

// Viewport returns the last canvas size passed to Resize.
func (s *Session) Viewport() (width, height int) {
	return s.viewW, s.viewH
}

// Render draws the active page for the current viewport.
func (s *Session) Render() *image.RGBA {
	w, h := s.viewW, s.viewH
	if w <= 0 || h <= 0 {
		p := s.Page()
		w, h = p.Width, p.Height
	}
	return s.Page().Render(w, h)
}

// Click handles a primary-button click at canvas position (x, y). Clicking
// an annotation selects it. Clicking empty page space creates an annotation
// according to the mode; the new annotation is returned, or nil when
// nothing was created.
func (s *Session) Click(x, y float64) (*document.Annotation, error) {
	if s.drag != nil {
		return nil, nil
	}
	page := s.Page()
	if hit := page.AnnotationAt(x, y); hit != nil {
		s.selectAnnotation(hit)
		return nil, nil
	}
	if !page.Contains(x, y) {
		return nil, nil
	}

	var (
		kind document.Kind
		src  image.Image
	)
	switch s.mode {
	case ModeSign:
		kind, src = document.KindSignature, s.signature
	case ModeFill:
		txt := s.text.Render(s.pending)
		if txt == nil {
			log.Info.Println("no text to place")
			return nil, nil
		}
		kind, src = document.KindText, txt
	case ModeErase:
		kind = document.KindEraser
		src = fsimage.NewPatch(s.cfg.Eraser.Width, s.cfg.Eraser.Height, s.eraser)
	default:
		s.selectAnnotation(nil)
		return nil, nil
	}

	a := page.Place(kind, src, x, y)
	log.Info.Printf("placed %s on page %d at %.0f/%.0f, width %d", kind, s.current+1, a.X, a.Y, a.Width())
	page.Select(a)
	s.Emit(EventAnnotationsChanged, page)
	return a, nil
}

func (s *Session) selectAnnotation(a *document.Annotation) {
	page := s.Page()
	if page.Selected() == a {
		return
	}
	page.Select(a)
	s.Emit(EventSelectionChanged, a)
}

// BeginDrag starts dragging the annotation under (x, y). It reports whether
// there was one.
func (s *Session) BeginDrag(x, y float64) bool {
	a := s.Page().AnnotationAt(x, y)
	if a == nil {
		return false
	}
	s.drag = a
	s.selectAnnotation(a)
	a.BeginDrag(x, y)
	return true
}

// Dragging reports whether a drag is in progress.
func (s *Session) Dragging() bool {
	return s.drag != nil
}

// DragTo moves the dragged annotation to follow the pointer.
func (s *Session) DragTo(x, y float64) {
	if s.drag == nil {
		return
	}
	s.drag.DragTo(x, y)
	s.Emit(EventRedraw, nil)
}

// EndDrag commits the dragged annotation's position.
func (s *Session) EndDrag() {
	if s.drag == nil {
		return
	}
	a := s.drag
	s.drag = nil
	a.EndDrag()
	log.Trace.Printf("dropped %s at %.3f/%.3f", a.Kind, a.RelX, a.RelY)
	s.Emit(EventAnnotationsChanged, s.Page())
}

// Scroll resizes the annotation under (x, y): wheel up (dy > 0) shrinks it,
// wheel down grows it.
func (s *Session) Scroll(x, y, dy float64) bool {
	a := s.Page().AnnotationAt(x, y)
	if a == nil || dy == 0 {
		return false
	}
	var changed bool
	if dy > 0 {
		changed = a.Shrink()
	} else {
		changed = a.Grow()
	}
	if changed {
		s.Emit(EventAnnotationsChanged, s.Page())
	}
	return changed
}

// DeleteAt removes the annotation under (x, y).
func (s *Session) DeleteAt(x, y float64) bool {
	return s.Delete(s.Page().AnnotationAt(x, y))
}

// DeleteSelected removes the active page's selected annotation.
func (s *Session) DeleteSelected() bool {
	return s.Delete(s.Page().Selected())
}

// Delete removes a from the active page.
func (s *Session) Delete(a *document.Annotation) bool {
	if a == nil || a == s.drag {
		return false
	}
	if !s.Page().Remove(a) {
		return false
	}
	log.Info.Printf("removed %s from page %d", a.Kind, s.current+1)
	s.Emit(EventAnnotationsChanged, s.Page())
	return true
}

// PreviousPage activates the previous page. It does not wrap around.
func (s *Session) PreviousPage() bool {
	return s.GoToPage(s.current - 1)
}

// NextPage activates the next page. It does not wrap around.
func (s *Session) NextPage() bool {
	return s.GoToPage(s.current + 1)
}

// GoToPage activates page i, rescaled to the current viewport. Out of range
// indexes and drags in progress leave the session unchanged.
func (s *Session) GoToPage(i int) bool {
	if i < 0 || i >= len(s.pages) || i == s.current || s.drag != nil {
		return false
	}
	s.current = i
	if s.viewW > 0 && s.viewH > 0 {
		s.Page().Rescale(s.viewW, s.viewH)
	}
	s.Emit(EventPageChanged, i)
	return true
}

// Modified reports whether any page carries annotations.
func (s *Session) Modified() bool {
	for _, p := range s.pages {
		if p.Len() > 0 {
			return true
		}
	}
	return false
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
