package app

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"fspdf/internal/config"
	"fspdf/internal/document"
	fsimage "fspdf/internal/image"
	"fspdf/internal/pdftest"
	"fspdf/internal/stamp"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPages = []pdftest.Size{{W: 200, H: 280}, {W: 280, H: 200}, {W: 150, H: 150}}

// fakeRasterizer writes one white PNG per size instead of running a tool.
type fakeRasterizer struct {
	sizes []pdftest.Size
	err   error
}

func (f *fakeRasterizer) Rasterize(_ context.Context, pdfPath, outDir string, _ int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var files []string
	for i, s := range f.sizes {
		path := filepath.Join(outDir, fmt.Sprintf("input-%04d.png", i))
		if err := fsimage.SavePNG(path, fsimage.NewPatch(s.W, s.H, color.White)); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}

type recordingStamper struct {
	pdfPath  string
	overlays []string
	outPath  string
}

func (r *recordingStamper) Stamp(_ context.Context, pdfPath string, overlays []string, outPath string) error {
	r.pdfPath = pdfPath
	r.overlays = append([]string(nil), overlays...)
	r.outPath = outPath
	return nil
}

type fixture struct {
	dir       string
	pdf       string
	signature string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:       dir,
		pdf:       filepath.Join(dir, "contract.pdf"),
		signature: filepath.Join(dir, "signature.png"),
	}
	pdftest.MakePDF(t, f.pdf, testPages...)
	pdftest.WritePNG(t, f.signature, 100, 40, color.Black)
	return f
}

func openSession(t *testing.T, f fixture, st stamp.Stamper) *Session {
	t.Helper()
	s, err := Open(context.Background(), Options{
		PDFPath:       f.pdf,
		SignaturePath: f.signature,
		Config:        config.Default(),
		Rasterizer:    &fakeRasterizer{sizes: testPages},
		Stamper:       st,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func transparent(t *testing.T, path string) bool {
	t.Helper()
	img, err := fsimage.Load(path)
	require.NoError(t, err)
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

func TestOpenLoadsPages(t *testing.T) {
	f := newFixture(t)
	s := openSession(t, f, &recordingStamper{})

	require.Len(t, s.Pages(), 3)
	for i, p := range s.Pages() {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, testPages[i].W, p.SourceWidth)
		assert.Equal(t, testPages[i].H, p.SourceHeight)
		assert.Equal(t, 50, p.MinWidth)
	}
	assert.Equal(t, 0, s.PageIndex())
	assert.Equal(t, ModeOff, s.Mode())
	assert.Equal(t, filepath.Join(f.dir, "contract-signed.pdf"), s.OutputPath())
	assert.FileExists(t, filepath.Join(s.WorkDir(), "input.pdf"))
}

func TestOpenCleansUpOnError(t *testing.T) {
	f := newFixture(t)
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	_, err := Open(context.Background(), Options{
		PDFPath:       f.pdf,
		SignaturePath: f.signature,
		Rasterizer:    &fakeRasterizer{err: errors.New("boom")},
		Stamper:       &recordingStamper{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpenRejectsPageCountMismatch(t *testing.T) {
	f := newFixture(t)
	_, err := Open(context.Background(), Options{
		PDFPath:       f.pdf,
		SignaturePath: f.signature,
		Rasterizer:    &fakeRasterizer{sizes: testPages[:2]},
		Stamper:       &recordingStamper{},
	})
	assert.Error(t, err)
}

func TestOpenMissingSignature(t *testing.T) {
	f := newFixture(t)
	_, err := Open(context.Background(), Options{
		PDFPath:       f.pdf,
		SignaturePath: filepath.Join(f.dir, "missing.png"),
		Rasterizer:    &fakeRasterizer{sizes: testPages},
		Stamper:       &recordingStamper{},
	})
	assert.Error(t, err)
}

func TestCloseRemovesWorkspace(t *testing.T) {
	f := newFixture(t)
	s := openSession(t, f, &recordingStamper{})
	dir := s.WorkDir()
	require.DirExists(t, dir)

	require.NoError(t, s.Close())
	assert.NoDirExists(t, dir)
	assert.NoError(t, s.Close())
}

func TestSignSecondPageAndSave(t *testing.T) {
	f := newFixture(t)
	st := &recordingStamper{}
	s := openSession(t, f, st)
	s.Resize(400, 400)

	var saved interface{}
	s.On(EventSaved, func(data interface{}) { saved = data })

	require.True(t, s.NextPage())
	s.SetMode(ModeSign)
	a, err := s.Click(200, 200)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, document.KindSignature, a.Kind)
	assert.Equal(t, a, s.Page().Selected())

	out, err := s.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, s.OutputPath(), out)
	assert.Equal(t, out, saved)
	assert.Equal(t, out, st.outPath)
	assert.Equal(t, filepath.Join(s.WorkDir(), "input.pdf"), st.pdfPath)

	require.Len(t, st.overlays, 4)
	for i, p := range testPages {
		img, err := fsimage.Load(st.overlays[i])
		require.NoError(t, err)
		w, h := fsimage.Size(img)
		assert.Equal(t, p.W, w)
		assert.Equal(t, p.H, h)
	}
	assert.True(t, transparent(t, st.overlays[0]))
	assert.False(t, transparent(t, st.overlays[1]))
	assert.True(t, transparent(t, st.overlays[2]))
	assert.True(t, transparent(t, st.overlays[3]))

	// The signature is centred where it was clicked, at native resolution.
	img, err := fsimage.Load(st.overlays[1])
	require.NoError(t, err)
	_, _, _, alpha := img.At(140, 100).RGBA()
	assert.Greater(t, alpha, uint32(0xf000))

	filler, err := fsimage.Load(st.overlays[3])
	require.NoError(t, err)
	w, h := fsimage.Size(filler)
	assert.Equal(t, testPages[0].W, w)
	assert.Equal(t, testPages[0].H, h)
}

func TestSaveWithPdfcpu(t *testing.T) {
	f := newFixture(t)
	s := openSession(t, f, &stamp.Pdfcpu{})
	s.Resize(400, 400)
	require.True(t, s.NextPage())
	s.SetMode(ModeSign)
	_, err := s.Click(200, 200)
	require.NoError(t, err)

	out, err := s.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, pdftest.PageCount(t, out))

	// Only the signed page is stamped; pages 1 and 3 are left as they were.
	assert.Equal(t, []int{2}, pdftest.StampedPages(t, out))
}

func TestFillWithEmptyTextCreatesNothing(t *testing.T) {
	f := newFixture(t)
	s := openSession(t, f, &recordingStamper{})
	s.Resize(400, 400)
	s.SetMode(ModeFill)

	s.SetPendingText("")
	a, err := s.Click(200, 200)
	require.NoError(t, err)
	assert.Nil(t, a)
	assert.Equal(t, 0, s.Page().Len())

	s.SetPendingText("Jane Doe")
	a, err = s.Click(200, 200)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, document.KindText, a.Kind)
	assert.Equal(t, 1, s.Page().Len())
}

func TestEraseUsesConfiguredPatch(t *testing.T) {
	f := newFixture(t)
	s := openSession(t, f, &recordingStamper{})
	s.Resize(400, 400)
	s.SetMode(ModeErase)

	a, err := s.Click(200, 200)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, document.KindEraser, a.Kind)
	w, h := fsimage.Size(a.Source())
	assert.Equal(t, 300, w)
	assert.Equal(t, 80, h)
}

func TestEraserSizeIsInCanvasPixels(t *testing.T) {
	f := newFixture(t)
	s := openSession(t, f, &recordingStamper{})
	s.Resize(600, 600)
	require.True(t, s.GoToPage(2))
	s.SetMode(ModeErase)

	// The 150x150 page is shown at 600x600, so the 300 px patch covers half
	// the page width and flattens to 75 page pixels.
	a, err := s.Click(300, 300)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, 300, a.Width())
	assert.InDelta(t, 0.5, a.RelWidth, 1e-9)

	overlay := s.Page().Flatten()
	_, _, _, alpha := overlay.At(75-37, 75).RGBA()
	assert.Equal(t, uint32(0xffff), alpha)
	_, _, _, alpha = overlay.At(75-40, 75).RGBA()
	assert.Equal(t, uint32(0), alpha)
}

func TestOpenHonoursCancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, Options{
		PDFPath:       f.pdf,
		SignaturePath: f.signature,
		Rasterizer:    &fakeRasterizer{sizes: testPages},
		Stamper:       &recordingStamper{},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClickEdgeCases(t *testing.T) {
	f := newFixture(t)
	s := openSession(t, f, &recordingStamper{})
	s.Resize(400, 400)

	// Mode off.
	a, err := s.Click(200, 200)
	require.NoError(t, err)
	assert.Nil(t, a)
	assert.Equal(t, 0, s.Page().Len())

	s.SetMode(ModeSign)

	// Outside the letterboxed page.
	a, err = s.Click(10, 10)
	require.NoError(t, err)
	assert.Nil(t, a)

	// On an existing annotation: selects instead of creating.
	first, err := s.Click(200, 200)
	require.NoError(t, err)
	require.NotNil(t, first)
	s.Page().Select(nil)
	a, err = s.Click(200, 200)
	require.NoError(t, err)
	assert.Nil(t, a)
	assert.Equal(t, 1, s.Page().Len())
	assert.Equal(t, first, s.Page().Selected())

	// Switching off clears the selection on empty space.
	s.SetMode(ModeOff)
	_, err = s.Click(200, 350)
	require.NoError(t, err)
	assert.Nil(t, s.Page().Selected())
}

func TestDragMovesAnnotation(t *testing.T) {
	f := newFixture(t)
	s := openSession(t, f, &recordingStamper{})
	s.Resize(400, 400)
	s.SetMode(ModeSign)
	a, err := s.Click(200, 200)
	require.NoError(t, err)
	relX := a.RelX

	require.True(t, s.BeginDrag(200, 200))
	assert.True(t, s.Dragging())
	s.DragTo(220, 200)

	// Clicks are ignored while dragging.
	b, err := s.Click(100, 100)
	require.NoError(t, err)
	assert.Nil(t, b)
	assert.Equal(t, relX, a.RelX)

	s.EndDrag()
	assert.False(t, s.Dragging())
	assert.Greater(t, a.RelX, relX)
	assert.InDelta(t, 220, a.X, 0.5)

	assert.False(t, s.BeginDrag(10, 10))
}

func TestScrollResizes(t *testing.T) {
	f := newFixture(t)
	s := openSession(t, f, &recordingStamper{})
	s.Resize(400, 400)
	s.SetMode(ModeSign)
	a, err := s.Click(200, 200)
	require.NoError(t, err)
	w := a.Width()

	require.True(t, s.Scroll(200, 200, 1))
	assert.Less(t, a.Width(), w)

	w = a.Width()
	require.True(t, s.Scroll(200, 200, -1))
	assert.Greater(t, a.Width(), w)

	assert.False(t, s.Scroll(10, 10, 1))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	s := openSession(t, f, &recordingStamper{})
	s.Resize(400, 400)
	s.SetMode(ModeSign)
	_, err := s.Click(200, 100)
	require.NoError(t, err)
	_, err = s.Click(200, 300)
	require.NoError(t, err)
	assert.True(t, s.Modified())

	assert.True(t, s.DeleteAt(200, 100))
	assert.Equal(t, 1, s.Page().Len())
	assert.False(t, s.DeleteAt(200, 100))

	assert.True(t, s.DeleteSelected())
	assert.Equal(t, 0, s.Page().Len())
	assert.False(t, s.DeleteSelected())
	assert.False(t, s.Modified())
}

func TestNavigationClamps(t *testing.T) {
	f := newFixture(t)
	s := openSession(t, f, &recordingStamper{})
	s.Resize(400, 400)

	var changes []interface{}
	s.On(EventPageChanged, func(data interface{}) { changes = append(changes, data) })

	assert.False(t, s.PreviousPage())
	assert.True(t, s.NextPage())
	assert.True(t, s.NextPage())
	assert.False(t, s.NextPage())
	assert.Equal(t, 2, s.PageIndex())
	assert.Equal(t, []interface{}{1, 2}, changes)

	// The newly active page fills the viewport.
	p := s.Page()
	assert.Equal(t, 400, p.Width)
	assert.Equal(t, 400, p.Height)

	img := s.Render()
	assert.Equal(t, 400, img.Bounds().Dx())
}

func TestSetModeEmitsOnChange(t *testing.T) {
	f := newFixture(t)
	s := openSession(t, f, &recordingStamper{})

	var modes []interface{}
	s.On(EventModeChanged, func(data interface{}) { modes = append(modes, data) })
	s.SetMode(ModeFill)
	s.SetMode(ModeFill)
	s.SetMode(ModeErase)
	assert.Equal(t, []interface{}{ModeFill, ModeErase}, modes)
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, ok := ParseMode(m.String())
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	_, ok := ParseMode("Draw")
	assert.False(t, ok)
}
