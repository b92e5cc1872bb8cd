package image

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TextRenderer rasterizes multi-line text stamps onto transparent images.
type TextRenderer struct {
	face       font.Face
	size       float64
	lineHeight float64
	color      color.Color
}

// NewTextRenderer loads the font at fontPath at the given size in pixels.
// An empty fontPath selects the embedded Go Regular face. lineHeight is a
// multiplier of size applied between baselines.
func NewTextRenderer(fontPath string, size, lineHeight float64) (*TextRenderer, error) {
	data := goregular.TTF
	if fontPath != "" {
		var err error
		data, err = os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font: %w", err)
		}
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %q: %w", fontPath, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}

	return &TextRenderer{
		face:       face,
		size:       size,
		lineHeight: lineHeight,
		color:      color.Black,
	}, nil
}

// SetColor changes the ink color.
func (r *TextRenderer) SetColor(c color.Color) {
	r.color = c
}

// Close releases the font face.
func (r *TextRenderer) Close() error {
	return r.face.Close()
}

// Lines splits text into the lines that Render draws. Surrounding blank
// lines and trailing whitespace are dropped.
func Lines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return lines
}

// Measure returns the pixel extent Render would produce for text.
func (r *TextRenderer) Measure(text string) (width, height int) {
	lines := Lines(text)
	if len(lines) == 0 {
		return 0, 0
	}
	for _, l := range lines {
		if w := font.MeasureString(r.face, l).Ceil(); w > width {
			width = w
		}
	}
	if width == 0 {
		return 0, 0
	}
	m := r.face.Metrics()
	height = (len(lines)-1)*r.advance() + m.Ascent.Ceil() + m.Descent.Ceil()
	return width, height
}

// Render draws text onto a transparent image sized to its extent. It returns
// nil when the text is empty or renders to zero extent.
func (r *TextRenderer) Render(text string) *image.NRGBA {
	width, height := r.Measure(text)
	if width == 0 || height == 0 {
		return nil
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(r.color),
		Face: r.face,
	}
	ascent := r.face.Metrics().Ascent.Ceil()
	for i, l := range Lines(text) {
		d.Dot = fixed.P(0, ascent+i*r.advance())
		d.DrawString(l)
	}
	return img
}

// advance is the baseline-to-baseline distance in pixels.
func (r *TextRenderer) advance() int {
	return int(math.Ceil(r.size * r.lineHeight))
}
