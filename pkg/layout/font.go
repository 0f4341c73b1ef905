package layout

import (
	"fmt"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultTextMargin mirrors the padding a rich-text item puts around its content.
const DefaultTextMargin = 4

// FaceMeasurer measures words with a scalable font face at a fixed pixel size.
// A face is not safe for concurrent use.
type FaceMeasurer struct {
	face   font.Face
	margin float64
}

// NewFaceMeasurer loads the Go Regular face at pixelSize.
func NewFaceMeasurer(pixelSize, margin float64) (*FaceMeasurer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return NewFaceMeasurerFrom(f, pixelSize, margin)
}

func NewFaceMeasurerFrom(f *opentype.Font, pixelSize, margin float64) (*FaceMeasurer, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    pixelSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	return &FaceMeasurer{face: face, margin: margin}, nil
}

func (m *FaceMeasurer) lineHeight() float64 {
	return toFloat(m.face.Metrics().Height)
}

func (m *FaceMeasurer) Measure(word string) (float64, float64) {
	w := toFloat(font.MeasureString(m.face, word))
	return w + 2*m.margin, m.lineHeight() + 2*m.margin
}

// MeasureWrapped greedily wraps text at word boundaries to maxWidth and
// returns the size of the resulting block. A single word wider than maxWidth
// gets a row of its own.
func (m *FaceMeasurer) MeasureWrapped(text string, maxWidth float64) (float64, float64) {
	inner := maxWidth - 2*m.margin
	space := toFloat(font.MeasureString(m.face, " "))
	var widest, row float64
	rows := 0
	for _, line := range strings.Split(text, "\n") {
		rows++
		row = 0
		for _, word := range strings.Fields(line) {
			w := toFloat(font.MeasureString(m.face, word))
			switch {
			case row == 0:
				row = w
			case row+space+w <= inner:
				row += space + w
			default:
				if row > widest {
					widest = row
				}
				rows++
				row = w
			}
		}
		if row > widest {
			widest = row
		}
	}
	return widest + 2*m.margin, float64(rows)*m.lineHeight() + 2*m.margin
}

func (m *FaceMeasurer) Close() error {
	return m.face.Close()
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
