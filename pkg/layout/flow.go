package layout

import "strings"

// Style holds the fixed spacing of the subtitle overlay.
type Style struct {
	Gap          float64 // horizontal space after each word
	LineGap      float64 // vertical space added on wrap
	WrapMargin   float64 // viewport width minus this is the row budget
	BottomMargin float64 // distance between the block and the viewport bottom
}

func DefaultStyle() Style {
	return Style{
		Gap:          5,
		LineGap:      1,
		WrapMargin:   200,
		BottomMargin: 60,
	}
}

// Measurer returns the rendered size of a word in the subtitle font.
type Measurer interface {
	Measure(word string) (width, height float64)
}

type MeasureFunc func(word string) (width, height float64)

func (f MeasureFunc) Measure(word string) (float64, float64) {
	return f(word)
}

type WordBox struct {
	Text   string
	Width  float64
	Height float64
	Pos    Point
}

func (w WordBox) Rect() Rect {
	return Rect{X: w.Pos.X, Y: w.Pos.Y, W: w.Width, H: w.Height}
}

// Layout is the placed overlay of one cue.
type Layout struct {
	Words  []WordBox
	Bounds Rect
}

func (l Layout) Empty() bool {
	return len(l.Words) == 0
}

// Sentence joins the placed words back into one line of text.
func (l Layout) Sentence() string {
	texts := make([]string, len(l.Words))
	for i, w := range l.Words {
		texts[i] = w.Text
	}
	return strings.Join(texts, " ")
}

// HitTest returns the index of the word under (x, y), or -1.
func (l Layout) HitTest(x, y float64) int {
	for i, w := range l.Words {
		if w.Rect().Contains(x, y) {
			return i
		}
	}
	return -1
}

// Place flows words left to right from the origin. The wrap check runs after
// a word is placed, so the word that crosses maxWidth stays on its row and
// only the following word starts the next one. The row advance uses the
// height of the word that triggered the wrap.
func Place(words []string, m Measurer, maxWidth float64, style Style) []WordBox {
	boxes := make([]WordBox, 0, len(words))
	var x, y float64
	for _, word := range words {
		w, h := m.Measure(word)
		boxes = append(boxes, WordBox{
			Text:   word,
			Width:  w,
			Height: h,
			Pos:    Point{X: x, Y: y},
		})
		x += w + style.Gap
		if x >= maxWidth {
			x = 0
			y += h + style.LineGap
		}
	}
	return boxes
}

func Bounds(boxes []WordBox) Rect {
	var r Rect
	for _, b := range boxes {
		r = r.Union(b.Rect())
	}
	return r
}

// Flow lays out the text of a cue inside the viewport: words are wrapped to
// the row budget, then the block is centred horizontally and lifted
// BottomMargin above the bottom edge. Neither offset goes below zero.
func Flow(text string, m Measurer, vp Viewport, style Style) Layout {
	words := strings.Fields(text)
	if len(words) == 0 {
		return Layout{}
	}
	boxes := Place(words, m, vp.Width-style.WrapMargin, style)
	bounds := Bounds(boxes)

	dx := (vp.Width - bounds.W) / 2
	dy := (vp.Height - bounds.H) - style.BottomMargin
	if dx < 0 {
		dx = 0
	}
	if dy < 0 {
		dy = 0
	}
	for i := range boxes {
		boxes[i].Pos.X += dx
		boxes[i].Pos.Y += dy
	}
	bounds.X += dx
	bounds.Y += dy

	return Layout{Words: boxes, Bounds: bounds}
}
