package layout

const popupEdgeMargin = 50

// PopupWrapWidth is the text width a popup is constrained to once its natural
// width reaches the viewport width.
func PopupWrapWidth(viewportWidth float64) float64 {
	return viewportWidth - popupEdgeMargin
}

// PlacePopup positions a w x h translation popup above an anchor point. The
// popup is centred on anchorX unless that would cross the right edge, in
// which case it is pinned to it. The result never goes negative.
func PlacePopup(w, h, anchorX, anchorY, viewportWidth float64) Point {
	var x float64
	if anchorX+w/2 >= viewportWidth {
		x = viewportWidth - w
	} else {
		x = anchorX - w/2
	}
	y := anchorY - h
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return Point{X: x, Y: y}
}
