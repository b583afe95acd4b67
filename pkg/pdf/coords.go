package pdf

import "fmt"

// Placement is a requested signature position in UI space, with the origin
// at the top-left of the page. Pixel fields are expressed in PDF points.
// When all four percentage fields are set they take precedence over the
// pixel fields, since percentages survive differing render scales between
// the client preview and the page at embed time.
type Placement struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	XPercent      *float64 `json:"xPercent,omitempty"`
	YPercent      *float64 `json:"yPercent,omitempty"`
	WidthPercent  *float64 `json:"widthPercent,omitempty"`
	HeightPercent *float64 `json:"heightPercent,omitempty"`
}

// HasPercent reports whether the placement carries a complete percentage
// rectangle.
func (p Placement) HasPercent() bool {
	return p.XPercent != nil && p.YPercent != nil && p.WidthPercent != nil && p.HeightPercent != nil
}

// Resolving percentages on non-round page sizes leaves a rounding residue:
// a placement flush with the bottom edge (yPct + heightPct = 100) can come
// out at y = -1e-13. Coordinates within this tolerance count as on the page
// and are snapped to the edge.
const boundsEpsilon = 1e-9

// Rect is a resolved rectangle in PDF page space: point units, origin at
// the bottom-left of the page.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ToPageSpace resolves a UI-space placement against the target page
// dimensions (in points). Percentage fields are preferred when present;
// otherwise the pixel rectangle is taken as-is. The vertical origin is
// flipped from top-left to the PDF's bottom-left, and the final coordinates
// are validated against the page rectangle.
func ToPageSpace(p Placement, pageWidth, pageHeight float64) (Rect, error) {
	var x, yTop, w, h float64

	if p.HasPercent() {
		x = *p.XPercent / 100 * pageWidth
		yTop = *p.YPercent / 100 * pageHeight
		w = *p.WidthPercent / 100 * pageWidth
		h = *p.HeightPercent / 100 * pageHeight
	} else {
		x = p.X
		yTop = p.Y
		w = p.Width
		h = p.Height
	}

	r := Rect{
		X:      x,
		Y:      pageHeight - yTop - h,
		Width:  w,
		Height: h,
	}

	if r.X < -boundsEpsilon || r.X > pageWidth+boundsEpsilon ||
		r.Y < -boundsEpsilon || r.Y > pageHeight+boundsEpsilon {
		return Rect{}, fmt.Errorf("%w: page %.0fx%.0f, coords %.2f, %.2f",
			ErrOutOfBounds, pageWidth, pageHeight, r.X, r.Y)
	}
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}

	return r, nil
}
