package eyedropper

import (
	"errors"
	"math"
)

var (
	// ErrViewportUnmeasured means the rendered size or the natural size is not
	// yet known. Callers suppress sampling instead of propagating it.
	ErrViewportUnmeasured = errors.New("viewport has not been measured")

	// ErrInvalidPointer means a pointer coordinate was NaN.
	ErrInvalidPointer = errors.New("pointer position is not a number")
)

// Viewport is the on-screen rectangle an image is drawn into, paired with the
// image's natural size.
//
// Left/Top/Width/Height come from layout and are in the same coordinate space
// as pointer events. A Viewport is a snapshot; a new one is taken whenever the
// image loads or the display resizes.
type Viewport struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	NaturalWidth  int `json:"natural_width"`
	NaturalHeight int `json:"natural_height"`
}

// Measured reports whether the viewport can be used for mapping.
func (v Viewport) Measured() bool {
	return v.Width > 0 && v.Height > 0 && v.NaturalWidth > 0 && v.NaturalHeight > 0 &&
		finite(v.Width) && finite(v.Height) && finite(v.Left) && finite(v.Top)
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// MapToPixel converts a pointer position to raster coordinates.
//
// The pointer is made local to the rendered rectangle, scaled by
// natural/rendered on each axis and floored. The result is clamped to
// [0, natural-1], so a pointer at or past the edge of the picture (including
// sub-pixel overshoot while dragging) resolves to the nearest edge pixel
// rather than failing.
func MapToPixel(pointerX, pointerY float64, vp Viewport) (int, int, error) {
	if !vp.Measured() {
		return 0, 0, ErrViewportUnmeasured
	}
	if math.IsNaN(pointerX) || math.IsNaN(pointerY) {
		return 0, 0, ErrInvalidPointer
	}

	scaleX := float64(vp.NaturalWidth) / vp.Width
	scaleY := float64(vp.NaturalHeight) / vp.Height

	px := clampFloor((pointerX-vp.Left)*scaleX, vp.NaturalWidth)
	py := clampFloor((pointerY-vp.Top)*scaleY, vp.NaturalHeight)
	return px, py, nil
}

// clampFloor floors v into [0, limit-1]. Clamping happens in float space so
// huge or infinite values never reach an int conversion.
func clampFloor(v float64, limit int) int {
	v = math.Floor(v)
	if v < 0 {
		return 0
	}
	if v > float64(limit-1) {
		return limit - 1
	}
	return int(v)
}

// Fit returns the viewport of an image letterboxed inside a container box
// with its aspect ratio preserved (CSS object-fit: contain).
//
// The image is centered along the axis with spare room. A container with no
// area, or an image with no pixels, yields an unmeasured viewport.
func Fit(left, top, width, height float64, naturalWidth, naturalHeight int) Viewport {
	vp := Viewport{NaturalWidth: naturalWidth, NaturalHeight: naturalHeight}
	if width <= 0 || height <= 0 || naturalWidth <= 0 || naturalHeight <= 0 {
		return vp
	}

	scale := math.Min(width/float64(naturalWidth), height/float64(naturalHeight))
	vp.Width = float64(naturalWidth) * scale
	vp.Height = float64(naturalHeight) * scale
	vp.Left = left + (width-vp.Width)/2
	vp.Top = top + (height-vp.Height)/2
	return vp
}
