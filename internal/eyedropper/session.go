package eyedropper

import (
	"errors"

	"github.com/ironsheep/palette-tools-mcp/internal/imaging"
)

// ErrNoImage is returned by OnPointerMove when no raster is loaded.
var ErrNoImage = errors.New("no image loaded")

// Mode is the eyedropper's activation state.
type Mode int

const (
	Inactive Mode = iota
	Active
)

func (m Mode) String() string {
	if m == Active {
		return "active"
	}
	return "inactive"
}

// MarshalText renders the mode by name in tool responses.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// State is a point-in-time copy of a Session.
type State struct {
	Mode   Mode            `json:"mode"`
	Hover  *imaging.Sample `json:"hover,omitempty"`
	Picked *imaging.Sample `json:"picked,omitempty"`

	// HoverX and HoverY are the raster coordinates behind Hover.
	HoverX int `json:"hover_x"`
	HoverY int `json:"hover_y"`
}

// Session is a single-shot eyedropper over one raster.
//
// Activate arms it, pointer moves update the hover sample, and a commit copies
// the hover sample to the picked sample and disarms. Session is not safe for
// concurrent use; it expects a single event stream.
type Session struct {
	raster *imaging.RasterImage
	mode   Mode

	hover          *imaging.Sample
	hoverX, hoverY int
	picked         *imaging.Sample
}

// NewSession returns an inactive session with no raster.
func NewSession() *Session {
	return &Session{}
}

// Load swaps in a new raster (nil to unload). Hover and picked samples from
// the previous image are dropped and the session returns to Inactive.
func (s *Session) Load(r *imaging.RasterImage) {
	s.raster = r
	s.mode = Inactive
	s.hover = nil
	s.picked = nil
}

// Raster returns the raster currently being sampled, or nil.
func (s *Session) Raster() *imaging.RasterImage { return s.raster }

// Mode reports the current state.
func (s *Session) Mode() Mode { return s.mode }

// Activate arms the eyedropper. Activating twice is the same as once.
func (s *Session) Activate() {
	s.mode = Active
}

// Deactivate disarms the eyedropper and drops the hover sample. The picked
// sample is kept.
func (s *Session) Deactivate() {
	s.mode = Inactive
	s.hover = nil
}

// Toggle flips between Active and Inactive.
func (s *Session) Toggle() {
	if s.mode == Active {
		s.Deactivate()
		return
	}
	s.Activate()
}

// OnPointerMove samples the pixel under the pointer into the hover sample.
//
// It does nothing while Inactive. A mapping failure (viewport not yet
// measured, NaN pointer, no raster) leaves the previous hover sample in place
// and is returned so the caller can log it; it never changes the mode.
func (s *Session) OnPointerMove(pointerX, pointerY float64, vp Viewport) error {
	if s.mode != Active {
		return nil
	}
	if s.raster == nil {
		return ErrNoImage
	}

	// The raster is the source of truth for natural size.
	vp.NaturalWidth = s.raster.Width()
	vp.NaturalHeight = s.raster.Height()

	px, py, err := MapToPixel(pointerX, pointerY, vp)
	if err != nil {
		return err
	}

	sample := s.raster.SampleAt(px, py)
	s.hover = &sample
	s.hoverX, s.hoverY = px, py
	return nil
}

// OnCommit picks the hover sample and disarms. It reports whether a pick
// happened; with no hover sample (or while Inactive) it is a no-op.
func (s *Session) OnCommit() bool {
	if s.mode != Active || s.hover == nil {
		return false
	}
	picked := *s.hover
	s.picked = &picked
	s.Deactivate()
	return true
}

// Hover returns the current hover sample, or nil.
func (s *Session) Hover() *imaging.Sample { return copySample(s.hover) }

// Picked returns the last committed sample, or nil.
func (s *Session) Picked() *imaging.Sample { return copySample(s.picked) }

// Snapshot copies the session state for reporting.
func (s *Session) Snapshot() State {
	st := State{
		Mode:   s.mode,
		Hover:  copySample(s.hover),
		Picked: copySample(s.picked),
	}
	if s.hover != nil {
		st.HoverX, st.HoverY = s.hoverX, s.hoverY
	}
	return st
}

func copySample(p *imaging.Sample) *imaging.Sample {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
