package eyedropper

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/palette-tools-mcp/internal/imaging"
)

// gridRaster builds a 4x4 raster whose pixel (x,y) is (x*16+y, 0x22, 0x33)
// except (2,2), which is #112233.
func gridRaster(t *testing.T) *imaging.RasterImage {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{uint8(x*16 + y), 0x22, 0x33, 255})
		}
	}
	img.Set(2, 2, color.RGBA{0x11, 0x22, 0x33, 255})
	r, err := imaging.FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	return r
}

var doubled = Viewport{Width: 8, Height: 8}

func TestSession_PickFlow(t *testing.T) {
	s := NewSession()
	s.Load(gridRaster(t))
	s.Activate()

	if err := s.OnPointerMove(5, 5, doubled); err != nil {
		t.Fatalf("OnPointerMove failed: %v", err)
	}
	if h := s.Hover(); h == nil || h.Hex() != "#112233" {
		t.Fatalf("hover: got %v, want #112233", h)
	}

	if !s.OnCommit() {
		t.Fatal("OnCommit should pick")
	}
	if s.Mode() != Inactive {
		t.Errorf("mode after commit: got %v, want inactive", s.Mode())
	}
	if p := s.Picked(); p == nil || p.Hex() != "#112233" || p.RGBText() != "rgb(17, 34, 51)" {
		t.Errorf("picked: got %v, want #112233", p)
	}
	if s.Hover() != nil {
		t.Error("hover should be cleared after commit")
	}
}

func TestSession_CommitWithoutHover(t *testing.T) {
	s := NewSession()
	s.Load(gridRaster(t))
	s.Activate()

	if s.OnCommit() {
		t.Error("OnCommit without hover should be a no-op")
	}
	if s.Mode() != Active {
		t.Errorf("mode: got %v, want active", s.Mode())
	}
	if s.Picked() != nil {
		t.Error("picked should remain nil")
	}
}

func TestSession_CommitKeepsPreviousPickWithoutHover(t *testing.T) {
	s := NewSession()
	s.Load(gridRaster(t))
	s.Activate()
	_ = s.OnPointerMove(0, 0, doubled)
	s.OnCommit()
	before := s.Picked()

	s.Activate()
	if s.OnCommit() {
		t.Error("second commit without a fresh hover should be a no-op")
	}
	if diff := cmp.Diff(before, s.Picked()); diff != "" {
		t.Errorf("picked changed (-before +after):\n%s", diff)
	}
}

func TestSession_InactiveIgnoresEvents(t *testing.T) {
	s := NewSession()
	s.Load(gridRaster(t))

	if err := s.OnPointerMove(5, 5, doubled); err != nil {
		t.Fatalf("OnPointerMove while inactive: %v", err)
	}
	if s.Hover() != nil {
		t.Error("inactive session should not record hover")
	}
	if s.OnCommit() {
		t.Error("inactive session should not commit")
	}
}

func TestSession_ActivateIdempotent(t *testing.T) {
	once := NewSession()
	once.Load(gridRaster(t))
	once.Activate()
	_ = once.OnPointerMove(1, 1, doubled)

	twice := NewSession()
	twice.Load(gridRaster(t))
	twice.Activate()
	_ = twice.OnPointerMove(1, 1, doubled)
	twice.Activate()

	if diff := cmp.Diff(once.Snapshot(), twice.Snapshot()); diff != "" {
		t.Errorf("activate twice differs from once (-once +twice):\n%s", diff)
	}
}

func TestSession_DeactivateClearsHover(t *testing.T) {
	s := NewSession()
	s.Load(gridRaster(t))
	s.Activate()
	_ = s.OnPointerMove(1, 1, doubled)

	s.Deactivate()
	if s.Mode() != Inactive {
		t.Errorf("mode: got %v, want inactive", s.Mode())
	}
	if s.Hover() != nil {
		t.Error("deactivate should clear hover")
	}
}

func TestSession_Toggle(t *testing.T) {
	s := NewSession()
	s.Toggle()
	if s.Mode() != Active {
		t.Errorf("first toggle: got %v, want active", s.Mode())
	}
	s.Toggle()
	if s.Mode() != Inactive {
		t.Errorf("second toggle: got %v, want inactive", s.Mode())
	}
}

func TestSession_LoadResets(t *testing.T) {
	s := NewSession()
	s.Load(gridRaster(t))
	s.Activate()
	_ = s.OnPointerMove(5, 5, doubled)
	s.OnCommit()
	s.Activate()
	_ = s.OnPointerMove(0, 0, doubled)

	s.Load(gridRaster(t))

	want := State{Mode: Inactive}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("state after load (-want +got):\n%s", diff)
	}
}

func TestSession_FailedMoveKeepsHover(t *testing.T) {
	s := NewSession()
	s.Load(gridRaster(t))
	s.Activate()
	_ = s.OnPointerMove(5, 5, doubled)

	err := s.OnPointerMove(1, 1, Viewport{})
	if !errors.Is(err, ErrViewportUnmeasured) {
		t.Fatalf("got %v, want ErrViewportUnmeasured", err)
	}
	if s.Mode() != Active {
		t.Errorf("mode: got %v, want active", s.Mode())
	}
	if h := s.Hover(); h == nil || h.Hex() != "#112233" {
		t.Errorf("hover should survive a suppressed sample, got %v", h)
	}
}

func TestSession_NoImage(t *testing.T) {
	s := NewSession()
	s.Activate()
	if err := s.OnPointerMove(1, 1, doubled); !errors.Is(err, ErrNoImage) {
		t.Errorf("got %v, want ErrNoImage", err)
	}
}

func TestSession_SnapshotCoordinates(t *testing.T) {
	s := NewSession()
	s.Load(gridRaster(t))
	s.Activate()
	_ = s.OnPointerMove(100, -3, doubled)

	st := s.Snapshot()
	if st.HoverX != 3 || st.HoverY != 0 {
		t.Errorf("hover coordinates: got (%d,%d), want (3,0)", st.HoverX, st.HoverY)
	}
	if st.Hover == nil || *st.Hover != (imaging.Sample{R: 48, G: 0x22, B: 0x33}) {
		t.Errorf("hover: got %v, want {48 34 51}", st.Hover)
	}
}

func TestState_JSONKeepsZeroCoordinates(t *testing.T) {
	s := NewSession()
	s.Load(gridRaster(t))
	s.Activate()
	_ = s.OnPointerMove(-5, -5, doubled)

	b, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"hover_x", "hover_y"} {
		if v, ok := got[k]; !ok || v != float64(0) {
			t.Errorf("%s: got %v (present %v), want 0", k, v, ok)
		}
	}
}

func TestMode_MarshalText(t *testing.T) {
	b, _ := Active.MarshalText()
	if string(b) != "active" {
		t.Errorf("got %q, want active", b)
	}
}
