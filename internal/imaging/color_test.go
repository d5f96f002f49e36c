package imaging

import (
	"image/color"
	"testing"
)

func TestSampleColor(t *testing.T) {
	img := mustRaster(t, solidImage(100, 100, color.RGBA{255, 128, 64, 255}))

	result, err := SampleColor(img, 50, 50)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}

	if result.Hex != "#FF8040" {
		t.Errorf("Hex: got %s, want #FF8040", result.Hex)
	}
	if result.RGB != (Sample{255, 128, 64}) {
		t.Errorf("RGB: got %+v, want {255 128 64}", result.RGB)
	}
	if result.RGBText != "rgb(255, 128, 64)" {
		t.Errorf("RGBText: got %s, want rgb(255, 128, 64)", result.RGBText)
	}
}

func TestSampleColor_KnownColors(t *testing.T) {
	tests := []struct {
		name    string
		color   color.RGBA
		wantHex string
		wantHSL HSLColor
	}{
		{"pure red", color.RGBA{255, 0, 0, 255}, "#FF0000", HSLColor{0, 100, 50}},
		{"pure green", color.RGBA{0, 255, 0, 255}, "#00FF00", HSLColor{120, 100, 50}},
		{"pure blue", color.RGBA{0, 0, 255, 255}, "#0000FF", HSLColor{240, 100, 50}},
		{"white", color.RGBA{255, 255, 255, 255}, "#FFFFFF", HSLColor{0, 0, 100}},
		{"black", color.RGBA{0, 0, 0, 255}, "#000000", HSLColor{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := mustRaster(t, solidImage(10, 10, tt.color))
			result, err := SampleColor(img, 5, 5)
			if err != nil {
				t.Fatalf("SampleColor failed: %v", err)
			}

			if result.Hex != tt.wantHex {
				t.Errorf("Hex: got %s, want %s", result.Hex, tt.wantHex)
			}
			if result.HSL != tt.wantHSL {
				t.Errorf("HSL: got %+v, want %+v", result.HSL, tt.wantHSL)
			}
		})
	}
}

func TestSampleColor_OutOfBounds(t *testing.T) {
	img := mustRaster(t, solidImage(100, 100, color.RGBA{255, 0, 0, 255}))

	tests := []struct {
		name string
		x, y int
	}{
		{"negative x", -1, 50},
		{"negative y", 50, -1},
		{"x too large", 100, 50},
		{"y too large", 50, 100},
		{"both too large", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SampleColor(img, tt.x, tt.y)
			if err == nil {
				t.Error("SampleColor should fail for out-of-bounds coordinates")
			}
		})
	}
}

func TestDominantColors(t *testing.T) {
	img := mustRaster(t, createPatternImage(100, 100))

	result, err := DominantColors(img, 5)
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}

	if len(result.Colors) != 4 {
		t.Fatalf("got %d colors, want 4", len(result.Colors))
	}
	for _, c := range result.Colors {
		if c.Percentage != 25 {
			t.Errorf("%s: got %.2f%%, want 25%%", c.Hex, c.Percentage)
		}
		if c.Hex != c.RGB.Hex() {
			t.Errorf("Hex %s does not match RGB %s", c.Hex, c.RGB.Hex())
		}
	}
	// Equal shares are ordered by hex.
	if result.Colors[0].Hex != "#0808F8" {
		t.Errorf("first color: got %s, want #0808F8", result.Colors[0].Hex)
	}
}

func TestDominantColors_CountLimit(t *testing.T) {
	img := mustRaster(t, createPatternImage(100, 100))

	result, err := DominantColors(img, 2)
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}
	if len(result.Colors) != 2 {
		t.Errorf("got %d colors, want 2", len(result.Colors))
	}
}

func TestDominantColors_Invalid(t *testing.T) {
	img := mustRaster(t, createPatternImage(10, 10))

	if _, err := DominantColors(img, 0); err == nil {
		t.Error("count 0 should fail")
	}
}
