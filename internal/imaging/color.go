package imaging

import (
	"fmt"
	"sort"
)

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-359 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a color value in multiple representations.
//
// Every field is derived from the same Sample, so the forms always agree.
type ColorResult struct {
	Hex     string   `json:"hex"` // "#RRGGBB"
	RGB     Sample   `json:"rgb"`
	RGBText string   `json:"rgb_text"` // "rgb(r, g, b)"
	HSL     HSLColor `json:"hsl"`
}

// Describe expands a Sample into every representation the tools report.
func Describe(s Sample) *ColorResult {
	return &ColorResult{
		Hex:     s.Hex(),
		RGB:     s,
		RGBText: s.RGBText(),
		HSL:     s.HSL(),
	}
}

// SampleColor extracts the color at a specific pixel coordinate.
//
// Unlike PixelAt, which trusts its caller, this is the entry point for
// coordinates that arrive from outside (tool arguments), so an out-of-range
// coordinate is reported as an error.
//
// Coordinates are 0-based with origin at top-left:
//   - Valid X range: 0 to width-1
//   - Valid Y range: 0 to height-1
func SampleColor(img *RasterImage, x, y int) (*ColorResult, error) {
	if x < 0 || x >= img.Width() || y < 0 || y >= img.Height() {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}
	return Describe(img.SampleAt(x, y)), nil
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string  `json:"hex"`        // Hex color "#RRGGBB" (quantized)
	Percentage float64 `json:"percentage"` // Percentage of pixels with this color (0-100)
	RGB        Sample  `json:"rgb"`        // RGB components (quantized)
}

// DominantColorsResult contains the most frequently occurring colors in an image.
//
// Colors are sorted by frequency in descending order (most common first).
type DominantColorsResult struct {
	Colors []ColorFrequency `json:"colors"`
}

// DominantColors extracts the N most common colors from an image.
//
// # Color Quantization
//
// To group similar colors, each channel is quantized to the center of its
// 16-wide bucket:
//
//	quantized = (original / 16) * 16 + 8
//
// so #F0F0F0 and #FAFAFA both land on #F8F8F8. Ties in frequency are broken by
// hex value to keep the output deterministic.
func DominantColors(img *RasterImage, count int) (*DominantColorsResult, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}

	counts := make(map[Sample]int)
	totalPixels := 0

	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			r, g, b := img.PixelAt(x, y)
			counts[Sample{R: quantize(r), G: quantize(g), B: quantize(b)}]++
			totalPixels++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for s, cnt := range counts {
		colors = append(colors, ColorFrequency{
			Hex:        s.Hex(),
			Percentage: float64(cnt) / float64(totalPixels) * 100,
			RGB:        s,
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if len(colors) > count {
		colors = colors[:count]
	}

	return &DominantColorsResult{Colors: colors}, nil
}

func quantize(c uint8) uint8 {
	return c/16*16 + 8
}
