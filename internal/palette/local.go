package palette

import (
	"context"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/palette-tools-mcp/internal/imaging"
)

// Local extracts a palette offline from the quantized color histogram.
//
// It is the fallback when no API key is configured: colors are the most
// frequent histogram buckets, merged when perceptually close, named after the
// nearest reference color.
type Local struct {
	// Count is the number of colors to return. Zero means MaxColors.
	Count int

	// MinDistance is the CIEDE2000 distance under which two buckets are
	// treated as the same color. Zero means 0.08.
	MinDistance float64
}

// Analyze decodes the image and builds the palette.
func (l Local) Analyze(ctx context.Context, img Image) (*Analysis, error) {
	r, err := imaging.Decode(img.Data, "analysis input")
	if err != nil {
		return nil, err
	}
	return l.AnalyzeRaster(ctx, r)
}

// AnalyzeRaster builds the palette from an already decoded raster.
func (l Local) AnalyzeRaster(ctx context.Context, r *imaging.RasterImage) (*Analysis, error) {
	count := l.Count
	if count <= 0 {
		count = MaxColors
	}
	minDist := l.MinDistance
	if minDist <= 0 {
		minDist = 0.08
	}

	// Oversample so merging near-duplicates still leaves enough colors.
	hist, err := imaging.DominantColors(r, count*8)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type picked struct {
		freq  imaging.ColorFrequency
		color colorful.Color
	}
	var chosen []picked
	for _, f := range hist.Colors {
		c := toColorful(f.RGB)
		dup := false
		for i := range chosen {
			if c.DistanceCIEDE2000(chosen[i].color) < minDist {
				chosen[i].freq.Percentage += f.Percentage
				dup = true
				break
			}
		}
		if !dup {
			chosen = append(chosen, picked{freq: f, color: c})
		}
		if len(chosen) == count {
			break
		}
	}

	out := &Analysis{Source: "local"}
	for _, p := range chosen {
		out.Palette = append(out.Palette, Color{
			Hex:         p.freq.Hex,
			RGB:         p.freq.RGB.RGBText(),
			Name:        NearestName(p.freq.RGB),
			Description: fmt.Sprintf("Covers about %.1f%% of the image.", math.Round(p.freq.Percentage*10)/10),
		})
	}
	return out, nil
}

func toColorful(s imaging.Sample) colorful.Color {
	return colorful.Color{R: float64(s.R) / 255, G: float64(s.G) / 255, B: float64(s.B) / 255}
}
