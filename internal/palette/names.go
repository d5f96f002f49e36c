package palette

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/palette-tools-mcp/internal/imaging"
)

type namedColor struct {
	name  string
	color colorful.Color
}

// referenceNames is a compact subset of the CSS named colors, spread over the
// hue wheel with light, dark and neutral variants.
var referenceNames = buildNames(map[string]string{
	"Black":         "#000000",
	"Charcoal":      "#36454F",
	"Dim Gray":      "#696969",
	"Gray":          "#808080",
	"Silver":        "#C0C0C0",
	"Gainsboro":     "#DCDCDC",
	"White":         "#FFFFFF",
	"Ivory":         "#FFFFF0",
	"Beige":         "#F5F5DC",
	"Tan":           "#D2B48C",
	"Sienna":        "#A0522D",
	"Brown":         "#8B4513",
	"Maroon":        "#800000",
	"Crimson":       "#DC143C",
	"Red":           "#FF0000",
	"Salmon":        "#FA8072",
	"Pink":          "#FFC0CB",
	"Hot Pink":      "#FF69B4",
	"Orange Red":    "#FF4500",
	"Orange":        "#FFA500",
	"Gold":          "#FFD700",
	"Khaki":         "#F0E68C",
	"Yellow":        "#FFFF00",
	"Olive":         "#808000",
	"Yellow Green":  "#9ACD32",
	"Lime":          "#00FF00",
	"Forest Green":  "#228B22",
	"Dark Green":    "#006400",
	"Sea Green":     "#2E8B57",
	"Mint":          "#98FF98",
	"Teal":          "#008080",
	"Turquoise":     "#40E0D0",
	"Cyan":          "#00FFFF",
	"Sky Blue":      "#87CEEB",
	"Steel Blue":    "#4682B4",
	"Royal Blue":    "#4169E1",
	"Blue":          "#0000FF",
	"Navy":          "#000080",
	"Midnight Blue": "#191970",
	"Indigo":        "#4B0082",
	"Purple":        "#800080",
	"Violet":        "#EE82EE",
	"Lavender":      "#E6E6FA",
	"Plum":          "#DDA0DD",
	"Magenta":       "#FF00FF",
})

func buildNames(m map[string]string) []namedColor {
	out := make([]namedColor, 0, len(m))
	for name, hex := range m {
		c, err := colorful.Hex(hex)
		if err != nil {
			panic("palette: bad reference color " + hex)
		}
		out = append(out, namedColor{name: name, color: c})
	}
	return out
}

// NearestName returns the reference name perceptually closest to s.
// Equal distances resolve to the alphabetically first name.
func NearestName(s imaging.Sample) string {
	c := toColorful(s)
	best, bestDist := "", math.Inf(1)
	for _, nc := range referenceNames {
		d := c.DistanceCIEDE2000(nc.color)
		if d < bestDist || (d == bestDist && nc.name < best) {
			best, bestDist = nc.name, d
		}
	}
	return best
}
