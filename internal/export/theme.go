package export

import (
	"fmt"
	"strings"

	"github.com/ironsheep/palette-tools-mcp/internal/imaging"
)

// Theme is the color scheme of an exported document.
type Theme struct {
	Name       string
	Background imaging.Sample
	Card       imaging.Sample
	Border     imaging.Sample
	Title      imaging.Sample
	Text       imaging.Sample
	Muted      imaging.Sample
	Accent     imaging.Sample
}

var (
	// Dark is the default: near-black page, slate cards, indigo accents.
	Dark = Theme{
		Name:       "dark",
		Background: rgb(0x11, 0x18, 0x27),
		Card:       rgb(0x1F, 0x29, 0x37),
		Border:     rgb(0x37, 0x41, 0x51),
		Title:      rgb(0xF3, 0xF4, 0xF6),
		Text:       rgb(0xD1, 0xD5, 0xDB),
		Muted:      rgb(0x6B, 0x72, 0x80),
		Accent:     rgb(0xA5, 0xB4, 0xFC),
	}

	Light = Theme{
		Name:       "light",
		Background: rgb(0xFF, 0xFF, 0xFF),
		Card:       rgb(0xF3, 0xF4, 0xF6),
		Border:     rgb(0xD1, 0xD5, 0xDB),
		Title:      rgb(0x11, 0x18, 0x27),
		Text:       rgb(0x37, 0x41, 0x51),
		Muted:      rgb(0x6B, 0x72, 0x80),
		Accent:     rgb(0x4F, 0x46, 0xE5),
	}
)

func rgb(r, g, b uint8) imaging.Sample { return imaging.Sample{R: r, G: g, B: b} }

// ThemeByName looks a theme up case-insensitively. Empty means Dark.
func ThemeByName(name string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "dark":
		return Dark, nil
	case "light":
		return Light, nil
	}
	return Theme{}, fmt.Errorf("unknown theme %q (want dark or light)", name)
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t.Name == Light.Name {
		return Dark
	}
	return Light
}
