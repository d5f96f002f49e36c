package palette

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ironsheep/palette-tools-mcp/internal/imaging"
)

var (
	// ErrUnauthorized means the service rejected the credential. Callers
	// should drop the stored key and ask for a new one.
	ErrUnauthorized = errors.New("credential rejected by palette service")

	// ErrInvalidResponse means the service answered with something that is
	// not a palette.
	ErrInvalidResponse = errors.New("invalid palette response")
)

// Expected palette size requested from the service.
const (
	MinColors = 10
	MaxColors = 12
)

// Color is one named entry of an extracted palette.
type Color struct {
	Hex         string `json:"hex"`
	RGB         string `json:"rgb"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Analysis is the result of palette extraction.
type Analysis struct {
	Palette []Color `json:"palette"`

	// Source names the analyzer that produced the palette.
	Source string `json:"source,omitempty"`
}

// Image is the encoded image handed to an analyzer.
type Image struct {
	Data     []byte
	MIMEType string
}

// Analyzer extracts a named palette from an image.
type Analyzer interface {
	Analyze(ctx context.Context, img Image) (*Analysis, error)
}

// Normalize validates an analysis in place.
//
// Hex codes are decoded and re-encoded in canonical uppercase form. The rgb
// text is kept when it parses and agrees with the hex, otherwise it is
// regenerated from the hex. Names and descriptions are trimmed. An empty
// palette or an undecodable hex is ErrInvalidResponse.
func Normalize(a *Analysis, logger *slog.Logger) error {
	if a == nil || len(a.Palette) == 0 {
		return fmt.Errorf("%w: no palette entries", ErrInvalidResponse)
	}

	for i := range a.Palette {
		c := &a.Palette[i]
		s, err := imaging.ParseSample(strings.TrimSpace(c.Hex))
		if err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrInvalidResponse, i, err)
		}
		c.Hex = s.Hex()

		if rgb, err := imaging.ParseRGBText(c.RGB); err != nil || rgb != s {
			if logger != nil {
				logger.Debug("regenerating rgb text", "hex", c.Hex, "rgb", c.RGB)
			}
			c.RGB = s.RGBText()
		} else {
			c.RGB = rgb.RGBText()
		}

		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			c.Name = c.Hex
		}
		c.Description = strings.TrimSpace(c.Description)
	}

	if n := len(a.Palette); logger != nil && (n < MinColors || n > MaxColors) {
		logger.Warn("palette size outside requested range", "colors", n, "min", MinColors, "max", MaxColors)
	}
	return nil
}
