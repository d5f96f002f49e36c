package imaging

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// FormatError reports a malformed color string.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid color %q: %s", e.Input, e.Reason)
}

// Sample is an 8-bit RGB color.
//
// The hex and rgb(...) forms are always derived from the channels on demand
// and are never stored separately.
type Sample struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color as "#RRGGBB" with uppercase digits.
func (s Sample) Hex() string { return EncodeHex(s.R, s.G, s.B) }

// RGBText returns the color as "rgb(r, g, b)".
func (s Sample) RGBText() string { return RGBText(s.R, s.G, s.B) }

// HSL returns the color in HSL space with H in degrees and S, L in percent.
func (s Sample) HSL() HSLColor {
	h, sat, l := s.colorful().Hsl()
	return HSLColor{
		H: int(h+0.5) % 360,
		S: int(sat*100 + 0.5),
		L: int(l*100 + 0.5),
	}
}

func (s Sample) colorful() colorful.Color {
	return colorful.Color{R: float64(s.R) / 255, G: float64(s.G) / 255, B: float64(s.B) / 255}
}

// MarshalJSON emits the channels together with their derived forms.
func (s Sample) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		R   uint8  `json:"r"`
		G   uint8  `json:"g"`
		B   uint8  `json:"b"`
		Hex string `json:"hex"`
		RGB string `json:"rgb"`
	}{s.R, s.G, s.B, s.Hex(), s.RGBText()})
}

const hexDigits = "0123456789ABCDEF"

// EncodeHex formats channels as "#RRGGBB", zero-padded and uppercase.
func EncodeHex(r, g, b uint8) string {
	buf := [7]byte{'#'}
	for i, c := range [3]uint8{r, g, b} {
		buf[1+2*i] = hexDigits[c>>4]
		buf[2+2*i] = hexDigits[c&0x0F]
	}
	return string(buf[:])
}

// DecodeHex parses "#RRGGBB" (case-insensitive).
//
// Anything other than exactly '#' followed by six hex digits yields a
// *FormatError.
func DecodeHex(hex string) (uint8, uint8, uint8, error) {
	if len(hex) != 7 {
		return 0, 0, 0, &FormatError{Input: hex, Reason: "must be 7 characters (#RRGGBB)"}
	}
	if hex[0] != '#' {
		return 0, 0, 0, &FormatError{Input: hex, Reason: "must start with '#'"}
	}
	var out [3]uint8
	for i := range out {
		hi, ok1 := hexValue(hex[1+2*i])
		lo, ok2 := hexValue(hex[2+2*i])
		if !ok1 || !ok2 {
			return 0, 0, 0, &FormatError{Input: hex, Reason: "contains a non-hex digit"}
		}
		out[i] = hi<<4 | lo
	}
	return out[0], out[1], out[2], nil
}

// ParseSample decodes a hex string into a Sample.
func ParseSample(hex string) (Sample, error) {
	r, g, b, err := DecodeHex(hex)
	if err != nil {
		return Sample{}, err
	}
	return Sample{R: r, G: g, B: b}, nil
}

func hexValue(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// RGBText formats channels as "rgb(r, g, b)" with unpadded decimals.
func RGBText(r, g, b uint8) string {
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}

// ParseRGBText parses the RGBText form, tolerating extra whitespace.
func ParseRGBText(text string) (Sample, error) {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(strings.ToLower(t), "rgb(") || !strings.HasSuffix(t, ")") {
		return Sample{}, &FormatError{Input: text, Reason: "must look like rgb(r, g, b)"}
	}
	fields := strings.Split(t[4:len(t)-1], ",")
	if len(fields) != 3 {
		return Sample{}, &FormatError{Input: text, Reason: "must have three channels"}
	}
	var out [3]uint8
	for i, f := range fields {
		v, err := strconv.ParseUint(strings.TrimSpace(f), 10, 8)
		if err != nil {
			return Sample{}, &FormatError{Input: text, Reason: fmt.Sprintf("channel %d is not 0-255", i+1)}
		}
		out[i] = uint8(v)
	}
	return Sample{R: out[0], G: out[1], B: out[2]}, nil
}
