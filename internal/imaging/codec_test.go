package imaging

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"
)

var hexPattern = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestEncodeDecodeHex_AllChannels(t *testing.T) {
	// Every channel value in every position round-trips, and every encoding
	// has the canonical shape.
	for v := 0; v < 256; v++ {
		c := uint8(v)
		for _, in := range [][3]uint8{{c, 0, 0}, {0, c, 0}, {0, 0, c}, {c, 255 - c, c / 3}} {
			hex := EncodeHex(in[0], in[1], in[2])
			if !hexPattern.MatchString(hex) {
				t.Fatalf("EncodeHex%v = %q, not #RRGGBB", in, hex)
			}
			r, g, b, err := DecodeHex(hex)
			if err != nil {
				t.Fatalf("DecodeHex(%q): %v", hex, err)
			}
			if [3]uint8{r, g, b} != in {
				t.Fatalf("round trip %v -> %q -> %v", in, hex, [3]uint8{r, g, b})
			}
		}
	}
}

func TestEncodeHex(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    string
	}{
		{0, 0, 0, "#000000"},
		{255, 255, 255, "#FFFFFF"},
		{0x11, 0x22, 0x33, "#112233"},
		{1, 2, 10, "#01020A"},
		{171, 205, 239, "#ABCDEF"},
	}

	for _, tt := range tests {
		if got := EncodeHex(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("EncodeHex(%d,%d,%d): got %s, want %s", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func TestDecodeHex_CaseInsensitive(t *testing.T) {
	r, g, b, err := DecodeHex("#abcDEF")
	if err != nil {
		t.Fatalf("DecodeHex failed: %v", err)
	}
	if r != 0xAB || g != 0xCD || b != 0xEF {
		t.Errorf("got (%d,%d,%d), want (171,205,239)", r, g, b)
	}
}

func TestDecodeHex_Invalid(t *testing.T) {
	tests := []string{
		"",
		"#",
		"112233",
		"#12345",
		"#1234567",
		"#GG0000",
		"#12 345",
		"0x112233",
		"#FFF",
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, _, _, err := DecodeHex(in)
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("DecodeHex(%q): got %v, want *FormatError", in, err)
			}
		})
	}
}

func TestRGBText(t *testing.T) {
	if got := RGBText(0, 7, 255); got != "rgb(0, 7, 255)" {
		t.Errorf("RGBText: got %q, want %q", got, "rgb(0, 7, 255)")
	}
}

func TestParseRGBText(t *testing.T) {
	tests := []struct {
		in      string
		want    Sample
		wantErr bool
	}{
		{"rgb(161, 178, 195)", Sample{161, 178, 195}, false},
		{"  RGB(1,2,3) ", Sample{1, 2, 3}, false},
		{"rgb( 0 , 0 , 0 )", Sample{0, 0, 0}, false},
		{"rgb(256, 0, 0)", Sample{}, true},
		{"rgb(1, 2)", Sample{}, true},
		{"rgba(1, 2, 3, 4)", Sample{}, true},
		{"#112233", Sample{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRGBText(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseRGBText(%q) should fail", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRGBText(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSample_HSL(t *testing.T) {
	tests := []struct {
		in   Sample
		want HSLColor
	}{
		{Sample{R: 255}, HSLColor{H: 0, S: 100, L: 50}},
		{Sample{G: 255}, HSLColor{H: 120, S: 100, L: 50}},
		{Sample{R: 128, G: 128, B: 128}, HSLColor{H: 0, S: 0, L: 50}},
		// Hue 359.76 rounds up and wraps to 0.
		{Sample{R: 255, B: 1}, HSLColor{H: 0, S: 100, L: 50}},
	}
	for _, tt := range tests {
		if got := tt.in.HSL(); got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.in.Hex(), got, tt.want)
		}
	}
}

func TestSample_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Sample{R: 0x11, G: 0x22, B: 0x33})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got["hex"] != "#112233" {
		t.Errorf("hex: got %v, want #112233", got["hex"])
	}
	if got["rgb"] != "rgb(17, 34, 51)" {
		t.Errorf("rgb: got %v, want rgb(17, 34, 51)", got["rgb"])
	}
	if got["r"] != float64(17) {
		t.Errorf("r: got %v, want 17", got["r"])
	}
}
