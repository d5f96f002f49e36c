package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// DecodeError reports an image source that could not be decoded.
//
// It is surfaced to the user as-is; loads are never retried.
type DecodeError struct {
	// Source describes where the bytes came from (a path, URL or "inline data").
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image from %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// MaxPixels bounds width*height of a decoded image. Headers are checked before
// any pixel memory is allocated, so a small file declaring huge dimensions is
// rejected cheaply.
var MaxPixels = 64 << 20

// RasterImage is a decoded bitmap with known natural dimensions.
//
// A RasterImage is immutable once loaded. Pixels are held as non-premultiplied
// RGBA rebased to the origin, so PixelAt never depends on the decoder's
// concrete image type or bounds offset, and translucent pixels report the
// same channels a canvas readback would.
type RasterImage struct {
	pix *image.NRGBA

	data     []byte
	mimeType string
	format   string
}

// ImageInfo contains metadata about a loaded image.
type ImageInfo struct {
	// Width is the natural image width in pixels.
	Width int `json:"width"`

	// Height is the natural image height in pixels.
	Height int `json:"height"`

	// Format is the decoder name reported by image.Decode ("png", "jpeg", ...).
	Format string `json:"format"`

	// MimeType is sniffed from the leading bytes, falling back to the format.
	MimeType string `json:"mime_type"`

	// SizeBytes is the size of the encoded source.
	SizeBytes int `json:"size_bytes"`
}

// Decode decodes raw image bytes into a RasterImage.
//
// The source string is only used for error messages. Any failure is returned
// as a *DecodeError.
func Decode(data []byte, source string) (*RasterImage, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Source: source, Err: fmt.Errorf("empty input")}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Source: source, Err: err}
	}
	if cfg.Width > 0 && cfg.Height > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(MaxPixels) {
		return nil, &DecodeError{Source: source, Err: fmt.Errorf("image is %dx%d, limit is %d pixels", cfg.Width, cfg.Height, MaxPixels)}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Source: source, Err: err}
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &DecodeError{Source: source, Err: fmt.Errorf("image has no pixels (%dx%d)", b.Dx(), b.Dy())}
	}

	return &RasterImage{
		pix:      imaging.Clone(img),
		data:     data,
		mimeType: sniffMIME(data, format),
		format:   format,
	}, nil
}

// LoadFile reads and decodes an image file.
func LoadFile(path string) (*RasterImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return Decode(data, path)
}

// FromImage wraps an already decoded image. The encoded bytes are produced as
// PNG so that the raster can still be handed to consumers that need a file.
func FromImage(img image.Image) (*RasterImage, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}
	return &RasterImage{
		pix:      imaging.Clone(img),
		data:     data,
		mimeType: "image/png",
		format:   "png",
	}, nil
}

// Width returns the natural width in pixels.
func (r *RasterImage) Width() int { return r.pix.Rect.Dx() }

// Height returns the natural height in pixels.
func (r *RasterImage) Height() int { return r.pix.Rect.Dy() }

// PixelAt returns the 8-bit RGB triple at (x, y).
//
// Coordinates must lie in [0, Width) x [0, Height). Callers map pointer
// positions through the eyedropper first; an out-of-range coordinate here is a
// programming error and panics.
func (r *RasterImage) PixelAt(x, y int) (uint8, uint8, uint8) {
	if x < 0 || y < 0 || x >= r.Width() || y >= r.Height() {
		panic(fmt.Sprintf("imaging: pixel (%d,%d) outside %dx%d raster", x, y, r.Width(), r.Height()))
	}
	c := r.pix.NRGBAAt(x, y)
	return c.R, c.G, c.B
}

// SampleAt is PixelAt returned as a Sample.
func (r *RasterImage) SampleAt(x, y int) Sample {
	red, green, blue := r.PixelAt(x, y)
	return Sample{R: red, G: green, B: blue}
}

// Image exposes the normalized pixels for read-only use by renderers.
func (r *RasterImage) Image() image.Image { return r.pix }

// Bytes returns the encoded source bytes. The slice must not be modified.
func (r *RasterImage) Bytes() []byte { return r.data }

// MIMEType returns the sniffed MIME type of the encoded source.
func (r *RasterImage) MIMEType() string { return r.mimeType }

// Info summarizes the raster for tool responses.
func (r *RasterImage) Info() *ImageInfo {
	return &ImageInfo{
		Width:     r.Width(),
		Height:    r.Height(),
		Format:    r.format,
		MimeType:  r.mimeType,
		SizeBytes: len(r.data),
	}
}

// sniffMIME prefers magic-number detection and falls back to the decoder name.
func sniffMIME(data []byte, format string) string {
	head := data
	if len(head) > 262 {
		head = head[:262]
	}
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown && filetype.IsImage(head) {
		return kind.MIME.Value
	}
	if format == "" {
		return "application/octet-stream"
	}
	return "image/" + format
}
