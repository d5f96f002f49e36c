package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// EncodedImage is an image serialized for transport.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type"`

	data []byte
}

// Bytes returns the encoded image bytes.
func (e *EncodedImage) Bytes() []byte { return e.data }

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Downscale fits the raster inside a maxEdge x maxEdge box and re-encodes it.
//
// Images already within the box are returned with their original bytes and
// MIME type untouched. Larger images are resampled with Lanczos and encoded as
// JPEG (quality 90), which keeps uploads and embedded thumbnails small.
// maxEdge <= 0 disables downscaling.
func Downscale(img *RasterImage, maxEdge int) (*EncodedImage, error) {
	w, h := img.Width(), img.Height()
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) {
		return &EncodedImage{Width: w, Height: h, MimeType: img.MIMEType(), data: img.Bytes()}, nil
	}

	fitted := imaging.Fit(img.Image(), maxEdge, maxEdge, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode downscaled image: %w", err)
	}

	return &EncodedImage{
		Width:    fitted.Bounds().Dx(),
		Height:   fitted.Bounds().Dy(),
		MimeType: "image/jpeg",
		data:     buf.Bytes(),
	}, nil
}

func withBase64(e *EncodedImage) *EncodedImage {
	e.ImageBase64 = base64.StdEncoding.EncodeToString(e.data)
	return e
}
