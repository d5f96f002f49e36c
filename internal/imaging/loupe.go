package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/transform"
)

// LoupeResult is a magnified view around a sampled pixel.
type LoupeResult struct {
	EncodedImage

	// CenterX and CenterY are the sampled pixel in image coordinates.
	CenterX int `json:"center_x"`
	CenterY int `json:"center_y"`

	// Radius is the number of source pixels shown on each side of the center.
	Radius int `json:"radius"`

	// Zoom is the on-screen size of one source pixel.
	Zoom int `json:"zoom"`
}

// Loupe renders a (2*radius+1)-pixel square around (x, y) magnified by zoom,
// with the center pixel outlined.
//
// Source pixels outside the image are drawn transparent, so the center pixel
// always sits in the middle of the output even at the image edge. The
// magnification is nearest-neighbor so each source pixel stays a crisp block.
func Loupe(img *RasterImage, x, y, radius, zoom int) (*LoupeResult, error) {
	if x < 0 || y < 0 || x >= img.Width() || y >= img.Height() {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}
	if radius < 1 || radius > 32 {
		return nil, fmt.Errorf("radius must be 1-32, got %d", radius)
	}
	if zoom < 2 || zoom > 32 {
		return nil, fmt.Errorf("zoom must be 2-32, got %d", zoom)
	}

	side := 2*radius + 1
	window := image.NewNRGBA(image.Rect(0, 0, side, side))
	src := image.Rect(x-radius, y-radius, x+radius+1, y+radius+1)
	clipped := src.Intersect(image.Rect(0, 0, img.Width(), img.Height()))
	draw.Draw(window, clipped.Sub(src.Min), img.Image(), clipped.Min, draw.Src)

	zoomed := transform.Resize(window, side*zoom, side*zoom, transform.NearestNeighbor)
	outline(zoomed, image.Rect(radius*zoom, radius*zoom, (radius+1)*zoom, (radius+1)*zoom), contrastColor(img.SampleAt(x, y)))

	data, err := EncodePNG(zoomed)
	if err != nil {
		return nil, err
	}

	return &LoupeResult{
		EncodedImage: *withBase64(&EncodedImage{
			Width:    zoomed.Bounds().Dx(),
			Height:   zoomed.Bounds().Dy(),
			MimeType: "image/png",
			data:     data,
		}),
		CenterX: x,
		CenterY: y,
		Radius:  radius,
		Zoom:    zoom,
	}, nil
}

// outline draws a one-pixel border just inside r.
func outline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for px := r.Min.X; px < r.Max.X; px++ {
		img.SetRGBA(px, r.Min.Y, c)
		img.SetRGBA(px, r.Max.Y-1, c)
	}
	for py := r.Min.Y; py < r.Max.Y; py++ {
		img.SetRGBA(r.Min.X, py, c)
		img.SetRGBA(r.Max.X-1, py, c)
	}
}

// contrastColor picks black or white, whichever stands out against s.
func contrastColor(s Sample) color.RGBA {
	// ITU-R BT.601 luma
	luma := 0.299*float64(s.R) + 0.587*float64(s.G) + 0.114*float64(s.B)
	if luma > 140 {
		return color.RGBA{0, 0, 0, 255}
	}
	return color.RGBA{255, 255, 255, 255}
}
