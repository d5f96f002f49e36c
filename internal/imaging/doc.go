// Package imaging provides the pixel buffer and color primitives used by the
// palette tools.
//
// A RasterImage is a decoded, immutable bitmap that can be queried by integer
// coordinate. It carries the encoded source bytes and sniffed MIME type as
// well, so the same value can be handed to a remote analyzer or embedded in an
// exported document.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// RasterImage.PixelAt trusts its caller: mapping a pointer to a valid
// coordinate is the eyedropper's job. SampleColor, Loupe and DominantColors
// validate coordinates because they take them from tool arguments.
//
// # Color Representation
//
// Colors are 8-bit RGB Samples. Their string forms are derived on demand:
//   - Hex: "#RRGGBB", uppercase, zero-padded
//   - RGB text: "rgb(r, g, b)", unpadded decimals
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//
// DecodeHex and ParseRGBText are the inverses; malformed input yields a
// *FormatError.
//
// # Supported Formats
//
// PNG, JPEG and GIF from the standard library, plus BMP, TIFF and WebP from
// golang.org/x/image. Undecodable input yields a *DecodeError.
package imaging
