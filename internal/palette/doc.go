// Package palette extracts named color palettes from images.
//
// Gemini sends the image to a multimodal model with a JSON response schema and
// is treated as an opaque oracle: whatever comes back is parsed and then
// Normalize'd (canonical hex, rgb text consistent with the hex). Credential
// failures are wrapped with ErrUnauthorized so callers can invalidate the
// stored key and re-prompt.
//
// Local is an offline fallback built on the quantized histogram from the
// imaging package, with names chosen by nearest reference color.
package palette
