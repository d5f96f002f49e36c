// Package eyedropper maps pointer positions on a scaled display onto raster
// pixels and layers single-shot pick semantics on top.
//
// MapToPixel is the geometry: pointer minus rendered offset, times
// natural/rendered scale, floored, clamped into the raster. Session is the
// state machine (Inactive/Active) that turns pointer moves into a hover
// sample and a click into a picked sample.
package eyedropper
