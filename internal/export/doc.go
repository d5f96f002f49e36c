// Package export renders a palette analysis as a themed A4 PDF.
//
// Each palette color is one card (swatch, name, codes, description). Cards
// are never split across pages; a card that does not fit starts a new page.
package export
