package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/ironsheep/palette-tools-mcp/internal/imaging"
	"github.com/ironsheep/palette-tools-mcp/internal/palette"
)

// DefaultFileName is the suggested name for an exported palette.
const DefaultFileName = "color-palette-analysis.pdf"

// ErrFontRequired means some text has no cp1252 form and no Unicode font was
// configured. Without the check the core fonts would print it as dots.
var ErrFontRequired = errors.New("text needs a Unicode font; set export.font_path or PALETTE_MCP_FONT")

// Page geometry in millimeters (A4 portrait).
const (
	margin     = 10.0
	cardPad    = 5.0
	cardGap    = 5.0
	swatchSize = 22.0
	nameLine   = 7.0
	codeLine   = 6.0
	descLine   = 5.0
	thumbMaxH  = 70.0
)

// Document is everything that goes into an export.
type Document struct {
	Title    string
	Analysis *palette.Analysis
	Theme    Theme

	// Image, when set, is embedded as a thumbnail under the title.
	Image *imaging.RasterImage

	// Picked, when set, is listed as an extra section after the palette.
	Picked *imaging.Sample

	// FontPath is an optional UTF-8 TrueType font for non-Latin names.
	// Without it text is translated to cp1252 for the core fonts.
	FontPath string
}

// section is one palette entry laid out as a card.
type section struct {
	swatch imaging.Sample
	name   string
	codes  string
	desc   []string
	height float64
}

// placement is where a card lands.
type placement struct {
	page int
	y    float64
}

// layout stacks cards of the given heights starting at y on page 0. A card
// that would cross bottom moves to the top of the next page; a card taller
// than a whole page is placed anyway and left to overflow.
func layout(y float64, heights []float64, top, bottom, gap float64) []placement {
	out := make([]placement, len(heights))
	page := 0
	for i, h := range heights {
		if y+h > bottom && y > top {
			page++
			y = top
		}
		out[i] = placement{page: page, y: y}
		y += h + gap
	}
	return out
}

// Render writes the document as PDF and returns the page count.
func Render(w io.Writer, doc Document) (int, error) {
	if doc.Analysis == nil || len(doc.Analysis.Palette) == 0 {
		return 0, fmt.Errorf("nothing to export: palette is empty")
	}
	if doc.Theme.Name == "" {
		doc.Theme = Dark
	}
	if doc.Title == "" {
		doc.Title = "Color Palette Analysis"
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("palette-tools-mcp", false)

	family, tr := "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
	if doc.FontPath != "" {
		if _, err := os.Stat(doc.FontPath); err != nil {
			return 0, fmt.Errorf("font %s: %w", doc.FontPath, err)
		}
		pdf.AddUTF8Font("body", "", doc.FontPath)
		pdf.AddUTF8Font("body", "B", doc.FontPath)
		family, tr = "body", func(s string) string { return s }
	} else if err := checkEncodable(tr, doc); err != nil {
		return 0, err
	}

	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*margin
	th := doc.Theme

	pdf.SetHeaderFunc(func() {
		setFill(pdf, th.Background)
		pdf.Rect(0, 0, pageW, pageH, "F")
	})
	pdf.AddPage()

	// Header
	pdf.SetFont(family, "B", 20)
	setText(pdf, th.Title)
	pdf.SetXY(margin, margin)
	pdf.CellFormat(contentW, 10, tr(doc.Title), "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 10)
	setText(pdf, th.Muted)
	subtitle := fmt.Sprintf("%d colors", len(doc.Analysis.Palette))
	if doc.Analysis.Source != "" {
		subtitle += " | " + doc.Analysis.Source
	}
	pdf.CellFormat(contentW, 6, tr(subtitle), "", 1, "L", false, 0, "")
	y := pdf.GetY() + cardGap

	if doc.Image != nil {
		h, err := drawThumbnail(pdf, doc.Image, margin, y, contentW)
		if err != nil {
			return 0, err
		}
		y += h + cardGap
	}

	// Sections
	textW := contentW - swatchSize - 3*cardPad
	sections := make([]section, 0, len(doc.Analysis.Palette)+1)
	for _, c := range doc.Analysis.Palette {
		s, err := imaging.ParseSample(c.Hex)
		if err != nil {
			return 0, fmt.Errorf("palette entry %q: %w", c.Name, err)
		}
		sections = append(sections, section{swatch: s, name: c.Name, codes: c.Hex + "  |  " + c.RGB, desc: splitText(pdf, family, tr(c.Description), textW)})
	}
	if doc.Picked != nil {
		sections = append(sections, section{swatch: *doc.Picked, name: "Eyedropper pick", codes: doc.Picked.Hex() + "  |  " + doc.Picked.RGBText()})
	}

	heights := make([]float64, len(sections))
	for i := range sections {
		textH := nameLine + codeLine + float64(len(sections[i].desc))*descLine
		sections[i].height = math.Max(swatchSize, textH) + 2*cardPad
		heights[i] = sections[i].height
	}

	page := 0
	for i, p := range layout(y, heights, margin, pageH-margin, cardGap) {
		for page < p.page {
			pdf.AddPage()
			page++
		}
		drawSection(pdf, th, family, tr, sections[i], margin, p.y, contentW, textW)
	}

	if err := pdf.Output(w); err != nil {
		return 0, fmt.Errorf("failed to render PDF: %w", err)
	}
	return pdf.PageCount(), nil
}

// WriteFile renders the document to path.
func WriteFile(path string, doc Document) (int, error) {
	var buf bytes.Buffer
	pages, err := Render(&buf, doc)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return pages, nil
}

func drawSection(pdf *fpdf.Fpdf, th Theme, family string, tr func(string) string, s section, x, y, w, textW float64) {
	setFill(pdf, th.Card)
	setDraw(pdf, th.Border)
	pdf.SetLineWidth(0.3)
	pdf.Rect(x, y, w, s.height, "FD")

	setFill(pdf, s.swatch)
	pdf.Rect(x+cardPad, y+cardPad, swatchSize, swatchSize, "FD")

	tx := x + 2*cardPad + swatchSize
	pdf.SetXY(tx, y+cardPad)
	pdf.SetFont(family, "B", 13)
	setText(pdf, th.Title)
	pdf.CellFormat(textW, nameLine, tr(s.name), "", 2, "L", false, 0, "")

	pdf.SetFont("Courier", "", 10)
	setText(pdf, th.Accent)
	pdf.CellFormat(textW, codeLine, s.codes, "", 2, "L", false, 0, "")

	pdf.SetFont(family, "", 10)
	setText(pdf, th.Text)
	for _, line := range s.desc {
		pdf.CellFormat(textW, descLine, line, "", 2, "L", false, 0, "")
	}
}

// drawThumbnail embeds the source image centered at y and returns its height.
func drawThumbnail(pdf *fpdf.Fpdf, r *imaging.RasterImage, x, y, maxW float64) (float64, error) {
	thumb, err := imaging.Downscale(r, 800)
	if err != nil {
		return 0, err
	}

	data, kind := thumb.Bytes(), ""
	switch thumb.MimeType {
	case "image/jpeg":
		kind = "JPG"
	case "image/png":
		kind = "PNG"
	default:
		// fpdf only reads JPEG, PNG and GIF; re-encode anything else.
		if data, err = imaging.EncodePNG(r.Image()); err != nil {
			return 0, err
		}
		kind = "PNG"
	}

	opts := fpdf.ImageOptions{ImageType: kind}
	pdf.RegisterImageOptionsReader("source", opts, bytes.NewReader(data))
	if pdf.Err() {
		return 0, fmt.Errorf("failed to embed image: %w", pdf.Error())
	}

	w := maxW
	h := w * float64(r.Height()) / float64(r.Width())
	if h > thumbMaxH {
		h = thumbMaxH
		w = h * float64(r.Width()) / float64(r.Height())
	}
	pdf.ImageOptions("source", x+(maxW-w)/2, y, w, h, false, opts, 0, "")
	return h, nil
}

// checkEncodable reports the first document text the core fonts cannot show.
func checkEncodable(tr func(string) string, doc Document) error {
	texts := []string{doc.Title, doc.Analysis.Source}
	for _, c := range doc.Analysis.Palette {
		texts = append(texts, c.Name, c.Description)
	}
	for _, text := range texts {
		for _, r := range text {
			// Unknown runes translate to '.'.
			if r != '.' && tr(string(r)) == "." {
				return fmt.Errorf("%w: %q", ErrFontRequired, text)
			}
		}
	}
	return nil
}

func splitText(pdf *fpdf.Fpdf, family, text string, width float64) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	pdf.SetFont(family, "", 10)
	return pdf.SplitText(text, width)
}

func setFill(pdf *fpdf.Fpdf, s imaging.Sample) { pdf.SetFillColor(int(s.R), int(s.G), int(s.B)) }
func setDraw(pdf *fpdf.Fpdf, s imaging.Sample) { pdf.SetDrawColor(int(s.R), int(s.G), int(s.B)) }
func setText(pdf *fpdf.Fpdf, s imaging.Sample) { pdf.SetTextColor(int(s.R), int(s.G), int(s.B)) }
