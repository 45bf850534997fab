package report

import (
	"io"

	"github.com/go-pdf/fpdf"
)

// Color is an RGB triple
type Color struct {
	R, G, B int
}

// Canvas is the drawing and text measurement surface the layout runs on.
// Coordinates are millimetres from the top-left corner of the current page.
type Canvas interface {
	AddPage()
	// SetFont selects the style ("", "B" or "I") and point size for Text and SplitText
	SetFont(style string, size float64)
	SetTextColor(c Color)
	SetDrawColor(c Color)
	Text(x, y float64, text string)
	Line(x1, y1, x2, y2 float64)
	// SplitText wraps text to width using the current font
	SplitText(text string, width float64) []string
}

// pdfCanvas draws on an A4 fpdf document
type pdfCanvas struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
}

// newPDFCanvas uses the built-in Helvetica unless fontPath names a TTF file,
// which is then registered for all three styles to render non-Latin scripts.
func newPDFCanvas(fontPath string) *pdfCanvas {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, Margin)
	pdf.SetCreator("lekhan", true)

	c := &pdfCanvas{
		pdf:    pdf,
		family: "Helvetica",
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
	}
	if fontPath != "" {
		for _, style := range []string{"", "B", "I"} {
			pdf.AddUTF8Font("document", style, fontPath)
		}
		c.family = "document"
		c.tr = func(s string) string { return s }
	}
	return c
}

func (c *pdfCanvas) AddPage() { c.pdf.AddPage() }

func (c *pdfCanvas) SetFont(style string, size float64) {
	c.pdf.SetFont(c.family, style, size)
}

func (c *pdfCanvas) SetTextColor(col Color) { c.pdf.SetTextColor(col.R, col.G, col.B) }

func (c *pdfCanvas) SetDrawColor(col Color) { c.pdf.SetDrawColor(col.R, col.G, col.B) }

func (c *pdfCanvas) Text(x, y float64, text string) {
	c.pdf.Text(x, y, c.tr(text))
}

func (c *pdfCanvas) Line(x1, y1, x2, y2 float64) { c.pdf.Line(x1, y1, x2, y2) }

func (c *pdfCanvas) SplitText(text string, width float64) []string {
	return wrapText(text, width, func(s string) float64 {
		return c.pdf.GetStringWidth(c.tr(s))
	})
}

func (c *pdfCanvas) Output(w io.Writer) error {
	return c.pdf.Output(w)
}
